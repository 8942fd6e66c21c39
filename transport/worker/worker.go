// Package worker runs the background side of the service: the expiry sweeper
// and the guest notification consumer.
package worker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"aspen/infras/kafka"
	"aspen/internal/domains/booking/sweeper"
	"aspen/internal/domains/notification/service"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Worker struct {
	Sweeper      *sweeper.Sweeper
	Notification service.Notification
	Kafka        kafka.Client
}

func New(sweeper *sweeper.Sweeper, notification service.Notification, client kafka.Client) *Worker {
	return &Worker{
		Sweeper:      sweeper,
		Notification: notification,
		Kafka:        client,
	}
}

// Serve blocks until SIGINT or SIGTERM, then waits for both loops to stop.
func (w *Worker) Serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w.Run(ctx)
}

func (w *Worker) Run(ctx context.Context) {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		w.Sweeper.Run(ctx)

		return nil
	})

	group.Go(func() error {
		w.Notification.Consume(ctx)

		return nil
	})

	log.Info().Msg("Worker started.")

	_ = group.Wait()

	if err := w.Kafka.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Kafka client")
	}

	log.Info().Msg("Worker stopped.")
}
