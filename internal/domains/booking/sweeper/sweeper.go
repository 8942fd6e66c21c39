// Package sweeper periodically removes unpaid bookings whose hold has lapsed.
package sweeper

import (
	"context"
	"time"

	"aspen/config"
	"aspen/shared/timezone"

	"github.com/rs/zerolog/log"
)

const defaultInterval = 30 * time.Minute

type Expirer interface {
	ExpirePending(ctx context.Context, now time.Time) (int, error)
}

type Sweeper struct {
	expirer  Expirer
	interval time.Duration
	now      func() time.Time
}

func New(expirer Expirer, cfg *config.Config) *Sweeper {
	interval := time.Duration(cfg.Booking.SweepIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = defaultInterval
	}

	return NewWithInterval(expirer, interval, timezone.Now)
}

func NewWithInterval(expirer Expirer, interval time.Duration, now func() time.Time) *Sweeper {
	return &Sweeper{expirer: expirer, interval: interval, now: now}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("expiry sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("expiry sweeper stopped")

			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single pass. Errors are logged; the next tick retries.
func (s *Sweeper) Sweep(ctx context.Context) int {
	deleted, err := s.expirer.ExpirePending(ctx, s.now())
	if err != nil {
		log.Error().Err(err).Msg("failed to expire pending bookings")

		return 0
	}

	if deleted > 0 {
		log.Info().Int("deleted", deleted).Msg("expired pending bookings")
	}

	return deleted
}
