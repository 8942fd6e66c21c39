package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"aspen/config"
	"aspen/infras/brevo"
	"aspen/infras/kafka"
	"aspen/infras/metrics"
	"aspen/infras/otel"
	"aspen/internal/domains/booking/event"
	"aspen/internal/domains/notification/templates"
	"aspen/shared/constant"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

var subjects = map[string]string{
	event.TypeConfirmed:  "Booking Confirmation %s",
	event.TypeCheckedIn:  "Welcome, you are checked in (%s)",
	event.TypeCheckedOut: "Thank you for staying with us (%s)",
	event.TypeCanceled:   "Booking Canceled %s",
}

type Notification interface {
	Notify(ctx context.Context, evt event.BookingEvent) error
	Consume(ctx context.Context)
}

type serviceImpl struct {
	mailer    brevo.Mailer
	client    kafka.Client
	templates *template.Template
	cfg       *config.Config
	otel      otel.Otel
}

type view struct {
	HotelName string
	Event     event.BookingEvent
}

func New(mailer brevo.Mailer, client kafka.Client, cfg *config.Config, otel otel.Otel) (Notification, error) {
	tmpl, err := templates.Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &serviceImpl{
		mailer:    mailer,
		client:    client,
		templates: tmpl,
		cfg:       cfg,
		otel:      otel,
	}, nil
}

// Consume blocks until ctx is done, mailing the guest for every booking event.
func (s *serviceImpl) Consume(ctx context.Context) {
	topic := s.cfg.Kafka.Topics.BookingEvents

	log.Info().Str("topic", topic).Msg("notification consumer started")

	s.client.Consume(ctx, s.cfg.Kafka.ConsumerGroup, topic, s.handle)

	log.Info().Msg("notification consumer stopped")
}

// handle drops undecodable records; mail failures go back to the consumer for retry.
func (s *serviceImpl) handle(ctx context.Context, msg kafkaGo.Message) error {
	evt, err := kafka.Decode[event.BookingEvent](msg)
	if err != nil {
		log.Error().Err(err).Str("key", string(msg.Key)).Msg("failed to decode booking event")

		return nil
	}

	if err = s.Notify(ctx, evt); err != nil {
		log.Warn().Err(err).Str("bookingID", evt.BookingID).Str("type", evt.Type).Msg("failed to notify guest")

		return err
	}

	return nil
}

// Notify renders and sends the email for one event. Unknown event types and
// guests without an address are skipped.
func (s *serviceImpl) Notify(ctx context.Context, evt event.BookingEvent) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".notification.Notify")
	defer scope.End()
	defer scope.TraceIfError(&err)

	subject, ok := subjects[evt.Type]
	if !ok {
		log.Debug().Str("type", evt.Type).Msg("no notification for event type")

		return nil
	}

	if evt.GuestEmail == constant.Empty {
		log.Warn().Str("bookingID", evt.BookingID).Msg("booking event has no guest email")

		return nil
	}

	body, err := s.render(evt)
	if err != nil {
		return err
	}

	messageID, err := s.mailer.Send(ctx, brevo.Email{
		To:      brevo.Recipient{Email: evt.GuestEmail, Name: evt.GuestName},
		Subject: fmt.Sprintf(subject, evt.BookingID),
		HTML:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", evt.Type, err)
	}

	metrics.ObserveBooking(metrics.OutcomeNotification)
	log.Info().Str("bookingID", evt.BookingID).Str("type", evt.Type).Str("messageID", messageID).Msg("guest notified")

	return nil
}

func (s *serviceImpl) render(evt event.BookingEvent) (string, error) {
	hotel := s.cfg.App.Name
	if hotel == constant.Empty {
		hotel = constant.DefaultHotelName
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, evt.Type, view{HotelName: hotel, Event: evt}); err != nil {
		return constant.Empty, fmt.Errorf("failed to render %s email: %w", evt.Type, err)
	}

	return buf.String(), nil
}
