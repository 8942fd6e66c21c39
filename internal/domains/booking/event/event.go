// Package event publishes booking lifecycle transitions for downstream consumers.
package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=../mocks/event_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"aspen/config"
	"aspen/infras/kafka"
	"aspen/infras/otel"
	"aspen/internal/domains/booking/model"
	"aspen/shared/constant"
	"aspen/shared/timezone"
)

const (
	TypeConfirmed  = "booking.confirmed"
	TypeCheckedIn  = "booking.checked_in"
	TypeCheckedOut = "booking.checked_out"
	TypeCanceled   = "booking.canceled"
)

type BookingEvent struct {
	Type          string    `json:"type"`
	BookingID     string    `json:"booking_id"`
	HotelID       string    `json:"hotel_id"`
	GuestName     string    `json:"guest_name"`
	GuestEmail    string    `json:"guest_email"`
	RoomTypeName  string    `json:"room_type_name"`
	CheckInDate   string    `json:"check_in_date"`
	CheckOutDate  string    `json:"check_out_date"`
	NumberOfRooms int       `json:"number_of_rooms"`
	RoomNumbers   []string  `json:"room_numbers,omitempty"`
	Total         string    `json:"total"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// FromBooking expects the booking to carry its guest and room type names.
func FromBooking(eventType string, booking model.Booking) BookingEvent {
	return BookingEvent{
		Type:          eventType,
		BookingID:     booking.BookingID,
		HotelID:       booking.HotelID,
		GuestName:     booking.GuestName,
		GuestEmail:    booking.GuestEmail,
		RoomTypeName:  booking.RoomTypeName,
		CheckInDate:   booking.CheckInDate.Format(constant.DateOnlyFormat),
		CheckOutDate:  booking.CheckOutDate.Format(constant.DateOnlyFormat),
		NumberOfRooms: booking.NumberOfRooms,
		Total:         booking.TotalPriceAfterTax.StringFixed(2),
		Currency:      booking.Currency,
		OccurredAt:    timezone.Now(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}

type kafkaPublisher struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

func NewPublisher(client kafka.Client, cfg *config.Config, otel otel.Otel) Publisher {
	return &kafkaPublisher{
		client: client,
		topic:  cfg.Kafka.Topics.BookingEvents,
		otel:   otel,
	}
}

// Publish keys by booking id so one booking's events stay ordered on a partition.
func (p *kafkaPublisher) Publish(ctx context.Context, event BookingEvent) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".event.Publish")
	defer scope.End()
	defer scope.TraceIfError(&err)

	scope.SetAttribute("event_type", event.Type)

	if err = p.client.SendMessages(ctx, p.topic, kafka.Message{Key: event.BookingID, Value: event}); err != nil {
		return fmt.Errorf("failed to publish %s for %s: %w", event.Type, event.BookingID, err)
	}

	return nil
}
