package event_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"aspen/config"
	"aspen/infras/kafka"
	kafkaMocks "aspen/infras/kafka/mocks"
	"aspen/infras/otel/mocks"
	"aspen/internal/domains/booking/event"
	"aspen/internal/domains/booking/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestFromBooking(t *testing.T) {
	booking := model.Booking{
		BookingID:          "AGH0103240001",
		GuestName:          "Jane Doe",
		GuestEmail:         "jane@example.com",
		RoomTypeName:       "Deluxe",
		CheckInDate:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate:       time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
		NumberOfRooms:      2,
		TotalPriceAfterTax: decimal.RequireFromString("468"),
		Currency:           "usd",
	}

	ev := event.FromBooking(event.TypeConfirmed, booking)

	assert.Equal(t, event.TypeConfirmed, ev.Type)
	assert.Equal(t, "2024-03-01", ev.CheckInDate)
	assert.Equal(t, "2024-03-03", ev.CheckOutDate)
	assert.Equal(t, "468.00", ev.Total)
	assert.Equal(t, "jane@example.com", ev.GuestEmail)
}

func TestPublisher_Publish(t *testing.T) {
	tests := []struct {
		name    string
		sendErr error
		wantErr bool
	}{
		{name: "keyed by booking id"},
		{name: "broker failure is returned", sendErr: errors.New("leader not available"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := kafkaMocks.NewMockClient(ctrl)

			cfg := &config.Config{}
			cfg.Kafka.Topics.BookingEvents = "booking-events"

			client.EXPECT().SendMessages(gomock.Any(), "booking-events", gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
					require.Len(t, messages, 1)
					assert.Equal(t, "AGH0103240001", messages[0].Key)

					return tt.sendErr
				})

			publisher := event.NewPublisher(client, cfg, mocks.NewOtel())
			err := publisher.Publish(context.Background(), event.BookingEvent{Type: event.TypeCanceled, BookingID: "AGH0103240001"})

			if tt.wantErr {
				assert.ErrorIs(t, err, tt.sendErr)

				return
			}

			require.NoError(t, err)
		})
	}
}
