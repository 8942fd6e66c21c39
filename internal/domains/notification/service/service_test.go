package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"aspen/config"
	"aspen/infras/brevo"
	"aspen/infras/kafka"
	brevoMocks "aspen/infras/brevo/mocks"
	kafkaMocks "aspen/infras/kafka/mocks"
	"aspen/infras/otel/mocks"
	"aspen/internal/domains/booking/event"
	"aspen/internal/domains/notification/service"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func sampleEvent(eventType string) event.BookingEvent {
	return event.BookingEvent{
		Type:          eventType,
		BookingID:     "AGH0103241234",
		GuestName:     "Ada <Lovelace>",
		GuestEmail:    "ada@example.com",
		RoomTypeName:  "Deluxe",
		CheckInDate:   "2024-03-01",
		CheckOutDate:  "2024-03-03",
		NumberOfRooms: 2,
		RoomNumbers:   []string{"101", "102"},
		Total:         "468.00",
		Currency:      "usd",
	}
}

func newService(t *testing.T) (service.Notification, *brevoMocks.MockMailer, *kafkaMocks.MockClient) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mailer := brevoMocks.NewMockMailer(ctrl)
	client := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.App.Name = "Aspen Grand Hotels"
	cfg.Kafka.ConsumerGroup = "aspen-notifications"
	cfg.Kafka.Topics.BookingEvents = "booking-events"

	svc, err := service.New(mailer, client, cfg, mocks.NewOtel())
	require.NoError(t, err)

	return svc, mailer, client
}

func TestNotification_Notify(t *testing.T) {
	tests := []struct {
		name        string
		evt         event.BookingEvent
		wantSubject string
		wantBody    []string
		sendErr     error
		wantErr     bool
		wantSend    bool
	}{
		{
			name:        "confirmation",
			evt:         sampleEvent(event.TypeConfirmed),
			wantSubject: "Booking Confirmation AGH0103241234",
			wantBody:    []string{"Ada &lt;Lovelace&gt;", "468.00 USD", "2024-03-01", "confirmed"},
			wantSend:    true,
		},
		{
			name:        "check-in lists rooms",
			evt:         sampleEvent(event.TypeCheckedIn),
			wantSubject: "Welcome, you are checked in (AGH0103241234)",
			wantBody:    []string{"2 (101, 102)"},
			wantSend:    true,
		},
		{
			name:        "check-out",
			evt:         sampleEvent(event.TypeCheckedOut),
			wantSubject: "Thank you for staying with us (AGH0103241234)",
			wantSend:    true,
		},
		{
			name:        "cancellation",
			evt:         sampleEvent(event.TypeCanceled),
			wantSubject: "Booking Canceled AGH0103241234",
			wantSend:    true,
		},
		{
			name: "unknown type is skipped",
			evt:  sampleEvent("booking.unknown"),
		},
		{
			name: "missing email is skipped",
			evt: func() event.BookingEvent {
				e := sampleEvent(event.TypeConfirmed)
				e.GuestEmail = ""

				return e
			}(),
		},
		{
			name:     "mailer failure",
			evt:      sampleEvent(event.TypeConfirmed),
			sendErr:  errors.New("brevo: unauthorized"),
			wantErr:  true,
			wantSend: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mailer, _ := newService(t)

			if tt.wantSend {
				mailer.EXPECT().Send(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, email brevo.Email) (string, error) {
						assert.Equal(t, "ada@example.com", email.To.Email)

						if tt.wantSubject != "" {
							assert.Equal(t, tt.wantSubject, email.Subject)
						}

						assert.Contains(t, email.HTML, "Aspen Grand Hotels")

						for _, want := range tt.wantBody {
							assert.Contains(t, email.HTML, want)
						}

						return "msg-1", tt.sendErr
					})
			}

			err := svc.Notify(context.Background(), tt.evt)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestNotification_ConsumeDecodesEvents(t *testing.T) {
	svc, mailer, client := newService(t)

	payload, err := json.Marshal(sampleEvent(event.TypeConfirmed))
	require.NoError(t, err)

	sent := make(chan brevo.Email, 1)

	mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, email brevo.Email) (string, error) {
		sent <- email

		return "msg-1", nil
	})

	client.EXPECT().Consume(gomock.Any(), "aspen-notifications", "booking-events", gomock.Any()).
		Do(func(ctx context.Context, _, _ string, handler kafka.Handler) {
			assert.NoError(t, handler(ctx, kafkaGo.Message{Key: []byte("AGH0103241234"), Value: []byte("{not json")}))
			assert.NoError(t, handler(ctx, kafkaGo.Message{Key: []byte("AGH0103241234"), Value: payload}))
		})

	svc.Consume(context.Background())

	email := <-sent
	assert.Equal(t, "Booking Confirmation AGH0103241234", email.Subject)
}

func TestNotification_ConsumeReturnsSendErrorsForRetry(t *testing.T) {
	svc, mailer, client := newService(t)

	payload, err := json.Marshal(sampleEvent(event.TypeCanceled))
	require.NoError(t, err)

	mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return("", errors.New("brevo: 503"))

	client.EXPECT().Consume(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(ctx context.Context, _, _ string, handler kafka.Handler) {
			assert.Error(t, handler(ctx, kafkaGo.Message{Key: []byte("AGH0103241234"), Value: payload}))
		})

	svc.Consume(context.Background())
}
