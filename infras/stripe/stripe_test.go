package stripe_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aspen/config"
	"aspen/infras/otel/mocks"
	"aspen/infras/stripe"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripeGo "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

const webhookSecret = "whsec_test"

func newConfig() *config.Config {
	cfg := &config.Config{}
	cfg.External.Stripe.SecretKey = "sk_test_123"
	cfg.External.Stripe.WebhookSecret = webhookSecret
	cfg.External.Stripe.SuccessURL = "https://aspen.example/success"
	cfg.External.Stripe.CancelURL = "https://aspen.example/cancel"

	return cfg
}

func signedEvent(t *testing.T, eventType string, object map[string]any) ([]byte, string) {
	t.Helper()

	raw, err := json.Marshal(object)
	require.NoError(t, err)

	payload, err := json.Marshal(map[string]any{
		"id":     "evt_1",
		"object": "event",
		"type":   eventType,
		"data":   map[string]any{"object": json.RawMessage(raw)},
	})
	require.NoError(t, err)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    webhookSecret,
		Timestamp: time.Now(),
	})

	return signed.Payload, signed.Header
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(46800), stripe.ToMinorUnits(decimal.NewFromInt(468)))
	assert.Equal(t, int64(117), stripe.ToMinorUnits(decimal.RequireFromString("1.17")))
	assert.Equal(t, int64(1), stripe.ToMinorUnits(decimal.RequireFromString("0.005")))
	assert.True(t, decimal.RequireFromString("468.00").Equal(stripe.FromMinorUnits(46800)))
}

func TestGateway_ParseEvent(t *testing.T) {
	gateway := stripe.New(newConfig(), mocks.NewOtel())

	tests := []struct {
		name      string
		eventType string
		object    map[string]any
		want      stripe.Event
		wantErr   error
	}{
		{
			name:      "checkout completed reads metadata",
			eventType: stripe.EventCheckoutCompleted,
			object: map[string]any{
				"id":             "cs_1",
				"object":         "checkout.session",
				"amount_total":   46800,
				"payment_status": "paid",
				"metadata":       map[string]string{stripe.MetadataBooking: "AGH0103240001"},
			},
			want: stripe.Event{ID: "evt_1", Type: stripe.EventCheckoutCompleted, BookingID: "AGH0103240001", Reference: "cs_1", AmountPaid: decimal.NewFromInt(468)},
		},
		{
			name:      "checkout completed falls back to client reference",
			eventType: stripe.EventCheckoutCompleted,
			object: map[string]any{
				"id":                  "cs_2",
				"object":              "checkout.session",
				"amount_total":        100,
				"payment_status":      "paid",
				"client_reference_id": "AGH0103240002",
			},
			want: stripe.Event{ID: "evt_1", Type: stripe.EventCheckoutCompleted, BookingID: "AGH0103240002", Reference: "cs_2", AmountPaid: decimal.NewFromInt(1)},
		},
		{
			name:      "checkout completed while a delayed payment is pending",
			eventType: stripe.EventCheckoutCompleted,
			object: map[string]any{
				"id":             "cs_3",
				"object":         "checkout.session",
				"amount_total":   46800,
				"payment_status": "unpaid",
				"metadata":       map[string]string{stripe.MetadataBooking: "AGH0103240003"},
			},
			want: stripe.Event{ID: "evt_1", Type: stripe.EventUnhandled},
		},
		{
			name:      "delayed checkout payment settles",
			eventType: stripe.EventCheckoutAsyncSucceeded,
			object: map[string]any{
				"id":             "cs_3",
				"object":         "checkout.session",
				"amount_total":   46800,
				"payment_status": "paid",
				"metadata":       map[string]string{stripe.MetadataBooking: "AGH0103240003"},
			},
			want: stripe.Event{ID: "evt_1", Type: stripe.EventCheckoutAsyncSucceeded, BookingID: "AGH0103240003", Reference: "cs_3", AmountPaid: decimal.NewFromInt(468)},
		},
		{
			name:      "payment intent succeeded",
			eventType: stripe.EventPaymentSucceeded,
			object: map[string]any{
				"id":              "pi_1",
				"object":          "payment_intent",
				"amount_received": 46800,
				"metadata":        map[string]string{stripe.MetadataBooking: "AGH0103240001"},
			},
			want: stripe.Event{ID: "evt_1", Type: stripe.EventPaymentSucceeded, BookingID: "AGH0103240001", Reference: "pi_1", AmountPaid: decimal.NewFromInt(468)},
		},
		{
			name:      "unrelated event is ignored",
			eventType: "customer.created",
			object:    map[string]any{"id": "cus_1", "object": "customer"},
			want:      stripe.Event{ID: "evt_1", Type: stripe.EventUnhandled},
		},
		{
			name:      "intent without booking metadata",
			eventType: stripe.EventPaymentFailed,
			object:    map[string]any{"id": "pi_2", "object": "payment_intent"},
			wantErr:   stripe.ErrMissingBooking,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, header := signedEvent(t, tt.eventType, tt.object)

			got, err := gateway.ParseEvent(payload, header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want.Type, got.Type)
			assert.Equal(t, tt.want.BookingID, got.BookingID)
			assert.Equal(t, tt.want.Reference, got.Reference)
			assert.True(t, tt.want.AmountPaid.Equal(got.AmountPaid), "amount %s", got.AmountPaid)
		})
	}
}

func TestGateway_ParseEvent_BadSignature(t *testing.T) {
	gateway := stripe.New(newConfig(), mocks.NewOtel())

	payload, _ := signedEvent(t, stripe.EventPaymentSucceeded, map[string]any{"id": "pi_1"})

	_, err := gateway.ParseEvent(payload, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, stripe.ErrInvalidSignature)
}

func TestGateway_CreateIntent(t *testing.T) {
	var form map[string][]string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","client_secret":"pi_123_secret_abc"}`))
	}))
	defer ts.Close()

	backend := stripeGo.GetBackendWithConfig(stripeGo.APIBackend, &stripeGo.BackendConfig{
		URL:               stripeGo.String(ts.URL),
		MaxNetworkRetries: stripeGo.Int64(0),
	})
	gateway := stripe.NewWithBackends(newConfig(), mocks.NewOtel(), &stripeGo.Backends{API: backend, Connect: backend, Uploads: backend})

	intent, err := gateway.CreateIntent(context.Background(), "AGH0103240001", decimal.NewFromInt(468), "USD")
	require.NoError(t, err)

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, []string{"46800"}, form["amount"])
	assert.Equal(t, []string{"usd"}, form["currency"])
	assert.Equal(t, []string{"AGH0103240001"}, form["metadata[bookingId]"])
}
