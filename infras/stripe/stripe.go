package stripe

//go:generate go run go.uber.org/mock/mockgen -source=./stripe.go -destination=./mocks/stripe_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"aspen/config"
	"aspen/infras/metrics"
	"aspen/infras/otel"
	"aspen/shared/constant"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	stripeGo "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

const (
	serviceName      = "stripe"
	MetadataBooking  = "bookingId"
	otelAttrBooking  = "booking_id"
	otelAttrCurrency = "currency"
	checkoutQuantity = 1
)

// Event types the booking lifecycle reacts to.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentSucceeded  = "payment_intent.succeeded"
	EventPaymentFailed     = "payment_intent.payment_failed"
	EventCheckoutExpired   = "checkout.session.expired"

	// Delayed payment methods settle after the session completes.
	EventCheckoutAsyncSucceeded = "checkout.session.async_payment_succeeded"
	EventCheckoutAsyncFailed    = "checkout.session.async_payment_failed"
	EventUnhandled         = ""
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMissingBooking   = errors.New("webhook event has no booking reference")
)

type Intent struct {
	ID           string
	ClientSecret string
}

type Session struct {
	ID  string
	URL string
}

type LineItem struct {
	Name        string
	Description string
}

// Event is the verified, provider-neutral view of a webhook payload.
type Event struct {
	ID         string
	Type       string
	BookingID  string
	Reference  string
	AmountPaid decimal.Decimal
}

type Gateway interface {
	CreateIntent(ctx context.Context, bookingID string, amount decimal.Decimal, currency string) (Intent, error)
	CreateSession(ctx context.Context, bookingID string, amount decimal.Decimal, currency string, item LineItem) (Session, error)
	ParseEvent(payload []byte, signature string) (Event, error)
}

type gatewayImpl struct {
	api    *client.API
	config *config.Config
	otel   otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) Gateway {
	return NewWithBackends(cfg, otel, nil)
}

// NewWithBackends lets callers point the client at a different API host.
func NewWithBackends(cfg *config.Config, otel otel.Otel, backends *stripeGo.Backends) Gateway {
	return &gatewayImpl{
		api:    client.New(cfg.External.Stripe.SecretKey, backends),
		config: cfg,
		otel:   otel,
	}
}

// ToMinorUnits converts a two-decimal amount into cents.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

func (g *gatewayImpl) CreateIntent(ctx context.Context, bookingID string, amount decimal.Decimal, currency string) (res Intent, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".stripe.CreateIntent")
	defer scope.End()
	defer scope.TraceIfError(&err)

	scope.SetAttributes(map[string]any{
		otelAttrBooking:  bookingID,
		otelAttrCurrency: currency,
	})

	params := &stripeGo.PaymentIntentParams{
		Amount:   stripeGo.Int64(ToMinorUnits(amount)),
		Currency: stripeGo.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripeGo.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripeGo.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(MetadataBooking, bookingID)

	start := time.Now()
	intent, err := g.api.PaymentIntents.New(params)
	metrics.ObserveExternal(serviceName, "payment_intents", statusOf(err), time.Since(start))

	if err != nil {
		log.Error().Err(err).Str("bookingId", bookingID).Msg("failed to create payment intent")

		return res, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return Intent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

func (g *gatewayImpl) CreateSession(ctx context.Context, bookingID string, amount decimal.Decimal, currency string, item LineItem) (res Session, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".stripe.CreateSession")
	defer scope.End()
	defer scope.TraceIfError(&err)

	scope.SetAttributes(map[string]any{
		otelAttrBooking:  bookingID,
		otelAttrCurrency: currency,
	})

	params := &stripeGo.CheckoutSessionParams{
		Mode:              stripeGo.String(string(stripeGo.CheckoutSessionModePayment)),
		SuccessURL:        stripeGo.String(g.config.External.Stripe.SuccessURL),
		CancelURL:         stripeGo.String(g.config.External.Stripe.CancelURL),
		ClientReferenceID: stripeGo.String(bookingID),
		LineItems: []*stripeGo.CheckoutSessionLineItemParams{
			{
				PriceData: &stripeGo.CheckoutSessionLineItemPriceDataParams{
					Currency: stripeGo.String(strings.ToLower(currency)),
					ProductData: &stripeGo.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripeGo.String(item.Name),
						Description: stripeGo.String(item.Description),
					},
					UnitAmount: stripeGo.Int64(ToMinorUnits(amount)),
				},
				Quantity: stripeGo.Int64(checkoutQuantity),
			},
		},
		PaymentIntentData: &stripeGo.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{MetadataBooking: bookingID},
		},
	}
	params.Context = ctx
	params.AddMetadata(MetadataBooking, bookingID)

	start := time.Now()
	session, err := g.api.CheckoutSessions.New(params)
	metrics.ObserveExternal(serviceName, "checkout_sessions", statusOf(err), time.Since(start))

	if err != nil {
		log.Error().Err(err).Str("bookingId", bookingID).Msg("failed to create checkout session")

		return res, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return Session{ID: session.ID, URL: session.URL}, nil
}

// ParseEvent verifies the signature header and extracts the booking reference.
// Events of other types come back with Type set to EventUnhandled.
func (g *gatewayImpl) ParseEvent(payload []byte, signature string) (Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.config.External.Stripe.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to verify stripe webhook")

		return Event{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	res := Event{ID: event.ID, Type: string(event.Type)}

	switch res.Type {
	case EventCheckoutCompleted, EventCheckoutExpired, EventCheckoutAsyncSucceeded, EventCheckoutAsyncFailed:
		var session stripeGo.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return Event{}, fmt.Errorf("failed to decode checkout session: %w", err)
		}

		// A completed session may still be waiting on a delayed payment method.
		if res.Type == EventCheckoutCompleted && session.PaymentStatus != stripeGo.CheckoutSessionPaymentStatusPaid {
			log.Info().Str("sessionID", session.ID).Str("paymentStatus", string(session.PaymentStatus)).Msg("checkout completed without payment")

			res.Type = EventUnhandled

			return res, nil
		}

		res.BookingID = session.Metadata[MetadataBooking]
		if res.BookingID == constant.Empty {
			res.BookingID = session.ClientReferenceID
		}

		res.Reference = session.ID
		res.AmountPaid = FromMinorUnits(session.AmountTotal)
	case EventPaymentSucceeded, EventPaymentFailed:
		var intent stripeGo.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return Event{}, fmt.Errorf("failed to decode payment intent: %w", err)
		}

		res.BookingID = intent.Metadata[MetadataBooking]
		res.Reference = intent.ID
		res.AmountPaid = FromMinorUnits(intent.AmountReceived)
	default:
		res.Type = EventUnhandled

		return res, nil
	}

	if res.BookingID == constant.Empty {
		return res, ErrMissingBooking
	}

	return res, nil
}

func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var stripeErr *stripeGo.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode != 0 {
		return stripeErr.HTTPStatusCode
	}

	return http.StatusBadGateway
}
