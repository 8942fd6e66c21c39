package payment

import (
	"errors"
	"io"
	"net/http"

	"aspen/infras/otel"
	"aspen/infras/stripe"
	"aspen/internal/domains/booking/service"
	"aspen/shared/constant"
	"aspen/shared/failure"
	"aspen/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	headerSignature = "Stripe-Signature"
	maxPayloadBytes = 64 << 10
)

type Handler struct {
	booking service.Booking
	gateway stripe.Gateway
	otel    otel.Otel
}

func New(booking service.Booking, gateway stripe.Gateway, otel otel.Otel) Handler {
	return Handler{
		booking: booking,
		gateway: gateway,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/payments", func(routerGroup chi.Router) {
		routerGroup.Post("/webhook", handler.Webhook)
	})
}

// Webhook receives payment gateway callbacks.
// @Summary Payment gateway webhook
// @Description Verifies the signature, then marks the referenced booking paid or failed. Unknown bookings and event types are acknowledged and ignored.
// @Tags Payment
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Webhook signature"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/payments/webhook [post]
func (handler *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".payment.Webhook")
	defer scope.End()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		err = failure.BadRequest(err)
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to read webhook payload")

		response.WithError(w, err)

		return
	}

	evt, err := handler.gateway.ParseEvent(payload, r.Header.Get(headerSignature))
	switch {
	case errors.Is(err, stripe.ErrMissingBooking):
		log.Warn().Str("eventID", evt.ID).Str("type", evt.Type).Msg("webhook event without booking reference")

		response.WithMessage(w, http.StatusOK, "ignored")

		return
	case err != nil:
		err = failure.BadRequest(err)
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	switch evt.Type {
	case stripe.EventCheckoutCompleted, stripe.EventCheckoutAsyncSucceeded, stripe.EventPaymentSucceeded:
		err = handler.booking.ConfirmPayment(ctx, evt)
	case stripe.EventPaymentFailed, stripe.EventCheckoutAsyncFailed:
		err = handler.booking.FailPayment(ctx, evt)
	default:
		log.Debug().Str("eventID", evt.ID).Msg("webhook event ignored")

		response.WithMessage(w, http.StatusOK, "ignored")

		return
	}

	if failure.IsKind(err, failure.KindBookingNotFound) {
		log.Warn().Str("bookingID", evt.BookingID).Str("eventID", evt.ID).Msg("webhook for unknown booking")

		response.WithMessage(w, http.StatusOK, "ignored")

		return
	}

	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("bookingID", evt.BookingID).Msg("failed to apply payment event")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Payment event " + evt.Type + " applied to booking " + evt.BookingID)

	response.WithMessage(w, http.StatusOK, "received")
}
