package booking

import (
	"context"
	"net/http"

	"aspen/infras/otel"
	"aspen/internal/domains/booking/model"
	"aspen/internal/domains/booking/model/dto"
	"aspen/internal/domains/booking/service"
	"aspen/shared"
	"aspen/shared/constant"
	gDto "aspen/shared/dto"
	"aspen/shared/validator"
	"aspen/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const paramBookingID = "bookingId"

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Get("/calendar", handler.GetCalendar)
		routerGroup.Post("/check-availability", handler.CheckAvailability)
		routerGroup.Post("/calculate-total-price", handler.CalculateTotalPrice)
		routerGroup.Get("/{bookingId}", handler.GetBooking)
		routerGroup.Put("/{bookingId}/check-in", handler.CheckIn)
		routerGroup.Put("/{bookingId}/check-out", handler.CheckOut)
		routerGroup.Put("/{bookingId}/cancel", handler.Cancel)
		routerGroup.Put("/{bookingId}/no-show", handler.MarkNoShow)
		routerGroup.Post("/{bookingId}/checkout-session", handler.CreateCheckoutSession)
	})
}

// CreateBooking reserves rooms and opens a payment intent.
// @Summary Create a booking
// @Description Reserve rooms of one room type for a stay. The booking is held unpaid until the payment succeeds.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Data[dto.CreateBookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 502 {object} response.Error
// @Router /v1/bookings [post]
func (handler *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".booking.CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking " + res.BookingID + " created")

	response.WithJSON(w, http.StatusCreated, res)
}

// GetBookings lists bookings.
// @Summary List bookings
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param hotel_id query string false "Hotel"
// @Param room_type_id query string false "Room type"
// @Param guest_id query string false "Guest"
// @Param status query string false "booked, checked-in, checked-out, canceled, no-show"
// @Param payment_status query string false "pending, paid, failed"
// @Param check_in_from query string false "Check-in on or after (YYYY-MM-DD)"
// @Param check_out_to query string false "Check-out on or before (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.GetBookingsResponse]
// @Failure 400 {object} response.Error
// @Router /v1/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".booking.GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.RestrictSort(model.TableName, model.FieldCheckInDate, model.FieldCheckOutDate, model.FieldCreatedAt, model.FieldBookingID, model.FieldStatus)

	query := r.URL.Query()
	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	filterGroup.AddIfPresent(model.TableName, model.FieldHotelID, gDto.FilterOperatorEq, query.Get(model.FieldHotelID))
	filterGroup.AddIfPresent(model.TableName, model.FieldRoomTypeID, gDto.FilterOperatorEq, query.Get(model.FieldRoomTypeID))
	filterGroup.AddIfPresent(model.TableName, model.FieldGuestID, gDto.FilterOperatorEq, query.Get(model.FieldGuestID))
	filterGroup.AddIfPresent(model.TableName, model.FieldStatus, gDto.FilterOperatorEq, query.Get(model.FieldStatus))
	filterGroup.AddIfPresent(model.TableName, model.FieldPaymentStatus, gDto.FilterOperatorEq, query.Get(model.FieldPaymentStatus))
	filterGroup.AddIfPresent(model.TableName, model.FieldCheckInDate, gDto.FilterOperatorGreaterEq, query.Get("check_in_from"))
	filterGroup.AddIfPresent(model.TableName, model.FieldCheckOutDate, gDto.FilterOperatorLessEq, query.Get("check_out_to"))

	bookings, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetCalendar returns the bookings sharing a night with one month.
// @Summary Booking calendar
// @Tags Booking
// @Produce json
// @Param hotel_id query string true "Hotel"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Data[dto.CalendarResponse]
// @Failure 400 {object} response.Error
// @Router /v1/bookings/calendar [get]
// @Security BearerAuth
func (handler *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".booking.GetCalendar")
	defer scope.End()

	query := r.URL.Query()

	year := shared.ConvertStringToInt(query.Get("year"), 0)
	month := shared.ConvertStringToInt(query.Get("month"), 0)

	req := dto.CalendarRequest{
		HotelID: query.Get(model.FieldHotelID),
		Year:    year,
		Month:   month,
		Status:  query.Get(model.FieldStatus),
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate calendar request")

		response.WithError(w, err)

		return
	}

	calendar, err := handler.service.Calendar(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking calendar")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, calendar)
}

// CheckAvailability reports hotel-wide availability for a stay.
// @Summary Check availability
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CheckAvailabilityRequest true "Stay and room count"
// @Success 200 {object} response.Data[availability.Summary]
// @Failure 400 {object} response.Error
// @Router /v1/bookings/check-availability [post]
func (handler *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".booking.CheckAvailability")
	defer scope.End()

	req := dto.CheckAvailabilityRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	summary, err := handler.service.CheckAvailability(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check availability")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, summary)
}

// CalculateTotalPrice quotes a stay without reserving anything.
// @Summary Quote a stay
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.QuotePriceRequest true "Room type, stay and room count"
// @Success 200 {object} response.Data[dto.QuotePriceResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/bookings/calculate-total-price [post]
func (handler *Handler) CalculateTotalPrice(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".booking.CalculateTotalPrice")
	defer scope.End()

	req := dto.QuotePriceRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	quote, err := handler.service.QuotePrice(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to quote price")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, quote)
}

// GetBooking returns one booking by its human-readable identifier.
// @Summary Get a booking
// @Tags Booking
// @Produce json
// @Param bookingId path string true "Booking identifier"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{bookingId} [get]
// @Security BearerAuth
func (handler *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".booking.GetBooking")
	defer scope.End()

	booking, err := handler.service.Get(ctx, chi.URLParam(r, paramBookingID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// CheckIn pins rooms to a booking.
// @Summary Check in
// @Description Pins the given rooms to the booking. Either every room is pinned or none is.
// @Tags Booking
// @Accept json
// @Produce json
// @Param bookingId path string true "Booking identifier"
// @Param request body dto.CheckInRequest true "Rooms to pin"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{bookingId}/check-in [put]
// @Security BearerAuth
func (handler *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".booking.CheckIn")
	defer scope.End()

	req := dto.CheckInRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	booking, err := handler.service.CheckIn(ctx, chi.URLParam(r, paramBookingID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check in")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Booking " + booking.BookingID + " checked in by user " + user)

	response.WithJSON(w, http.StatusOK, booking)
}

// CheckOut releases the rooms of a checked-in booking.
// @Summary Check out
// @Tags Booking
// @Produce json
// @Param bookingId path string true "Booking identifier"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{bookingId}/check-out [put]
// @Security BearerAuth
func (handler *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	handler.transition(w, r, ".booking.CheckOut", "check out", handler.service.CheckOut)
}

// Cancel cancels a booking that has not started.
// @Summary Cancel a booking
// @Tags Booking
// @Produce json
// @Param bookingId path string true "Booking identifier"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{bookingId}/cancel [put]
// @Security BearerAuth
func (handler *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	handler.transition(w, r, ".booking.Cancel", "cancel", handler.service.Cancel)
}

// MarkNoShow records that the guest never arrived.
// @Summary Mark no-show
// @Tags Booking
// @Produce json
// @Param bookingId path string true "Booking identifier"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{bookingId}/no-show [put]
// @Security BearerAuth
func (handler *Handler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	handler.transition(w, r, ".booking.MarkNoShow", "mark no-show", handler.service.MarkNoShow)
}

func (handler *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	span, action string,
	apply func(ctx context.Context, bookingID string) (dto.BookingResponse, error),
) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+span)
	defer scope.End()

	booking, err := apply(ctx, chi.URLParam(r, paramBookingID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to " + action)

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Booking " + booking.BookingID + " " + booking.Status + " by user " + user)

	response.WithJSON(w, http.StatusOK, booking)
}

// CreateCheckoutSession opens a hosted payment page for an unpaid booking.
// @Summary Create checkout session
// @Tags Booking
// @Produce json
// @Param bookingId path string true "Booking identifier"
// @Success 201 {object} response.Data[dto.CheckoutSessionResponse]
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 502 {object} response.Error
// @Router /v1/bookings/{bookingId}/checkout-session [post]
func (handler *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".booking.CreateCheckoutSession")
	defer scope.End()

	session, err := handler.service.CreateCheckoutSession(ctx, chi.URLParam(r, paramBookingID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create checkout session")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, session)
}
