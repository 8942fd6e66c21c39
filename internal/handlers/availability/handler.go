package availability

import (
	"net/http"

	"aspen/infras/otel"
	"aspen/internal/domains/booking/model/dto"
	"aspen/internal/domains/booking/service"
	"aspen/shared"
	"aspen/shared/constant"
	"aspen/shared/validator"
	"aspen/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	queryHotelID        = "hotel_id"
	queryCheckInDate    = "check_in_date"
	queryCheckOutDate   = "check_out_date"
	queryRequestedRooms = "requested_rooms"
	defaultRequested    = 1
)

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
	router.Route("/availability", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetAvailability)
		routerGroup.Get("/room-types/{id}", handler.GetRoomTypeAvailability)
	})
}

func stayFromQuery(r *http.Request) dto.StayRequest {
	return dto.StayRequest{
		CheckInDate:  r.URL.Query().Get(queryCheckInDate),
		CheckOutDate: r.URL.Query().Get(queryCheckOutDate),
	}
}

// GetAvailability reports every room type of a hotel for a stay.
// @Summary Hotel availability
// @Tags Availability
// @Produce json
// @Param hotel_id query string true "Hotel"
// @Param check_in_date query string true "YYYY-MM-DD"
// @Param check_out_date query string true "YYYY-MM-DD"
// @Param requested_rooms query int false "Rooms wanted, default 1"
// @Success 200 {object} response.Data[availability.Summary]
// @Failure 400 {object} response.Error
// @Router /v1/availability [get]
func (handler *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".availability.GetAvailability")
	defer scope.End()

	req := dto.CheckAvailabilityRequest{
		HotelID:        r.URL.Query().Get(queryHotelID),
		RequestedRooms: shared.ConvertStringToInt(r.URL.Query().Get(queryRequestedRooms), defaultRequested),
		StayRequest:    stayFromQuery(r),
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate availability query")

		response.WithError(w, err)

		return
	}

	summary, err := handler.service.CheckAvailability(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get availability")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, summary)
}

// GetRoomTypeAvailability reports one room type for a stay.
// @Summary Room type availability
// @Tags Availability
// @Produce json
// @Param id path string true "Room type ID"
// @Param check_in_date query string true "YYYY-MM-DD"
// @Param check_out_date query string true "YYYY-MM-DD"
// @Success 200 {object} response.Data[availability.Availability]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/availability/room-types/{id} [get]
func (handler *Handler) GetRoomTypeAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".availability.GetRoomTypeAvailability")
	defer scope.End()

	res, err := handler.service.RoomTypeAvailability(ctx, chi.URLParam(r, constant.RequestParamID), stayFromQuery(r))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get room type availability")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
