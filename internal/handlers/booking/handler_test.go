package booking_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aspen/infras/otel/mocks"
	"aspen/internal/domains/booking/model/dto"
	serviceMocks "aspen/internal/domains/booking/service/mocks"
	"aspen/internal/handlers/booking"
	gDto "aspen/shared/dto"
	"aspen/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T) (*chi.Mux, *serviceMocks.MockBooking) {
	t.Helper()

	svc := serviceMocks.NewMockBooking(gomock.NewController(t))
	handler := booking.New(svc, mocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return router, svc
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestHandler_CreateBooking(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(svc *serviceMocks.MockBooking)
		wantStatus int
		wantBody   string
	}{
		{
			name: "created",
			body: `{"hotel_id":"4b3f2c7e-8a6d-4f7e-9d1a-2b5c6d7e8f90","room_type_id":"0f5e4d3c-2b1a-4c9d-8e7f-6a5b4c3d2e1f",` +
				`"check_in_date":"2024-03-01","check_out_date":"2024-03-03","number_of_rooms":1,"number_of_adults":2,` +
				`"guest":{"name":"Ada Lovelace","email":"ada@example.com","phone":"+442071234567"}}`,
			setup: func(svc *serviceMocks.MockBooking) {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dto.CreateBookingResponse{
					BookingID:     "AGH0103241234",
					Status:        "booked",
					PaymentStatus: "pending",
					ClientSecret:  "pi_1_secret",
				}, nil)
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"booking_id":"AGH0103241234"`,
		},
		{
			name:       "malformed body",
			body:       `{"hotel_id":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newRouter(t)

			if tt.setup != nil {
				tt.setup(svc)
			}

			rec := serve(router, http.MethodPost, "/bookings/", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandler_GetBookingsBuildsFilters(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error) {
			require.Len(t, filter.Filters, 2)

			status, ok := filter.Filters[0].(gDto.Filter)
			require.True(t, ok)
			assert.Equal(t, "status", status.Field)
			assert.Equal(t, "booked", status.Value)

			from, ok := filter.Filters[1].(gDto.Filter)
			require.True(t, ok)
			assert.Equal(t, gDto.FilterOperatorGreaterEq, from.Operator)
			assert.Equal(t, "2024-03-01", from.Value)

			return dto.GetBookingsResponse{Bookings: []dto.BookingResponse{}}, nil
		})

	rec := serve(router, http.MethodGet, "/bookings/?status=booked&check_in_from=2024-03-01", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		setup      func(svc *serviceMocks.MockBooking)
		wantStatus int
		wantKind   string
	}{
		{
			name: "check-in",
			path: "/bookings/AGH0103241234/check-in",
			body: `{"room_ids":["7c1a0e52-3b8d-4f6a-9e2c-1d4b5a6c7e8f"]}`,
			setup: func(svc *serviceMocks.MockBooking) {
				svc.EXPECT().CheckIn(gomock.Any(), "AGH0103241234", dto.CheckInRequest{
					RoomIDs: []string{"7c1a0e52-3b8d-4f6a-9e2c-1d4b5a6c7e8f"},
				}).Return(dto.BookingResponse{BookingID: "AGH0103241234", Status: "checked-in"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "check-in without rooms",
			path:       "/bookings/AGH0103241234/check-in",
			body:       `{"room_ids":[]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "check-out of unknown booking",
			path: "/bookings/AGH0000000000/check-out",
			setup: func(svc *serviceMocks.MockBooking) {
				svc.EXPECT().CheckOut(gomock.Any(), "AGH0000000000").Return(dto.BookingResponse{}, failure.BookingNotFound("AGH0000000000"))
			},
			wantStatus: http.StatusNotFound,
			wantKind:   failure.KindBookingNotFound,
		},
		{
			name: "cancel after check-in",
			path: "/bookings/AGH0103241234/cancel",
			setup: func(svc *serviceMocks.MockBooking) {
				svc.EXPECT().Cancel(gomock.Any(), "AGH0103241234").
					Return(dto.BookingResponse{}, failure.InvalidStatusTransition("AGH0103241234", "checked-in", "canceled"))
			},
			wantStatus: http.StatusConflict,
			wantKind:   failure.KindInvalidStatusTransition,
		},
		{
			name: "no-show",
			path: "/bookings/AGH0103241234/no-show",
			setup: func(svc *serviceMocks.MockBooking) {
				svc.EXPECT().MarkNoShow(gomock.Any(), "AGH0103241234").Return(dto.BookingResponse{BookingID: "AGH0103241234", Status: "no-show"}, nil)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newRouter(t)

			if tt.setup != nil {
				tt.setup(svc)
			}

			rec := serve(router, http.MethodPut, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantKind != "" {
				assert.Contains(t, rec.Body.String(), `"kind":"`+tt.wantKind+`"`)
			}
		})
	}
}

func TestHandler_GetCalendarValidatesMonth(t *testing.T) {
	router, _ := newRouter(t)

	rec := serve(router, http.MethodGet, "/bookings/calendar?hotel_id=4b3f2c7e-8a6d-4f7e-9d1a-2b5c6d7e8f90&year=2024&month=13", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
