package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"aspen/shared/failure"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{"missing field", failure.MissingField("guest.email"), http.StatusBadRequest, failure.KindMissingField},
		{"invalid date range", failure.InvalidDateRange("check_out must be after check_in"), http.StatusBadRequest, failure.KindInvalidDateRange},
		{"room type not found", failure.RoomTypeNotFound("rt-1"), http.StatusNotFound, failure.KindRoomTypeNotFound},
		{"insufficient inventory", failure.InsufficientInventory(3, 0), http.StatusConflict, failure.KindInsufficientInventory},
		{"payment initiation", failure.PaymentInitiationFailed(errors.New("card declined")), http.StatusBadGateway, failure.KindPaymentInitiationFailed},
		{"booking not found", failure.BookingNotFound("AGH0103240001"), http.StatusNotFound, failure.KindBookingNotFound},
		{"room unavailable", failure.RoomUnavailable("101", "status is booked"), http.StatusConflict, failure.KindRoomUnavailable},
		{"already checked out", failure.AlreadyCheckedOut("AGH0103240001"), http.StatusConflict, failure.KindAlreadyCheckedOut},
		{"no rooms assigned", failure.NoRoomsAssigned("AGH0103240001"), http.StatusConflict, failure.KindNoRoomsAssigned},
		{"guest lookup conflict", failure.GuestLookupConflict("a@b.c"), http.StatusConflict, failure.KindGuestLookupConflict},
		{"storage unavailable", failure.StorageUnavailable(errors.New("connection refused")), http.StatusServiceUnavailable, failure.KindStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.Equal(t, tt.kind, failure.GetKind(tt.err))
			assert.True(t, failure.IsKind(tt.err, tt.kind))
		})
	}
}

func TestKind_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("failed to check in: %w", failure.RoomUnavailable("102", "status is maintenance"))

	assert.Equal(t, failure.KindRoomUnavailable, failure.GetKind(err))
	assert.Contains(t, err.Error(), "room 102")
}

func TestStorageUnavailable_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	err := failure.StorageUnavailable(cause)

	assert.ErrorIs(t, err, cause)
	assert.Nil(t, failure.StorageUnavailable(nil))
}

func TestGetKind_PlainError(t *testing.T) {
	assert.Empty(t, failure.GetKind(errors.New("boom")))
	assert.False(t, failure.IsKind(nil, failure.KindBookingNotFound))
}
