package failure

import (
	"fmt"
	"net/http"
)

const (
	KindMissingField            = "MissingField"
	KindInvalidDateRange        = "InvalidDateRange"
	KindRoomTypeNotFound        = "RoomTypeNotFound"
	KindInsufficientInventory   = "InsufficientInventory"
	KindPaymentInitiationFailed = "PaymentInitiationFailed"
	KindBookingNotFound         = "BookingNotFound"
	KindRoomUnavailable         = "RoomUnavailable"
	KindAlreadyCheckedOut       = "AlreadyCheckedOut"
	KindNoRoomsAssigned         = "NoRoomsAssigned"
	KindGuestLookupConflict     = "GuestLookupConflict"
	KindStorageUnavailable      = "StorageUnavailable"
	KindInvalidStatusTransition = "InvalidStatusTransition"
	KindPaymentPending          = "PaymentPending"
)

func MissingField(field string) error {
	return newFailure(http.StatusBadRequest, KindMissingField, field+" is required", nil)
}

func InvalidDateRange(msg string) error {
	return newFailure(http.StatusBadRequest, KindInvalidDateRange, msg, nil)
}

func RoomTypeNotFound(id string) error {
	return newFailure(http.StatusNotFound, KindRoomTypeNotFound, fmt.Sprintf("room type %s not found", id), nil)
}

func InsufficientInventory(requested, available int) error {
	return newFailure(http.StatusConflict, KindInsufficientInventory, fmt.Sprintf("requested %d rooms but only %d available for the selected dates", requested, max(available, 0)), nil)
}

func PaymentInitiationFailed(err error) error {
	return newFailure(http.StatusBadGateway, KindPaymentInitiationFailed, "failed to initiate payment", err)
}

func BookingNotFound(bookingID string) error {
	return newFailure(http.StatusNotFound, KindBookingNotFound, fmt.Sprintf("booking %s not found", bookingID), nil)
}

// RoomUnavailable names the offending room in its message.
func RoomUnavailable(room, reason string) error {
	return newFailure(http.StatusConflict, KindRoomUnavailable, fmt.Sprintf("room %s is unavailable: %s", room, reason), nil)
}

func AlreadyCheckedOut(bookingID string) error {
	return newFailure(http.StatusConflict, KindAlreadyCheckedOut, fmt.Sprintf("booking %s is already checked out", bookingID), nil)
}

func NoRoomsAssigned(bookingID string) error {
	return newFailure(http.StatusConflict, KindNoRoomsAssigned, fmt.Sprintf("booking %s has no rooms assigned", bookingID), nil)
}

func GuestLookupConflict(email string) error {
	return newFailure(http.StatusConflict, KindGuestLookupConflict, fmt.Sprintf("guest %s could not be resolved, please retry", email), nil)
}

func InvalidStatusTransition(bookingID, from, to string) error {
	return newFailure(http.StatusConflict, KindInvalidStatusTransition, fmt.Sprintf("booking %s cannot move from %s to %s", bookingID, from, to), nil)
}

func PaymentPending(bookingID string) error {
	return newFailure(http.StatusConflict, KindPaymentPending, fmt.Sprintf("booking %s has not been paid", bookingID), nil)
}

// StorageUnavailable keeps err reachable through errors.Unwrap.
func StorageUnavailable(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusServiceUnavailable, KindStorageUnavailable, "storage is temporarily unavailable, please retry", err)
}
