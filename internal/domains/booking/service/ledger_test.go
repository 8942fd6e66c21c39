package service_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"aspen/internal/domains/booking/model"
	gDto "aspen/shared/dto"

	"github.com/jmoiron/sqlx"
)

// ledger is an in-memory booking repository. Its overlap test mirrors the
// check_in_date < $3 AND $2 < check_out_date condition of the SQL repository.
type ledger struct {
	mu       sync.Mutex
	bookings map[string]model.Booking
	pins     []model.BookingRoom
	rooms    map[string]string
}

// overlaps reports whether half-open stays [aIn, aOut) and [bIn, bOut) share a night.
func overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

func newLedger(roomNumbers map[string]string) *ledger {
	return &ledger{bookings: map[string]model.Booking{}, rooms: roomNumbers}
}

func (l *ledger) find(bookingID string) (model.Booking, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bookings[bookingID]

	return b, ok
}

func (l *ledger) mutate(bookingID string, fn func(*model.Booking)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.bookings[bookingID]
	fn(&b)
	l.bookings[bookingID] = b
}

func (l *ledger) InsertTx(_ context.Context, _ *sqlx.Tx, booking model.Booking) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.bookings[booking.BookingID] = booking

	return nil
}

func (l *ledger) Get(_ context.Context, _ gDto.FilterGroup, _ ...string) (model.Booking, error) {
	return model.Booking{}, nil
}

func (l *ledger) GetAll(_ context.Context, _ gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := make([]model.Booking, 0, len(l.bookings))
	for _, b := range l.bookings {
		res = append(res, b)
	}

	slices.SortFunc(res, func(a, b model.Booking) int { return a.CreatedAt.Compare(b.CreatedAt) })

	return res, nil
}

func (l *ledger) Count(_ context.Context, _ gDto.FilterGroup) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.bookings), nil
}

func (l *ledger) Update(_ context.Context, req map[string]any, filter gDto.FilterGroup) error {
	bookingID, _ := filter.Filters[0].(gDto.Filter).Value.(string)

	l.mutate(bookingID, func(b *model.Booking) {
		if ref, ok := req[model.FieldPaymentRef].(string); ok {
			b.PaymentReference = ref
		}
	})

	return nil
}

func (l *ledger) GetByBookingID(_ context.Context, bookingID string) (model.Booking, error) {
	b, _ := l.find(bookingID)

	return b, nil
}

func (l *ledger) GetByBookingIDForUpdateTx(ctx context.Context, _ *sqlx.Tx, bookingID string) (model.Booking, error) {
	return l.GetByBookingID(ctx, bookingID)
}

func (l *ledger) BookingIDExistsTx(_ context.Context, _ *sqlx.Tx, bookingID string) (bool, error) {
	_, ok := l.find(bookingID)

	return ok, nil
}

func (l *ledger) SumOverlappingRooms(_ context.Context, roomTypeID string, checkIn, checkOut time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sum := 0

	for _, b := range l.bookings {
		if b.RoomTypeID == roomTypeID && b.Status != model.StatusCanceled && overlaps(b.CheckInDate, b.CheckOutDate, checkIn, checkOut) {
			sum += b.NumberOfRooms
		}
	}

	return sum, nil
}

func (l *ledger) SumOverlappingRoomsTx(ctx context.Context, _ *sqlx.Tx, roomTypeID string, checkIn, checkOut time.Time) (int, error) {
	return l.SumOverlappingRooms(ctx, roomTypeID, checkIn, checkOut)
}

func (l *ledger) setPayment(bookingID, reference, status string, allowed ...string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bookings[bookingID]
	if !ok || !slices.Contains(allowed, b.PaymentStatus) {
		return false
	}

	b.PaymentStatus = status
	if reference != "" {
		b.PaymentReference = reference
	}

	l.bookings[bookingID] = b

	return true
}

func (l *ledger) MarkPaid(_ context.Context, bookingID, reference string) (bool, error) {
	return l.setPayment(bookingID, reference, model.PaymentPaid, model.PaymentPending, model.PaymentFailed), nil
}

func (l *ledger) MarkPaymentFailed(_ context.Context, bookingID, reference string) (bool, error) {
	return l.setPayment(bookingID, reference, model.PaymentFailed, model.PaymentPending), nil
}

func (l *ledger) UpdateStatusTx(_ context.Context, _ *sqlx.Tx, id, status, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.bookings {
		if b.ID == id {
			b.Status = status
			l.bookings[key] = b
		}
	}

	return nil
}

func (l *ledger) AssignRoomsTx(_ context.Context, _ *sqlx.Tx, id string, roomIDs []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, roomID := range roomIDs {
		l.pins = append(l.pins, model.BookingRoom{BookingID: id, RoomID: roomID, RoomNumber: l.rooms[roomID]})
	}

	return nil
}

func (l *ledger) GetAssignedRooms(_ context.Context, ids []string) ([]model.BookingRoom, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var res []model.BookingRoom

	for _, pin := range l.pins {
		if slices.Contains(ids, pin.BookingID) {
			res = append(res, pin)
		}
	}

	return res, nil
}

func (l *ledger) GetAssignedRoomsTx(ctx context.Context, _ *sqlx.Tx, id string) ([]model.BookingRoom, error) {
	return l.GetAssignedRooms(ctx, []string{id})
}

func (l *ledger) GetCalendar(_ context.Context, hotelID string, from, to time.Time, status string) ([]model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var res []model.Booking

	for _, b := range l.bookings {
		if b.HotelID != hotelID || (status != "" && b.Status != status) {
			continue
		}

		if overlaps(b.CheckInDate, b.CheckOutDate, from, to) {
			res = append(res, b)
		}
	}

	slices.SortFunc(res, func(a, b model.Booking) int { return a.CheckInDate.Compare(b.CheckInDate) })

	return res, nil
}

func (l *ledger) DeleteExpiredPending(_ context.Context, cutoff time.Time) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var deleted []string

	for key, b := range l.bookings {
		unpaid := b.PaymentStatus == model.PaymentPending || b.PaymentStatus == model.PaymentFailed
		if b.Status == model.StatusBooked && unpaid && b.CreatedAt.Before(cutoff) {
			deleted = append(deleted, key)
			delete(l.bookings, key)
		}
	}

	slices.Sort(deleted)

	return deleted, nil
}
