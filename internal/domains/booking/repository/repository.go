package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"aspen/infras/otel"
	"aspen/infras/postgres"
	"aspen/internal/domains/booking/model"
	"aspen/shared"
	"aspen/shared/constant"
	gDto "aspen/shared/dto"
	"aspen/shared/logger"
	gRepo "aspen/shared/repository"
	"aspen/shared/timezone"

	"github.com/jmoiron/sqlx"
)

const overlapQuery = `SELECT COALESCE(SUM(number_of_rooms), 0) FROM bookings
	WHERE room_type_id = $1 AND check_in_date < $3 AND $2 < check_out_date AND status <> 'canceled'`

type Booking interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	GetByBookingID(ctx context.Context, bookingID string) (model.Booking, error)
	GetByBookingIDForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, bookingID string) (model.Booking, error)
	BookingIDExistsTx(ctx context.Context, sqltx *sqlx.Tx, bookingID string) (bool, error)
	SumOverlappingRooms(ctx context.Context, roomTypeID string, checkIn, checkOut time.Time) (int, error)
	SumOverlappingRoomsTx(ctx context.Context, sqltx *sqlx.Tx, roomTypeID string, checkIn, checkOut time.Time) (int, error)
	MarkPaid(ctx context.Context, bookingID, reference string) (bool, error)
	MarkPaymentFailed(ctx context.Context, bookingID, reference string) (bool, error)
	UpdateStatusTx(ctx context.Context, sqltx *sqlx.Tx, id, status, user string) error
	AssignRoomsTx(ctx context.Context, sqltx *sqlx.Tx, id string, roomIDs []string) error
	GetAssignedRooms(ctx context.Context, ids []string) ([]model.BookingRoom, error)
	GetAssignedRoomsTx(ctx context.Context, sqltx *sqlx.Tx, id string) ([]model.BookingRoom, error)
	GetCalendar(ctx context.Context, hotelID string, from, to time.Time, status string) ([]model.Booking, error)
	DeleteExpiredPending(ctx context.Context, cutoff time.Time) ([]string, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	rooms gRepo.Repository[model.BookingRoom]
	db    *postgres.Connection
	otel  otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		rooms:      gRepo.NewRepository[model.BookingRoom](model.RoomEntityName, model.RoomTableName, model.FieldRoomID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) GetByBookingID(ctx context.Context, bookingID string) (model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetByBookingID")
	defer scope.End()

	return r.Get(ctx, byBookingID(bookingID)) //nolint:wrapcheck
}

// GetByBookingIDForUpdateTx locks the booking row until the transaction ends.
func (r *repositoryImpl) GetByBookingIDForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, bookingID string) (model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetByBookingIDForUpdateTx")
	defer scope.End()

	return r.GetForUpdateTx(ctx, sqltx, byBookingID(bookingID)) //nolint:wrapcheck
}

func (r *repositoryImpl) BookingIDExistsTx(ctx context.Context, sqltx *sqlx.Tx, bookingID string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.BookingIDExistsTx")
	defer scope.End()

	query := `SELECT EXISTS(SELECT 1 FROM bookings WHERE booking_id = $1)`
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	exist := false

	if err := sqltx.GetContext(ctx, &exist, query, bookingID); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to check booking id: %w", err)
	}

	return exist, nil
}

// SumOverlappingRooms is the number of rooms of the type held by non-canceled
// bookings sharing at least one night with [checkIn, checkOut).
func (r *repositoryImpl) SumOverlappingRooms(ctx context.Context, roomTypeID string, checkIn, checkOut time.Time) (int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.SumOverlappingRooms")
	defer scope.End()

	return r.sumOverlapping(ctx, r.db.Read, roomTypeID, checkIn, checkOut)
}

func (r *repositoryImpl) SumOverlappingRoomsTx(ctx context.Context, sqltx *sqlx.Tx, roomTypeID string, checkIn, checkOut time.Time) (int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.SumOverlappingRoomsTx")
	defer scope.End()

	return r.sumOverlapping(ctx, sqltx, roomTypeID, checkIn, checkOut)
}

func (r *repositoryImpl) sumOverlapping(ctx context.Context, q sqlx.QueryerContext, roomTypeID string, checkIn, checkOut time.Time) (int, error) {
	_, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.sumOverlapping")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, overlapQuery)

	var booked int

	if err := sqlx.GetContext(ctx, q, &booked, overlapQuery, roomTypeID, timezone.DateOf(checkIn), timezone.DateOf(checkOut)); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to sum overlapping bookings: %w", err)
	}

	return booked, nil
}

// MarkPaid flips a booking to paid and reports whether this call changed it.
func (r *repositoryImpl) MarkPaid(ctx context.Context, bookingID, reference string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.MarkPaid")
	defer scope.End()

	query := `UPDATE bookings SET payment_status = 'paid',
		payment_reference = COALESCE(NULLIF($2, ''), payment_reference), modified_at = $3
		WHERE booking_id = $1 AND payment_status <> 'paid'`

	return r.conditionalUpdate(ctx, query, bookingID, reference, timezone.Now())
}

// MarkPaymentFailed only moves a pending payment to failed.
func (r *repositoryImpl) MarkPaymentFailed(ctx context.Context, bookingID, reference string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.MarkPaymentFailed")
	defer scope.End()

	query := `UPDATE bookings SET payment_status = 'failed',
		payment_reference = COALESCE(NULLIF($2, ''), payment_reference), modified_at = $3
		WHERE booking_id = $1 AND payment_status = 'pending'`

	return r.conditionalUpdate(ctx, query, bookingID, reference, timezone.Now())
}

func (r *repositoryImpl) conditionalUpdate(ctx context.Context, query string, args ...any) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.conditionalUpdate")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := r.db.Write.ExecContext(ctx, query, args...)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to update payment status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *repositoryImpl) UpdateStatusTx(ctx context.Context, sqltx *sqlx.Tx, id, status, user string) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.UpdateStatusTx")
	defer scope.End()

	fields := map[string]any{
		model.FieldStatus:        status,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{ArgName: "booking_pk", Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	return r.UpdateTx(ctx, sqltx, fields, filter) //nolint:wrapcheck
}

func (r *repositoryImpl) AssignRoomsTx(ctx context.Context, sqltx *sqlx.Tx, id string, roomIDs []string) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.AssignRoomsTx")
	defer scope.End()

	if len(roomIDs) == 0 {
		return nil
	}

	assignments := make([]model.BookingRoom, len(roomIDs))
	for i, roomID := range roomIDs {
		assignments[i] = model.BookingRoom{BookingID: id, RoomID: roomID}
	}

	return r.rooms.InsertBulkTx(ctx, sqltx, assignments) //nolint:wrapcheck
}

// GetAssignedRooms returns the pinned rooms of every given booking (by primary key).
func (r *repositoryImpl) GetAssignedRooms(ctx context.Context, ids []string) ([]model.BookingRoom, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetAssignedRooms")
	defer scope.End()

	if len(ids) == 0 {
		return []model.BookingRoom{}, nil
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{ArgName: "booking_ids", Field: model.FieldBookingID, Value: ids, Operator: gDto.FilterOperatorIn, Table: model.RoomTableName},
		},
	}

	params := gDto.QueryParams{SortBy: "rooms.room_number", SortDir: gDto.SortDirAsc}

	return r.rooms.GetAll(ctx, params, filter) //nolint:wrapcheck
}

func (r *repositoryImpl) GetAssignedRoomsTx(ctx context.Context, sqltx *sqlx.Tx, id string) ([]model.BookingRoom, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetAssignedRoomsTx")
	defer scope.End()

	return r.rooms.GetAllForUpdateTx(ctx, sqltx, shared.FilterByID(id, model.FieldBookingID, model.RoomTableName)) //nolint:wrapcheck
}

// GetCalendar returns bookings of the hotel sharing at least one night with [from, to).
func (r *repositoryImpl) GetCalendar(ctx context.Context, hotelID string, from, to time.Time, status string) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetCalendar")
	defer scope.End()

	// dates are whole days, so "check_in < to" is "check_in <= to - 1 day"
	filters := []any{
		gDto.Filter{Field: model.FieldHotelID, Value: hotelID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldCheckInDate, Value: timezone.DateOf(to).AddDate(0, 0, -1), Operator: gDto.FilterOperatorLessEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldCheckOutDate, Value: timezone.DateOf(from).AddDate(0, 0, 1), Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName},
	}

	if status != constant.Empty {
		filters = append(filters, gDto.Filter{Field: model.FieldStatus, Value: status, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	params := gDto.QueryParams{SortBy: model.TableName + "." + model.FieldCheckInDate, SortDir: gDto.SortDirAsc}

	return r.GetAll(ctx, params, gDto.FilterGroup{Filters: filters, Operator: gDto.FilterGroupOperatorAnd}) //nolint:wrapcheck
}

// DeleteExpiredPending removes unpaid bookings created before cutoff in one statement;
// the payment check happens at delete time so a booking paid a moment ago survives.
func (r *repositoryImpl) DeleteExpiredPending(ctx context.Context, cutoff time.Time) ([]string, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.DeleteExpiredPending")
	defer scope.End()

	query := `DELETE FROM bookings WHERE status = 'booked' AND payment_status IN ('pending', 'failed') AND created_at < $1
		RETURNING booking_id`
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	ids := []string{}

	if err := r.db.Write.SelectContext(ctx, &ids, query, cutoff); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to delete expired bookings: %w", err)
	}

	return ids, nil
}

func byBookingID(bookingID string) gDto.FilterGroup {
	return shared.FilterByID(bookingID, model.FieldBookingID, model.TableName)
}
