package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"aspen/infras/otel/mocks"
	"aspen/infras/postgres"
	"aspen/internal/domains/booking/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const roomTypeID = "6d1e9b4a-2c7f-4e3a-8b15-9f0c2d7e4a18"

func newRepo(t *testing.T) (repository.Booking, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	conn := sqlx.NewDb(db, "postgres")

	return repository.New(&postgres.Connection{Read: conn, Write: conn}, mocks.NewOtel()), mock
}

func date(s string) time.Time {
	d, _ := time.Parse(time.DateOnly, s)

	return d
}

func TestBookingRepository_SumOverlappingRooms(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  string
		checkOut string
		rows     *sqlmock.Rows
		err      error
		want     int
	}{
		{
			name:     "half-open stay bounds",
			checkIn:  "2024-03-01",
			checkOut: "2024-03-03",
			rows:     sqlmock.NewRows([]string{"coalesce"}).AddRow(2),
			want:     2,
		},
		{
			name:     "nothing booked",
			checkIn:  "2024-03-03",
			checkOut: "2024-03-05",
			rows:     sqlmock.NewRows([]string{"coalesce"}).AddRow(0),
		},
		{
			name:     "storage down",
			checkIn:  "2024-03-01",
			checkOut: "2024-03-02",
			err:      errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepo(t)

			query := mock.ExpectQuery(`SELECT COALESCE\(SUM\(number_of_rooms\), 0\) FROM bookings\s+WHERE room_type_id = \$1 AND check_in_date < \$3 AND \$2 < check_out_date AND status <> 'canceled'`).
				WithArgs(roomTypeID, date(tt.checkIn), date(tt.checkOut))
			if tt.err != nil {
				query.WillReturnError(tt.err)
			} else {
				query.WillReturnRows(tt.rows)
			}

			got, err := repo.SumOverlappingRooms(context.Background(), roomTypeID, date(tt.checkIn), date(tt.checkOut))
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBookingRepository_PaymentTransitions(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		affected int64
		call     func(repository.Booking) (bool, error)
		want     bool
	}{
		{
			name:     "mark paid",
			query:    `UPDATE bookings SET payment_status = 'paid',.*WHERE booking_id = \$1 AND payment_status <> 'paid'`,
			affected: 1,
			call: func(repo repository.Booking) (bool, error) {
				return repo.MarkPaid(context.Background(), "AGH0103240001", "pi_1")
			},
			want: true,
		},
		{
			name:  "already paid",
			query: `UPDATE bookings SET payment_status = 'paid'`,
			call: func(repo repository.Booking) (bool, error) {
				return repo.MarkPaid(context.Background(), "AGH0103240001", "pi_1")
			},
		},
		{
			name:     "failure only from pending",
			query:    `UPDATE bookings SET payment_status = 'failed',.*WHERE booking_id = \$1 AND payment_status = 'pending'`,
			affected: 1,
			call: func(repo repository.Booking) (bool, error) {
				return repo.MarkPaymentFailed(context.Background(), "AGH0103240001", "pi_1")
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepo(t)

			mock.ExpectExec(tt.query).
				WithArgs("AGH0103240001", "pi_1", sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			got, err := tt.call(repo)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBookingRepository_DeleteExpiredPending(t *testing.T) {
	repo, mock := newRepo(t)

	cutoff := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`DELETE FROM bookings WHERE status = 'booked' AND payment_status IN \('pending', 'failed'\) AND created_at < \$1\s+RETURNING booking_id`).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id"}).AddRow("AGH2902240001").AddRow("AGH2902240002"))

	ids, err := repo.DeleteExpiredPending(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, []string{"AGH2902240001", "AGH2902240002"}, ids)

	assert.NoError(t, mock.ExpectationsWereMet())
}
