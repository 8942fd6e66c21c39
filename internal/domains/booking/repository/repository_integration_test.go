//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"aspen/config"
	"aspen/helper"
	"aspen/infras/otel/mocks"
	"aspen/infras/postgres"
	"aspen/internal/domains/booking/model"
	"aspen/internal/domains/booking/repository"
	roomRepository "aspen/internal/domains/room/repository"
	roomTypeRepository "aspen/internal/domains/roomtype/repository"
	gModel "aspen/shared/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSoldOut = errors.New("sold out")

type inventory struct {
	conn       *postgres.Connection
	hotelID    string
	guestID    string
	roomTypeID string
}

func startPostgres(t *testing.T) *config.Config {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	pool.MaxWait = 2 * time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=aspen",
			"POSTGRES_PASSWORD=aspen",
			"POSTGRES_DB=aspen",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })

	cfg := &config.Config{}
	cfg.DB.Postgres.MaxRetry = 1
	cfg.DB.Postgres.MaxOpenConns = 8
	cfg.DB.Postgres.MaxIdleConns = 8
	cfg.DB.Postgres.MigrationTable = "schema_migrations"
	cfg.DB.Postgres.Write = config.PostgresServer{
		Host:     "127.0.0.1",
		Port:     resource.GetPort("5432/tcp"),
		Username: "aspen",
		Password: "aspen",
		Name:     "aspen",
		SSLMode:  "disable",
		Timezone: "UTC",
	}
	cfg.DB.Postgres.Read = cfg.DB.Postgres.Write

	require.NoError(t, pool.Retry(func() error {
		return postgres.New(cfg).Ping(context.Background())
	}))
	require.NoError(t, helper.Runner(cfg, helper.ActionUp))

	return cfg
}

// seed adds a room type with the given number of rooms and one guest to the migrated hotel.
func seed(t *testing.T, rooms int) inventory {
	t.Helper()

	inv := inventory{conn: postgres.New(startPostgres(t))}
	db := inv.conn.Write

	require.NoError(t, db.Get(&inv.hotelID, `SELECT id FROM hotels LIMIT 1`))
	require.NoError(t, db.Get(&inv.roomTypeID, `INSERT INTO room_types (hotel_id, name, max_occupancy, price_per_night)
		VALUES ($1, 'Deluxe', 2, 100) RETURNING id`, inv.hotelID))
	require.NoError(t, db.Get(&inv.guestID, `INSERT INTO guests (name, email, phone)
		VALUES ('Ada Lovelace', 'ada@example.com', '+44 20 7946 0000') RETURNING id`))

	for i := range rooms {
		_, err := db.Exec(`INSERT INTO rooms (hotel_id, room_type_id, room_number) VALUES ($1, $2, $3)`,
			inv.hotelID, inv.roomTypeID, strconv.Itoa(101+i))
		require.NoError(t, err)
	}

	return inv
}

func (inv inventory) booking(bookingID, checkIn, checkOut string, rooms int) model.Booking {
	return model.Booking{
		ID:                 uuid.NewString(),
		BookingID:          bookingID,
		HotelID:            inv.hotelID,
		GuestID:            inv.guestID,
		RoomTypeID:         inv.roomTypeID,
		CheckInDate:        date(checkIn),
		CheckOutDate:       date(checkOut),
		NumberOfRooms:      rooms,
		NumberOfAdults:     rooms,
		TotalPrice:         decimal.NewFromInt(100),
		TaxAmount:          decimal.RequireFromString("12.345"),
		TotalPriceAfterTax: decimal.RequireFromString("112.345"),
		Currency:           "usd",
		Status:             model.StatusBooked,
		PaymentStatus:      model.PaymentPending,
		BookingSource:      model.SourceOnline,
		BookingChannel:     model.ChannelWebsite,
		Metadata:           gModel.NewMetadata("system"),
	}
}

func (inv inventory) insert(t *testing.T, repo repository.Booking, booking model.Booking) {
	t.Helper()

	err := postgres.NewTransactor(inv.conn).WithinTx(context.Background(), func(ctx context.Context, tx *sqlx.Tx) error {
		return repo.InsertTx(ctx, tx, booking)
	})
	require.NoError(t, err)
}

func TestBookingRepository_ConcurrentHoldsNeverOversell(t *testing.T) {
	inv := seed(t, 2)

	otel := mocks.NewOtel()
	repo := repository.New(inv.conn, otel)
	roomTypes := roomTypeRepository.New(inv.conn, otel)
	rooms := roomRepository.New(inv.conn, otel)
	transactor := postgres.NewTransactor(inv.conn)

	hold := func(bookingID string) error {
		return transactor.WithinTx(context.Background(), func(ctx context.Context, tx *sqlx.Tx) error {
			if _, err := roomTypes.GetForUpdateTx(ctx, tx, inv.roomTypeID); err != nil {
				return err
			}

			total, err := rooms.CountByRoomTypeTx(ctx, tx, inv.roomTypeID)
			if err != nil {
				return err
			}

			booked, err := repo.SumOverlappingRoomsTx(ctx, tx, inv.roomTypeID, date("2024-03-01"), date("2024-03-03"))
			if err != nil {
				return err
			}

			if total-booked < 2 {
				return errSoldOut
			}

			// widen the window between the read and the insert
			time.Sleep(50 * time.Millisecond)

			return repo.InsertTx(ctx, tx, inv.booking(bookingID, "2024-03-01", "2024-03-03", 2))
		})
	}

	const contenders = 4

	var wg sync.WaitGroup

	errs := make([]error, contenders)
	for i := range contenders {
		wg.Add(1)

		go func() {
			defer wg.Done()

			errs[i] = hold(fmt.Sprintf("AGH01032400%02d", i+1))
		}()
	}

	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++

			continue
		}

		require.ErrorIs(t, err, errSoldOut)
	}

	assert.Equal(t, 1, won)

	booked, err := repo.SumOverlappingRooms(context.Background(), inv.roomTypeID, date("2024-03-01"), date("2024-03-03"))
	require.NoError(t, err)
	assert.Equal(t, 2, booked)
}

func TestBookingRepository_OverlapIsHalfOpen(t *testing.T) {
	inv := seed(t, 3)
	repo := repository.New(inv.conn, mocks.NewOtel())

	inv.insert(t, repo, inv.booking("AGH0103240001", "2024-03-01", "2024-03-03", 2))

	canceled := inv.booking("AGH0103240002", "2024-03-01", "2024-03-03", 1)
	canceled.Status = model.StatusCanceled
	inv.insert(t, repo, canceled)

	tests := []struct {
		name     string
		checkIn  string
		checkOut string
		want     int
	}{
		{name: "same stay", checkIn: "2024-03-01", checkOut: "2024-03-03", want: 2},
		{name: "shares the last night", checkIn: "2024-03-02", checkOut: "2024-03-04", want: 2},
		{name: "arrives on the check-out day", checkIn: "2024-03-03", checkOut: "2024-03-05"},
		{name: "leaves on the check-in day", checkIn: "2024-02-28", checkOut: "2024-03-01"},
		{name: "surrounds the stay", checkIn: "2024-02-28", checkOut: "2024-03-10", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.SumOverlappingRooms(context.Background(), inv.roomTypeID, date(tt.checkIn), date(tt.checkOut))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	stored, err := repo.GetByBookingID(context.Background(), "AGH0103240001")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("112.345").Equal(stored.TotalPriceAfterTax), stored.TotalPriceAfterTax.String())
	assert.Equal(t, "Ada Lovelace", stored.GuestName)
	assert.Equal(t, "Deluxe", stored.RoomTypeName)
}

func TestBookingRepository_SweepSparesPaidBookings(t *testing.T) {
	inv := seed(t, 3)
	repo := repository.New(inv.conn, mocks.NewOtel())

	stale := gModel.NewMetadata("system")
	stale.CreatedAt = stale.CreatedAt.Add(-time.Hour)

	for _, id := range []string{"AGH0103240001", "AGH0103240002", "AGH0103240003"} {
		b := inv.booking(id, "2024-03-01", "2024-03-02", 1)
		b.Metadata = stale
		inv.insert(t, repo, b)
	}

	inv.insert(t, repo, inv.booking("AGH0103240004", "2024-03-01", "2024-03-02", 1))

	changed, err := repo.MarkPaid(context.Background(), "AGH0103240001", "pi_1")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkPaid(context.Background(), "AGH0103240001", "pi_1")
	require.NoError(t, err)
	assert.False(t, changed, "second delivery changes nothing")

	changed, err = repo.MarkPaymentFailed(context.Background(), "AGH0103240001", "pi_1")
	require.NoError(t, err)
	assert.False(t, changed, "a paid booking never moves to failed")

	changed, err = repo.MarkPaymentFailed(context.Background(), "AGH0103240002", "pi_2")
	require.NoError(t, err)
	assert.True(t, changed)

	deleted, err := repo.DeleteExpiredPending(context.Background(), time.Now().Add(-30*time.Minute))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AGH0103240002", "AGH0103240003"}, deleted)

	paid, err := repo.GetByBookingID(context.Background(), "AGH0103240001")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, "pi_1", paid.PaymentReference)

	fresh, err := repo.GetByBookingID(context.Background(), "AGH0103240004")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, fresh.PaymentStatus)
}
