// Package availability derives free inventory from room counts and the booking ledger.
package availability

import (
	"context"
	"fmt"
	"time"

	"aspen/infras/otel"
	"aspen/infras/s3"
	bookingRepo "aspen/internal/domains/booking/repository"
	roomRepo "aspen/internal/domains/room/repository"
	roomTypeModel "aspen/internal/domains/roomtype/model"
	roomTypeDto "aspen/internal/domains/roomtype/model/dto"
	roomTypeRepo "aspen/internal/domains/roomtype/repository"
	"aspen/shared/constant"
	"aspen/shared/failure"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const summaryConcurrency = 4

type Availability struct {
	RoomTypeID      string `json:"room_type_id"`
	Total           int    `json:"total"`
	Booked          int    `json:"booked"`
	Available       int    `json:"available"`
	AvailableStatus bool   `json:"available_status"`
}

type RoomTypeSummary struct {
	Availability
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	MaxOccupancy  int      `json:"max_occupancy"`
	PricePerNight string   `json:"price_per_night"`
	Amenities     []string `json:"amenities"`
	Photos        []string `json:"photos"`
}

// Summary is the hotel-wide view. Available means one room type alone can
// hold RequestedRooms; PooledSufficient only says the hotel has that many free rooms in total.
type Summary struct {
	HotelID          string            `json:"hotel_id"`
	CheckInDate      string            `json:"check_in_date"`
	CheckOutDate     string            `json:"check_out_date"`
	RequestedRooms   int               `json:"requested_rooms"`
	Available        bool              `json:"available"`
	TotalAvailable   int               `json:"total_available"`
	PooledSufficient bool              `json:"pooled_sufficient"`
	RoomTypes        []RoomTypeSummary `json:"room_types"`
}

type Engine interface {
	Compute(ctx context.Context, roomTypeID string, checkIn, checkOut time.Time) (Availability, error)
	ComputeTx(ctx context.Context, sqltx *sqlx.Tx, roomTypeID string, checkIn, checkOut time.Time) (Availability, error)
	HotelSummary(ctx context.Context, hotelID string, checkIn, checkOut time.Time, requestedRooms int) (Summary, error)
}

type engineImpl struct {
	bookingRepo  bookingRepo.Booking
	roomRepo     roomRepo.Room
	roomTypeRepo roomTypeRepo.RoomType
	s3           s3.S3
	otel         otel.Otel
}

func New(bookingRepo bookingRepo.Booking, roomRepo roomRepo.Room, roomTypeRepo roomTypeRepo.RoomType, s3 s3.S3, otel otel.Otel) Engine {
	return &engineImpl{
		bookingRepo:  bookingRepo,
		roomRepo:     roomRepo,
		roomTypeRepo: roomTypeRepo,
		s3:           s3,
		otel:         otel,
	}
}

// ValidateRange rejects empty and reversed stays.
func ValidateRange(checkIn, checkOut time.Time) error {
	if !checkOut.After(checkIn) {
		return failure.InvalidDateRange("check-out date must be after check-in date") // nolint:wrapcheck
	}

	return nil
}

func (e *engineImpl) Compute(ctx context.Context, roomTypeID string, checkIn, checkOut time.Time) (res Availability, err error) {
	ctx, scope := e.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.Compute")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = ValidateRange(checkIn, checkOut); err != nil {
		return res, err
	}

	total, err := e.roomRepo.CountByRoomType(ctx, roomTypeID)
	if err != nil {
		return res, failure.StorageUnavailable(fmt.Errorf("failed to count rooms: %w", err)) // nolint:wrapcheck
	}

	booked, err := e.bookingRepo.SumOverlappingRooms(ctx, roomTypeID, checkIn, checkOut)
	if err != nil {
		return res, failure.StorageUnavailable(fmt.Errorf("failed to count booked rooms: %w", err)) // nolint:wrapcheck
	}

	return newAvailability(roomTypeID, total, booked), nil
}

// ComputeTx reads inside the caller's transaction, which holds the room type lock.
func (e *engineImpl) ComputeTx(ctx context.Context, sqltx *sqlx.Tx, roomTypeID string, checkIn, checkOut time.Time) (res Availability, err error) {
	ctx, scope := e.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.ComputeTx")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = ValidateRange(checkIn, checkOut); err != nil {
		return res, err
	}

	total, err := e.roomRepo.CountByRoomTypeTx(ctx, sqltx, roomTypeID)
	if err != nil {
		return res, failure.StorageUnavailable(fmt.Errorf("failed to count rooms: %w", err)) // nolint:wrapcheck
	}

	booked, err := e.bookingRepo.SumOverlappingRoomsTx(ctx, sqltx, roomTypeID, checkIn, checkOut)
	if err != nil {
		return res, failure.StorageUnavailable(fmt.Errorf("failed to count booked rooms: %w", err)) // nolint:wrapcheck
	}

	return newAvailability(roomTypeID, total, booked), nil
}

func (e *engineImpl) HotelSummary(ctx context.Context, hotelID string, checkIn, checkOut time.Time, requestedRooms int) (res Summary, err error) {
	ctx, scope := e.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.HotelSummary")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = ValidateRange(checkIn, checkOut); err != nil {
		return res, err
	}

	roomTypes, err := e.roomTypeRepo.GetByHotel(ctx, hotelID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get room types of hotel")

		return res, failure.StorageUnavailable(fmt.Errorf("failed to get room types: %w", err)) // nolint:wrapcheck
	}

	res = Summary{
		HotelID:        hotelID,
		CheckInDate:    checkIn.Format(constant.DateOnlyFormat),
		CheckOutDate:   checkOut.Format(constant.DateOnlyFormat),
		RequestedRooms: requestedRooms,
		RoomTypes:      make([]RoomTypeSummary, len(roomTypes)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)

	for i, roomType := range roomTypes {
		g.Go(func() error {
			summary, err := e.summarise(gctx, roomType, checkIn, checkOut)
			if err != nil {
				return err
			}

			res.RoomTypes[i] = summary

			return nil
		})
	}

	if err = g.Wait(); err != nil {
		log.Error().Err(err).Str("hotel", hotelID).Msg("failed to summarise availability")

		return res, err //nolint:wrapcheck
	}

	for _, summary := range res.RoomTypes {
		res.TotalAvailable += max(summary.Available, 0)

		if summary.Available >= requestedRooms {
			res.Available = true
		}
	}

	res.PooledSufficient = res.TotalAvailable >= requestedRooms

	return res, nil
}

func (e *engineImpl) summarise(ctx context.Context, roomType roomTypeModel.RoomType, checkIn, checkOut time.Time) (RoomTypeSummary, error) {
	avail, err := e.Compute(ctx, roomType.ID, checkIn, checkOut)
	if err != nil {
		return RoomTypeSummary{}, err
	}

	photos, err := roomTypeDto.PresignPhotos(ctx, e.s3, roomType.Photos)
	if err != nil {
		return RoomTypeSummary{}, fmt.Errorf("failed to resolve photos of %s: %w", roomType.Name, err)
	}

	return RoomTypeSummary{
		Availability:  avail,
		Name:          roomType.Name,
		Description:   roomType.Description,
		MaxOccupancy:  roomType.MaxOccupancy,
		PricePerNight: roomType.PricePerNight.StringFixed(2),
		Amenities:     []string(roomType.Amenities),
		Photos:        photos,
	}, nil
}

func newAvailability(roomTypeID string, total, booked int) Availability {
	available := total - booked

	return Availability{
		RoomTypeID:      roomTypeID,
		Total:           total,
		Booked:          booked,
		Available:       available,
		AvailableStatus: available > 0,
	}
}
