package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"slices"
	"time"

	"aspen/config"
	"aspen/infras/otel"
	"aspen/infras/postgres"
	"aspen/infras/stripe"
	"aspen/internal/domains/booking/availability"
	"aspen/internal/domains/booking/event"
	"aspen/internal/domains/booking/model"
	"aspen/internal/domains/booking/model/dto"
	"aspen/internal/domains/booking/pricing"
	"aspen/internal/domains/booking/repository"
	guestRepo "aspen/internal/domains/guest/repository"
	roomRepo "aspen/internal/domains/room/repository"
	roomTypeModel "aspen/internal/domains/roomtype/model"
	roomTypeRepo "aspen/internal/domains/roomtype/repository"
	"aspen/shared"
	"aspen/shared/cache"
	"aspen/shared/constant"
	gDto "aspen/shared/dto"
	"aspen/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
	cacheRoom          = "room:"

	maxBookingIDAttempts = 5
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.CreateBookingResponse, error)
	QuotePrice(ctx context.Context, req dto.QuotePriceRequest) (dto.QuotePriceResponse, error)
	CheckAvailability(ctx context.Context, req dto.CheckAvailabilityRequest) (availability.Summary, error)
	RoomTypeAvailability(ctx context.Context, roomTypeID string, req dto.StayRequest) (availability.Availability, error)
	ConfirmPayment(ctx context.Context, event stripe.Event) error
	FailPayment(ctx context.Context, event stripe.Event) error
	CreateCheckoutSession(ctx context.Context, bookingID string) (dto.CheckoutSessionResponse, error)
	CheckIn(ctx context.Context, bookingID string, req dto.CheckInRequest) (dto.BookingResponse, error)
	CheckOut(ctx context.Context, bookingID string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, bookingID string) (dto.BookingResponse, error)
	MarkNoShow(ctx context.Context, bookingID string) (dto.BookingResponse, error)
	ExpirePending(ctx context.Context, now time.Time) (int, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, bookingID string) (dto.BookingResponse, error)
	Calendar(ctx context.Context, req dto.CalendarRequest) (dto.CalendarResponse, error)
}

type serviceImpl struct {
	repo         repository.Booking
	roomTypeRepo roomTypeRepo.RoomType
	roomRepo     roomRepo.Room
	guestRepo    guestRepo.Guest
	transactor   postgres.Transactor
	engine       availability.Engine
	calculator   *pricing.Calculator
	gateway      stripe.Gateway
	publisher    event.Publisher
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(
	repo repository.Booking,
	roomTypeRepo roomTypeRepo.RoomType,
	roomRepo roomRepo.Room,
	guestRepo guestRepo.Guest,
	transactor postgres.Transactor,
	engine availability.Engine,
	calculator *pricing.Calculator,
	gateway stripe.Gateway,
	publisher event.Publisher,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:         repo,
		roomTypeRepo: roomTypeRepo,
		roomRepo:     roomRepo,
		guestRepo:    guestRepo,
		transactor:   transactor,
		engine:       engine,
		calculator:   calculator,
		gateway:      gateway,
		publisher:    publisher,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

func (s *serviceImpl) QuotePrice(ctx context.Context, req dto.QuotePriceRequest) (res dto.QuotePriceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.QuotePrice")
	defer scope.End()
	defer scope.TraceIfError(&err)

	checkIn, checkOut, err := dto.ParseStay(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	roomType, err := s.roomTypeRepo.Get(ctx, shared.FilterByID(req.RoomTypeID, roomTypeModel.FieldID, roomTypeModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room type")

		return res, failure.StorageUnavailable(fmt.Errorf("failed to get room type: %w", err)) // nolint:wrapcheck
	}

	if roomType.ID == constant.Empty {
		return res, failure.RoomTypeNotFound(req.RoomTypeID) // nolint:wrapcheck
	}

	breakdown, err := s.calculator.Price(roomType.PricePerNight, checkIn, checkOut, req.NumberOfRooms)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	avail, err := s.engine.Compute(ctx, roomType.ID, checkIn, checkOut)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	res.RoomTypeID = roomType.ID
	res.CheckInDate = req.CheckInDate
	res.CheckOutDate = req.CheckOutDate
	res.Price.FromBreakdown(breakdown, s.cfg.Booking.Currency)
	res.Availability = avail

	return res, nil
}

func (s *serviceImpl) CheckAvailability(ctx context.Context, req dto.CheckAvailabilityRequest) (res availability.Summary, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.CheckAvailability")
	defer scope.End()
	defer scope.TraceIfError(&err)

	checkIn, checkOut, err := dto.ParseStay(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	return s.engine.HotelSummary(ctx, req.HotelID, checkIn, checkOut, req.RequestedRooms) //nolint:wrapcheck
}

func (s *serviceImpl) RoomTypeAvailability(ctx context.Context, roomTypeID string, req dto.StayRequest) (res availability.Availability, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.RoomTypeAvailability")
	defer scope.End()
	defer scope.TraceIfError(&err)

	checkIn, checkOut, err := dto.ParseStay(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	exist, err := s.roomTypeRepo.Exist(ctx, shared.FilterByID(roomTypeID, roomTypeModel.FieldID, roomTypeModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if room type exists")

		return res, failure.StorageUnavailable(fmt.Errorf("failed to check if room type exists: %w", err)) // nolint:wrapcheck
	}

	if !exist {
		return res, failure.RoomTypeNotFound(roomTypeID) // nolint:wrapcheck
	}

	return s.engine.Compute(ctx, roomTypeID, checkIn, checkOut) //nolint:wrapcheck
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, failure.StorageUnavailable(fmt.Errorf("failed to get bookings: %w", err)) // nolint:wrapcheck
	}

	rooms, err := s.roomNumbers(ctx, models)
	if err != nil {
		return res, err
	}

	res.FromModels(models, total, req.Limit)

	for i := range res.Bookings {
		if numbers, ok := rooms[res.Bookings[i].ID]; ok {
			res.Bookings[i].RoomNumbers = numbers
		}
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Count")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, failure.StorageUnavailable(fmt.Errorf("failed to count bookings: %w", err)) // nolint:wrapcheck
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, bookingID string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cacheKey := shared.BuildCacheKey(cacheGetBooking, bookingID)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.get(ctx, bookingID)
	if err != nil {
		return res, err
	}

	rooms, err := s.roomNumbers(ctx, []model.Booking{booking})
	if err != nil {
		return res, err
	}

	res = toResponse(booking, rooms[booking.ID])

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Calendar(ctx context.Context, req dto.CalendarRequest) (res dto.CalendarResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Calendar")
	defer scope.End()
	defer scope.TraceIfError(&err)

	from, to := req.Range()

	models, err := s.repo.GetCalendar(ctx, req.HotelID, from, to, req.Status)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking calendar")

		return res, failure.StorageUnavailable(fmt.Errorf("failed to get booking calendar: %w", err)) // nolint:wrapcheck
	}

	rooms, err := s.roomNumbers(ctx, models)
	if err != nil {
		return res, err
	}

	res.HotelID = req.HotelID
	res.Year = req.Year
	res.Month = req.Month
	res.FromModels(models, rooms)

	return res, nil
}

// get loads a booking by its public id with guest and room type names joined.
func (s *serviceImpl) get(ctx context.Context, bookingID string) (model.Booking, error) {
	booking, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		log.Error().Err(err).Str("bookingID", bookingID).Msg("failed to get booking")

		return booking, failure.StorageUnavailable(fmt.Errorf("failed to get booking: %w", err)) // nolint:wrapcheck
	}

	if booking.ID == constant.Empty {
		return booking, failure.BookingNotFound(bookingID) // nolint:wrapcheck
	}

	return booking, nil
}

// roomNumbers maps booking primary keys to their pinned room numbers. Only
// checked-in and checked-out bookings can carry pins.
func (s *serviceImpl) roomNumbers(ctx context.Context, bookings []model.Booking) (map[string][]string, error) {
	ids := make([]string, 0, len(bookings))

	for _, b := range bookings {
		if b.Status == model.StatusCheckedIn || b.Status == model.StatusCheckedOut {
			ids = append(ids, b.ID)
		}
	}

	res := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return res, nil
	}

	pins, err := s.repo.GetAssignedRooms(ctx, ids)
	if err != nil {
		log.Error().Err(err).Msg("failed to get assigned rooms")

		return nil, failure.StorageUnavailable(fmt.Errorf("failed to get assigned rooms: %w", err)) // nolint:wrapcheck
	}

	for _, pin := range pins {
		res[pin.BookingID] = append(res[pin.BookingID], pin.RoomNumber)
	}

	for id := range res {
		slices.Sort(res[id])
	}

	return res, nil
}

func toResponse(booking model.Booking, rooms []string) dto.BookingResponse {
	var res dto.BookingResponse

	res.FromModel(booking)

	if rooms != nil {
		res.RoomNumbers = rooms
	}

	return res
}

func (s *serviceImpl) invalidate(ctx context.Context, bookingID string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetBooking, bookingID)); err != nil {
		log.Error().Err(err).Msg("failed to delete booking from cache")
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllBooking)
	shared.InvalidateCaches(ctx, s.cache, cacheCountBooking)
}
