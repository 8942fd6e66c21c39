//go:build wireinject
// +build wireinject

package di

import (
	"aspen/config"
	"aspen/infras/brevo"
	"aspen/infras/jwt"
	"aspen/infras/kafka"
	"aspen/infras/otel"
	"aspen/infras/postgres"
	"aspen/infras/redis"
	"aspen/infras/s3"
	"aspen/infras/stripe"
	authService "aspen/internal/domains/auth/service"
	"aspen/internal/domains/booking/availability"
	"aspen/internal/domains/booking/event"
	"aspen/internal/domains/booking/pricing"
	bookingRepository "aspen/internal/domains/booking/repository"
	bookingService "aspen/internal/domains/booking/service"
	"aspen/internal/domains/booking/sweeper"
	guestRepository "aspen/internal/domains/guest/repository"
	guestService "aspen/internal/domains/guest/service"
	hotelRepository "aspen/internal/domains/hotel/repository"
	hotelService "aspen/internal/domains/hotel/service"
	notificationService "aspen/internal/domains/notification/service"
	roomRepository "aspen/internal/domains/room/repository"
	roomService "aspen/internal/domains/room/service"
	roomTypeRepository "aspen/internal/domains/roomtype/repository"
	roomTypeService "aspen/internal/domains/roomtype/service"
	userRepository "aspen/internal/domains/user/repository"
	userService "aspen/internal/domains/user/service"
	authHandler "aspen/internal/handlers/auth"
	availabilityHandler "aspen/internal/handlers/availability"
	bookingHandler "aspen/internal/handlers/booking"
	guestHandler "aspen/internal/handlers/guest"
	hotelHandler "aspen/internal/handlers/hotel"
	paymentHandler "aspen/internal/handlers/payment"
	roomHandler "aspen/internal/handlers/room"
	roomTypeHandler "aspen/internal/handlers/roomtype"
	userHandler "aspen/internal/handlers/user"
	"aspen/permissions"
	"aspen/shared/cache"
	"aspen/transport/http"
	"aspen/transport/http/middleware"
	"aspen/transport/http/router"
	"aspen/transport/worker"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	s3.New,
	stripe.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	jwt.New,
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var catalogDomain = wire.NewSet(
	hotelRepository.New,
	hotelService.New,
	roomTypeRepository.New,
	roomTypeService.New,
	roomRepository.New,
	roomService.New,
	guestRepository.New,
	guestService.New,
)

var authDomain = wire.NewSet(
	userRepository.New,
	userService.New,
	authService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	availability.New,
	pricing.NewFromConfig,
	event.NewPublisher,
	bookingService.New,
)

var expiry = wire.NewSet(
	sweeper.New,
	wire.Bind(new(sweeper.Expirer), new(bookingService.Booking)),
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	hotelHandler.New,
	roomTypeHandler.New,
	roomHandler.New,
	guestHandler.New,
	bookingHandler.New,
	availabilityHandler.New,
	paymentHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		catalogDomain,
		authDomain,
		bookingDomain,
		expiry,
		wire.Bind(new(http.Background), new(*sweeper.Sweeper)),
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeWorker() (*worker.Worker, error) {
	wire.Build(
		config.Get,
		infrastructures,
		sharedHelpers,
		roomTypeRepository.New,
		roomRepository.New,
		guestRepository.New,
		bookingDomain,
		brevo.New,
		notificationService.New,
		expiry,
		worker.New,
	)

	return &worker.Worker{}, nil
}
