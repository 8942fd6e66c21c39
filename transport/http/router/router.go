package router

import (
	"aspen/internal/handlers/auth"
	"aspen/internal/handlers/availability"
	"aspen/internal/handlers/booking"
	"aspen/internal/handlers/guest"
	"aspen/internal/handlers/hotel"
	"aspen/internal/handlers/payment"
	"aspen/internal/handlers/room"
	"aspen/internal/handlers/roomtype"
	"aspen/internal/handlers/user"

	"github.com/go-chi/chi/v5"
)

const apiPrefix = "/v1"

type DomainHandlers struct {
	Auth         auth.Handler
	User         user.Handler
	Hotel        hotel.Handler
	RoomType     roomtype.Handler
	Room         room.Handler
	Guest        guest.Handler
	Booking      booking.Handler
	Availability availability.Handler
	Payment      payment.Handler
}

// mountable is a domain handler that registers its own sub-routes.
type mountable interface {
	Router(router chi.Router)
}

type Router struct {
	DomainHandlers DomainHandlers
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route(apiPrefix, func(routerGroup chi.Router) {
		for _, handler := range r.mountables() {
			handler.Router(routerGroup)
		}
	})
}

func (r *Router) mountables() []mountable {
	h := &r.DomainHandlers

	return []mountable{
		&h.Auth,
		&h.User,
		&h.Hotel,
		&h.RoomType,
		&h.Room,
		&h.Guest,
		&h.Booking,
		&h.Availability,
		&h.Payment,
	}
}
