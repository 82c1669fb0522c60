package router

import (
	"miyabi/internal/handlers/accesslog"
	"miyabi/internal/handlers/auth"
	"miyabi/internal/handlers/consumption"
	"miyabi/internal/handlers/guest"
	"miyabi/internal/handlers/payment"
	"miyabi/internal/handlers/receipt"
	"miyabi/internal/handlers/reservation"
	"miyabi/internal/handlers/room"
	"miyabi/internal/handlers/roomtype"
	"miyabi/internal/handlers/servicecatalog"
	"miyabi/internal/handlers/user"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth           auth.Handler
	User           user.Handler
	Guest          guest.Handler
	RoomType       roomtype.Handler
	Room           room.Handler
	ServiceCatalog servicecatalog.Handler
	Reservation    reservation.Handler
	Consumption    consumption.Handler
	Payment        payment.Handler
	Receipt        receipt.Handler
	AccessLog      accesslog.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Guest.Router(routerGroup)
		r.DomainHandlers.RoomType.Router(routerGroup)
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.ServiceCatalog.Router(routerGroup)
		r.DomainHandlers.Reservation.Router(routerGroup)
		r.DomainHandlers.Consumption.Router(routerGroup)
		r.DomainHandlers.Payment.Router(routerGroup)
		r.DomainHandlers.Receipt.Router(routerGroup)
		r.DomainHandlers.AccessLog.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
