package router

import (
	"resa/internal/handlers/auth"
	"resa/internal/handlers/reservation"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth        auth.Handler
	Reservation reservation.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.Reservation.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
