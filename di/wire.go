//go:build wireinject
// +build wireinject

package di

import (
	"resa/config"
	"resa/infras/jwt"
	"resa/infras/kafka"
	"resa/infras/otel"
	"resa/infras/postgres"
	"resa/infras/redis"
	"resa/internal/events"
	"resa/internal/messaging"
	"resa/shared/cache"
	"resa/transport/http"
	"resa/transport/http/middleware"
	"resa/transport/http/router"

	reservationRepository "resa/internal/domains/reservation/repository"
	reservationService "resa/internal/domains/reservation/service"
	reservationHandler "resa/internal/handlers/reservation"

	authService "resa/internal/domains/auth/service"
	staffRepository "resa/internal/domains/staff/repository"
	authHandler "resa/internal/handlers/auth"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var eventing = wire.NewSet(
	events.NewPublisher,
	messaging.NewQueue,
)

var reservationDomain = wire.NewSet(
	reservationRepository.New,
	reservationService.New,
)

var authDomain = wire.NewSet(
	staffRepository.New,
	authService.New,
)

var domains = wire.NewSet(
	reservationDomain,
	authDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	reservationHandler.New,
	authHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		eventing,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeMessagingWorker() *messaging.Worker {
	wire.Build(
		configurations,
		wire.NewSet(kafka.New),
		messaging.NewWorker,
	)

	return &messaging.Worker{}
}
