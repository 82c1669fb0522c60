//go:build wireinject
// +build wireinject

package di

import (
	"miyabi/config"
	"miyabi/infras/jwt"
	"miyabi/infras/kafka"
	"miyabi/infras/otel"
	"miyabi/infras/postgres"
	"miyabi/infras/redis"
	"miyabi/infras/s3"
	"miyabi/permissions"
	"miyabi/shared/cache"
	gRepo "miyabi/shared/repository"
	"miyabi/transport/http"
	"miyabi/transport/http/middleware"
	"miyabi/transport/http/router"
	"miyabi/transport/worker"

	"github.com/google/wire"

	accessLogRepository "miyabi/internal/domains/accesslog/repository"
	accessLogService "miyabi/internal/domains/accesslog/service"
	authService "miyabi/internal/domains/auth/service"
	consumptionRepository "miyabi/internal/domains/consumption/repository"
	consumptionService "miyabi/internal/domains/consumption/service"
	guestRepository "miyabi/internal/domains/guest/repository"
	guestService "miyabi/internal/domains/guest/service"
	paymentRepository "miyabi/internal/domains/payment/repository"
	paymentService "miyabi/internal/domains/payment/service"
	receiptService "miyabi/internal/domains/receipt/service"
	reservationRepository "miyabi/internal/domains/reservation/repository"
	reservationService "miyabi/internal/domains/reservation/service"
	roomRepository "miyabi/internal/domains/room/repository"
	roomService "miyabi/internal/domains/room/service"
	roomTypeRepository "miyabi/internal/domains/roomtype/repository"
	roomTypeService "miyabi/internal/domains/roomtype/service"
	catalogRepository "miyabi/internal/domains/servicecatalog/repository"
	catalogService "miyabi/internal/domains/servicecatalog/service"
	userRepository "miyabi/internal/domains/user/repository"
	userService "miyabi/internal/domains/user/service"

	accessLogHandler "miyabi/internal/handlers/accesslog"
	authHandler "miyabi/internal/handlers/auth"
	consumptionHandler "miyabi/internal/handlers/consumption"
	guestHandler "miyabi/internal/handlers/guest"
	paymentHandler "miyabi/internal/handlers/payment"
	receiptHandler "miyabi/internal/handlers/receipt"
	reservationHandler "miyabi/internal/handlers/reservation"
	roomHandler "miyabi/internal/handlers/room"
	roomTypeHandler "miyabi/internal/handlers/roomtype"
	catalogHandler "miyabi/internal/handlers/servicecatalog"
	userHandler "miyabi/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	gRepo.NewTransactor,
)

var repositories = wire.NewSet(
	accessLogRepository.New,
	consumptionRepository.New,
	guestRepository.New,
	paymentRepository.New,
	reservationRepository.New,
	roomRepository.New,
	roomTypeRepository.New,
	catalogRepository.New,
	userRepository.New,
)

var services = wire.NewSet(
	accessLogService.New,
	authService.New,
	consumptionService.New,
	guestService.New,
	paymentService.New,
	receiptService.New,
	reservationService.New,
	roomService.New,
	roomTypeService.New,
	catalogService.New,
	userService.New,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	accessLogHandler.New,
	authHandler.New,
	consumptionHandler.New,
	guestHandler.New,
	paymentHandler.New,
	receiptHandler.New,
	reservationHandler.New,
	roomHandler.New,
	roomTypeHandler.New,
	catalogHandler.New,
	userHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		repositories,
		services,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeWorker() *worker.Worker {
	wire.Build(
		config.Get,
		postgres.New,
		otel.New,
		s3.New,
		kafka.New,
		reservationRepository.New,
		consumptionRepository.New,
		receiptService.New,
		worker.New,
	)

	return &worker.Worker{}
}
