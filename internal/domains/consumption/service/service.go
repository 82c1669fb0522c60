package service

import (
	"context"
	"fmt"
	"miyabi/config"
	"miyabi/infras/kafka"
	"miyabi/infras/otel"
	"miyabi/internal/domains/consumption/model"
	"miyabi/internal/domains/consumption/model/dto"
	"miyabi/internal/domains/consumption/repository"
	reservationModel "miyabi/internal/domains/reservation/model"
	reservationRepo "miyabi/internal/domains/reservation/repository"
	catalogModel "miyabi/internal/domains/servicecatalog/model"
	catalogRepo "miyabi/internal/domains/servicecatalog/repository"
	"miyabi/shared"
	"miyabi/shared/cache"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/event"
	"miyabi/shared/failure"
	gRepo "miyabi/shared/repository"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	cacheGetConsumption    = "consumption:get"
	cacheGetAllConsumption = "consumption:gets"
	cacheCountConsumption  = "consumption:count"

	// totals of the parent reservation change with every posting
	cacheGetReservation = "reservation:get"
	cacheReservations   = "reservation:gets"
)

type Consumption interface {
	Create(ctx context.Context, caller gDto.Caller, req dto.CreateConsumptionRequest) (dto.ConsumptionResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetConsumptionsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	GetByReservation(ctx context.Context, caller gDto.Caller, reservationID string) (dto.GetConsumptionsResponse, error)
	Get(ctx context.Context, caller gDto.Caller, id string) (dto.ConsumptionResponse, error)
	Delete(ctx context.Context, caller gDto.Caller, id string) error
}

type serviceImpl struct {
	repo            repository.Consumption
	reservationRepo reservationRepo.Reservation
	catalogRepo     catalogRepo.ServiceCatalog
	transactor      gRepo.Transactor
	cfg             *config.Config
	cache           cache.RedisCache
	otel            otel.Otel
	kafka           kafka.Client
}

func New(
	repo repository.Consumption,
	reservationRepo reservationRepo.Reservation,
	catalogRepo catalogRepo.ServiceCatalog,
	transactor gRepo.Transactor,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	kafka kafka.Client,
) Consumption {
	return &serviceImpl{
		repo:            repo,
		reservationRepo: reservationRepo,
		catalogRepo:     catalogRepo,
		transactor:      transactor,
		cfg:             cfg,
		cache:           cache,
		otel:            otel,
		kafka:           kafka,
	}
}

func (s *serviceImpl) invalidate(ctx context.Context, id, reservationID string) {
	go func() {
		c := context.WithoutCancel(ctx)

		keys := []string{shared.BuildCacheKey(cacheGetReservation, reservationID)}
		if id != constant.Empty {
			keys = append(keys, shared.BuildCacheKey(cacheGetConsumption, id))
		}

		for _, key := range keys {
			if err := s.cache.Delete(c, key); err != nil {
				log.Error().Err(err).Str("key", key).Msg("failed to delete consumption cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllConsumption)
		shared.InvalidateCaches(c, s.cache, cacheCountConsumption)
		shared.InvalidateCaches(c, s.cache, cacheReservations)
	}()
}

func (s *serviceImpl) publish(ctx context.Context, eventType string, consumption model.Consumption, caller gDto.Caller) {
	evt := event.New(eventType, consumption.ReservationID, caller.Name())
	evt.Amount = consumption.Subtotal.StringFixed(constant.MoneyDecimals)

	event.Publish(ctx, s.kafka, s.cfg.Kafka.Topics.Consumption, evt)
}

// fold moves the reservation totals by delta, refusing reservations that are already closed.
func (s *serviceImpl) fold(ctx context.Context, tx *sqlx.Tx, reservationID string, delta decimal.Decimal, caller gDto.Caller) error {
	applied, err := s.reservationRepo.ApplyConsumptionTx(ctx, tx, reservationID, delta, caller.Name())
	if err != nil {
		log.Error().Err(err).Msg("failed to update reservation totals")

		return fmt.Errorf("failed to update reservation totals: %w", err)
	}

	if !applied {
		return failure.BadRequestFromString("reservation is closed, consumptions can no longer change")
	}

	return nil
}

func (s *serviceImpl) Create(ctx context.Context, caller gDto.Caller, req dto.CreateConsumptionRequest) (res dto.ConsumptionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".consumption.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reservation, err := s.reservationRepo.Get(ctx, shared.FilterByID(req.ReservationID, reservationModel.FieldID, reservationModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return res, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return res, failure.NotFound("reservation not found")
	}

	if reservation.IsClosed() {
		return res, failure.BadRequestFromString(fmt.Sprintf("a %s reservation does not accept consumptions", reservation.State))
	}

	service, err := s.catalogRepo.Get(ctx, shared.FilterByID(req.ServiceID, catalogModel.FieldID, catalogModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get service")

		return res, fmt.Errorf("failed to get service: %w", err)
	}

	if service.ID == constant.Empty {
		return res, failure.NotFound("service not found")
	}

	if !service.Available {
		return res, failure.BadRequestFromString(fmt.Sprintf("service %s is not available", service.ServiceName))
	}

	consumption := req.ToModel(caller.Name(), service.Price)

	err = s.transactor.WithinTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.InsertTx(ctx, tx, consumption); err != nil {
			log.Error().Err(err).Msg("failed to insert consumption")

			return fmt.Errorf("failed to insert consumption: %w", err)
		}

		return s.fold(ctx, tx, consumption.ReservationID, consumption.Subtotal, caller)
	})
	if err != nil {
		return res, err
	}

	s.invalidate(ctx, constant.Empty, consumption.ReservationID)
	s.publish(ctx, event.TypeConsumptionPosted, consumption, caller)

	consumption.ServiceName = service.ServiceName
	consumption.ServiceCategory = service.Category
	consumption.ReservationCode = reservation.Code

	res.FromModel(consumption)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetConsumptionsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".consumption.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllConsumption, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for consumptions")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get consumptions")

		return res, fmt.Errorf("failed to get consumptions: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save consumptions to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".consumption.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountConsumption, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count consumptions")

		return res, fmt.Errorf("failed to count consumptions: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save consumption count to cache")
		}
	}()

	return res, nil
}

// GetByReservation lists a stay's consumptions in posting order.
func (s *serviceImpl) GetByReservation(ctx context.Context, caller gDto.Caller, reservationID string) (res dto.GetConsumptionsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".consumption.GetByReservation")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reservation, err := s.reservationRepo.Get(ctx, shared.FilterByID(reservationID, reservationModel.FieldID, reservationModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return res, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty || (caller.IsGuest() && reservation.GuestID != caller.ID) {
		return res, failure.NotFound("reservation not found")
	}

	params := gDto.QueryParams{SortBy: model.FieldCreatedAt, SortDir: gDto.SortDirAsc}

	models, err := s.repo.GetAll(ctx, params, shared.FilterByID(reservationID, model.FieldReservationID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get consumptions of reservation")

		return res, fmt.Errorf("failed to get consumptions of reservation: %w", err)
	}

	res.FromModels(models, len(models), 0)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, caller gDto.Caller, id string) (res dto.ConsumptionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".consumption.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetConsumption, id)

	var consumption model.Consumption

	if err = s.cache.Get(ctx, cacheKey, &consumption); err != nil {
		consumption, err = s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to get consumption")

			return res, fmt.Errorf("failed to get consumption: %w", err)
		}

		if consumption.ID == constant.Empty {
			return res, failure.NotFound("consumption not found")
		}

		go func() {
			c := context.WithoutCancel(ctx)

			if err := s.cache.Save(c, cacheKey, consumption, s.cfg.Cache.TTL); err != nil {
				log.Error().Err(err).Msg("failed to save consumption to cache")
			}
		}()
	}

	if caller.IsGuest() && consumption.GuestID != caller.ID {
		return res, failure.NotFound("consumption not found")
	}

	res.FromModel(consumption)

	return res, nil
}

// Delete removes a consumption and takes its subtotal back out of the reservation totals.
func (s *serviceImpl) Delete(ctx context.Context, caller gDto.Caller, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".consumption.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	consumption, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get consumption")

		return fmt.Errorf("failed to get consumption: %w", err)
	}

	if consumption.ID == constant.Empty {
		return failure.NotFound("consumption not found")
	}

	err = s.transactor.WithinTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.DeleteTx(ctx, tx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
			log.Error().Err(err).Msg("failed to delete consumption")

			return fmt.Errorf("failed to delete consumption: %w", err)
		}

		return s.fold(ctx, tx, consumption.ReservationID, consumption.Subtotal.Neg(), caller)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, id, consumption.ReservationID)
	s.publish(ctx, event.TypeConsumptionRemoved, consumption, caller)

	return nil
}
