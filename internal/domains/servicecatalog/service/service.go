package service

import (
	"context"
	"fmt"
	"miyabi/config"
	"miyabi/infras/otel"
	"miyabi/internal/domains/servicecatalog/model"
	"miyabi/internal/domains/servicecatalog/model/dto"
	"miyabi/internal/domains/servicecatalog/repository"
	"miyabi/shared"
	"miyabi/shared/cache"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetService    = "servicecatalog:get"
	cacheGetAllService = "servicecatalog:gets"
	cacheCountService  = "servicecatalog:count"
)

type ServiceCatalog interface {
	Create(ctx context.Context, caller gDto.Caller, req dto.CreateServiceRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetServicesResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.ServiceResponse, error)
	Update(ctx context.Context, caller gDto.Caller, req dto.UpdateServiceRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.ServiceCatalog
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.ServiceCatalog, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) ServiceCatalog {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if id != constant.Empty {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetService, id)); err != nil {
				log.Error().Err(err).Msg("failed to delete service cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllService)
		shared.InvalidateCaches(c, s.cache, cacheCountService)
	}()
}

func (s *serviceImpl) Create(ctx context.Context, caller gDto.Caller, req dto.CreateServiceRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".servicecatalog.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	service := req.ToModel(caller.Name())

	if err = s.repo.Insert(ctx, service); err != nil {
		log.Error().Err(err).Msg("failed to create service")

		return constant.Empty, fmt.Errorf("failed to create service: %w", err)
	}

	s.invalidate(ctx, constant.Empty)

	return service.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetServicesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".servicecatalog.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllService, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for services")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get services")

		return res, fmt.Errorf("failed to get services: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save services to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".servicecatalog.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountService, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count services")

		return res, fmt.Errorf("failed to count services: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save service count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ServiceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".servicecatalog.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetService, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	service, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get service")

		return res, fmt.Errorf("failed to get service: %w", err)
	}

	if service.ID == constant.Empty {
		return res, failure.NotFound("service not found")
	}

	res.FromModel(service)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save service to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) exists(ctx context.Context, filter gDto.FilterGroup) error {
	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if service exists")

		return fmt.Errorf("failed to check if service exists: %w", err)
	}

	if !exist {
		return failure.NotFound("service not found")
	}

	return nil
}

func (s *serviceImpl) Update(ctx context.Context, caller gDto.Caller, req dto.UpdateServiceRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".servicecatalog.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	if err = s.exists(ctx, filter); err != nil {
		return err
	}

	if req.Price != nil {
		price := req.Price.Round(constant.MoneyDecimals)
		req.Price = &price
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, caller.Name()), filter); err != nil {
		log.Error().Err(err).Msg("failed to update service")

		return fmt.Errorf("failed to update service: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".servicecatalog.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	if err = s.exists(ctx, filter); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete service")

		if shared.IsPqError(err, constant.PqErrorCodeFkViolation) {
			return failure.Conflict("service has posted consumptions, mark it unavailable instead")
		}

		return fmt.Errorf("failed to delete service: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}
