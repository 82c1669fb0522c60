package service

import (
	"context"
	"fmt"
	"miyabi/config"
	"miyabi/infras/otel"
	"miyabi/internal/domains/payment/model"
	"miyabi/internal/domains/payment/model/dto"
	"miyabi/internal/domains/payment/repository"
	reservationModel "miyabi/internal/domains/reservation/model"
	reservationRepo "miyabi/internal/domains/reservation/repository"
	"miyabi/shared"
	"miyabi/shared/cache"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetPayment    = "payment:get"
	cacheGetAllPayment = "payment:gets"
	cacheCountPayment  = "payment:count"
)

type Payment interface {
	Create(ctx context.Context, caller gDto.Caller, req dto.CreatePaymentRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetPaymentsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.PaymentResponse, error)
	GetByReservation(ctx context.Context, caller gDto.Caller, reservationID string) (dto.PaymentResponse, error)
	Update(ctx context.Context, caller gDto.Caller, req dto.UpdatePaymentRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo            repository.Payment
	reservationRepo reservationRepo.Reservation
	cfg             *config.Config
	cache           cache.RedisCache
	otel            otel.Otel
}

func New(repo repository.Payment, reservationRepo reservationRepo.Reservation, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Payment {
	return &serviceImpl{
		repo:            repo,
		reservationRepo: reservationRepo,
		cfg:             cfg,
		cache:           cache,
		otel:            otel,
	}
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if id != constant.Empty {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetPayment, id)); err != nil {
				log.Error().Err(err).Msg("failed to delete payment cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllPayment)
		shared.InvalidateCaches(c, s.cache, cacheCountPayment)
	}()
}

func (s *serviceImpl) Create(ctx context.Context, caller gDto.Caller, req dto.CreatePaymentRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reservation, err := s.reservationRepo.Get(ctx, shared.FilterByID(req.ReservationID, reservationModel.FieldID, reservationModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return constant.Empty, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return constant.Empty, failure.NotFound("reservation not found")
	}

	if reservation.State == reservationModel.StateCancelled {
		return constant.Empty, failure.BadRequestFromString("cancelled reservations cannot be charged")
	}

	payment := req.ToModel(caller.Name(), reservation.TotalPay)

	if err = s.repo.Insert(ctx, payment); err != nil {
		log.Error().Err(err).Msg("failed to create payment")

		if shared.IsPqError(err, constant.PqErrorCodeUniqueViolation) {
			return constant.Empty, failure.Conflict("reservation already has a payment")
		}

		return constant.Empty, fmt.Errorf("failed to create payment: %w", err)
	}

	s.invalidate(ctx, constant.Empty)

	return payment.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetPaymentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllPayment, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for payments")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get payments")

		return res, fmt.Errorf("failed to get payments: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save payments to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountPayment, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count payments")

		return res, fmt.Errorf("failed to count payments: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save payment count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetPayment, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	payment, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get payment")

		return res, fmt.Errorf("failed to get payment: %w", err)
	}

	if payment.ID == constant.Empty {
		return res, failure.NotFound("payment not found")
	}

	res.FromModel(payment)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save payment to cache")
		}
	}()

	return res, nil
}

// GetByReservation is not cached; guests poll it right after checkout.
func (s *serviceImpl) GetByReservation(ctx context.Context, caller gDto.Caller, reservationID string) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.GetByReservation")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	payment, err := s.repo.Get(ctx, shared.FilterByID(reservationID, model.FieldReservationID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get payment by reservation")

		return res, fmt.Errorf("failed to get payment by reservation: %w", err)
	}

	if payment.ID == constant.Empty || (caller.IsGuest() && payment.GuestID != caller.ID) {
		return res, failure.NotFound("payment not found")
	}

	res.FromModel(payment)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, caller gDto.Caller, req dto.UpdatePaymentRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return failure.BadRequestFromString("nothing to update")
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if payment exists")

		return fmt.Errorf("failed to check if payment exists: %w", err)
	}

	if !exist {
		return failure.NotFound("payment not found")
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, caller.Name()), filter); err != nil {
		log.Error().Err(err).Msg("failed to update payment")

		return fmt.Errorf("failed to update payment: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if payment exists")

		return fmt.Errorf("failed to check if payment exists: %w", err)
	}

	if !exist {
		return failure.NotFound("payment not found")
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete payment")

		return fmt.Errorf("failed to delete payment: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}
