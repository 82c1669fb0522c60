package service

import (
	"context"
	"fmt"
	"miyabi/infras/otel"
	"miyabi/internal/domains/accesslog/model/dto"
	"miyabi/internal/domains/accesslog/repository"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/validator"

	"github.com/rs/zerolog/log"
)

// AccessLog is append only. Listings are read straight from the database since every
// login would invalidate a cached page anyway.
type AccessLog interface {
	Record(ctx context.Context, req dto.RecordAccessRequest) error
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetAccessLogsResponse, error)
}

type serviceImpl struct {
	repo repository.AccessLog
	otel otel.Otel
}

func New(repo repository.AccessLog, otel otel.Otel) AccessLog {
	return &serviceImpl{
		repo: repo,
		otel: otel,
	}
}

func (s *serviceImpl) Record(ctx context.Context, req dto.RecordAccessRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".accesslog.Record")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return err
	}

	if err = s.repo.Insert(ctx, req.ToModel()); err != nil {
		log.Error().Err(err).Str("user_type", req.UserType).Msg("failed to record access")

		return fmt.Errorf("failed to record access: %w", err)
	}

	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetAccessLogsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".accesslog.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count access logs")

		return res, fmt.Errorf("failed to count access logs: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get access logs")

		return res, fmt.Errorf("failed to get access logs: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}
