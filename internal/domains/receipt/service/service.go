package service

import (
	"context"
	"encoding/json"
	"fmt"
	"miyabi/config"
	"miyabi/infras/otel"
	"miyabi/infras/s3"
	consumptionModel "miyabi/internal/domains/consumption/model"
	consumptionRepo "miyabi/internal/domains/consumption/repository"
	"miyabi/internal/domains/receipt/model/dto"
	reservationModel "miyabi/internal/domains/reservation/model"
	reservationRepo "miyabi/internal/domains/reservation/repository"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/failure"
	"miyabi/shared/timezone"

	"github.com/rs/zerolog/log"
)

type Receipt interface {
	Build(ctx context.Context, caller gDto.Caller, reservationID string) (dto.ReceiptResponse, error)
	Archive(ctx context.Context, reservationID string) (dto.ArchiveResponse, error)
}

type serviceImpl struct {
	reservationRepo reservationRepo.Reservation
	consumptionRepo consumptionRepo.Consumption
	s3              s3.S3
	cfg             *config.Config
	otel            otel.Otel
}

func New(reservationRepo reservationRepo.Reservation, consumptionRepo consumptionRepo.Consumption, s3 s3.S3, cfg *config.Config, otel otel.Otel) Receipt {
	return &serviceImpl{
		reservationRepo: reservationRepo,
		consumptionRepo: consumptionRepo,
		s3:              s3,
		cfg:             cfg,
		otel:            otel,
	}
}

// Build assembles the receipt of a reservation. Guests only get their own.
func (s *serviceImpl) Build(ctx context.Context, caller gDto.Caller, reservationID string) (res dto.ReceiptResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".receipt.Build")
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

	params := gDto.QueryParams{SortBy: consumptionModel.FieldCreatedAt, SortDir: gDto.SortDirAsc}

	consumptions, err := s.consumptionRepo.GetAll(ctx, params, shared.FilterByID(reservationID, consumptionModel.FieldReservationID, consumptionModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get consumptions")

		return res, fmt.Errorf("failed to get consumptions: %w", err)
	}

	res.FromModels(reservation, consumptions, timezone.Now())
	res.Currency = s.cfg.Hotel.Currency

	return res, nil
}

// Archive stores the JSON receipt in the bucket as <directory>/<code>.json and returns where it landed.
func (s *serviceImpl) Archive(ctx context.Context, reservationID string) (res dto.ArchiveResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".receipt.Archive")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	receipt, err := s.Build(ctx, gDto.Caller{Role: constant.RoleAdmin}, reservationID)
	if err != nil {
		return res, err
	}

	body, err := json.Marshal(receipt)
	if err != nil {
		return res, fmt.Errorf("failed to encode receipt: %w", err)
	}

	url, err := s.s3.UploadFileBytes(ctx, s.cfg.External.S3.BucketName, s.cfg.Hotel.ReceiptDirectory, receipt.Code+".json", constant.ContentTypeJSON, body)
	if err != nil {
		log.Error().Err(err).Str("code", receipt.Code).Msg("failed to archive receipt")

		return res, fmt.Errorf("failed to archive receipt: %w", err)
	}

	return dto.ArchiveResponse{Code: receipt.Code, URL: url}, nil
}
