package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"miyabi/config"
	"miyabi/infras/otel"
	"miyabi/infras/s3"
	"miyabi/internal/domains/roomtype/model"
	"miyabi/internal/domains/roomtype/model/dto"
	"miyabi/internal/domains/roomtype/repository"
	"miyabi/shared"
	"miyabi/shared/cache"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/failure"
	"path"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetRoomType    = "roomtype:get"
	cacheGetAllRoomType = "roomtype:gets"
	cacheCountRoomType  = "roomtype:count"

	// rooms embed their type's name and price
	cacheRoom = "room"
)

type RoomType interface {
	Create(ctx context.Context, caller gDto.Caller, req dto.CreateRoomTypeRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomTypesResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.RoomTypeResponse, error)
	Update(ctx context.Context, caller gDto.Caller, req dto.UpdateRoomTypeRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.RoomType
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
	s3    s3.S3
}

func New(repo repository.RoomType, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3) RoomType {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
		s3:    s3,
	}
}

func (s *serviceImpl) uploadImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (url, objectName string, err error) {
	objectName = uuid.NewString() + path.Ext(header.Filename)

	url, err = s.s3.UploadFile(ctx, s.cfg.External.S3.BucketName, model.EntityName, file, header, objectName)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload room type image")

		return constant.Empty, constant.Empty, fmt.Errorf("failed to upload image: %w", err)
	}

	return url, objectName, nil
}

func (s *serviceImpl) deleteImage(ctx context.Context, objectName string) {
	if objectName == constant.Empty {
		return
	}

	if err := s.s3.DeleteFile(ctx, s.cfg.External.S3.BucketName, model.EntityName, objectName); err != nil {
		log.Warn().Err(err).Str("object", objectName).Msg("failed to delete room type image")
	}
}

func (s *serviceImpl) Create(ctx context.Context, caller gDto.Caller, req dto.CreateRoomTypeRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".roomtype.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	imageURL, objectName := constant.Empty, constant.Empty

	if req.Image != nil {
		imageURL, objectName, err = s.uploadImage(ctx, req.ImageFile, req.Image)
		if err != nil {
			return constant.Empty, err
		}
	}

	roomType := req.ToModel(caller.Name(), imageURL)

	if err = s.repo.Insert(ctx, roomType); err != nil {
		s.deleteImage(ctx, objectName)

		if shared.IsPqError(err, constant.PqErrorCodeUniqueViolation) {
			return constant.Empty, failure.Conflict("room type name already exists")
		}

		return constant.Empty, fmt.Errorf("failed to create room type: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoomType)
		shared.InvalidateCaches(c, s.cache, cacheCountRoomType)
	}()

	return roomType.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRoomTypesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".roomtype.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRoomType, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room types")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get room types")

		return res, fmt.Errorf("failed to get room types: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room types to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".roomtype.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountRoomType, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count room types")

		return res, fmt.Errorf("failed to count room types: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room type count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomTypeResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".roomtype.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetRoomType, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room type")

		return res, nil
	}

	roomType, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room type")

		return res, fmt.Errorf("failed to get room type: %w", err)
	}

	if roomType.ID == constant.Empty {
		return res, failure.NotFound("room type not found")
	}

	res.FromModel(roomType)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room type to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, caller gDto.Caller, req dto.UpdateRoomTypeRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".roomtype.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get room type")

		return fmt.Errorf("failed to get room type: %w", err)
	}

	if current.ID == constant.Empty {
		return failure.NotFound("room type not found")
	}

	imageURL, objectName := constant.Empty, constant.Empty

	if req.Image != nil {
		imageURL, objectName, err = s.uploadImage(ctx, req.ImageFile, req.Image)
		if err != nil {
			return err
		}
	}

	updatedFields := shared.TransformFields(req, caller.Name())
	if imageURL != constant.Empty {
		updatedFields[model.FieldImageURL] = imageURL
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		s.deleteImage(ctx, objectName)

		if shared.IsPqError(err, constant.PqErrorCodeUniqueViolation) {
			return failure.Conflict("room type name already exists")
		}

		return fmt.Errorf("failed to update room type: %w", err)
	}

	if imageURL != constant.Empty && current.ImageURL != nil {
		s.deleteImage(ctx, s.s3.GetObjectNameFromURL(s.cfg.External.S3.BucketName, *current.ImageURL))
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRoomType, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete room type cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoomType)
		shared.InvalidateCaches(c, s.cache, cacheCountRoomType)
		shared.InvalidateCaches(c, s.cache, cacheRoom)
	}()

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".roomtype.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get room type")

		return fmt.Errorf("failed to get room type: %w", err)
	}

	if current.ID == constant.Empty {
		return failure.NotFound("room type not found")
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		if shared.IsPqError(err, constant.PqErrorCodeFkViolation) {
			return failure.Conflict("room type is still assigned to rooms")
		}

		return fmt.Errorf("failed to delete room type: %w", err)
	}

	if current.ImageURL != nil {
		s.deleteImage(ctx, s.s3.GetObjectNameFromURL(s.cfg.External.S3.BucketName, *current.ImageURL))
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRoomType, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete room type cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoomType)
		shared.InvalidateCaches(c, s.cache, cacheCountRoomType)
	}()

	return nil
}
