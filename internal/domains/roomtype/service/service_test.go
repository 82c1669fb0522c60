package service_test

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"miyabi/config"
	"miyabi/infras/otel/mocks"
	s3Mocks "miyabi/infras/s3/mocks"
	roomTypeMocks "miyabi/internal/domains/roomtype/mocks"
	"miyabi/internal/domains/roomtype/model"
	"miyabi/internal/domains/roomtype/model/dto"
	"miyabi/internal/domains/roomtype/service"
	cacheMocks "miyabi/shared/cache/mocks"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/failure"
)

var staff = gDto.Caller{ID: "staff-1", Email: "staff@miyabi.test", Role: constant.RoleAdmin}

func newConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Hotel.MaxGroupSize = 6
	cfg.External.S3.BucketName = "miyabi"

	return cfg
}

func allowCacheWrites(mockCache *cacheMocks.MockRedisCache) {
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func TestRoomTypeService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := roomTypeMocks.NewMockRoomType(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockS3 := s3Mocks.NewMockS3(ctrl)
	allowCacheWrites(mockCache)

	svc := service.New(mockRepo, newConfig(), mockCache, mocks.NewOtel(), mockS3)

	req := dto.CreateRoomTypeRequest{
		Name:           "Deluxe",
		CapacityPeople: 2,
		BasePrice:      decimal.RequireFromString("150.00"),
	}

	t.Run("successful creation", func(t *testing.T) {
		mockRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, roomType model.RoomType) error {
				assert.Equal(t, "Deluxe", roomType.Name)
				assert.Equal(t, "150.00", roomType.BasePrice.StringFixed(2))
				assert.False(t, roomType.HighSeasonPrice.Valid)
				assert.Nil(t, roomType.ImageURL)
				assert.Equal(t, staff.ID, roomType.CreatedBy)

				return nil
			})

		id, err := svc.Create(context.Background(), staff, req)

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("image removed when insert fails", func(t *testing.T) {
		withImage := req
		withImage.Image = &multipart.FileHeader{Filename: "suite.png"}

		mockS3.EXPECT().
			UploadFile(gomock.Any(), "miyabi", model.EntityName, gomock.Any(), withImage.Image, gomock.Any()).
			Return("https://cdn.miyabi.test/roomtype/abc.png", nil)

		mockRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(&pq.Error{Code: constant.PqErrorCodeUniqueViolation})

		mockS3.EXPECT().
			DeleteFile(gomock.Any(), "miyabi", model.EntityName, gomock.Any()).
			Return(nil)

		_, err := svc.Create(context.Background(), staff, withImage)

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestRoomTypeService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := roomTypeMocks.NewMockRoomType(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	allowCacheWrites(mockCache)

	svc := service.New(mockRepo, newConfig(), mockCache, mocks.NewOtel(), s3Mocks.NewMockS3(ctrl))

	tests := []struct {
		name      string
		setupMock func()
		wantCode  int
		wantPrice string
	}{
		{
			name: "found in database",
			setupMock: func() {
				mockCache.EXPECT().Get(gomock.Any(), "roomtype:get:rt-1", gomock.Any()).Return(errors.New("cache miss"))
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.RoomType{
					ID:              "rt-1",
					Name:            "Suite",
					CapacityPeople:  4,
					BasePrice:       decimal.RequireFromString("320.5"),
					HighSeasonPrice: decimal.NewNullDecimal(decimal.RequireFromString("400")),
				}, nil)
			},
			wantPrice: "320.50",
		},
		{
			name: "not found",
			setupMock: func() {
				mockCache.EXPECT().Get(gomock.Any(), "roomtype:get:rt-1", gomock.Any()).Return(errors.New("cache miss"))
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.RoomType{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "repository error",
			setupMock: func() {
				mockCache.EXPECT().Get(gomock.Any(), "roomtype:get:rt-1", gomock.Any()).Return(errors.New("cache miss"))
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.RoomType{}, errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.Get(context.Background(), "rt-1")

			time.Sleep(10 * time.Millisecond)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPrice, res.BasePrice)
			require.NotNil(t, res.HighSeasonPrice)
			assert.Equal(t, "400.00", *res.HighSeasonPrice)
		})
	}
}

func TestRoomTypeService_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := roomTypeMocks.NewMockRoomType(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	allowCacheWrites(mockCache)

	svc := service.New(mockRepo, newConfig(), mockCache, mocks.NewOtel(), s3Mocks.NewMockS3(ctrl))

	params := gDto.QueryParams{Page: 1, Limit: 2}

	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
	mockRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
	mockRepo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).Return([]model.RoomType{
		{ID: "rt-1", Name: "Single", BasePrice: decimal.NewFromInt(80)},
		{ID: "rt-2", Name: "Double", BasePrice: decimal.NewFromInt(120)},
	}, nil)

	res, err := svc.GetAll(context.Background(), params, gDto.FilterGroup{})

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	assert.Len(t, res.RoomTypes, 2)
	assert.Equal(t, "80.00", res.RoomTypes[0].BasePrice)
}

func TestRoomTypeService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := roomTypeMocks.NewMockRoomType(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockS3 := s3Mocks.NewMockS3(ctrl)
	allowCacheWrites(mockCache)

	svc := service.New(mockRepo, newConfig(), mockCache, mocks.NewOtel(), mockS3)

	oldImage := "https://cdn.miyabi.test/roomtype/old.png"
	price := decimal.RequireFromString("99.90")

	t.Run("replaces image and price", func(t *testing.T) {
		req := dto.UpdateRoomTypeRequest{
			BasePrice: &price,
			Image:     &multipart.FileHeader{Filename: "new.jpg"},
		}

		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.RoomType{ID: "rt-1", ImageURL: &oldImage}, nil)
		mockS3.EXPECT().UploadFile(gomock.Any(), "miyabi", model.EntityName, gomock.Any(), req.Image, gomock.Any()).
			Return("https://cdn.miyabi.test/roomtype/new.jpg", nil)
		mockRepo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, price, fields[model.FieldBasePrice])
				assert.Equal(t, "https://cdn.miyabi.test/roomtype/new.jpg", fields[model.FieldImageURL])
				assert.Equal(t, staff.ID, fields[constant.FieldModifiedBy])

				return nil
			})
		mockS3.EXPECT().GetObjectNameFromURL("miyabi", oldImage).Return("old.png")
		mockS3.EXPECT().DeleteFile(gomock.Any(), "miyabi", model.EntityName, "old.png").Return(nil)

		err := svc.Update(context.Background(), staff, req, "rt-1")

		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.RoomType{}, nil)

		err := svc.Update(context.Background(), staff, dto.UpdateRoomTypeRequest{Name: "Suite"}, "missing")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestRoomTypeService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := roomTypeMocks.NewMockRoomType(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	allowCacheWrites(mockCache)

	svc := service.New(mockRepo, newConfig(), mockCache, mocks.NewOtel(), s3Mocks.NewMockS3(ctrl))

	t.Run("still referenced by rooms", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.RoomType{ID: "rt-1"}, nil)
		mockRepo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: constant.PqErrorCodeFkViolation})

		err := svc.Delete(context.Background(), "rt-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("successful deletion", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.RoomType{ID: "rt-1"}, nil)
		mockRepo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		err := svc.Delete(context.Background(), "rt-1")

		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})
}
