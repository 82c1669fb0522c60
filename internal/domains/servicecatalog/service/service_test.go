package service_test

import (
	"context"
	"errors"
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
	catalogMocks "miyabi/internal/domains/servicecatalog/mocks"
	"miyabi/internal/domains/servicecatalog/model"
	"miyabi/internal/domains/servicecatalog/model/dto"
	"miyabi/internal/domains/servicecatalog/service"
	cacheMocks "miyabi/shared/cache/mocks"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/failure"
)

var staff = gDto.Caller{ID: "staff-1", Email: "staff@miyabi.test", Role: constant.RoleEmployee}

func newConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	return cfg
}

func allowCacheWrites(mockCache *cacheMocks.MockRedisCache) {
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func TestServiceCatalog_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := catalogMocks.NewMockServiceCatalog(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	allowCacheWrites(mockCache)

	svc := service.New(mockRepo, newConfig(), mockCache, mocks.NewOtel())

	t.Run("defaults season and availability", func(t *testing.T) {
		mockRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, item model.Service) error {
				assert.Equal(t, "Onsen access", item.ServiceName)
				assert.Equal(t, "25.50", item.Price.StringFixed(2))
				assert.Equal(t, model.SeasonAllYear, item.Season)
				assert.True(t, item.Available)
				assert.Equal(t, staff.ID, item.CreatedBy)

				return nil
			})

		id, err := svc.Create(context.Background(), staff, dto.CreateServiceRequest{
			ServiceName: "Onsen access",
			Price:       decimal.RequireFromString("25.499"),
		})

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("repository error", func(t *testing.T) {
		mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))

		_, err := svc.Create(context.Background(), staff, dto.CreateServiceRequest{ServiceName: "Tea ceremony"})

		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}

func TestServiceCatalog_Get(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mockRepo *catalogMocks.MockServiceCatalog, mockCache *cacheMocks.MockRedisCache)
		wantCode  int
	}{
		{
			name: "cache hit",
			setupMock: func(_ *catalogMocks.MockServiceCatalog, mockCache *cacheMocks.MockRedisCache) {
				mockCache.EXPECT().Get(gomock.Any(), "servicecatalog:get:svc-1", gomock.Any()).Return(nil)
			},
		},
		{
			name: "found in database",
			setupMock: func(mockRepo *catalogMocks.MockServiceCatalog, mockCache *cacheMocks.MockRedisCache) {
				mockCache.EXPECT().Get(gomock.Any(), "servicecatalog:get:svc-1", gomock.Any()).Return(errors.New("cache miss"))
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Service{ID: "svc-1", Price: decimal.NewFromInt(10)}, nil)
			},
		},
		{
			name: "not found",
			setupMock: func(mockRepo *catalogMocks.MockServiceCatalog, mockCache *cacheMocks.MockRedisCache) {
				mockCache.EXPECT().Get(gomock.Any(), "servicecatalog:get:svc-1", gomock.Any()).Return(errors.New("cache miss"))
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Service{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			mockRepo := catalogMocks.NewMockServiceCatalog(ctrl)
			mockCache := cacheMocks.NewMockRedisCache(ctrl)
			allowCacheWrites(mockCache)
			tt.setupMock(mockRepo, mockCache)

			svc := service.New(mockRepo, newConfig(), mockCache, mocks.NewOtel())

			_, err := svc.Get(context.Background(), "svc-1")

			time.Sleep(10 * time.Millisecond)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestServiceCatalog_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := catalogMocks.NewMockServiceCatalog(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	allowCacheWrites(mockCache)

	svc := service.New(mockRepo, newConfig(), mockCache, mocks.NewOtel())

	t.Run("rounds price and flips availability", func(t *testing.T) {
		price := decimal.RequireFromString("9.999")
		available := false

		mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		mockRepo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, "10.00", fields[model.FieldPrice].(decimal.Decimal).StringFixed(2))
				assert.Equal(t, false, fields[model.FieldAvailable])
				assert.Equal(t, staff.ID, fields[constant.FieldModifiedBy])

				return nil
			})

		err := svc.Update(context.Background(), staff, dto.UpdateServiceRequest{Price: &price, Available: &available}, "svc-1")

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		err := svc.Update(context.Background(), staff, dto.UpdateServiceRequest{ServiceName: "Sake tasting"}, "svc-9")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestServiceCatalog_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := catalogMocks.NewMockServiceCatalog(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	allowCacheWrites(mockCache)

	svc := service.New(mockRepo, newConfig(), mockCache, mocks.NewOtel())

	mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	mockRepo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: constant.PqErrorCodeFkViolation})

	err := svc.Delete(context.Background(), "svc-1")

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}
