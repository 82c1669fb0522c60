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
	roomMocks "miyabi/internal/domains/room/mocks"
	"miyabi/internal/domains/room/model"
	"miyabi/internal/domains/room/model/dto"
	"miyabi/internal/domains/room/service"
	cacheMocks "miyabi/shared/cache/mocks"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/failure"
)

var staff = gDto.Caller{ID: "staff-1", Role: constant.RoleEmployee}

func setup(t *testing.T) (service.Room, *roomMocks.MockRoom, *cacheMocks.MockRedisCache) {
	t.Helper()

	ctrl := gomock.NewController(t)

	mockRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	return service.New(mockRepo, cfg, mockCache, mocks.NewOtel()), mockRepo, mockCache
}

func TestRoomService_Create(t *testing.T) {
	svc, mockRepo, _ := setup(t)

	tests := []struct {
		name     string
		repoErr  error
		wantCode int
	}{
		{name: "successful creation"},
		{name: "duplicate room number", repoErr: &pq.Error{Code: constant.PqErrorCodeUniqueViolation}, wantCode: http.StatusConflict},
		{name: "unknown room type", repoErr: &pq.Error{Code: constant.PqErrorCodeFkViolation}, wantCode: http.StatusBadRequest},
		{name: "database error", repoErr: errors.New("database error"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.EXPECT().
				Insert(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, room model.Room) error {
					assert.Equal(t, model.StateAvailable, room.State)
					assert.Equal(t, "101", room.RoomNumber)

					return tt.repoErr
				})

			id, err := svc.Create(context.Background(), staff, dto.CreateRoomRequest{RoomNumber: "101", Floor: 1, RoomTypeID: "rt-1"})

			time.Sleep(10 * time.Millisecond)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, id)
		})
	}
}

func TestRoomService_Get(t *testing.T) {
	svc, mockRepo, mockCache := setup(t)

	t.Run("cache hit", func(t *testing.T) {
		mockCache.EXPECT().
			Get(gomock.Any(), "room:get:room-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value any) error {
				res, ok := value.(*dto.RoomResponse)
				require.True(t, ok)
				res.ID = "room-1"

				return nil
			})

		res, err := svc.Get(context.Background(), "room-1")

		require.NoError(t, err)
		assert.Equal(t, "room-1", res.ID)
	})

	t.Run("loaded with its room type", func(t *testing.T) {
		maintained := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

		mockCache.EXPECT().Get(gomock.Any(), "room:get:room-1", gomock.Any()).Return(errors.New("cache miss"))
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{
			ID:                  "room-1",
			RoomNumber:          "101",
			State:               model.StateAvailable,
			RoomTypeName:        "Deluxe",
			BasePrice:           decimal.NewFromInt(150),
			LastMaintenanceDate: &maintained,
		}, nil)

		res, err := svc.Get(context.Background(), "room-1")

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, "150.00", res.PricePerNight)
		assert.Equal(t, "Deluxe", res.RoomTypeName)
		require.NotNil(t, res.LastMaintenanceDate)
		assert.Equal(t, "2026-01-15", *res.LastMaintenanceDate)
	})

	t.Run("not found", func(t *testing.T) {
		mockCache.EXPECT().Get(gomock.Any(), "room:get:missing", gomock.Any()).Return(errors.New("cache miss"))
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)

		_, err := svc.Get(context.Background(), "missing")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestRoomService_UpdateState(t *testing.T) {
	svc, mockRepo, _ := setup(t)

	t.Run("maintenance stamps the date", func(t *testing.T) {
		mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		mockRepo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, model.StateMaintenance, fields[model.FieldState])
				assert.Contains(t, fields, model.FieldLastMaintenanceDate)
				assert.Equal(t, staff.ID, fields[constant.FieldModifiedBy])

				return nil
			})

		err := svc.UpdateState(context.Background(), staff, dto.UpdateRoomStateRequest{State: model.StateMaintenance}, "room-1")

		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})

	t.Run("room missing", func(t *testing.T) {
		mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		err := svc.UpdateState(context.Background(), staff, dto.UpdateRoomStateRequest{State: model.StateAvailable}, "room-x")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestRoomService_Update(t *testing.T) {
	svc, mockRepo, _ := setup(t)

	floor := 0

	mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	mockRepo.EXPECT().
		Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, 0, fields[model.FieldFloor])
			assert.NotContains(t, fields, model.FieldRoomNumber)

			return nil
		})

	err := svc.Update(context.Background(), staff, dto.UpdateRoomRequest{Floor: &floor}, "room-1")

	time.Sleep(10 * time.Millisecond)

	assert.NoError(t, err)
}

func TestRoomService_Delete(t *testing.T) {
	svc, mockRepo, _ := setup(t)

	t.Run("room with reservations", func(t *testing.T) {
		mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		mockRepo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: constant.PqErrorCodeFkViolation})

		err := svc.Delete(context.Background(), "room-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("successful deletion", func(t *testing.T) {
		mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		mockRepo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		err := svc.Delete(context.Background(), "room-1")

		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})
}
