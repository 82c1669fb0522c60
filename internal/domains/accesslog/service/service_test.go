package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"miyabi/infras/otel/mocks"
	accessLogMocks "miyabi/internal/domains/accesslog/mocks"
	"miyabi/internal/domains/accesslog/model"
	"miyabi/internal/domains/accesslog/model/dto"
	"miyabi/internal/domains/accesslog/service"
	gDto "miyabi/shared/dto"
	"miyabi/shared/failure"
)

func TestAccessLogService_Record(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.RecordAccessRequest
		assertLog func(t *testing.T, entry model.AccessLog)
	}{
		{
			name: "staff login",
			req:  dto.RecordAccessRequest{SubjectID: "user-1", UserType: model.UserTypeStaff, AccessIP: "10.0.0.1"},
			assertLog: func(t *testing.T, entry model.AccessLog) {
				require.NotNil(t, entry.UserID)
				assert.Equal(t, "user-1", *entry.UserID)
				assert.Nil(t, entry.GuestID)
				require.NotNil(t, entry.AccessIP)
				assert.Equal(t, "10.0.0.1", *entry.AccessIP)
			},
		},
		{
			name: "guest login without ip",
			req:  dto.RecordAccessRequest{SubjectID: "guest-1", UserType: model.UserTypeGuest},
			assertLog: func(t *testing.T, entry model.AccessLog) {
				require.NotNil(t, entry.GuestID)
				assert.Equal(t, "guest-1", *entry.GuestID)
				assert.Nil(t, entry.UserID)
				assert.Nil(t, entry.AccessIP)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockRepo := accessLogMocks.NewMockAccessLog(ctrl)
			svc := service.New(mockRepo, mocks.NewOtel())

			mockRepo.EXPECT().
				Insert(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, entry model.AccessLog) error {
					assert.NotEmpty(t, entry.ID)
					assert.Equal(t, tt.req.UserType, entry.UserType)
					assert.WithinDuration(t, time.Now(), entry.AccessedAt, time.Minute)
					tt.assertLog(t, entry)

					return nil
				})

			require.NoError(t, svc.Record(context.Background(), tt.req))
		})
	}

	t.Run("unknown user type", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := service.New(accessLogMocks.NewMockAccessLog(ctrl), mocks.NewOtel())

		err := svc.Record(context.Background(), dto.RecordAccessRequest{SubjectID: "x", UserType: "robot"})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestAccessLogService_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := accessLogMocks.NewMockAccessLog(ctrl)
	svc := service.New(mockRepo, mocks.NewOtel())

	guestEmail := "hana@miyabi.test"
	params := gDto.QueryParams{Page: 1, Limit: 10}

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(11, nil)
		mockRepo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).Return([]model.AccessLog{
			{ID: "log-1", UserType: model.UserTypeGuest, GuestEmail: &guestEmail},
		}, nil)

		res, err := svc.GetAll(context.Background(), params, gDto.FilterGroup{})

		require.NoError(t, err)
		assert.Equal(t, 11, res.TotalData)
		assert.Equal(t, 2, res.TotalPage)
		require.Len(t, res.AccessLogs, 1)
		assert.Equal(t, &guestEmail, res.AccessLogs[0].Email)
	})

	t.Run("count error", func(t *testing.T) {
		mockRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("database error"))

		_, err := svc.GetAll(context.Background(), params, gDto.FilterGroup{})

		require.Error(t, err)
	})
}
