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
	paymentMocks "miyabi/internal/domains/payment/mocks"
	"miyabi/internal/domains/payment/model"
	"miyabi/internal/domains/payment/model/dto"
	"miyabi/internal/domains/payment/service"
	reservationMocks "miyabi/internal/domains/reservation/mocks"
	reservationModel "miyabi/internal/domains/reservation/model"
	cacheMocks "miyabi/shared/cache/mocks"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/failure"
)

var staff = gDto.Caller{ID: "staff-1", Email: "staff@miyabi.test", Role: constant.RoleEmployee}

type fixture struct {
	svc          service.Payment
	payments     *paymentMocks.MockPayment
	reservations *reservationMocks.MockReservation
	cache        *cacheMocks.MockRedisCache
}

func setup(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		payments:     paymentMocks.NewMockPayment(ctrl),
		reservations: reservationMocks.NewMockReservation(ctrl),
		cache:        cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	f.svc = service.New(f.payments, f.reservations, cfg, f.cache, mocks.NewOtel())

	return f
}

func TestPaymentService_Create(t *testing.T) {
	reservation := reservationModel.Reservation{
		ID:       "res-1",
		State:    reservationModel.StateConfirmed,
		TotalPay: decimal.RequireFromString("830.00"),
	}

	t.Run("defaults amount to the reservation total", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(reservation, nil)
		f.payments.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, payment model.Payment) error {
				assert.Equal(t, "830.00", payment.TotalAmount.StringFixed(2))
				assert.Equal(t, model.StatusPaid, payment.PaymentStatus)
				assert.Equal(t, "res-1", payment.ReservationID)

				return nil
			})

		id, err := f.svc.Create(context.Background(), staff, dto.CreatePaymentRequest{ReservationID: "res-1", PaymentMethod: "Card"})

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("second payment for the same reservation", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(reservation, nil)
		f.payments.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: constant.PqErrorCodeUniqueViolation})

		_, err := f.svc.Create(context.Background(), staff, dto.CreatePaymentRequest{ReservationID: "res-1", PaymentMethod: "Cash"})

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("unknown reservation", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(reservationModel.Reservation{}, nil)

		_, err := f.svc.Create(context.Background(), staff, dto.CreatePaymentRequest{ReservationID: "res-9", PaymentMethod: "Cash"})

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("cancelled reservation", func(t *testing.T) {
		f := setup(t)

		cancelled := reservation
		cancelled.State = reservationModel.StateCancelled

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(cancelled, nil)

		_, err := f.svc.Create(context.Background(), staff, dto.CreatePaymentRequest{ReservationID: "res-1", PaymentMethod: "Cash"})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestPaymentService_GetByReservation(t *testing.T) {
	payment := model.Payment{ID: "pay-1", ReservationID: "res-1", GuestID: "guest-1", TotalAmount: decimal.NewFromInt(100)}

	tests := []struct {
		name     string
		caller   gDto.Caller
		wantCode int
	}{
		{name: "staff sees any payment", caller: staff},
		{name: "owner guest", caller: gDto.Caller{ID: "guest-1", Role: constant.RoleGuest}},
		{name: "other guest", caller: gDto.Caller{ID: "guest-2", Role: constant.RoleGuest}, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			f.payments.EXPECT().Get(gomock.Any(), gomock.Any()).Return(payment, nil)

			res, err := f.svc.GetByReservation(context.Background(), tt.caller, "res-1")

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "100.00", res.TotalAmount)
		})
	}
}

func TestPaymentService_Update(t *testing.T) {
	t.Run("empty request", func(t *testing.T) {
		f := setup(t)

		err := f.svc.Update(context.Background(), staff, dto.UpdatePaymentRequest{}, "pay-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("refund", func(t *testing.T) {
		f := setup(t)

		f.payments.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.payments.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, model.StatusRefunded, fields[model.FieldPaymentStatus])

				return nil
			})

		err := f.svc.Update(context.Background(), staff, dto.UpdatePaymentRequest{PaymentStatus: model.StatusRefunded}, "pay-1")

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
	})

	t.Run("repository error", func(t *testing.T) {
		f := setup(t)

		f.payments.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, errors.New("database error"))

		err := f.svc.Update(context.Background(), staff, dto.UpdatePaymentRequest{PaymentMethod: "Cash"}, "pay-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}
