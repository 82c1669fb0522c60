package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"miyabi/config"
	"miyabi/infras/kafka"
	kafkaMocks "miyabi/infras/kafka/mocks"
	"miyabi/infras/otel/mocks"
	consumptionMocks "miyabi/internal/domains/consumption/mocks"
	"miyabi/internal/domains/consumption/model"
	"miyabi/internal/domains/consumption/model/dto"
	"miyabi/internal/domains/consumption/service"
	reservationMocks "miyabi/internal/domains/reservation/mocks"
	reservationModel "miyabi/internal/domains/reservation/model"
	catalogMocks "miyabi/internal/domains/servicecatalog/mocks"
	catalogModel "miyabi/internal/domains/servicecatalog/model"
	cacheMocks "miyabi/shared/cache/mocks"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/event"
	"miyabi/shared/failure"
	repoMocks "miyabi/shared/repository/mocks"
)

var (
	staff = gDto.Caller{ID: "staff-1", Role: constant.RoleEmployee}
	guest = gDto.Caller{ID: "guest-1", Role: constant.RoleGuest}
)

type fixture struct {
	svc          service.Consumption
	consumptions *consumptionMocks.MockConsumption
	reservations *reservationMocks.MockReservation
	catalog      *catalogMocks.MockServiceCatalog
	kafka        *kafkaMocks.MockClient
	cache        *cacheMocks.MockRedisCache
}

func setup(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		consumptions: consumptionMocks.NewMockConsumption(ctrl),
		reservations: reservationMocks.NewMockReservation(ctrl),
		catalog:      catalogMocks.NewMockServiceCatalog(ctrl),
		kafka:        kafkaMocks.NewMockClient(ctrl),
		cache:        cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	transactor := repoMocks.NewMockTransactor(ctrl)
	transactor.EXPECT().
		WithinTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(*sqlx.Tx) error) error { return fn(nil) }).
		AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Kafka.Topics.Consumption = "miyabi.consumption"

	f.svc = service.New(f.consumptions, f.reservations, f.catalog, transactor, cfg, f.cache, mocks.NewOtel(), f.kafka)

	return f
}

func TestConsumptionService_Create(t *testing.T) {
	open := reservationModel.Reservation{ID: "res-1", Code: "RES-2031-1234", State: reservationModel.StateConfirmed}

	minibar := catalogModel.Service{ID: "svc-1", ServiceName: "Minibar", Price: decimal.RequireFromString("12.50"), Available: true}

	t.Run("posts at the catalog price and folds into the reservation", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(open, nil)
		f.catalog.EXPECT().Get(gomock.Any(), gomock.Any()).Return(minibar, nil)
		f.consumptions.EXPECT().
			InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, consumption model.Consumption) error {
				assert.Equal(t, 3, consumption.Amount)
				assert.Equal(t, "12.50", consumption.UnitPrice.StringFixed(2))
				assert.Equal(t, "37.50", consumption.Subtotal.StringFixed(2))

				return nil
			})
		f.reservations.EXPECT().
			ApplyConsumptionTx(gomock.Any(), gomock.Any(), "res-1", gomock.Any(), "staff-1").
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, _ string, delta decimal.Decimal, _ string) (bool, error) {
				assert.Equal(t, "37.50", delta.StringFixed(2))

				return true, nil
			})
		f.kafka.EXPECT().
			SendMessages(gomock.Any(), "miyabi.consumption", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
				require.Len(t, messages, 1)

				evt, ok := messages[0].Value.(event.Event)
				require.True(t, ok)
				assert.Equal(t, event.TypeConsumptionPosted, evt.Type)
				assert.Equal(t, "37.50", evt.Amount)
				assert.Equal(t, "res-1", messages[0].Key)

				return nil
			})

		amount := 3

		res, err := f.svc.Create(context.Background(), staff, dto.CreateConsumptionRequest{ReservationID: "res-1", ServiceID: "svc-1", Amount: &amount})

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, "Minibar", res.ServiceName)
		assert.Equal(t, "RES-2031-1234", res.ReservationCode)
		assert.Equal(t, "37.50", res.Subtotal)
	})

	t.Run("explicit unit price", func(t *testing.T) {
		f := setup(t)

		price := decimal.RequireFromString("10")

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(open, nil)
		f.catalog.EXPECT().Get(gomock.Any(), gomock.Any()).Return(minibar, nil)
		f.consumptions.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.reservations.EXPECT().ApplyConsumptionTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.kafka.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.Create(context.Background(), staff, dto.CreateConsumptionRequest{ReservationID: "res-1", ServiceID: "svc-1", UnitPrice: &price})

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Amount)
		assert.Equal(t, "10.00", res.Subtotal)
	})

	subtotals := []struct {
		name         string
		amount       int
		unitPrice    string
		wantSubtotal string
	}{
		{name: "two at 25", amount: 2, unitPrice: "25.00", wantSubtotal: "50.00"},
		{name: "unit price rounds before multiplying", amount: 3, unitPrice: "0.335", wantSubtotal: "1.02"},
	}

	for _, tt := range subtotals {
		t.Run("subtotal "+tt.name, func(t *testing.T) {
			f := setup(t)

			price := decimal.RequireFromString(tt.unitPrice)
			amount := tt.amount

			f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(open, nil)
			f.catalog.EXPECT().Get(gomock.Any(), gomock.Any()).Return(minibar, nil)
			f.consumptions.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			f.reservations.EXPECT().
				ApplyConsumptionTx(gomock.Any(), gomock.Any(), "res-1", gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ *sqlx.Tx, _ string, delta decimal.Decimal, _ string) (bool, error) {
					assert.Equal(t, tt.wantSubtotal, delta.StringFixed(2))

					return true, nil
				})
			f.kafka.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

			res, err := f.svc.Create(context.Background(), staff, dto.CreateConsumptionRequest{ReservationID: "res-1", ServiceID: "svc-1", Amount: &amount, UnitPrice: &price})

			time.Sleep(10 * time.Millisecond)

			require.NoError(t, err)
			assert.Equal(t, tt.amount, res.Amount)
			assert.Equal(t, tt.wantSubtotal, res.Subtotal)
		})
	}

	t.Run("reservation closed while posting", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(open, nil)
		f.catalog.EXPECT().Get(gomock.Any(), gomock.Any()).Return(minibar, nil)
		f.consumptions.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.reservations.EXPECT().ApplyConsumptionTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := f.svc.Create(context.Background(), staff, dto.CreateConsumptionRequest{ReservationID: "res-1", ServiceID: "svc-1"})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("insert failure", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(open, nil)
		f.catalog.EXPECT().Get(gomock.Any(), gomock.Any()).Return(minibar, nil)
		f.consumptions.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		_, err := f.svc.Create(context.Background(), staff, dto.CreateConsumptionRequest{ReservationID: "res-1", ServiceID: "svc-1"})

		require.Error(t, err)
	})

	tests := []struct {
		name        string
		reservation reservationModel.Reservation
		service     *catalogModel.Service
		wantCode    int
	}{
		{name: "unknown reservation", wantCode: http.StatusNotFound},
		{name: "cancelled reservation", reservation: reservationModel.Reservation{ID: "res-1", State: reservationModel.StateCancelled}, wantCode: http.StatusBadRequest},
		{name: "completed reservation", reservation: reservationModel.Reservation{ID: "res-1", State: reservationModel.StateCompleted}, wantCode: http.StatusBadRequest},
		{name: "unknown service", reservation: open, service: &catalogModel.Service{}, wantCode: http.StatusNotFound},
		{name: "service withdrawn", reservation: open, service: &catalogModel.Service{ID: "svc-2", ServiceName: "Spa"}, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.reservation, nil)

			if tt.service != nil {
				f.catalog.EXPECT().Get(gomock.Any(), gomock.Any()).Return(*tt.service, nil)
			}

			_, err := f.svc.Create(context.Background(), staff, dto.CreateConsumptionRequest{ReservationID: "res-1", ServiceID: "svc-1"})

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestConsumptionService_Delete(t *testing.T) {
	consumption := model.Consumption{ID: "con-1", ReservationID: "res-1", Subtotal: decimal.RequireFromString("37.50")}

	t.Run("reverses the fold", func(t *testing.T) {
		f := setup(t)

		f.consumptions.EXPECT().Get(gomock.Any(), gomock.Any()).Return(consumption, nil)
		f.consumptions.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.reservations.EXPECT().
			ApplyConsumptionTx(gomock.Any(), gomock.Any(), "res-1", gomock.Any(), "staff-1").
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, _ string, delta decimal.Decimal, _ string) (bool, error) {
				assert.Equal(t, "-37.50", delta.StringFixed(2))

				return true, nil
			})
		f.kafka.EXPECT().SendMessages(gomock.Any(), "miyabi.consumption", gomock.Any()).Return(nil)

		err := f.svc.Delete(context.Background(), staff, "con-1")

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
	})

	t.Run("closed reservation", func(t *testing.T) {
		f := setup(t)

		f.consumptions.EXPECT().Get(gomock.Any(), gomock.Any()).Return(consumption, nil)
		f.consumptions.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.reservations.EXPECT().ApplyConsumptionTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

		err := f.svc.Delete(context.Background(), staff, "con-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("not found", func(t *testing.T) {
		f := setup(t)

		f.consumptions.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Consumption{}, nil)

		err := f.svc.Delete(context.Background(), staff, "con-9")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestConsumptionService_GetByReservation(t *testing.T) {
	t.Run("ordered by posting time", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(reservationModel.Reservation{ID: "res-1", GuestID: "guest-1"}, nil)
		f.consumptions.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Consumption, error) {
				assert.Equal(t, model.FieldCreatedAt, params.SortBy)
				assert.Equal(t, gDto.SortDirAsc, params.SortDir)

				return []model.Consumption{{ID: "con-1"}, {ID: "con-2"}}, nil
			})

		res, err := f.svc.GetByReservation(context.Background(), guest, "res-1")

		require.NoError(t, err)
		assert.Equal(t, 2, res.TotalData)
		assert.Equal(t, "con-1", res.Consumptions[0].ID)
	})

	t.Run("other guest", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(reservationModel.Reservation{ID: "res-1", GuestID: "guest-2"}, nil)

		_, err := f.svc.GetByReservation(context.Background(), guest, "res-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestConsumptionService_Get(t *testing.T) {
	t.Run("guest sees own consumption", func(t *testing.T) {
		f := setup(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.consumptions.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Consumption{ID: "con-1", GuestID: "guest-1", Amount: 2}, nil)

		res, err := f.svc.Get(context.Background(), guest, "con-1")

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 2, res.Amount)
	})

	t.Run("hidden from other guests", func(t *testing.T) {
		f := setup(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.consumptions.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Consumption{ID: "con-1", GuestID: "guest-3"}, nil)

		_, err := f.svc.Get(context.Background(), guest, "con-1")

		time.Sleep(10 * time.Millisecond)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestConsumptionService_GetAll(t *testing.T) {
	f := setup(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
	f.consumptions.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
	f.consumptions.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Consumption{{ID: "con-1"}, {ID: "con-2"}}, nil)

	res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 2}, gDto.FilterGroup{})

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
}
