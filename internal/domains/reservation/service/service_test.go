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
	guestMocks "miyabi/internal/domains/guest/mocks"
	guestDto "miyabi/internal/domains/guest/model/dto"
	paymentMocks "miyabi/internal/domains/payment/mocks"
	paymentModel "miyabi/internal/domains/payment/model"
	reservationMocks "miyabi/internal/domains/reservation/mocks"
	"miyabi/internal/domains/reservation/model"
	"miyabi/internal/domains/reservation/model/dto"
	"miyabi/internal/domains/reservation/service"
	roomMocks "miyabi/internal/domains/room/mocks"
	roomModel "miyabi/internal/domains/room/model"
	roomTypeMocks "miyabi/internal/domains/roomtype/mocks"
	roomTypeModel "miyabi/internal/domains/roomtype/model"
	cacheMocks "miyabi/shared/cache/mocks"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/event"
	"miyabi/shared/failure"
	repoMocks "miyabi/shared/repository/mocks"
)

var (
	staff = gDto.Caller{ID: "staff-1", Email: "staff@miyabi.test", Role: constant.RoleEmployee}
	guest = gDto.Caller{ID: "guest-1", Email: "guest@miyabi.test", Role: constant.RoleGuest}
)

type fixture struct {
	svc          service.Reservation
	reservations *reservationMocks.MockReservation
	rooms        *roomMocks.MockRoom
	roomTypes    *roomTypeMocks.MockRoomType
	guests       *guestMocks.MockGuest
	payments     *paymentMocks.MockPayment
	transactor   *repoMocks.MockTransactor
	kafka        *kafkaMocks.MockClient
	cache        *cacheMocks.MockRedisCache
	events       chan event.Event
}

func setup(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		reservations: reservationMocks.NewMockReservation(ctrl),
		rooms:        roomMocks.NewMockRoom(ctrl),
		roomTypes:    roomTypeMocks.NewMockRoomType(ctrl),
		guests:       guestMocks.NewMockGuest(ctrl),
		payments:     paymentMocks.NewMockPayment(ctrl),
		transactor:   repoMocks.NewMockTransactor(ctrl),
		kafka:        kafkaMocks.NewMockClient(ctrl),
		cache:        cacheMocks.NewMockRedisCache(ctrl),
		events:       make(chan event.Event, 4),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.transactor.EXPECT().
		WithinTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(*sqlx.Tx) error) error { return fn(nil) }).
		AnyTimes()

	f.kafka.EXPECT().
		SendMessages(gomock.Any(), "miyabi.reservation", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
			for _, message := range messages {
				if evt, ok := message.Value.(event.Event); ok {
					f.events <- evt
				}
			}

			return nil
		}).
		AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Hotel.TotalRooms = 2
	cfg.Hotel.MaxGroupSize = 6
	cfg.Hotel.CodePrefix = "RES"
	cfg.Hotel.CodeMaxRetries = 5
	cfg.Hotel.AvailabilityDays = 365
	cfg.Kafka.Topics.Reservation = "miyabi.reservation"

	f.svc = service.New(f.reservations, f.rooms, f.roomTypes, f.guests, f.payments, f.transactor, cfg, f.cache, mocks.NewOtel(), f.kafka)

	return f
}

func (f fixture) cacheMiss() {
	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
}

func (f fixture) lastEvent(t *testing.T) event.Event {
	t.Helper()

	select {
	case evt := <-f.events:
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event published")

		return event.Event{}
	}
}

func intPtr(v int) *int { return &v }

func day(value string) time.Time {
	t, _ := time.Parse(constant.DayFormat, value)

	return t
}

func availableRoom() roomModel.Room {
	return roomModel.Room{
		ID:             "room-1",
		RoomNumber:     "101",
		State:          roomModel.StateAvailable,
		RoomTypeName:   "Double",
		BasePrice:      decimal.RequireFromString("120.50"),
		CapacityPeople: 3,
	}
}

func bookingRequest() dto.CreateReservationRequest {
	return dto.CreateReservationRequest{
		QuoteRequest: dto.QuoteRequest{
			RoomID:        "room-1",
			EntryDate:     "2031-05-01",
			DepartureDate: "2031-05-04",
			NumAdults:     intPtr(2),
			NumChildren:   intPtr(1),
		},
	}
}

// expectBookable primes the lookups prepare performs before the transaction.
func (f fixture) expectBookable(room roomModel.Room, stays []model.Reservation) {
	f.guests.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room, nil)
	f.reservations.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(stays, nil)
	f.reservations.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
}

func TestReservationService_Quote(t *testing.T) {
	t.Run("prices the stay at the room type rate", func(t *testing.T) {
		f := setup(t)

		f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableRoom(), nil)
		f.reservations.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		res, err := f.svc.Quote(context.Background(), guest, bookingRequest().QuoteRequest)

		require.NoError(t, err)
		assert.Equal(t, 3, res.Nights)
		assert.Equal(t, "120.50", res.PricePerNight)
		assert.Equal(t, "361.50", res.RoomSubtotal)
		assert.Equal(t, "0.00", res.TotalConsumption)
		assert.Equal(t, "361.50", res.TotalPay)
		assert.True(t, res.Available)
	})

	t.Run("fully booked nights are reported unavailable", func(t *testing.T) {
		f := setup(t)

		stays := []model.Reservation{
			{EntryDate: day("2031-04-30"), DepartureDate: day("2031-05-02"), State: model.StatePending},
			{EntryDate: day("2031-05-01"), DepartureDate: day("2031-05-03"), State: model.StateConfirmed},
		}

		f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableRoom(), nil)
		f.reservations.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(stays, nil)

		res, err := f.svc.Quote(context.Background(), guest, bookingRequest().QuoteRequest)

		require.NoError(t, err)
		assert.False(t, res.Available)
	})

	t.Run("departure before entry", func(t *testing.T) {
		f := setup(t)

		req := bookingRequest().QuoteRequest
		req.DepartureDate = "2031-04-30"

		f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableRoom(), nil)

		_, err := f.svc.Quote(context.Background(), guest, req)

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestReservationService_Create(t *testing.T) {
	t.Run("guest books a pending stay", func(t *testing.T) {
		f := setup(t)

		f.expectBookable(availableRoom(), nil)
		f.reservations.EXPECT().
			InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, reservation model.Reservation) error {
				assert.Equal(t, "guest-1", reservation.GuestID)
				assert.Equal(t, model.StatePending, reservation.State)
				assert.Equal(t, 3, reservation.NumberNights)
				assert.Equal(t, "361.50", reservation.TotalPay.StringFixed(2))
				assert.Regexp(t, `^RES-\d{4}-\d{4}$`, reservation.Code)

				return nil
			})
		f.rooms.EXPECT().
			SwapStateTx(gomock.Any(), gomock.Any(), "room-1", []string{roomModel.StateAvailable}, roomModel.StateReserved, "guest-1").
			Return(true, nil)

		res, err := f.svc.Create(context.Background(), guest, bookingRequest())

		require.NoError(t, err)
		assert.Equal(t, model.StatePending, res.State)
		assert.Equal(t, "361.50", res.TotalPay)

		evt := f.lastEvent(t)
		assert.Equal(t, event.TypeReservationCreated, evt.Type)
		assert.Equal(t, res.ReservationID, evt.ReservationID)
	})

	t.Run("contact details are refreshed with the booking", func(t *testing.T) {
		f := setup(t)

		phone := "555-0101"
		req := bookingRequest()
		req.Contact = &guestDto.ContactDetails{Phone: &phone, City: "Kyoto"}

		f.expectBookable(availableRoom(), nil)
		f.guests.EXPECT().
			UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, "555-0101", fields["phone"])
				assert.Equal(t, "Kyoto", fields["city"])

				return nil
			})
		f.reservations.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.rooms.EXPECT().SwapStateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := f.svc.Create(context.Background(), guest, req)

		require.NoError(t, err)
	})

	t.Run("staff may override the nightly rate", func(t *testing.T) {
		f := setup(t)

		price := decimal.RequireFromString("99.999")
		req := bookingRequest()
		req.GuestID = "guest-7"
		req.PricePerNight = &price

		f.expectBookable(availableRoom(), nil)
		f.reservations.EXPECT().
			InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, reservation model.Reservation) error {
				assert.Equal(t, "guest-7", reservation.GuestID)
				assert.Equal(t, "100.00", reservation.PricePerNight.StringFixed(2))
				assert.Equal(t, "300.00", reservation.RoomSubtotal.StringFixed(2))
				assert.Equal(t, "staff-1", reservation.CreatedBy)

				return nil
			})
		f.rooms.EXPECT().SwapStateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := f.svc.Create(context.Background(), staff, req)

		require.NoError(t, err)
	})

	t.Run("room taken between check and write", func(t *testing.T) {
		f := setup(t)

		f.expectBookable(availableRoom(), nil)
		f.reservations.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.rooms.EXPECT().SwapStateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := f.svc.Create(context.Background(), guest, bookingRequest())

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("hotel fully booked", func(t *testing.T) {
		f := setup(t)

		stays := []model.Reservation{
			{EntryDate: day("2031-05-03"), DepartureDate: day("2031-05-06"), State: model.StateConfirmed},
			{EntryDate: day("2031-05-02"), DepartureDate: day("2031-05-04"), State: model.StatePending},
		}

		f.guests.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableRoom(), nil)
		f.reservations.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(stays, nil)

		_, err := f.svc.Create(context.Background(), guest, bookingRequest())

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	tests := []struct {
		name     string
		caller   gDto.Caller
		mutate   func(req *dto.CreateReservationRequest)
		prime    func(f fixture)
		wantCode int
	}{
		{
			name:     "guest books for someone else",
			caller:   guest,
			mutate:   func(req *dto.CreateReservationRequest) { req.GuestID = "guest-2" },
			wantCode: http.StatusForbidden,
		},
		{
			name:     "staff without a guest",
			caller:   staff,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "no adults",
			caller:   guest,
			mutate:   func(req *dto.CreateReservationRequest) { req.NumAdults = intPtr(0) },
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "group too large",
			caller:   guest,
			mutate:   func(req *dto.CreateReservationRequest) { req.NumAdults, req.NumChildren = intPtr(5), intPtr(2) },
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "guest books in the past",
			caller:   guest,
			mutate:   func(req *dto.CreateReservationRequest) { req.EntryDate, req.DepartureDate = "2001-01-01", "2001-01-03" },
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "unknown guest",
			caller: guest,
			prime: func(f fixture) {
				f.guests.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:   "room under maintenance",
			caller: guest,
			prime: func(f fixture) {
				room := availableRoom()
				room.State = roomModel.StateMaintenance

				f.guests.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "room too small",
			caller: guest,
			prime: func(f fixture) {
				room := availableRoom()
				room.CapacityPeople = 2

				f.guests.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "unknown room",
			caller: guest,
			prime: func(f fixture) {
				f.guests.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roomModel.Room{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			req := bookingRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			if tt.prime != nil {
				tt.prime(f)
			}

			_, err := f.svc.Create(context.Background(), tt.caller, req)

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestReservationService_Confirm(t *testing.T) {
	t.Run("books and pays the full stay", func(t *testing.T) {
		f := setup(t)

		req := dto.ConfirmReservationRequest{CreateReservationRequest: bookingRequest(), PaymentMethod: "Card"}

		var reservationID string

		f.expectBookable(availableRoom(), nil)
		f.reservations.EXPECT().
			InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, reservation model.Reservation) error {
				assert.Equal(t, model.StateConfirmed, reservation.State)

				reservationID = reservation.ID

				return nil
			})
		f.rooms.EXPECT().SwapStateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.payments.EXPECT().
			InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, payment paymentModel.Payment) error {
				assert.Equal(t, reservationID, payment.ReservationID)
				assert.Equal(t, "361.50", payment.TotalAmount.StringFixed(2))
				assert.Equal(t, paymentModel.StatusPaid, payment.PaymentStatus)
				assert.Equal(t, "Card", payment.PaymentMethod)

				return nil
			})

		res, err := f.svc.Confirm(context.Background(), guest, req)

		require.NoError(t, err)
		assert.Equal(t, reservationID, res.ReservationID)
		assert.NotEmpty(t, res.PaymentID)
		assert.Equal(t, "361.50", res.TotalPay)
		assert.Equal(t, event.TypeReservationConfirmed, f.lastEvent(t).Type)
	})

	t.Run("payment failure rolls the booking back", func(t *testing.T) {
		f := setup(t)

		req := dto.ConfirmReservationRequest{CreateReservationRequest: bookingRequest(), PaymentMethod: "Card"}

		f.expectBookable(availableRoom(), nil)
		f.reservations.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.rooms.EXPECT().SwapStateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.payments.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		_, err := f.svc.Confirm(context.Background(), guest, req)

		require.Error(t, err)
		assert.Empty(t, f.events)
	})
}

func TestReservationService_Get(t *testing.T) {
	reservation := model.Reservation{
		ID:            "res-1",
		Code:          "RES-2031-1234",
		GuestID:       "guest-1",
		GuestNames:    "Aiko",
		GuestSurnames: "Tanaka",
		EntryDate:     day("2031-05-01"),
		DepartureDate: day("2031-05-04"),
		TotalPay:      decimal.RequireFromString("361.5"),
		State:         model.StatePending,
	}

	tests := []struct {
		name     string
		caller   gDto.Caller
		wantCode int
	}{
		{name: "staff", caller: staff},
		{name: "owner", caller: guest},
		{name: "other guest", caller: gDto.Caller{ID: "guest-2", Role: constant.RoleGuest}, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			f.cacheMiss()
			f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(reservation, nil)

			res, err := f.svc.Get(context.Background(), tt.caller, "res-1")

			time.Sleep(10 * time.Millisecond)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Aiko Tanaka", res.GuestName)
			assert.Equal(t, "2031-05-01", res.EntryDate)
			assert.Equal(t, "361.50", res.TotalPay)
		})
	}

	t.Run("served from cache", func(t *testing.T) {
		f := setup(t)

		f.cache.EXPECT().
			Get(gomock.Any(), "reservation:get:res-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, target any) error {
				*(target.(*dto.ReservationResponse)) = dto.ReservationResponse{ID: "res-1", GuestID: "guest-1"}

				return nil
			})

		res, err := f.svc.Get(context.Background(), guest, "res-1")

		require.NoError(t, err)
		assert.Equal(t, "res-1", res.ID)
	})

	t.Run("not found", func(t *testing.T) {
		f := setup(t)

		f.cacheMiss()
		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{}, nil)

		_, err := f.svc.Get(context.Background(), staff, "res-9")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestReservationService_GetByCode(t *testing.T) {
	f := setup(t)

	f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{ID: "res-1", Code: "RES-2031-1234", GuestID: "guest-3"}, nil)

	_, err := f.svc.GetByCode(context.Background(), guest, "RES-2031-1234")

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestReservationService_GetMine(t *testing.T) {
	t.Run("staff have no personal reservations", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.GetMine(context.Background(), staff, gDto.QueryParams{})

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("guest sees own reservations", func(t *testing.T) {
		f := setup(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
		f.reservations.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
				require.Len(t, filter.Filters, 1)
				assert.Equal(t, "guest-1", filter.Filters[0].(gDto.Filter).Value)

				return 1, nil
			})
		f.reservations.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Reservation{{ID: "res-1", GuestID: "guest-1"}}, nil)

		res, err := f.svc.GetMine(context.Background(), guest, gDto.QueryParams{Page: 1, Limit: 10})

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 1, res.TotalData)
		assert.Len(t, res.Reservations, 1)
	})
}

func TestReservationService_UpdateState(t *testing.T) {
	pending := model.Reservation{ID: "res-1", GuestID: "guest-1", RoomID: "room-1", State: model.StatePending}

	t.Run("guest cancels and the room is released", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pending, nil)
		f.reservations.EXPECT().
			SwapStateTx(gomock.Any(), gomock.Any(), "res-1", model.StatePending, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, _, _ string, fields map[string]any) (bool, error) {
				assert.Equal(t, model.StateCancelled, fields[model.FieldState])
				assert.NotContains(t, fields, model.FieldCheckoutAt)

				return true, nil
			})
		f.rooms.EXPECT().
			SwapStateTx(gomock.Any(), gomock.Any(), "room-1", []string{roomModel.StateReserved, roomModel.StateOccupied}, roomModel.StateAvailable, "guest-1").
			Return(true, nil)

		err := f.svc.UpdateState(context.Background(), guest, dto.UpdateStateRequest{State: model.StateCancelled}, "res-1")

		require.NoError(t, err)
		assert.Equal(t, event.TypeReservationCancelled, f.lastEvent(t).Type)
	})

	t.Run("completion stamps the checkout", func(t *testing.T) {
		f := setup(t)

		confirmed := pending
		confirmed.State = model.StateConfirmed

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed, nil)
		f.reservations.EXPECT().
			SwapStateTx(gomock.Any(), gomock.Any(), "res-1", model.StateConfirmed, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, _, _ string, fields map[string]any) (bool, error) {
				assert.Contains(t, fields, model.FieldCheckoutAt)
				assert.Equal(t, "staff-1", fields[model.FieldCheckoutBy])

				return true, nil
			})
		f.rooms.EXPECT().SwapStateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

		err := f.svc.UpdateState(context.Background(), staff, dto.UpdateStateRequest{State: model.StateCompleted}, "res-1")

		require.NoError(t, err)
		assert.Equal(t, event.TypeReservationCompleted, f.lastEvent(t).Type)
	})

	t.Run("confirming keeps the room reserved", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pending, nil)
		f.reservations.EXPECT().SwapStateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

		err := f.svc.UpdateState(context.Background(), staff, dto.UpdateStateRequest{State: model.StateConfirmed}, "res-1")

		require.NoError(t, err)
	})

	t.Run("lost race", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pending, nil)
		f.reservations.EXPECT().SwapStateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

		err := f.svc.UpdateState(context.Background(), staff, dto.UpdateStateRequest{State: model.StateConfirmed}, "res-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	tests := []struct {
		name     string
		current  string
		caller   gDto.Caller
		state    string
		wantCode int
	}{
		{name: "cancelled is final", current: model.StateCancelled, caller: staff, state: model.StateConfirmed, wantCode: http.StatusBadRequest},
		{name: "completed is final", current: model.StateCompleted, caller: staff, state: model.StateCancelled, wantCode: http.StatusBadRequest},
		{name: "confirmed cannot confirm again", current: model.StateConfirmed, caller: staff, state: model.StateConfirmed, wantCode: http.StatusBadRequest},
		{name: "guest cannot complete", current: model.StatePending, caller: guest, state: model.StateCompleted, wantCode: http.StatusForbidden},
		{
			name:     "guest cannot touch another stay",
			current:  model.StatePending,
			caller:   gDto.Caller{ID: "guest-2", Role: constant.RoleGuest},
			state:    model.StateCancelled,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			current := pending
			current.State = tt.current

			f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)

			err := f.svc.UpdateState(context.Background(), tt.caller, dto.UpdateStateRequest{State: tt.state}, "res-1")

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestReservationService_CheckIn(t *testing.T) {
	confirmed := model.Reservation{ID: "res-1", GuestID: "guest-1", RoomID: "room-1", State: model.StateConfirmed}

	t.Run("occupies the room", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed, nil)
		f.reservations.EXPECT().
			SwapStateTx(gomock.Any(), gomock.Any(), "res-1", model.StateConfirmed, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, _, _ string, fields map[string]any) (bool, error) {
				assert.Contains(t, fields, model.FieldCheckinAt)
				assert.NotContains(t, fields, model.FieldState)

				return true, nil
			})
		f.rooms.EXPECT().
			SwapStateTx(gomock.Any(), gomock.Any(), "room-1", []string{roomModel.StateReserved}, roomModel.StateOccupied, "staff-1").
			Return(true, nil)

		err := f.svc.CheckIn(context.Background(), staff, "res-1")

		require.NoError(t, err)
		assert.Equal(t, event.TypeReservationCheckedIn, f.lastEvent(t).Type)
	})

	t.Run("room not held", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed, nil)
		f.reservations.EXPECT().SwapStateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.rooms.EXPECT().SwapStateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

		err := f.svc.CheckIn(context.Background(), staff, "res-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("pending stays cannot check in", func(t *testing.T) {
		f := setup(t)

		pending := confirmed
		pending.State = model.StatePending

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pending, nil)

		err := f.svc.CheckIn(context.Background(), staff, "res-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("already checked in", func(t *testing.T) {
		f := setup(t)

		arrived := confirmed
		now := time.Now()
		arrived.CheckinAt = &now

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(arrived, nil)

		err := f.svc.CheckIn(context.Background(), staff, "res-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestReservationService_Update(t *testing.T) {
	existing := model.Reservation{ID: "res-1", GuestID: "guest-1", RoomID: "room-1", State: model.StateConfirmed}

	req := dto.UpdateReservationRequest{
		RoomID:        "room-2",
		GuestID:       "guest-1",
		EntryDate:     "2031-06-01",
		DepartureDate: "2031-06-03",
		NumAdults:     2,
	}

	t.Run("moving rooms keeps posted consumption in the total", func(t *testing.T) {
		f := setup(t)

		room := availableRoom()
		room.ID = "room-2"
		room.BasePrice = decimal.NewFromInt(200)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		f.guests.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room, nil)
		f.reservations.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Reservation, error) {
				assert.Contains(t, filter.Filters, gDto.Filter{Field: model.FieldID, Value: "res-1", Operator: gDto.FilterOperatorNotEq, Table: model.TableName})

				return nil, nil
			})
		f.reservations.EXPECT().
			GetTx(gomock.Any(), gomock.Any(), gomock.Any(), model.FieldTotalConsumption).
			Return(model.Reservation{TotalConsumption: decimal.RequireFromString("45.25")}, nil)
		f.reservations.EXPECT().
			UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, "room-2", fields[model.FieldRoomID])
				assert.Equal(t, 2, fields[model.FieldNumberNights])
				assert.Equal(t, "400.00", fields[model.FieldRoomSubtotal].(decimal.Decimal).StringFixed(2))
				assert.Equal(t, "445.25", fields[model.FieldTotalPay].(decimal.Decimal).StringFixed(2))

				return nil
			})
		f.rooms.EXPECT().
			SwapStateTx(gomock.Any(), gomock.Any(), "room-2", []string{roomModel.StateAvailable}, roomModel.StateReserved, "staff-1").
			Return(true, nil)
		f.rooms.EXPECT().
			SwapStateTx(gomock.Any(), gomock.Any(), "room-1", []string{roomModel.StateReserved, roomModel.StateOccupied}, roomModel.StateAvailable, "staff-1").
			Return(true, nil)

		err := f.svc.Update(context.Background(), staff, req, "res-1")

		require.NoError(t, err)
		assert.Equal(t, event.TypeReservationUpdated, f.lastEvent(t).Type)
	})

	t.Run("closed reservations are frozen", func(t *testing.T) {
		f := setup(t)

		closed := existing
		closed.State = model.StateCompleted

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(closed, nil)

		err := f.svc.Update(context.Background(), staff, req, "res-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("new dates onto full nights", func(t *testing.T) {
		f := setup(t)

		room := availableRoom()
		room.ID = "room-2"

		stays := []model.Reservation{
			{EntryDate: day("2031-05-30"), DepartureDate: day("2031-06-03"), State: model.StateConfirmed},
			{EntryDate: day("2031-06-02"), DepartureDate: day("2031-06-04"), State: model.StatePending},
		}

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		f.guests.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room, nil)
		f.reservations.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(stays, nil)

		err := f.svc.Update(context.Background(), staff, req, "res-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("unchanged dates skip the booking check", func(t *testing.T) {
		f := setup(t)

		same := existing
		same.EntryDate = day("2031-06-01")
		same.DepartureDate = day("2031-06-03")

		sameRoom := req
		sameRoom.RoomID = "room-1"

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(same, nil)
		f.guests.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableRoom(), nil)
		f.reservations.EXPECT().
			GetTx(gomock.Any(), gomock.Any(), gomock.Any(), model.FieldTotalConsumption).
			Return(model.Reservation{}, nil)
		f.reservations.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		err := f.svc.Update(context.Background(), staff, sameRoom, "res-1")

		require.NoError(t, err)
		assert.Equal(t, event.TypeReservationUpdated, f.lastEvent(t).Type)
	})

	t.Run("target room busy", func(t *testing.T) {
		f := setup(t)

		room := availableRoom()
		room.ID = "room-2"
		room.State = roomModel.StateOccupied

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		f.guests.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room, nil)

		err := f.svc.Update(context.Background(), staff, req, "res-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestReservationService_Delete(t *testing.T) {
	t.Run("open reservation frees its room", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{ID: "res-1", RoomID: "room-1", State: model.StatePending}, nil)
		f.reservations.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.rooms.EXPECT().SwapStateTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any(), roomModel.StateAvailable, gomock.Any()).Return(true, nil)

		err := f.svc.Delete(context.Background(), staff, "res-1")

		require.NoError(t, err)
		assert.Equal(t, event.TypeReservationDeleted, f.lastEvent(t).Type)
	})

	t.Run("closed reservation leaves rooms alone", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{ID: "res-1", RoomID: "room-1", State: model.StateCompleted}, nil)
		f.reservations.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		err := f.svc.Delete(context.Background(), staff, "res-1")

		require.NoError(t, err)
	})
}

func TestReservationService_UnavailableDates(t *testing.T) {
	f := setup(t)

	future := time.Now().AddDate(0, 1, 0)
	entry := time.Date(future.Year(), future.Month(), future.Day(), 0, 0, 0, 0, time.UTC)

	stays := []model.Reservation{
		{EntryDate: entry, DepartureDate: entry.AddDate(0, 0, 2), State: model.StateConfirmed},
		{EntryDate: entry.AddDate(0, 0, 1), DepartureDate: entry.AddDate(0, 0, 3), State: model.StatePending},
	}

	f.cacheMiss()
	f.reservations.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(stays, nil)

	dates, err := f.svc.UnavailableDates(context.Background())

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, []string{entry.AddDate(0, 0, 1).Format(constant.DayFormat)}, dates)
}

func TestReservationService_MonthAvailability(t *testing.T) {
	t.Run("one entry per day", func(t *testing.T) {
		f := setup(t)

		stays := []model.Reservation{
			{EntryDate: day("2031-01-28"), DepartureDate: day("2031-02-02"), State: model.StateConfirmed},
			{EntryDate: day("2031-02-01"), DepartureDate: day("2031-02-03"), State: model.StatePending},
		}

		f.cacheMiss()
		f.reservations.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(stays, nil)
		f.roomTypes.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any(), roomTypeModel.FieldBasePrice).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]roomTypeModel.RoomType, error) {
				assert.Equal(t, 1, params.Limit)
				assert.Equal(t, gDto.SortDirAsc, params.SortDir)

				return []roomTypeModel.RoomType{{BasePrice: decimal.NewFromInt(80)}}, nil
			})

		res, err := f.svc.MonthAvailability(context.Background(), 2031, 2)

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		require.Len(t, res.Days, 28)
		assert.Equal(t, dto.DayAvailability{Date: "2031-02-01", Available: false, Occupied: 2, MinPrice: "80.00"}, res.Days[0])
		assert.Equal(t, dto.DayAvailability{Date: "2031-02-02", Available: true, Occupied: 1, MinPrice: "80.00"}, res.Days[1])
		assert.Equal(t, 0, res.Days[2].Occupied)
	})

	for _, month := range []int{0, 13} {
		t.Run("invalid month", func(t *testing.T) {
			f := setup(t)

			_, err := f.svc.MonthAvailability(context.Background(), 2031, month)

			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		})
	}
}
