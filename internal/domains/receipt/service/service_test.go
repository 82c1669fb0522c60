package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"miyabi/config"
	"miyabi/infras/otel/mocks"
	s3Mocks "miyabi/infras/s3/mocks"
	consumptionMocks "miyabi/internal/domains/consumption/mocks"
	consumptionModel "miyabi/internal/domains/consumption/model"
	"miyabi/internal/domains/receipt/model/dto"
	"miyabi/internal/domains/receipt/service"
	reservationMocks "miyabi/internal/domains/reservation/mocks"
	reservationModel "miyabi/internal/domains/reservation/model"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/failure"
)

type fixture struct {
	svc          service.Receipt
	reservations *reservationMocks.MockReservation
	consumptions *consumptionMocks.MockConsumption
	s3           *s3Mocks.MockS3
}

func setup(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		reservations: reservationMocks.NewMockReservation(ctrl),
		consumptions: consumptionMocks.NewMockConsumption(ctrl),
		s3:           s3Mocks.NewMockS3(ctrl),
	}

	cfg := &config.Config{}
	cfg.Hotel.ReceiptDirectory = "receipts"
	cfg.Hotel.Currency = "JPY"
	cfg.External.S3.BucketName = "miyabi"

	f.svc = service.New(f.reservations, f.consumptions, f.s3, cfg, mocks.NewOtel())

	return f
}

func stay() reservationModel.Reservation {
	return reservationModel.Reservation{
		ID:               "res-1",
		Code:             "RES-2031-1234",
		GuestID:          "guest-1",
		GuestNames:       "Aiko",
		GuestSurnames:    "Tanaka",
		RoomNumber:       "101",
		RoomTypeName:     "Double",
		NumberNights:     3,
		PricePerNight:    decimal.RequireFromString("120.5"),
		RoomSubtotal:     decimal.RequireFromString("361.5"),
		TotalConsumption: decimal.RequireFromString("45"),
		TotalPay:         decimal.RequireFromString("406.5"),
		State:            reservationModel.StateConfirmed,
	}
}

func postings() []consumptionModel.Consumption {
	return []consumptionModel.Consumption{
		{ID: "con-1", ServiceName: "Breakfast", Amount: 2, UnitPrice: decimal.NewFromInt(15), Subtotal: decimal.NewFromInt(30)},
		{ID: "con-2", ServiceName: "Laundry", Amount: 1, UnitPrice: decimal.NewFromInt(15), Subtotal: decimal.NewFromInt(15)},
	}
}

func TestReceiptService_Build(t *testing.T) {
	t.Run("stay line first then consumptions in order", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stay(), nil)
		f.consumptions.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]consumptionModel.Consumption, error) {
				assert.Equal(t, consumptionModel.FieldCreatedAt, params.SortBy)
				assert.Equal(t, gDto.SortDirAsc, params.SortDir)
				assert.Equal(t, "res-1", filter.Filters[0].(gDto.Filter).Value)

				return postings(), nil
			})

		receipt, err := f.svc.Build(context.Background(), gDto.Caller{ID: "guest-1", Role: constant.RoleGuest}, "res-1")

		require.NoError(t, err)
		assert.Equal(t, "RES-2031-1234", receipt.Code)
		assert.Equal(t, "Aiko Tanaka", receipt.GuestName)
		assert.Equal(t, "406.50", receipt.TotalPay)
		assert.Equal(t, "JPY", receipt.Currency)
		assert.NotEmpty(t, receipt.IssuedAt)
		assert.Equal(t, []dto.Line{
			{Quantity: 3, Description: "Stay: Double", Price: "120.50", Subtotal: "361.50"},
			{Quantity: 2, Description: "Breakfast", Price: "15.00", Subtotal: "30.00"},
			{Quantity: 1, Description: "Laundry", Price: "15.00", Subtotal: "15.00"},
		}, receipt.Lines)
	})

	t.Run("without consumptions only the stay is billed", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stay(), nil)
		f.consumptions.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		receipt, err := f.svc.Build(context.Background(), gDto.Caller{ID: "staff-1", Role: constant.RoleEmployee}, "res-1")

		require.NoError(t, err)
		require.Len(t, receipt.Lines, 1)
		assert.Equal(t, "Stay: Double", receipt.Lines[0].Description)
	})

	tests := []struct {
		name        string
		reservation reservationModel.Reservation
		caller      gDto.Caller
	}{
		{name: "missing reservation", caller: gDto.Caller{ID: "staff-1", Role: constant.RoleEmployee}},
		{name: "someone else's stay", reservation: stay(), caller: gDto.Caller{ID: "guest-2", Role: constant.RoleGuest}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.reservation, nil)

			_, err := f.svc.Build(context.Background(), tt.caller, "res-1")

			require.Error(t, err)
			assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
		})
	}
}

func TestReceiptService_Archive(t *testing.T) {
	t.Run("uploads the json receipt under its code", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stay(), nil)
		f.consumptions.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(postings(), nil)
		f.s3.EXPECT().
			UploadFileBytes(gomock.Any(), "miyabi", "receipts", "RES-2031-1234.json", constant.ContentTypeJSON, gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _, _, _ string, body []byte) (string, error) {
				var receipt dto.ReceiptResponse

				require.NoError(t, json.Unmarshal(body, &receipt))
				assert.Len(t, receipt.Lines, 3)

				return "https://cdn.miyabi.test/receipts/RES-2031-1234.json", nil
			})

		res, err := f.svc.Archive(context.Background(), "res-1")

		require.NoError(t, err)
		assert.Equal(t, "RES-2031-1234", res.Code)
		assert.Equal(t, "https://cdn.miyabi.test/receipts/RES-2031-1234.json", res.URL)
	})

	t.Run("upload failure", func(t *testing.T) {
		f := setup(t)

		f.reservations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stay(), nil)
		f.consumptions.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		f.s3.EXPECT().UploadFileBytes(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("bucket gone"))

		_, err := f.svc.Archive(context.Background(), "res-1")

		require.Error(t, err)
	})
}
