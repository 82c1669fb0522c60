package validator_test

import (
	"miyabi/shared/failure"
	"miyabi/shared/validator"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingPayload struct {
	Email         string           `json:"email"           validate:"required,email"`
	EntryDate     string           `json:"entry_date"      validate:"required,isodate"`
	Adults        int              `json:"adults"          validate:"gte=1"`
	State         string           `json:"state"           validate:"omitempty,oneof=Pending Confirmed"`
	PricePerNight *decimal.Decimal `json:"price_per_night" validate:"omitempty,gt=0"`
}

func TestValidateStruct(t *testing.T) {
	price := decimal.RequireFromString("150.00")
	zero := decimal.Zero

	tests := []struct {
		name    string
		data    bookingPayload
		message string
	}{
		{
			name: "valid payload",
			data: bookingPayload{Email: "guest@miyabi.test", EntryDate: "2026-02-20", Adults: 2, PricePerNight: &price},
		},
		{
			name:    "missing email",
			data:    bookingPayload{EntryDate: "2026-02-20", Adults: 1},
			message: "Email is required",
		},
		{
			name:    "bad date",
			data:    bookingPayload{Email: "guest@miyabi.test", EntryDate: "20/02/2026", Adults: 1},
			message: "EntryDate must be a date formatted as YYYY-MM-DD",
		},
		{
			name:    "no adults",
			data:    bookingPayload{Email: "guest@miyabi.test", EntryDate: "2026-02-20"},
			message: "Adults must be greater than or equal to 1",
		},
		{
			name:    "unknown state",
			data:    bookingPayload{Email: "guest@miyabi.test", EntryDate: "2026-02-20", Adults: 1, State: "Lost"},
			message: "State must be one of Pending Confirmed",
		},
		{
			name:    "zero price",
			data:    bookingPayload{Email: "guest@miyabi.test", EntryDate: "2026-02-20", Adults: 1, PricePerNight: &zero},
			message: "PricePerNight must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)

			if tt.message == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		})
	}
}

func TestValidate(t *testing.T) {
	var payload bookingPayload

	err := validator.Validate(strings.NewReader(`{"email":"guest@miyabi.test","entry_date":"2026-02-20","adults":2,"price_per_night":"99.90"}`), &payload)
	require.NoError(t, err)
	assert.Equal(t, "99.9", payload.PricePerNight.String())

	err = validator.Validate(strings.NewReader(`{"email":`), &payload)
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("2026-02-25", "isodate"))
	assert.Error(t, validator.ValidateVar("2026-13-01", "isodate"))
	assert.NoError(t, validator.ValidateVar("admin", "oneof=admin employee"))
	assert.Error(t, validator.ValidateVar("guest", "oneof=admin employee"))
}
