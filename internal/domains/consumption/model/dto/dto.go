package dto

import (
	"miyabi/internal/domains/consumption/model"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	gModel "miyabi/shared/model"
	"miyabi/shared/timezone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateConsumptionRequest struct {
	ReservationID string           `json:"reservation_id" validate:"required"`
	ServiceID     string           `json:"service_id"     validate:"required"`
	Amount        *int             `json:"amount"         validate:"omitempty,gte=1"`
	UnitPrice     *decimal.Decimal `json:"unit_price"     validate:"omitempty,gte=0"`
	Observation   *string          `json:"observation"    validate:"omitempty,max=200"`
}

// Quantity defaults to a single unit.
func (c CreateConsumptionRequest) Quantity() int {
	if c.Amount == nil {
		return 1
	}

	return *c.Amount
}

// ToModel charges catalogPrice per unit unless the request names its own price.
func (c *CreateConsumptionRequest) ToModel(user string, catalogPrice decimal.Decimal) model.Consumption {
	unitPrice := catalogPrice
	if c.UnitPrice != nil {
		unitPrice = *c.UnitPrice
	}

	unitPrice = unitPrice.Round(constant.MoneyDecimals)
	amount := c.Quantity()

	return model.Consumption{
		ID:            uuid.NewString(),
		ReservationID: c.ReservationID,
		ServiceID:     c.ServiceID,
		Amount:        amount,
		UnitPrice:     unitPrice,
		Subtotal:      unitPrice.Mul(decimal.NewFromInt(int64(amount))).Round(constant.MoneyDecimals),
		Observation:   c.Observation,
		Metadata:      gModel.NewMetadata(user, timezone.Now()),
	}
}

type ConsumptionResponse struct {
	ID              string  `json:"id"`
	ReservationID   string  `json:"reservation_id"`
	ReservationCode string  `json:"reservation_code,omitempty"`
	ServiceID       string  `json:"service_id"`
	ServiceName     string  `json:"service_name"`
	ServiceCategory *string `json:"service_category"`
	Amount          int     `json:"amount"`
	UnitPrice       string  `json:"unit_price"`
	Subtotal        string  `json:"subtotal"`
	Observation     *string `json:"observation"`
	gDto.Metadata
}

func (r *ConsumptionResponse) FromModel(model model.Consumption) {
	r.ID = model.ID
	r.ReservationID = model.ReservationID
	r.ReservationCode = model.ReservationCode
	r.ServiceID = model.ServiceID
	r.ServiceName = model.ServiceName
	r.ServiceCategory = model.ServiceCategory
	r.Amount = model.Amount
	r.UnitPrice = model.UnitPrice.StringFixed(constant.MoneyDecimals)
	r.Subtotal = model.Subtotal.StringFixed(constant.MoneyDecimals)
	r.Observation = model.Observation
	r.Metadata.FromModel(model.Metadata)
}

type GetConsumptionsResponse struct {
	Consumptions []ConsumptionResponse `json:"consumptions"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetConsumptionsResponse) FromModels(models []model.Consumption, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Consumptions = make([]ConsumptionResponse, len(models))
	for i, mod := range models {
		r.Consumptions[i].FromModel(mod)
	}
}
