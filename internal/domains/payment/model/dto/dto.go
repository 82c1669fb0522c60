package dto

import (
	"miyabi/internal/domains/payment/model"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	gModel "miyabi/shared/model"
	"miyabi/shared/timezone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	ReservationID string           `json:"reservation_id" validate:"required"`
	TotalAmount   *decimal.Decimal `json:"total_amount"   validate:"omitempty,gte=0"`
	PaymentMethod string           `json:"payment_method" validate:"required,max=30"`
	PaymentStatus string           `json:"payment_status" validate:"omitempty,oneof=Paid Pending Refunded"`
	ReceiptNumber *string          `json:"receipt_number" validate:"omitempty,max=50"`
	Observation   *string          `json:"observation"    validate:"omitempty"`
}

// ToModel charges amount when the request leaves the total out.
func (c *CreatePaymentRequest) ToModel(user string, amount decimal.Decimal) model.Payment {
	now := timezone.Now()

	payment := model.Payment{
		ID:            uuid.NewString(),
		ReservationID: c.ReservationID,
		TotalAmount:   amount.Round(constant.MoneyDecimals),
		PaymentMethod: c.PaymentMethod,
		PaymentStatus: c.PaymentStatus,
		ReceiptNumber: c.ReceiptNumber,
		Observation:   c.Observation,
		PaidAt:        now,
		Metadata:      gModel.NewMetadata(user, now),
	}

	if c.TotalAmount != nil {
		payment.TotalAmount = c.TotalAmount.Round(constant.MoneyDecimals)
	}

	if payment.PaymentStatus == constant.Empty {
		payment.PaymentStatus = model.StatusPaid
	}

	return payment
}

type UpdatePaymentRequest struct {
	PaymentMethod string  `db:"payment_method" json:"payment_method" validate:"omitempty,max=30"`
	PaymentStatus string  `db:"payment_status" json:"payment_status" validate:"omitempty,oneof=Paid Pending Refunded"`
	ReceiptNumber *string `db:"receipt_number" json:"receipt_number" validate:"omitempty,max=50"`
	Observation   *string `db:"observation"    json:"observation"    validate:"omitempty"`
}

func (u UpdatePaymentRequest) IsEmpty() bool {
	return u.PaymentMethod == constant.Empty && u.PaymentStatus == constant.Empty && u.ReceiptNumber == nil && u.Observation == nil
}

type PaymentResponse struct {
	ID              string  `json:"id"`
	ReservationID   string  `json:"reservation_id"`
	ReservationCode string  `json:"reservation_code"`
	TotalAmount     string  `json:"total_amount"`
	PaymentMethod   string  `json:"payment_method"`
	PaymentStatus   string  `json:"payment_status"`
	ReceiptNumber   *string `json:"receipt_number"`
	Observation     *string `json:"observation"`
	PaidAt          string  `json:"paid_at"`
	gDto.Metadata
}

func (r *PaymentResponse) FromModel(model model.Payment) {
	r.ID = model.ID
	r.ReservationID = model.ReservationID
	r.ReservationCode = model.ReservationCode
	r.TotalAmount = model.TotalAmount.StringFixed(constant.MoneyDecimals)
	r.PaymentMethod = model.PaymentMethod
	r.PaymentStatus = model.PaymentStatus
	r.ReceiptNumber = model.ReceiptNumber
	r.Observation = model.Observation
	r.PaidAt = timezone.Format(model.PaidAt, constant.DateFormat)
	r.Metadata.FromModel(model.Metadata)
}

type GetPaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetPaymentsResponse) FromModels(models []model.Payment, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Payments = make([]PaymentResponse, len(models))
	for i, mod := range models {
		r.Payments[i].FromModel(mod)
	}
}
