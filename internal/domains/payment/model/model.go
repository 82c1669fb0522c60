package model

import (
	"miyabi/shared/model"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "payments"
	EntityName = "payment"

	FieldID            = "id"
	FieldReservationID = "reservation_id"
	FieldPaymentMethod = "payment_method"
	FieldPaymentStatus = "payment_status"
	FieldPaidAt        = "paid_at"
)

const (
	StatusPaid     = "Paid"
	StatusPending  = "Pending"
	StatusRefunded = "Refunded"
)

type Payment struct {
	ID              string          `db:"id"`
	ReservationID   string          `db:"reservation_id"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	PaymentMethod   string          `db:"payment_method"`
	PaymentStatus   string          `db:"payment_status"`
	ReceiptNumber   *string         `db:"receipt_number"`
	Observation     *string         `db:"observation"`
	PaidAt          time.Time       `db:"paid_at"`
	ReservationCode string          `db:"reservation_code" table:"reservations" column:"code"`
	GuestID         string          `db:"guest_id"         table:"reservations" column:"guest_id"`
	model.Metadata
}

func (Payment) GetJoinQuery() string {
	return "JOIN reservations ON reservations.id = payments.reservation_id"
}
