package model

import (
	"miyabi/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "consumptions"
	EntityName = "consumption"

	FieldID            = "id"
	FieldReservationID = "reservation_id"
	FieldServiceID     = "service_id"
	FieldCreatedAt     = "created_at"
)

type Consumption struct {
	ID              string          `db:"id"`
	ReservationID   string          `db:"reservation_id"`
	ServiceID       string          `db:"service_id"`
	Amount          int             `db:"amount"`
	UnitPrice       decimal.Decimal `db:"unit_price"`
	Subtotal        decimal.Decimal `db:"subtotal"`
	Observation     *string         `db:"observation"`
	ServiceName     string          `db:"service_name"     table:"services_catalog" column:"service_name"`
	ServiceCategory *string         `db:"service_category" table:"services_catalog" column:"category"`
	ReservationCode string          `db:"reservation_code" table:"reservations"     column:"code"`
	GuestID         string          `db:"guest_id"         table:"reservations"     column:"guest_id"`
	model.Metadata
}

func (Consumption) GetJoinQuery() string {
	return "JOIN services_catalog ON services_catalog.id = consumptions.service_id " +
		"JOIN reservations ON reservations.id = consumptions.reservation_id"
}
