package dto

import (
	consumptionModel "miyabi/internal/domains/consumption/model"
	reservationModel "miyabi/internal/domains/reservation/model"
	"miyabi/shared/constant"
	"miyabi/shared/timezone"
	"time"
)

const stayDescription = "Stay: "

type Line struct {
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Subtotal    string `json:"subtotal"`
}

type ReceiptResponse struct {
	Code             string `json:"code"`
	ReservationID    string `json:"reservation_id"`
	State            string `json:"state"`
	GuestID          string `json:"guest_id"`
	GuestName        string `json:"guest_name"`
	RoomNumber       string `json:"room_number"`
	RoomTypeName     string `json:"room_type_name"`
	EntryDate        string `json:"entry_date"`
	DepartureDate    string `json:"departure_date"`
	IssuedAt         string `json:"issued_at"`
	Lines            []Line `json:"lines"`
	RoomSubtotal     string `json:"room_subtotal"`
	TotalConsumption string `json:"total_consumption"`
	TotalPay         string `json:"total_pay"`
	Currency         string `json:"currency,omitempty"`
}

// FromModels lays the stay out as the first line followed by every consumption in the given order.
func (r *ReceiptResponse) FromModels(reservation reservationModel.Reservation, consumptions []consumptionModel.Consumption, issuedAt time.Time) {
	r.Code = reservation.Code
	r.ReservationID = reservation.ID
	r.State = reservation.State
	r.GuestID = reservation.GuestID
	r.GuestName = reservation.GuestFullName()
	r.RoomNumber = reservation.RoomNumber
	r.RoomTypeName = reservation.RoomTypeName
	r.EntryDate = reservation.EntryDate.Format(constant.DayFormat)
	r.DepartureDate = reservation.DepartureDate.Format(constant.DayFormat)
	r.IssuedAt = timezone.Format(issuedAt, constant.DateFormat)
	r.RoomSubtotal = reservation.RoomSubtotal.StringFixed(constant.MoneyDecimals)
	r.TotalConsumption = reservation.TotalConsumption.StringFixed(constant.MoneyDecimals)
	r.TotalPay = reservation.TotalPay.StringFixed(constant.MoneyDecimals)

	r.Lines = make([]Line, 0, len(consumptions)+1)
	r.Lines = append(r.Lines, Line{
		Quantity:    reservation.NumberNights,
		Description: stayDescription + reservation.RoomTypeName,
		Price:       reservation.PricePerNight.StringFixed(constant.MoneyDecimals),
		Subtotal:    reservation.RoomSubtotal.StringFixed(constant.MoneyDecimals),
	})

	for _, consumption := range consumptions {
		r.Lines = append(r.Lines, Line{
			Quantity:    consumption.Amount,
			Description: consumption.ServiceName,
			Price:       consumption.UnitPrice.StringFixed(constant.MoneyDecimals),
			Subtotal:    consumption.Subtotal.StringFixed(constant.MoneyDecimals),
		})
	}
}

type ArchiveResponse struct {
	Code string `json:"code"`
	URL  string `json:"url"`
}
