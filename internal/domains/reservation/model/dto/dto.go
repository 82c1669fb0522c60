package dto

import (
	guestDto "miyabi/internal/domains/guest/model/dto"
	"miyabi/internal/domains/reservation/model"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	gModel "miyabi/shared/model"
	"miyabi/shared/timezone"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QuoteRequest struct {
	RoomID        string `json:"room_id"        validate:"required"`
	EntryDate     string `json:"entry_date"     validate:"required,isodate"`
	DepartureDate string `json:"departure_date" validate:"required,isodate"`
	NumAdults     *int   `json:"num_adults"     validate:"omitempty"`
	NumChildren   *int   `json:"num_children"   validate:"omitempty"`
}

// Occupants defaults to one adult and no children.
func (q QuoteRequest) Occupants() (adults, children int) {
	adults, children = 1, 0

	if q.NumAdults != nil {
		adults = *q.NumAdults
	}

	if q.NumChildren != nil {
		children = *q.NumChildren
	}

	return adults, children
}

type QuoteResponse struct {
	RoomID           string `json:"room_id"`
	RoomTypeName     string `json:"room_type_name"`
	EntryDate        string `json:"entry_date"`
	DepartureDate    string `json:"departure_date"`
	Nights           int    `json:"nights"`
	PricePerNight    string `json:"price_per_night"`
	RoomSubtotal     string `json:"room_subtotal"`
	TotalConsumption string `json:"total_consumption"`
	TotalPay         string `json:"total_pay"`
	Available        bool   `json:"available"`
}

type CreateReservationRequest struct {
	QuoteRequest
	GuestID       string                   `json:"guest_id"        validate:"omitempty"`
	PricePerNight *decimal.Decimal         `json:"price_per_night" validate:"omitempty,gte=0"`
	Observations  *string                  `json:"observations"    validate:"omitempty,max=500"`
	Contact       *guestDto.ContactDetails `json:"contact"         validate:"omitempty"`
}

// Priced is the outcome of pricing a stay, handed from the service to ToModel.
type Priced struct {
	GuestID          string
	EntryDate        time.Time
	DepartureDate    time.Time
	Nights           int
	PricePerNight    decimal.Decimal
	RoomSubtotal     decimal.Decimal
	TotalConsumption decimal.Decimal
	TotalPay         decimal.Decimal
}

func (c *CreateReservationRequest) ToModel(user, code, state string, priced Priced) model.Reservation {
	adults, children := c.Occupants()

	return model.Reservation{
		ID:               uuid.NewString(),
		Code:             code,
		EntryDate:        priced.EntryDate,
		DepartureDate:    priced.DepartureDate,
		NumberNights:     priced.Nights,
		PricePerNight:    priced.PricePerNight,
		RoomSubtotal:     priced.RoomSubtotal,
		TotalConsumption: priced.TotalConsumption,
		TotalPay:         priced.TotalPay,
		State:            state,
		Observations:     c.Observations,
		NumAdults:        adults,
		NumChildren:      children,
		GuestID:          priced.GuestID,
		RoomID:           c.RoomID,
		Metadata:         gModel.NewMetadata(user, timezone.Now()),
	}
}

type CreateReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	Code          string `json:"code"`
	State         string `json:"state"`
	Nights        int    `json:"nights"`
	TotalPay      string `json:"total_pay"`
}

func (r *CreateReservationResponse) FromModel(model model.Reservation) {
	r.ReservationID = model.ID
	r.Code = model.Code
	r.State = model.State
	r.Nights = model.NumberNights
	r.TotalPay = model.TotalPay.StringFixed(constant.MoneyDecimals)
}

type ConfirmReservationRequest struct {
	CreateReservationRequest
	PaymentMethod string  `json:"payment_method" validate:"required,max=30"`
	ReceiptNumber *string `json:"receipt_number" validate:"omitempty,max=50"`
}

type ConfirmReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	Code          string `json:"code"`
	PaymentID     string `json:"payment_id"`
	TotalPay      string `json:"total_pay"`
}

type UpdateReservationRequest struct {
	RoomID        string  `json:"room_id"        validate:"required"`
	GuestID       string  `json:"guest_id"       validate:"required"`
	EntryDate     string  `json:"entry_date"     validate:"required,isodate"`
	DepartureDate string  `json:"departure_date" validate:"required,isodate"`
	NumAdults     int     `json:"num_adults"     validate:"gte=1"`
	NumChildren   int     `json:"num_children"   validate:"gte=0"`
	Observations  *string `json:"observations"   validate:"omitempty,max=500"`
}

type UpdateStateRequest struct {
	State string `json:"state" validate:"required,oneof=Confirmed Cancelled Completed"`
}

type ReservationResponse struct {
	ID               string  `json:"id"`
	Code             string  `json:"code"`
	EntryDate        string  `json:"entry_date"`
	DepartureDate    string  `json:"departure_date"`
	NumberNights     int     `json:"number_nights"`
	PricePerNight    string  `json:"price_per_night"`
	RoomSubtotal     string  `json:"room_subtotal"`
	TotalConsumption string  `json:"total_consumption"`
	TotalPay         string  `json:"total_pay"`
	State            string  `json:"state"`
	Observations     *string `json:"observations"`
	NumAdults        int     `json:"num_adults"`
	NumChildren      int     `json:"num_children"`
	CheckinAt        *string `json:"checkin_at"`
	CheckoutAt       *string `json:"checkout_at"`
	GuestID          string  `json:"guest_id"`
	GuestName        string  `json:"guest_name"`
	RoomID           string  `json:"room_id"`
	RoomNumber       string  `json:"room_number"`
	RoomTypeName     string  `json:"room_type_name"`
	gDto.Metadata
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}

	formatted := timezone.Format(*t, constant.DateFormat)

	return &formatted
}

func (r *ReservationResponse) FromModel(model model.Reservation) {
	r.ID = model.ID
	r.Code = model.Code
	r.EntryDate = model.EntryDate.Format(constant.DayFormat)
	r.DepartureDate = model.DepartureDate.Format(constant.DayFormat)
	r.NumberNights = model.NumberNights
	r.PricePerNight = model.PricePerNight.StringFixed(constant.MoneyDecimals)
	r.RoomSubtotal = model.RoomSubtotal.StringFixed(constant.MoneyDecimals)
	r.TotalConsumption = model.TotalConsumption.StringFixed(constant.MoneyDecimals)
	r.TotalPay = model.TotalPay.StringFixed(constant.MoneyDecimals)
	r.State = model.State
	r.Observations = model.Observations
	r.NumAdults = model.NumAdults
	r.NumChildren = model.NumChildren
	r.CheckinAt = formatOptional(model.CheckinAt)
	r.CheckoutAt = formatOptional(model.CheckoutAt)
	r.GuestID = model.GuestID
	r.GuestName = model.GuestFullName()
	r.RoomID = model.RoomID
	r.RoomNumber = model.RoomNumber
	r.RoomTypeName = model.RoomTypeName
	r.Metadata.FromModel(model.Metadata)
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromModels(models []model.Reservation, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod)
	}
}

type DayAvailability struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
	Occupied  int    `json:"occupied"`
	MinPrice  string `json:"min_price"`
}

type MonthAvailabilityResponse struct {
	Year  int               `json:"year"`
	Month int               `json:"month"`
	Days  []DayAvailability `json:"days"`
}
