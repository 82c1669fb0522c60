package model

import (
	"miyabi/shared/model"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	FieldID               = "id"
	FieldCode             = "code"
	FieldEntryDate        = "entry_date"
	FieldDepartureDate    = "departure_date"
	FieldNumberNights     = "number_nights"
	FieldPricePerNight    = "price_per_night"
	FieldRoomSubtotal     = "room_subtotal"
	FieldTotalConsumption = "total_consumption"
	FieldTotalPay         = "total_pay"
	FieldState            = "state"
	FieldObservations     = "observations"
	FieldNumAdults        = "num_adults"
	FieldNumChildren      = "num_children"
	FieldCheckinAt        = "checkin_at"
	FieldCheckoutAt       = "checkout_at"
	FieldCheckinBy        = "checkin_by"
	FieldCheckoutBy       = "checkout_by"
	FieldGuestID          = "guest_id"
	FieldRoomID           = "room_id"
)

const (
	StatePending   = "Pending"
	StateConfirmed = "Confirmed"
	StateCancelled = "Cancelled"
	StateCompleted = "Completed"
)

type Reservation struct {
	ID               string          `db:"id"`
	Code             string          `db:"code"`
	EntryDate        time.Time       `db:"entry_date"`
	DepartureDate    time.Time       `db:"departure_date"`
	NumberNights     int             `db:"number_nights"`
	PricePerNight    decimal.Decimal `db:"price_per_night"`
	RoomSubtotal     decimal.Decimal `db:"room_subtotal"`
	TotalConsumption decimal.Decimal `db:"total_consumption"`
	TotalPay         decimal.Decimal `db:"total_pay"`
	State            string          `db:"state"`
	Observations     *string         `db:"observations"`
	NumAdults        int             `db:"num_adults"`
	NumChildren      int             `db:"num_children"`
	CheckinAt        *time.Time      `db:"checkin_at"`
	CheckoutAt       *time.Time      `db:"checkout_at"`
	CheckinBy        *string         `db:"checkin_by"`
	CheckoutBy       *string         `db:"checkout_by"`
	GuestID          string          `db:"guest_id"`
	RoomID           string          `db:"room_id"`
	GuestNames       string          `db:"guest_names"     table:"guests"     column:"names"`
	GuestSurnames    string          `db:"guest_surnames"  table:"guests"     column:"surnames"`
	RoomNumber       string          `db:"room_number"     table:"rooms"      column:"room_number"`
	RoomTypeName     string          `db:"room_type_name"  table:"room_types" column:"name"`
	model.Metadata
}

func (Reservation) GetJoinQuery() string {
	return "JOIN guests ON guests.id = reservations.guest_id " +
		"JOIN rooms ON rooms.id = reservations.room_id " +
		"JOIN room_types ON room_types.id = rooms.room_type_id"
}

// IsClosed reports whether the reservation no longer accepts charges or state changes.
func (r Reservation) IsClosed() bool {
	return r.State == StateCancelled || r.State == StateCompleted
}

func (r Reservation) GuestFullName() string {
	if r.GuestSurnames == "" {
		return r.GuestNames
	}

	return r.GuestNames + " " + r.GuestSurnames
}

var transitions = map[string][]string{
	StatePending:   {StateConfirmed, StateCancelled, StateCompleted},
	StateConfirmed: {StateCancelled, StateCompleted},
}

// CanMoveTo reports whether the lifecycle allows going from the current state to state.
func (r Reservation) CanMoveTo(state string) bool {
	return slices.Contains(transitions[r.State], state)
}

// ReleasesRoom reports whether reaching state hands the room back to the inventory.
func ReleasesRoom(state string) bool {
	return state == StateCancelled || state == StateCompleted
}
