package model

import (
	"miyabi/shared/model"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID                  = "id"
	FieldRoomNumber          = "room_number"
	FieldFloor               = "floor"
	FieldState               = "state"
	FieldRoomTypeID          = "room_type_id"
	FieldLastMaintenanceDate = "last_maintenance_date"
)

const (
	StateAvailable   = "Available"
	StateReserved    = "Reserved"
	StateOccupied    = "Occupied"
	StateMaintenance = "Maintenance"
)

type Room struct {
	ID                    string          `db:"id"`
	RoomNumber            string          `db:"room_number"`
	Floor                 int             `db:"floor"`
	State                 string          `db:"state"`
	AdditionalDescription *string         `db:"additional_description"`
	LastMaintenanceDate   *time.Time      `db:"last_maintenance_date"`
	RoomTypeID            string          `db:"room_type_id"`
	RoomTypeName          string          `db:"room_type_name"  table:"room_types" column:"name"`
	BasePrice             decimal.Decimal `db:"base_price"      table:"room_types" column:"base_price"`
	CapacityPeople        int             `db:"capacity_people" table:"room_types" column:"capacity_people"`
	model.Metadata
}

func (Room) GetJoinQuery() string {
	return "JOIN room_types ON room_types.id = rooms.room_type_id"
}
