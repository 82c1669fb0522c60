package dto

import (
	"miyabi/internal/domains/room/model"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	gModel "miyabi/shared/model"
	"miyabi/shared/timezone"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	RoomNumber            string  `json:"room_number"            validate:"required,max=10"`
	Floor                 int     `json:"floor"                  validate:"gte=0"`
	State                 string  `json:"state"                  validate:"omitempty,oneof=Available Maintenance"`
	AdditionalDescription *string `json:"additional_description" validate:"omitempty"`
	RoomTypeID            string  `json:"room_type_id"           validate:"required"`
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	state := model.StateAvailable
	if c.State != constant.Empty {
		state = c.State
	}

	return model.Room{
		ID:                    uuid.NewString(),
		RoomNumber:            c.RoomNumber,
		Floor:                 c.Floor,
		State:                 state,
		AdditionalDescription: c.AdditionalDescription,
		RoomTypeID:            c.RoomTypeID,
		Metadata:              gModel.NewMetadata(user, timezone.Now()),
	}
}

type UpdateRoomRequest struct {
	RoomNumber            string  `db:"room_number"            json:"room_number"            validate:"omitempty,max=10"`
	Floor                 *int    `db:"floor"                  json:"floor"                  validate:"omitempty,gte=0"`
	AdditionalDescription *string `db:"additional_description" json:"additional_description" validate:"omitempty"`
	RoomTypeID            string  `db:"room_type_id"           json:"room_type_id"           validate:"omitempty"`
}

type UpdateRoomStateRequest struct {
	State string `json:"state" validate:"required,oneof=Available Reserved Occupied Maintenance"`
}

type RoomResponse struct {
	ID                    string  `json:"id"`
	RoomNumber            string  `json:"room_number"`
	Floor                 int     `json:"floor"`
	State                 string  `json:"state"`
	AdditionalDescription *string `json:"additional_description"`
	LastMaintenanceDate   *string `json:"last_maintenance_date"`
	RoomTypeID            string  `json:"room_type_id"`
	RoomTypeName          string  `json:"room_type_name"`
	PricePerNight         string  `json:"price_per_night"`
	CapacityPeople        int     `json:"capacity_people"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.RoomNumber = model.RoomNumber
	r.Floor = model.Floor
	r.State = model.State
	r.AdditionalDescription = model.AdditionalDescription
	r.LastMaintenanceDate = nil
	r.RoomTypeID = model.RoomTypeID
	r.RoomTypeName = model.RoomTypeName
	r.PricePerNight = model.BasePrice.StringFixed(constant.MoneyDecimals)
	r.CapacityPeople = model.CapacityPeople
	r.Metadata.FromModel(model.Metadata)

	if model.LastMaintenanceDate != nil {
		day := model.LastMaintenanceDate.Format(constant.DayFormat)
		r.LastMaintenanceDate = &day
	}
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
