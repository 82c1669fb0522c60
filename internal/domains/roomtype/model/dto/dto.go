package dto

import (
	"mime/multipart"
	"miyabi/internal/domains/roomtype/model"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	gModel "miyabi/shared/model"
	"miyabi/shared/timezone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateRoomTypeRequest struct {
	Name            string                `json:"name"              validate:"required,max=50"`
	Description     *string               `json:"description"       validate:"omitempty"`
	CapacityPeople  model.Capacity        `json:"capacity_people"   validate:"policy"`
	BasePrice       decimal.Decimal       `json:"base_price"        validate:"gte=0"`
	HighSeasonPrice *decimal.Decimal      `json:"high_season_price" validate:"omitempty,gte=0"`
	Amenities       *string               `json:"amenities"         validate:"omitempty"`
	Image           *multipart.FileHeader `json:"image"             validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile       multipart.File        `json:"-"`
}

func (c *CreateRoomTypeRequest) ToModel(user string, imageURL string) model.RoomType {
	roomType := model.RoomType{
		ID:             uuid.NewString(),
		Name:           c.Name,
		Description:    c.Description,
		CapacityPeople: int(c.CapacityPeople),
		BasePrice:      c.BasePrice.Round(constant.MoneyDecimals),
		Amenities:      c.Amenities,
		Metadata:       gModel.NewMetadata(user, timezone.Now()),
	}

	if c.HighSeasonPrice != nil {
		roomType.HighSeasonPrice = decimal.NewNullDecimal(c.HighSeasonPrice.Round(constant.MoneyDecimals))
	}

	if imageURL != constant.Empty {
		roomType.ImageURL = &imageURL
	}

	return roomType
}

type UpdateRoomTypeRequest struct {
	Name            string                `db:"name"              json:"name"              validate:"omitempty,max=50"`
	Description     *string               `db:"description"       json:"description"       validate:"omitempty"`
	CapacityPeople  *model.Capacity       `db:"capacity_people"   json:"capacity_people"   validate:"omitempty,policy"`
	BasePrice       *decimal.Decimal      `db:"base_price"        json:"base_price"        validate:"omitempty,gte=0"`
	HighSeasonPrice *decimal.Decimal      `db:"high_season_price" json:"high_season_price" validate:"omitempty,gte=0"`
	Amenities       *string               `db:"amenities"         json:"amenities"         validate:"omitempty"`
	Image           *multipart.FileHeader `json:"image"           validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile       multipart.File        `json:"-"`
}

type RoomTypeResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	CapacityPeople  int     `json:"capacity_people"`
	BasePrice       string  `json:"base_price"`
	HighSeasonPrice *string `json:"high_season_price"`
	ImageURL        *string `json:"image_url"`
	Amenities       *string `json:"amenities"`
	gDto.Metadata
}

func (r *RoomTypeResponse) FromModel(model model.RoomType) {
	r.ID = model.ID
	r.Name = model.Name
	r.Description = model.Description
	r.CapacityPeople = model.CapacityPeople
	r.BasePrice = model.BasePrice.StringFixed(constant.MoneyDecimals)
	r.HighSeasonPrice = nil
	r.ImageURL = model.ImageURL
	r.Amenities = model.Amenities
	r.Metadata.FromModel(model.Metadata)

	if model.HighSeasonPrice.Valid {
		price := model.HighSeasonPrice.Decimal.StringFixed(constant.MoneyDecimals)
		r.HighSeasonPrice = &price
	}
}

type GetRoomTypesResponse struct {
	RoomTypes []RoomTypeResponse `json:"room_types"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetRoomTypesResponse) FromModels(models []model.RoomType, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.RoomTypes = make([]RoomTypeResponse, len(models))
	for i, mod := range models {
		r.RoomTypes[i].FromModel(mod)
	}
}
