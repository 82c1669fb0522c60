package model

import (
	"fmt"
	"miyabi/config"
	"miyabi/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "room_types"
	EntityName = "roomtype"

	FieldID              = "id"
	FieldName            = "name"
	FieldCapacityPeople  = "capacity_people"
	FieldBasePrice       = "base_price"
	FieldHighSeasonPrice = "high_season_price"
	FieldImageURL        = "image_url"
)

// Capacity is the number of guests a room type sleeps.
type Capacity int

func (c Capacity) Validate(cfg *config.Config) error {
	if c < 1 || int(c) > cfg.Hotel.MaxGroupSize {
		return fmt.Errorf("capacity must be between 1 and %d", cfg.Hotel.MaxGroupSize)
	}

	return nil
}

type RoomType struct {
	ID              string              `db:"id"`
	Name            string              `db:"name"`
	Description     *string             `db:"description"`
	CapacityPeople  int                 `db:"capacity_people"`
	BasePrice       decimal.Decimal     `db:"base_price"`
	HighSeasonPrice decimal.NullDecimal `db:"high_season_price"`
	ImageURL        *string             `db:"image_url"`
	Amenities       *string             `db:"amenities"`
	model.Metadata
}
