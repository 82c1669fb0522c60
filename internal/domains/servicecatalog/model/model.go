package model

import (
	"miyabi/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "services_catalog"
	EntityName = "servicecatalog"

	FieldID          = "id"
	FieldServiceName = "service_name"
	FieldPrice       = "price"
	FieldCategory    = "category"
	FieldSeason      = "season"
	FieldAvailable   = "available"
)

const SeasonAllYear = "All year"

type Service struct {
	ID          string          `db:"id"`
	ServiceName string          `db:"service_name"`
	Description *string         `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Category    *string         `db:"category"`
	Season      string          `db:"season"`
	Available   bool            `db:"available"`
	model.Metadata
}
