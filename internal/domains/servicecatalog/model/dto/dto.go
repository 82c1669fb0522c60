package dto

import (
	"miyabi/internal/domains/servicecatalog/model"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	gModel "miyabi/shared/model"
	"miyabi/shared/timezone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateServiceRequest struct {
	ServiceName string          `json:"service_name" validate:"required,max=100"`
	Description *string         `json:"description"  validate:"omitempty,max=200"`
	Price       decimal.Decimal `json:"price"        validate:"gte=0"`
	Category    *string         `json:"category"     validate:"omitempty,max=50"`
	Season      string          `json:"season"       validate:"omitempty,max=30"`
	Available   *bool           `json:"available"`
}

func (c *CreateServiceRequest) ToModel(user string) model.Service {
	service := model.Service{
		ID:          uuid.NewString(),
		ServiceName: c.ServiceName,
		Description: c.Description,
		Price:       c.Price.Round(constant.MoneyDecimals),
		Category:    c.Category,
		Season:      c.Season,
		Available:   true,
		Metadata:    gModel.NewMetadata(user, timezone.Now()),
	}

	if service.Season == constant.Empty {
		service.Season = model.SeasonAllYear
	}

	if c.Available != nil {
		service.Available = *c.Available
	}

	return service
}

type UpdateServiceRequest struct {
	ServiceName string           `db:"service_name" json:"service_name" validate:"omitempty,max=100"`
	Description *string          `db:"description"  json:"description"  validate:"omitempty,max=200"`
	Price       *decimal.Decimal `db:"price"        json:"price"        validate:"omitempty,gte=0"`
	Category    *string          `db:"category"     json:"category"     validate:"omitempty,max=50"`
	Season      string           `db:"season"       json:"season"       validate:"omitempty,max=30"`
	Available   *bool            `db:"available"    json:"available"`
}

type ServiceResponse struct {
	ID          string  `json:"id"`
	ServiceName string  `json:"service_name"`
	Description *string `json:"description"`
	Price       string  `json:"price"`
	Category    *string `json:"category"`
	Season      string  `json:"season"`
	Available   bool    `json:"available"`
	gDto.Metadata
}

func (r *ServiceResponse) FromModel(model model.Service) {
	r.ID = model.ID
	r.ServiceName = model.ServiceName
	r.Description = model.Description
	r.Price = model.Price.StringFixed(constant.MoneyDecimals)
	r.Category = model.Category
	r.Season = model.Season
	r.Available = model.Available
	r.Metadata.FromModel(model.Metadata)
}

type GetServicesResponse struct {
	Services  []ServiceResponse `json:"services"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetServicesResponse) FromModels(models []model.Service, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Services = make([]ServiceResponse, len(models))
	for i, mod := range models {
		r.Services[i].FromModel(mod)
	}
}
