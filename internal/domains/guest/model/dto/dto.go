package dto

import (
	"miyabi/internal/domains/guest/model"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	gModel "miyabi/shared/model"
	"miyabi/shared/timezone"

	"github.com/google/uuid"
)

type CreateGuestRequest struct {
	Names       string  `json:"names"        validate:"required,max=100"`
	Surnames    string  `json:"surnames"     validate:"required,max=100"`
	DNI         string  `json:"dni"          validate:"required,max=15"`
	Email       string  `json:"email"        validate:"required,email,max=100"`
	Password    string  `json:"password"     validate:"required,min=8"`
	Phone       *string `json:"phone"        validate:"omitempty,max=15"`
	MobilePhone *string `json:"mobile_phone" validate:"omitempty,max=15"`
	Address     *string `json:"address"      validate:"omitempty,max=200"`
	Country     string  `json:"country"      validate:"required,max=100"`
	City        string  `json:"city"         validate:"required,max=100"`
	PostalCode  *string `json:"postal_code"  validate:"omitempty,max=20"`
}

func (r *CreateGuestRequest) ToModel(user string, hashedPassword string) model.Guest {
	id := uuid.NewString()
	if user == constant.Empty || user == constant.SystemUser {
		// self registration records the guest as its own author
		user = id
	}

	return model.Guest{
		ID:          id,
		Names:       r.Names,
		Surnames:    r.Surnames,
		DNI:         r.DNI,
		Email:       r.Email,
		Password:    hashedPassword,
		Phone:       r.Phone,
		MobilePhone: r.MobilePhone,
		Address:     r.Address,
		Country:     r.Country,
		City:        r.City,
		PostalCode:  r.PostalCode,
		Active:      true,
		Metadata:    gModel.NewMetadata(user, timezone.Now()),
	}
}

// ContactDetails is the part of a guest profile that may be refreshed while booking.
type ContactDetails struct {
	Phone       *string `db:"phone"        json:"phone"        validate:"omitempty,max=15"`
	MobilePhone *string `db:"mobile_phone" json:"mobile_phone" validate:"omitempty,max=15"`
	Address     *string `db:"address"      json:"address"      validate:"omitempty,max=200"`
	Country     string  `db:"country"      json:"country"      validate:"omitempty,max=100"`
	City        string  `db:"city"         json:"city"         validate:"omitempty,max=100"`
	PostalCode  *string `db:"postal_code"  json:"postal_code"  validate:"omitempty,max=20"`
}

func (c ContactDetails) IsEmpty() bool {
	return c == ContactDetails{}
}

type UpdateProfileRequest struct {
	Names       string  `db:"names"        json:"names"        validate:"omitempty,max=100"`
	Surnames    string  `db:"surnames"     json:"surnames"     validate:"omitempty,max=100"`
	Phone       *string `db:"phone"        json:"phone"        validate:"omitempty,max=15"`
	MobilePhone *string `db:"mobile_phone" json:"mobile_phone" validate:"omitempty,max=15"`
	Address     *string `db:"address"      json:"address"      validate:"omitempty,max=200"`
	Country     string  `db:"country"      json:"country"      validate:"omitempty,max=100"`
	City        string  `db:"city"         json:"city"         validate:"omitempty,max=100"`
	PostalCode  *string `db:"postal_code"  json:"postal_code"  validate:"omitempty,max=20"`
}

type UpdateGuestRequest struct {
	Names       string  `db:"names"        json:"names"        validate:"omitempty,max=100"`
	Surnames    string  `db:"surnames"     json:"surnames"     validate:"omitempty,max=100"`
	DNI         string  `db:"dni"          json:"dni"          validate:"omitempty,max=15"`
	Email       string  `db:"email"        json:"email"        validate:"omitempty,email,max=100"`
	Phone       *string `db:"phone"        json:"phone"        validate:"omitempty,max=15"`
	MobilePhone *string `db:"mobile_phone" json:"mobile_phone" validate:"omitempty,max=15"`
	Address     *string `db:"address"      json:"address"      validate:"omitempty,max=200"`
	Country     string  `db:"country"      json:"country"      validate:"omitempty,max=100"`
	City        string  `db:"city"         json:"city"         validate:"omitempty,max=100"`
	PostalCode  *string `db:"postal_code"  json:"postal_code"  validate:"omitempty,max=20"`
	Active      *bool   `db:"active"       json:"active"`
}

type GuestResponse struct {
	ID          string  `json:"id"`
	Names       string  `json:"names"`
	Surnames    string  `json:"surnames"`
	DNI         string  `json:"dni"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
	MobilePhone *string `json:"mobile_phone"`
	Address     *string `json:"address"`
	Country     string  `json:"country"`
	City        string  `json:"city"`
	PostalCode  *string `json:"postal_code"`
	Active      bool    `json:"active"`
	LastLogin   *string `json:"last_login"`
	gDto.Metadata
}

func (r *GuestResponse) FromModel(model model.Guest) {
	r.ID = model.ID
	r.Names = model.Names
	r.Surnames = model.Surnames
	r.DNI = model.DNI
	r.Email = model.Email
	r.Phone = model.Phone
	r.MobilePhone = model.MobilePhone
	r.Address = model.Address
	r.Country = model.Country
	r.City = model.City
	r.PostalCode = model.PostalCode
	r.Active = model.Active
	r.LastLogin = nil
	r.Metadata.FromModel(model.Metadata)

	if model.LastLogin != nil {
		lastLogin := timezone.Format(*model.LastLogin, constant.DateFormat)
		r.LastLogin = &lastLogin
	}
}

type GetGuestsResponse struct {
	Guests    []GuestResponse `json:"guests"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetGuestsResponse) FromModels(models []model.Guest, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Guests = make([]GuestResponse, len(models))
	for i, mod := range models {
		r.Guests[i].FromModel(mod)
	}
}
