package model

import (
	"miyabi/shared/model"
	"time"
)

const (
	TableName  = "guests"
	EntityName = "guest"

	FieldID         = "id"
	FieldNames      = "names"
	FieldSurnames   = "surnames"
	FieldDNI        = "dni"
	FieldEmail      = "email"
	FieldPassword   = "password"
	FieldCountry    = "country"
	FieldCity       = "city"
	FieldActive     = "active"
	FieldLastLogin  = "last_login"
	FieldPhone      = "phone"
	FieldMobile     = "mobile_phone"
	FieldAddress    = "address"
	FieldPostalCode = "postal_code"
)

type Guest struct {
	ID          string     `db:"id"`
	Names       string     `db:"names"`
	Surnames    string     `db:"surnames"`
	DNI         string     `db:"dni"`
	Email       string     `db:"email"`
	Password    string     `db:"password"`
	Phone       *string    `db:"phone"`
	MobilePhone *string    `db:"mobile_phone"`
	Address     *string    `db:"address"`
	Country     string     `db:"country"`
	City        string     `db:"city"`
	PostalCode  *string    `db:"postal_code"`
	Active      bool       `db:"active"`
	LastLogin   *time.Time `db:"last_login"`
	model.Metadata
}

func (g Guest) FullName() string {
	return g.Names + " " + g.Surnames
}
