package model

import (
	"miyabi/shared/model"
	"time"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID        = "id"
	FieldNames     = "names"
	FieldSurnames  = "surnames"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldRole      = "role"
	FieldActive    = "active"
	FieldLastLogin = "last_login"
)

// User is a member of staff. Guests live in their own table.
type User struct {
	ID        string     `db:"id"`
	Names     string     `db:"names"`
	Surnames  string     `db:"surnames"`
	Email     string     `db:"email"`
	Password  string     `db:"password"`
	Role      string     `db:"role"`
	Active    bool       `db:"active"`
	LastLogin *time.Time `db:"last_login"`
	model.Metadata
}

func (u User) FullName() string {
	return u.Names + " " + u.Surnames
}
