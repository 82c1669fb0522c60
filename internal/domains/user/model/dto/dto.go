package dto

import (
	"miyabi/internal/domains/user/model"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	gModel "miyabi/shared/model"
	"miyabi/shared/timezone"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Names    string `json:"names"    validate:"required,max=100"`
	Surnames string `json:"surnames" validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"     validate:"omitempty,oneof=admin employee"`
}

func (r *CreateUserRequest) ToModel(user string, hashedPassword string) model.User {
	role := r.Role
	if role == constant.Empty {
		role = constant.RoleEmployee
	}

	return model.User{
		ID:       uuid.NewString(),
		Names:    r.Names,
		Surnames: r.Surnames,
		Email:    r.Email,
		Password: hashedPassword,
		Role:     role,
		Active:   true,
		Metadata: gModel.NewMetadata(user, timezone.Now()),
	}
}

type UpdateUserRequest struct {
	Names    string `db:"names"    json:"names"    validate:"omitempty,max=100"`
	Surnames string `db:"surnames" json:"surnames" validate:"omitempty,max=100"`
	Email    string `db:"email"    json:"email"    validate:"omitempty,email,max=100"`
	Role     string `db:"role"     json:"role"     validate:"omitempty,oneof=admin employee"`
	Active   *bool  `db:"active"   json:"active"`
}

type UserResponse struct {
	ID        string  `json:"id"`
	Names     string  `json:"names"`
	Surnames  string  `json:"surnames"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	Active    bool    `json:"active"`
	LastLogin *string `json:"last_login"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Names = model.Names
	r.Surnames = model.Surnames
	r.Email = model.Email
	r.Role = model.Role
	r.Active = model.Active
	r.LastLogin = nil
	r.Metadata.FromModel(model.Metadata)

	if model.LastLogin != nil {
		lastLogin := timezone.Format(*model.LastLogin, constant.DateFormat)
		r.LastLogin = &lastLogin
	}
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}
