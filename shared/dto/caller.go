package dto

import (
	"context"
	"miyabi/shared/constant"
)

// Caller is the authenticated identity a service call acts on behalf of.
type Caller struct {
	ID    string
	Email string
	Role  string
}

func CallerFromContext(ctx context.Context) Caller {
	id, _ := ctx.Value(constant.ContextKeyUserID).(string)
	email, _ := ctx.Value(constant.ContextKeyUserEmail).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return Caller{
		ID:    id,
		Email: email,
		Role:  role,
	}
}

func (c Caller) IsGuest() bool {
	return c.Role == constant.RoleGuest
}

func (c Caller) IsStaff() bool {
	return c.Role == constant.RoleAdmin || c.Role == constant.RoleEmployee
}

func (c Caller) IsAdmin() bool {
	return c.Role == constant.RoleAdmin
}

// Name returns the identifier recorded in created_by/modified_by columns.
func (c Caller) Name() string {
	if c.ID == "" {
		return constant.SystemUser
	}

	return c.ID
}

// ClientIPFromContext returns the address the request middleware resolved for the caller.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(constant.ContextKeyClientIP).(string)

	return ip
}
