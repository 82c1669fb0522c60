package permissions_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miyabi/permissions"
	"miyabi/shared/constant"
)

func TestGet(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	assert.False(t, data.Skip)
	assert.NotEmpty(t, data.Endpoints)

	for _, endpoint := range data.Endpoints {
		if endpoint.Skip {
			continue
		}

		assert.NotEmpty(t, endpoint.Permissions, "%s %s has no roles", endpoint.Method, endpoint.Path)

		for _, role := range endpoint.Permissions {
			assert.Contains(t, []string{constant.RoleAdmin, constant.RoleEmployee, constant.RoleGuest}, role)
		}
	}
}

func TestFindPermissions(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	tests := []struct {
		name   string
		path   string
		method string
		skip   bool
		roles  []string
	}{
		{name: "login is public", path: "/v1/auth/login", method: http.MethodPost, skip: true},
		{name: "availability is public", path: "/v1/reservations/availability", method: http.MethodGet, skip: true},
		{name: "trailing slash is ignored", path: "/v1/reservations/", method: http.MethodGet, roles: []string{constant.RoleAdmin, constant.RoleEmployee}},
		{name: "check in is staff only", path: "/v1/reservations/{id}/check-in", method: http.MethodPost, roles: []string{constant.RoleAdmin, constant.RoleEmployee}},
		{name: "access log is admin only", path: "/v1/access-logs", method: http.MethodGet, roles: []string{constant.RoleAdmin}},
		{name: "method matters", path: "/v1/reservations/{id}", method: http.MethodDelete, roles: []string{constant.RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			permission := data.FindPermissions(tt.path, tt.method)

			assert.Equal(t, tt.skip, permission.Skip)
			assert.ElementsMatch(t, tt.roles, permission.Permissions)
		})
	}

	t.Run("unknown route has no rule", func(t *testing.T) {
		assert.Equal(t, permissions.Permission{}, data.FindPermissions("/v1/unknown", http.MethodGet))
	})
}
