package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"miyabi/infras/jwt"
	"miyabi/internal/domains/auth/model/dto"
	"miyabi/shared/constant"
	"miyabi/shared/validator"
)

func TestLoginResponse_FromTokenPair(t *testing.T) {
	tokenPair := &jwt.TokenPair{
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
		TokenType:    "Bearer",
		ExpiresIn:    900,
	}

	var response dto.LoginResponse
	response.FromTokenPair(tokenPair, "guest-1", constant.RoleGuest)

	assert.Equal(t, tokenPair.AccessToken, response.AccessToken)
	assert.Equal(t, tokenPair.RefreshToken, response.RefreshToken)
	assert.Equal(t, "Bearer", response.TokenType)
	assert.Equal(t, int64(900), response.ExpiresIn)
	assert.Equal(t, "guest-1", response.SubjectID)
	assert.Equal(t, constant.RoleGuest, response.Role)
}

func TestRefreshTokenResponse_FromTokenPair(t *testing.T) {
	tokenPair := &jwt.TokenPair{
		AccessToken:  "new-access-token",
		RefreshToken: "new-refresh-token",
	}

	var response dto.RefreshTokenResponse
	response.FromTokenPair(tokenPair)

	assert.Equal(t, tokenPair.AccessToken, response.AccessToken)
	assert.Equal(t, tokenPair.RefreshToken, response.RefreshToken)
}

func TestChangePasswordRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.ChangePasswordRequest
		wantErr bool
	}{
		{name: "valid", req: dto.ChangePasswordRequest{CurrentPassword: "password", NewPassword: "password123"}},
		{name: "too short", req: dto.ChangePasswordRequest{CurrentPassword: "password", NewPassword: "short"}, wantErr: true},
		{name: "unchanged", req: dto.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "password123"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
