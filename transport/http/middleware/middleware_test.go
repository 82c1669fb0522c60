package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"miyabi/config"
	"miyabi/infras/jwt"
	jwtMocks "miyabi/infras/jwt/mocks"
	"miyabi/infras/otel/mocks"
	"miyabi/permissions"
	"miyabi/shared/cache"
	cacheMocks "miyabi/shared/cache/mocks"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/transport/http/middleware"
)

func ok(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
}

func limiterConfig(enable bool) *config.Config {
	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = enable
	cfg.App.RateLimiter.MaxRequests = 5
	cfg.App.RateLimiter.WindowSeconds = 60

	return cfg
}

func limitedRequest() *http.Request {
	request := httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
	request.Header.Set(constant.RequestHeaderForwardedFor, "10.0.0.1, 10.0.0.2")
	request.Header.Set(constant.RequestHeaderUserAgent, "test-agent")

	return request
}

func TestRateLimit(t *testing.T) {
	const key = "limiter:10.0.0.1:test-agent"

	t.Run("disabled limiter lets everything through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		redisCache := cacheMocks.NewMockRedisCache(ctrl)

		handler := middleware.NewAppMiddleware(mocks.NewOtel(), limiterConfig(false), redisCache).RateLimit()(http.HandlerFunc(ok))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, limitedRequest())

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("first request opens the window", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		redisCache := cacheMocks.NewMockRedisCache(ctrl)
		redisCache.EXPECT().Get(gomock.Any(), key, gomock.Any()).Return(cache.Nil)
		redisCache.EXPECT().Save(gomock.Any(), key, 1, 60).Return(nil)

		handler := middleware.NewAppMiddleware(mocks.NewOtel(), limiterConfig(true), redisCache).RateLimit()(http.HandlerFunc(ok))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, limitedRequest())

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "5", recorder.Header().Get(constant.RequestHeaderRateLimit))
		assert.Equal(t, "4", recorder.Header().Get(constant.RequestHeaderRateLimitRemaining))
		assert.Equal(t, "60", recorder.Header().Get(constant.RequestHeaderRateLimitWindow))
	})

	t.Run("rejects once the window is spent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		redisCache := cacheMocks.NewMockRedisCache(ctrl)
		redisCache.EXPECT().Get(gomock.Any(), key, gomock.Any()).DoAndReturn(func(_ context.Context, _ string, value any) error {
			*value.(*int) = 5

			return nil
		})

		handler := middleware.NewAppMiddleware(mocks.NewOtel(), limiterConfig(true), redisCache).RateLimit()(http.HandlerFunc(ok))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, limitedRequest())

		assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	})

	t.Run("cache outage fails open", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		redisCache := cacheMocks.NewMockRedisCache(ctrl)
		redisCache.EXPECT().Get(gomock.Any(), key, gomock.Any()).Return(errors.New("connection refused"))

		handler := middleware.NewAppMiddleware(mocks.NewOtel(), limiterConfig(true), redisCache).RateLimit()(http.HandlerFunc(ok))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, limitedRequest())

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestClientIP(t *testing.T) {
	var got string

	handler := middleware.NewAppMiddleware(mocks.NewOtel(), &config.Config{}, nil).ClientIP(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		got = gDto.ClientIPFromContext(request.Context())
		writer.WriteHeader(http.StatusOK)
	}))

	request := httptest.NewRequest(http.MethodGet, "/v1/auth/login", nil)
	request.RemoteAddr = "192.0.2.7:51234"

	handler.ServeHTTP(httptest.NewRecorder(), request)

	assert.Equal(t, "192.0.2.7", got)
}

type authFixture struct {
	router chi.Router
	jwt    *jwtMocks.MockJWT
	caller *gDto.Caller
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &authFixture{jwt: jwtMocks.NewMockJWT(ctrl)}

	cfg := &config.Config{}
	cfg.App.APIKey = "internal-key"

	mw := middleware.NewAuthRoleMiddleware(f.jwt, mocks.NewOtel(), permissions.Get(), cfg)

	capture := func(writer http.ResponseWriter, request *http.Request) {
		caller := gDto.CallerFromContext(request.Context())
		f.caller = &caller
		writer.WriteHeader(http.StatusOK)
	}

	router := chi.NewRouter()
	router.Use(mw.APIKey, mw.Auth, mw.RBAC)
	router.Route("/v1", func(v1 chi.Router) {
		v1.Route("/reservations", func(group chi.Router) {
			group.Get("/", capture)
			group.Get("/unavailable-dates", capture)
			group.Delete("/{id}", capture)
		})
	})

	f.router = router

	return f
}

func (f *authFixture) do(method, path, token, apiKey string) int {
	request := httptest.NewRequest(method, path, nil)
	if token != "" {
		request.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+token)
	}

	if apiKey != "" {
		request.Header.Set(constant.RequestHeaderAPIKey, apiKey)
	}

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request)

	return recorder.Code
}

func (f *authFixture) expectToken(token, id, role string) {
	f.jwt.EXPECT().ValidateToken(gomock.Any(), token, jwt.AccessToken).Return(&jwt.Claims{
		UserID:  id,
		Email:   id + "@miyabi.test",
		Role:    role,
		TokenID: "token-" + id,
	}, nil)
}

func TestAuthRole(t *testing.T) {
	t.Run("public endpoint needs no token", func(t *testing.T) {
		f := newAuthFixture(t)

		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/v1/reservations/unavailable-dates", "", ""))
	})

	t.Run("missing token is unauthorized", func(t *testing.T) {
		f := newAuthFixture(t)

		assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/v1/reservations", "", ""))
	})

	t.Run("expired token is unauthorized", func(t *testing.T) {
		f := newAuthFixture(t)
		f.jwt.EXPECT().ValidateToken(gomock.Any(), "stale", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)

		assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/v1/reservations", "stale", ""))
	})

	t.Run("claims without a subject are rejected", func(t *testing.T) {
		f := newAuthFixture(t)
		f.jwt.EXPECT().ValidateToken(gomock.Any(), "empty", jwt.AccessToken).Return(&jwt.Claims{Role: constant.RoleGuest}, nil)

		assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/v1/reservations", "empty", ""))
		assert.Nil(t, f.caller)
	})

	t.Run("guest cannot list every reservation", func(t *testing.T) {
		f := newAuthFixture(t)
		f.expectToken("guest", "guest-1", constant.RoleGuest)

		assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/v1/reservations", "guest", ""))
	})

	t.Run("employee lists reservations as the caller", func(t *testing.T) {
		f := newAuthFixture(t)
		f.expectToken("employee", "staff-1", constant.RoleEmployee)

		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/v1/reservations", "employee", ""))
		if assert.NotNil(t, f.caller) {
			assert.Equal(t, "staff-1", f.caller.ID)
			assert.True(t, f.caller.IsStaff())
		}
	})

	t.Run("only admins delete", func(t *testing.T) {
		f := newAuthFixture(t)
		f.expectToken("employee", "staff-1", constant.RoleEmployee)
		f.expectToken("admin", "admin-1", constant.RoleAdmin)

		assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/v1/reservations/res-1", "employee", ""))
		assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/v1/reservations/res-1", "admin", ""))
	})

	t.Run("internal api key bypasses tokens", func(t *testing.T) {
		f := newAuthFixture(t)

		assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/v1/reservations/res-1", "", "internal-key"))
	})

	t.Run("wrong api key is forbidden", func(t *testing.T) {
		f := newAuthFixture(t)

		assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/v1/reservations", "", "guessed"))
	})
}
