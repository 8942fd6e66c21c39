package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"aspen/config"
	"aspen/infras/jwt"
	jwtMocks "aspen/infras/jwt/mocks"
	"aspen/infras/otel/mocks"
	"aspen/permissions"
	"aspen/shared/constant"
	"aspen/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	jwtGo "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const table = `{"endpoints":[
	{"path":"/v1/public","method":"GET","skip":true},
	{"path":"/v1/desk","method":"GET","permissions":["frontdesk","admin"]},
	{"path":"/v1/any","method":"GET","permissions":[]}
]}`

func newRouter(t *testing.T) (http.Handler, *jwtMocks.MockJWT) {
	t.Helper()

	ctrl := gomock.NewController(t)
	tokens := jwtMocks.NewMockJWT(ctrl)

	perms, err := permissions.Parse([]byte(table))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.APIKey = "internal-key"

	mw := middleware.NewAuthRoleMiddleware(tokens, mocks.NewOtel(), perms, cfg)

	echo := func(w http.ResponseWriter, r *http.Request) {
		user, _ := r.Context().Value(constant.ContextKeyUserID).(string)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(user))
	}

	r := chi.NewRouter()
	r.Use(mw.APIKey, mw.Auth, mw.RBAC)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/public", echo)
		r.Get("/desk", echo)
		r.Get("/any", echo)
	})

	return r, tokens
}

func TestAuthRole(t *testing.T) {
	claims := func(role string) *jwt.Claims {
		return &jwt.Claims{UserID: "user-1", Email: "desk@aspen.test", Role: role, RegisteredClaims: jwtGo.RegisteredClaims{ID: "tok"}}
	}

	tests := []struct {
		name     string
		path     string
		header   map[string]string
		setup    func(tokens *jwtMocks.MockJWT)
		wantCode int
		wantBody string
	}{
		{name: "public route needs no token", path: "/v1/public", wantCode: http.StatusOK},
		{name: "missing token", path: "/v1/desk", wantCode: http.StatusUnauthorized},
		{
			name:     "malformed header",
			path:     "/v1/desk",
			header:   map[string]string{constant.RequestHeaderAuthorization: "Token abc"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "expired token",
			path:   "/v1/desk",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer abc"},
			setup: func(tokens *jwtMocks.MockJWT) {
				tokens.EXPECT().ValidateToken("abc", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "allowed role",
			path:   "/v1/desk",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer abc"},
			setup: func(tokens *jwtMocks.MockJWT) {
				tokens.EXPECT().ValidateToken("abc", jwt.AccessToken).Return(claims(constant.RoleFrontDesk), nil)
			},
			wantCode: http.StatusOK,
			wantBody: "user-1",
		},
		{
			name:   "role not allowed",
			path:   "/v1/desk",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer abc"},
			setup: func(tokens *jwtMocks.MockJWT) {
				tokens.EXPECT().ValidateToken("abc", jwt.AccessToken).Return(claims(constant.RoleGuest), nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:   "empty role list admits any caller",
			path:   "/v1/any",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer abc"},
			setup: func(tokens *jwtMocks.MockJWT) {
				tokens.EXPECT().ValidateToken("abc", jwt.AccessToken).Return(claims(constant.RoleHousekeeping), nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "internal api key bypasses tokens",
			path:     "/v1/desk",
			header:   map[string]string{constant.RequestHeaderAPIKey: "internal-key"},
			wantCode: http.StatusOK,
			wantBody: constant.SystemUser,
		},
		{
			name:     "wrong api key",
			path:     "/v1/desk",
			header:   map[string]string{constant.RequestHeaderAPIKey: "guess"},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, tokens := newRouter(t)
			if tt.setup != nil {
				tt.setup(tokens)
			}

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
