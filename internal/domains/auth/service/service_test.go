package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"aspen/config"
	"aspen/infras/jwt"
	jwtMocks "aspen/infras/jwt/mocks"
	"aspen/infras/otel/mocks"
	"aspen/internal/domains/auth/model/dto"
	"aspen/internal/domains/auth/service"
	userMocks "aspen/internal/domains/user/mocks"
	userModel "aspen/internal/domains/user/model"
	"aspen/shared/constant"
	"aspen/shared/failure"
	"aspen/shared/password"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newAuth(t *testing.T) (service.Auth, *userMocks.MockUser, *jwtMocks.MockJWT) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := userMocks.NewMockUser(ctrl)
	tokens := jwtMocks.NewMockJWT(ctrl)

	return service.New(repo, &config.Config{}, mocks.NewOtel(), tokens), repo, tokens
}

func storedUser(t *testing.T, plain string, active bool) userModel.User {
	t.Helper()

	hashed, err := password.Hash(plain)
	require.NoError(t, err)

	return userModel.User{
		ID:       "user-1",
		Email:    "desk@aspen.test",
		Password: hashed,
		Level:    constant.RoleFrontDesk,
		Active:   active,
	}
}

func TestAuth_Register(t *testing.T) {
	req := dto.RegisterRequest{Email: "ada@example.com", Password: "correct-horse"}

	tests := []struct {
		name     string
		setup    func(repo *userMocks.MockUser)
		wantCode int
	}{
		{
			name: "creates a guest account",
			setup: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u userModel.User) error {
					assert.Equal(t, constant.RoleGuest, u.Level)
					assert.Equal(t, "ada@example.com", u.Email)
					assert.NotEqual(t, "correct-horse", u.Password)
					assert.True(t, u.Active)
					assert.Equal(t, constant.SystemUser, u.CreatedBy)

					return nil
				})
			},
		},
		{
			name: "email already registered",
			setup: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "unique violation on insert",
			setup: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: constant.PqErrorCodeUniqueViolation})
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "storage failure",
			setup: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, errors.New("connection reset"))
			},
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newAuth(t)
			tt.setup(repo)

			err := svc.Register(context.Background(), req)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestAuth_Login(t *testing.T) {
	tests := []struct {
		name     string
		req      dto.LoginRequest
		setup    func(t *testing.T, repo *userMocks.MockUser, tokens *jwtMocks.MockJWT)
		wantCode int
	}{
		{
			name: "issues tokens and records last login",
			req:  dto.LoginRequest{Email: "desk@aspen.test", Password: "front-desk-1"},
			setup: func(t *testing.T, repo *userMocks.MockUser, tokens *jwtMocks.MockJWT) {
				repo.EXPECT().GetByEmail(gomock.Any(), "desk@aspen.test").Return(storedUser(t, "front-desk-1", true), nil)
				tokens.EXPECT().GenerateTokenPair("user-1", "desk@aspen.test", constant.RoleFrontDesk).
					Return(&jwt.TokenPair{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", ExpiresIn: 900}, nil)
				repo.EXPECT().TouchLastLogin(gomock.Any(), "user-1", gomock.Any()).Return(nil)
			},
		},
		{
			name: "last login failure does not block login",
			req:  dto.LoginRequest{Email: "desk@aspen.test", Password: "front-desk-1"},
			setup: func(t *testing.T, repo *userMocks.MockUser, tokens *jwtMocks.MockJWT) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(storedUser(t, "front-desk-1", true), nil)
				tokens.EXPECT().GenerateTokenPair(gomock.Any(), gomock.Any(), gomock.Any()).Return(&jwt.TokenPair{AccessToken: "access"}, nil)
				repo.EXPECT().TouchLastLogin(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("timeout"))
			},
		},
		{
			name: "unknown email",
			req:  dto.LoginRequest{Email: "nobody@aspen.test", Password: "whatever"},
			setup: func(_ *testing.T, repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "wrong password",
			req:  dto.LoginRequest{Email: "desk@aspen.test", Password: "guess"},
			setup: func(t *testing.T, repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(storedUser(t, "front-desk-1", true), nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "deactivated account",
			req:  dto.LoginRequest{Email: "desk@aspen.test", Password: "front-desk-1"},
			setup: func(t *testing.T, repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(storedUser(t, "front-desk-1", false), nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "storage failure",
			req:  dto.LoginRequest{Email: "desk@aspen.test", Password: "front-desk-1"},
			setup: func(_ *testing.T, repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(userModel.User{}, errors.New("connection refused"))
			},
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, tokens := newAuth(t)
			tt.setup(t, repo, tokens)

			res, err := svc.Login(context.Background(), tt.req)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "access", res.AccessToken)
			assert.Equal(t, constant.RoleFrontDesk, res.Role)
		})
	}
}

func TestAuth_RefreshToken(t *testing.T) {
	t.Run("valid refresh token", func(t *testing.T) {
		svc, _, tokens := newAuth(t)
		tokens.EXPECT().RefreshTokens("refresh").Return(&jwt.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil)

		res, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "refresh"})
		require.NoError(t, err)
		assert.Equal(t, "new-access", res.AccessToken)
		assert.Equal(t, "new-refresh", res.RefreshToken)
	})

	t.Run("invalid refresh token", func(t *testing.T) {
		svc, _, tokens := newAuth(t)
		tokens.EXPECT().RefreshTokens("stale").Return(nil, jwt.ErrExpiredToken)

		_, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "stale"})
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}

func TestAuth_ChangePassword(t *testing.T) {
	tests := []struct {
		name     string
		req      dto.ChangePasswordRequest
		setup    func(t *testing.T, repo *userMocks.MockUser)
		wantCode int
	}{
		{
			name: "updates the hash",
			req:  dto.ChangePasswordRequest{CurrentPassword: "front-desk-1", NewPassword: "front-desk-2"},
			setup: func(t *testing.T, repo *userMocks.MockUser) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storedUser(t, "front-desk-1", true), nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
					hashed, ok := fields[userModel.FieldPassword].(string)
					require.True(t, ok)
					require.NoError(t, password.Verify("front-desk-2", hashed))
					assert.Equal(t, "user-1", fields[constant.FieldModifiedBy])

					return nil
				})
			},
		},
		{
			name: "wrong current password",
			req:  dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "front-desk-2"},
			setup: func(t *testing.T, repo *userMocks.MockUser) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storedUser(t, "front-desk-1", true), nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "user gone",
			req:  dto.ChangePasswordRequest{CurrentPassword: "front-desk-1", NewPassword: "front-desk-2"},
			setup: func(_ *testing.T, repo *userMocks.MockUser) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newAuth(t)
			tt.setup(t, repo)

			err := svc.ChangePassword(context.Background(), tt.req, "user-1")
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}
