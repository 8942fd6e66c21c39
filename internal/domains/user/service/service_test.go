package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"aspen/config"
	"aspen/infras/otel/mocks"
	userMocks "aspen/internal/domains/user/mocks"
	"aspen/internal/domains/user/model"
	"aspen/internal/domains/user/model/dto"
	"aspen/internal/domains/user/service"
	cacheMocks "aspen/shared/cache/mocks"
	"aspen/shared/constant"
	gDto "aspen/shared/dto"
	"aspen/shared/failure"
	"aspen/shared/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var errCacheMiss = errors.New("redis: nil")

func newService(t *testing.T) (service.User, *userMocks.MockUser, *cacheMocks.MockRedisCache) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return service.New(mockRepo, cfg, mockCache, mocks.NewOtel()), mockRepo, mockCache
}

func adminContext() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-id")
}

func TestUserService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.CreateUserRequest
		setup     func(repo *userMocks.MockUser)
		wantLevel string
		wantCode  int
	}{
		{
			name: "staff account with explicit role",
			req:  dto.CreateUserRequest{Email: "desk@aspen.test", Password: "front-desk-1", Level: constant.RoleFrontDesk},
			setup: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u model.User) error {
					assert.Equal(t, "admin-id", u.CreatedBy)
					require.NoError(t, password.Verify("front-desk-1", u.Password))

					return nil
				})
			},
			wantLevel: constant.RoleFrontDesk,
		},
		{
			name: "role defaults to guest",
			req:  dto.CreateUserRequest{Email: "ada@example.com", Password: "correct-horse"},
			setup: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantLevel: constant.RoleGuest,
		},
		{
			name: "duplicate email",
			req:  dto.CreateUserRequest{Email: "desk@aspen.test", Password: "front-desk-1"},
			setup: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "storage failure",
			req:  dto.CreateUserRequest{Email: "desk@aspen.test", Password: "front-desk-1"},
			setup: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
			},
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService(t)
			tt.setup(repo)

			res, err := svc.Create(adminContext(), tt.req)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, res.ID)
			assert.Equal(t, tt.wantLevel, res.Level)
		})
	}
}

func TestUserService_Get(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache)
		wantCode int
	}{
		{
			name: "cache hit skips storage",
			setup: func(_ *userMocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _ string, v any) error {
					res, ok := v.(*dto.UserResponse)
					require.True(t, ok)
					res.ID = "user-1"

					return nil
				})
			},
		},
		{
			name: "loaded from storage",
			setup: func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss)
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{ID: "user-1", Level: constant.RoleManager}, nil)
			},
		},
		{
			name: "missing user",
			setup: func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss)
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, cache := newService(t)
			tt.setup(repo, cache)

			res, err := svc.Get(context.Background(), "user-1")
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "user-1", res.ID)
		})
	}
}

func TestUserService_GetAll(t *testing.T) {
	svc, repo, cache := newService(t)

	cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss).Times(2)
	repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
	repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.User{{ID: "a"}, {ID: "b"}}, nil)

	res, err := svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 2}, gDto.FilterGroup{})
	require.NoError(t, err)
	assert.Len(t, res.Users, 2)
	assert.Equal(t, 3, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
}

func TestUserService_Update(t *testing.T) {
	role := constant.RoleManager

	tests := []struct {
		name     string
		req      dto.UpdateUserRequest
		setup    func(repo *userMocks.MockUser)
		wantCode int
	}{
		{
			name: "promotes to manager",
			req:  dto.UpdateUserRequest{Level: &role},
			setup: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
					assert.Equal(t, &role, fields[model.FieldLevel])
					assert.Equal(t, "admin-id", fields[constant.FieldModifiedBy])

					return nil
				})
			},
		},
		{
			name:     "empty request",
			setup:    func(_ *userMocks.MockUser) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown user",
			req:  dto.UpdateUserRequest{Level: &role},
			setup: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService(t)
			tt.setup(repo)

			err := svc.Update(adminContext(), tt.req, "user-1")
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	name := "Front Desk"

	t.Run("updates the caller", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _ map[string]any, filter gDto.FilterGroup) error {
			f, ok := filter.Filters[0].(gDto.Filter)
			require.True(t, ok)
			assert.Equal(t, "admin-id", f.Value)

			return nil
		})

		require.NoError(t, svc.UpdateProfile(adminContext(), dto.UpdateProfileRequest{FullName: &name}))
	})

	t.Run("anonymous caller", func(t *testing.T) {
		svc, _, _ := newService(t)

		err := svc.UpdateProfile(context.Background(), dto.UpdateProfileRequest{FullName: &name})
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}

func TestUserService_Delete(t *testing.T) {
	t.Run("deletes", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		require.NoError(t, svc.Delete(adminContext(), "user-1"))
	})

	t.Run("storage failure", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, errors.New("connection reset"))

		err := svc.Delete(adminContext(), "user-1")
		require.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindStorageUnavailable))
	})
}
