package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"strings"
	"time"

	"aspen/infras/otel"
	"aspen/infras/postgres"
	"aspen/internal/domains/user/model"
	"aspen/shared"
	"aspen/shared/constant"
	gDto "aspen/shared/dto"
	gRepo "aspen/shared/repository"
)

type User interface {
	Insert(ctx context.Context, model model.User) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.User, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.User, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

type repositoryImpl struct {
	gRepo.Repository[model.User]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) User {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.User](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// GetByEmail ignores case and surrounding spaces. A miss returns a zero User.
func (r *repositoryImpl) GetByEmail(ctx context.Context, email string) (model.User, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".user.GetByEmail")
	defer scope.End()

	normalized := strings.ToLower(strings.TrimSpace(email))

	return r.Get(ctx, shared.FilterByID(normalized, model.FieldEmail, model.TableName)) //nolint:wrapcheck
}

// TouchLastLogin stamps last_login only; the audit columns are left alone.
func (r *repositoryImpl) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".user.TouchLastLogin")
	defer scope.End()

	return r.Update(ctx, map[string]any{model.FieldLastLogin: at}, shared.FilterByID(id, model.FieldID, model.TableName)) //nolint:wrapcheck
}
