package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"aspen/infras/otel"
	"aspen/infras/postgres"
	"aspen/internal/domains/roomtype/model"
	"aspen/shared"
	"aspen/shared/constant"
	gDto "aspen/shared/dto"
	"aspen/shared/logger"
	gRepo "aspen/shared/repository"
	"aspen/shared/timezone"

	"github.com/jmoiron/sqlx"
)

type RoomType interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.RoomType) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.RoomType, error)
	GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, id string) (model.RoomType, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.RoomType, error)
	GetByHotel(ctx context.Context, hotelID string) ([]model.RoomType, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	AddPhoto(ctx context.Context, id, key, user string) error
	RemovePhoto(ctx context.Context, id, key, user string) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.RoomType]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) RoomType {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.RoomType](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// GetForUpdateTx locks the room type row; bookings of one room type serialise on it.
func (r *repositoryImpl) GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, id string) (model.RoomType, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room_type.GetForUpdateTx")
	defer scope.End()

	return r.Repository.GetForUpdateTx(ctx, sqltx, shared.FilterByID(id, model.FieldID, model.TableName)) //nolint:wrapcheck
}

func (r *repositoryImpl) GetByHotel(ctx context.Context, hotelID string) ([]model.RoomType, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room_type.GetByHotel")
	defer scope.End()

	params := gDto.QueryParams{SortBy: model.TableName + "." + model.FieldName, SortDir: gDto.SortDirAsc}

	return r.GetAll(ctx, params, shared.FilterByID(hotelID, model.FieldHotelID, model.TableName)) //nolint:wrapcheck
}

func (r *repositoryImpl) AddPhoto(ctx context.Context, id, key, user string) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room_type.AddPhoto")
	defer scope.End()

	query := `UPDATE room_types SET photos = array_append(photos, :photo), modified_at = :modified_at, modified_by = :modified_by WHERE id = :id`
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	args := map[string]any{
		"id":          id,
		"photo":       key,
		"modified_at": timezone.Now(),
		"modified_by": user,
	}

	if _, err := r.db.Write.NamedExecContext(ctx, query, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to add photo (%s): %w", model.EntityName, err)
	}

	return nil
}

// RemovePhoto reports whether the key was part of the room type.
func (r *repositoryImpl) RemovePhoto(ctx context.Context, id, key, user string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room_type.RemovePhoto")
	defer scope.End()

	query := `UPDATE room_types SET photos = array_remove(photos, :photo), modified_at = :modified_at, modified_by = :modified_by
		WHERE id = :id AND :photo = ANY(photos)`
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	args := map[string]any{
		"id":          id,
		"photo":       key,
		"modified_at": timezone.Now(),
		"modified_by": user,
	}

	result, err := r.db.Write.NamedExecContext(ctx, query, args)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to remove photo (%s): %w", model.EntityName, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows (%s): %w", model.EntityName, err)
	}

	return affected > 0, nil
}
