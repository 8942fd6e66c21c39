package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"aspen/infras/otel"
	"aspen/infras/postgres"
	"aspen/internal/domains/room/model"
	"aspen/shared/constant"
	gDto "aspen/shared/dto"
	gRepo "aspen/shared/repository"
	"aspen/shared/timezone"

	"github.com/jmoiron/sqlx"
)

type Room interface {
	Insert(ctx context.Context, model model.Room) error
	InsertBulkTx(ctx context.Context, sqltx *sqlx.Tx, models []model.Room) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Room, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Room, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	CountByRoomType(ctx context.Context, roomTypeID string) (int, error)
	CountByRoomTypeTx(ctx context.Context, sqltx *sqlx.Tx, roomTypeID string) (int, error)
	GetByIDsForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, ids []string) ([]model.Room, error)
	UpdateStatusTx(ctx context.Context, sqltx *sqlx.Tx, ids []string, status, user string) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Room]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Room {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Room](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) CountByRoomType(ctx context.Context, roomTypeID string) (int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.CountByRoomType")
	defer scope.End()

	return r.Count(ctx, byRoomType(roomTypeID)) //nolint:wrapcheck
}

func (r *repositoryImpl) CountByRoomTypeTx(ctx context.Context, sqltx *sqlx.Tx, roomTypeID string) (int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.CountByRoomTypeTx")
	defer scope.End()

	return r.CountTx(ctx, sqltx, byRoomType(roomTypeID)) //nolint:wrapcheck
}

// GetByIDsForUpdateTx locks the rooms in id order; unknown ids are simply absent from the result.
func (r *repositoryImpl) GetByIDsForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, ids []string) ([]model.Room, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.GetByIDsForUpdateTx")
	defer scope.End()

	if len(ids) == 0 {
		return []model.Room{}, nil
	}

	return r.GetAllForUpdateTx(ctx, sqltx, byIDs(ids)) //nolint:wrapcheck
}

func (r *repositoryImpl) UpdateStatusTx(ctx context.Context, sqltx *sqlx.Tx, ids []string, status, user string) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.UpdateStatusTx")
	defer scope.End()

	if len(ids) == 0 {
		return nil
	}

	fields := map[string]any{
		model.FieldStatus:        status,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}

	if err := r.UpdateTx(ctx, sqltx, fields, byIDs(ids)); err != nil {
		return fmt.Errorf("failed to set rooms %s: %w", status, err)
	}

	return nil
}

func byRoomType(roomTypeID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldRoomTypeID,
				Value:    roomTypeID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}
}

func byIDs(ids []string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				ArgName:  "room_ids",
				Field:    model.FieldID,
				Value:    ids,
				Operator: gDto.FilterOperatorIn,
				Table:    model.TableName,
			},
		},
	}
}
