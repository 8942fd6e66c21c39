package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"aspen/infras/otel"
	"aspen/infras/postgres"
	"aspen/internal/domains/guest/model"
	"aspen/shared"
	"aspen/shared/constant"
	gDto "aspen/shared/dto"
	"aspen/shared/failure"
	"aspen/shared/logger"
	gRepo "aspen/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Guest interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Guest, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Guest, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpsertByEmailTx(ctx context.Context, sqltx *sqlx.Tx, guest model.Guest) (model.Guest, error)
	GetBookingIDs(ctx context.Context, guestID string) ([]string, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Guest]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Guest {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Guest](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// UpsertByEmailTx returns the guest owning the email, creating it when absent.
// An existing guest keeps its stored details.
func (r *repositoryImpl) UpsertByEmailTx(ctx context.Context, sqltx *sqlx.Tx, guest model.Guest) (model.Guest, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".guest.UpsertByEmailTx")
	defer scope.End()

	query := `INSERT INTO guests (id, name, email, phone, address, created_at, modified_at, created_by, modified_by)
		VALUES (:id, :name, :email, :phone, :address, :created_at, :modified_at, :created_by, :modified_by)
		ON CONFLICT (email) DO NOTHING`
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := sqltx.NamedExecContext(ctx, query, guest); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return model.Guest{}, fmt.Errorf("failed to upsert guest: %w", err)
	}

	stored, err := r.GetForUpdateTx(ctx, sqltx, shared.FilterByID(guest.Email, model.FieldEmail, model.TableName))
	if err != nil {
		return model.Guest{}, fmt.Errorf("failed to look up guest: %w", err)
	}

	if stored.ID == constant.Empty {
		return model.Guest{}, failure.GuestLookupConflict(guest.Email) // nolint:wrapcheck
	}

	return stored, nil
}

func (r *repositoryImpl) GetBookingIDs(ctx context.Context, guestID string) ([]string, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".guest.GetBookingIDs")
	defer scope.End()

	query := `SELECT booking_id FROM bookings WHERE guest_id = $1 ORDER BY check_in_date DESC`
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	ids := []string{}

	if err := r.db.Read.SelectContext(ctx, &ids, query, guestID); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get guest bookings: %w", err)
	}

	return ids, nil
}
