package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"miyabi/infras/otel"
	"miyabi/infras/postgres"
	"miyabi/internal/domains/reservation/model"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/logger"
	gRepo "miyabi/shared/repository"
	"miyabi/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const applyConsumptionQuery = `UPDATE reservations
SET total_consumption = total_consumption + :delta,
    total_pay = total_pay + :delta,
    modified_at = :modified_at,
    modified_by = :modified_by
WHERE id = :id AND state NOT IN (:cancelled, :completed)`

type Reservation interface {
	Insert(ctx context.Context, mod model.Reservation) error
	InsertTx(ctx context.Context, tx *sqlx.Tx, mod model.Reservation) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Reservation, error)
	GetTx(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.Reservation, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Reservation, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, tx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	DeleteTx(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) error
	SwapStateTx(ctx context.Context, tx *sqlx.Tx, id, from string, fields map[string]any) (bool, error)
	ApplyConsumptionTx(ctx context.Context, tx *sqlx.Tx, id string, delta decimal.Decimal, user string) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Reservation]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Reservation {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// SwapStateTx writes fields only while the reservation is still in state from.
func (r *repositoryImpl) SwapStateTx(ctx context.Context, tx *sqlx.Tx, id, from string, fields map[string]any) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.SwapStateTx")
	defer scope.End()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldState, ArgName: "current_state", Value: from, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	affected, err := r.UpdateAffectedTx(ctx, tx, fields, filter)
	if err != nil {
		scope.TraceError(err)

		return false, err
	}

	return affected > 0, nil
}

// ApplyConsumptionTx adds delta to both running totals of an open reservation in one statement.
// It reports false when the reservation is missing or already closed.
func (r *repositoryImpl) ApplyConsumptionTx(ctx context.Context, tx *sqlx.Tx, id string, delta decimal.Decimal, user string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.ApplyConsumptionTx")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, applyConsumptionQuery)

	args := map[string]any{
		"id":          id,
		"delta":       delta,
		"modified_at": timezone.Now(),
		"modified_by": user,
		"cancelled":   model.StateCancelled,
		"completed":   model.StateCompleted,
	}

	result, err := tx.NamedExecContext(ctx, applyConsumptionQuery, args)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to apply consumption (%s): %w", model.EntityName, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		scope.TraceError(err)

		return false, fmt.Errorf("failed to read affected rows (%s): %w", model.EntityName, err)
	}

	return affected > 0, nil
}
