package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"miyabi/infras/otel"
	"miyabi/infras/postgres"
	"miyabi/internal/domains/room/model"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	gRepo "miyabi/shared/repository"
	"miyabi/shared/timezone"

	"github.com/jmoiron/sqlx"
)

type Room interface {
	Insert(ctx context.Context, mod model.Room) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Room, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Room, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	SwapStateTx(ctx context.Context, tx *sqlx.Tx, id string, from []string, to string, user string) (bool, error)
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

// SwapStateTx moves the room to state to only while its current state is one of from.
// It reports false when another writer changed the room first.
func (r *repositoryImpl) SwapStateTx(ctx context.Context, tx *sqlx.Tx, id string, from []string, to string, user string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.SwapStateTx")
	defer scope.End()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldState, ArgName: "current_state", Value: from, Operator: gDto.FilterOperatorIn, Table: model.TableName},
		},
	}

	mod := map[string]any{
		model.FieldState:        to,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}

	affected, err := r.UpdateAffectedTx(ctx, tx, mod, filter)
	if err != nil {
		scope.TraceError(err)

		return false, err
	}

	scope.SetAttribute("room.state.swapped", affected > 0)

	return affected > 0, nil
}
