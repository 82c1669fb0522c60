package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"miyabi/infras/otel"
	"miyabi/infras/postgres"
	"miyabi/internal/domains/consumption/model"
	gDto "miyabi/shared/dto"
	gRepo "miyabi/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Consumption interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, mod model.Consumption) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Consumption, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Consumption, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	DeleteTx(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Consumption]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Consumption {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Consumption](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
