package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"miyabi/infras/otel"
	"miyabi/infras/postgres"
	"miyabi/internal/domains/accesslog/model"
	gDto "miyabi/shared/dto"
	gRepo "miyabi/shared/repository"
)

type AccessLog interface {
	Insert(ctx context.Context, mod model.AccessLog) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.AccessLog, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.AccessLog]
}

func New(db *postgres.Connection, otel otel.Otel) AccessLog {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.AccessLog](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
