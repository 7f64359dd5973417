package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"resa/infras/otel"
	"resa/infras/postgres"
	"resa/internal/domains/staff/model"
	gDto "resa/shared/dto"
	gRepo "resa/shared/repository"
)

type Staff interface {
	Insert(ctx context.Context, model model.Staff) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Staff, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Staff]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Staff {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Staff](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
