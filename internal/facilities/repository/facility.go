package repository

import (
	"context"

	"condobook/pkg/db"
	"condobook/pkg/model"
)

const (
	CollectionName = "Facilities"
)

type FacilityRepository interface {
	Create(ctx context.Context, facility *model.Facility) error
	FindByID(ctx context.Context, id string) (*model.Facility, error)
	FindAll(ctx context.Context, filter model.FacilityFilter, limit int, offset int64) ([]*model.Facility, error)
	Count(ctx context.Context, filter model.FacilityFilter) (int64, error)
	Update(ctx context.Context, facility *model.Facility) error
	Delete(ctx context.Context, id string) error

	ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error
}
