package repository

import (
	"context"
	"errors"
	"fmt"

	facilitieserrors "condobook/internal/facilities/errors"
	"condobook/pkg/config"
	"condobook/pkg/db"
	"condobook/pkg/db/postgres"
	"condobook/pkg/model"

	"gorm.io/gorm"
)

type gormFacilityRepository struct {
	gdb       *gorm.DB
	txManager db.TransactionManager
}

func NewGormFacilityRepository(cfg *config.Config) FacilityRepository {
	return NewGormFacilityRepositoryFromDB(cfg.Client.Gorm)
}

func NewGormFacilityRepositoryFromDB(gdb *gorm.DB) FacilityRepository {
	return &gormFacilityRepository{
		gdb:       gdb,
		txManager: postgres.NewTransactionManager(gdb),
	}
}

func (r *gormFacilityRepository) conn(ctx context.Context) *gorm.DB {
	return postgres.Conn(ctx, r.gdb)
}

func (r *gormFacilityRepository) Create(ctx context.Context, facility *model.Facility) error {
	if err := r.conn(ctx).Create(facility).Error; err != nil {
		return fmt.Errorf("failed to create facility: %w", err)
	}
	return nil
}

func (r *gormFacilityRepository) FindByID(ctx context.Context, id string) (*model.Facility, error) {
	var facility model.Facility
	if err := r.conn(ctx).First(&facility, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", facilitieserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find facility: %w", err)
	}
	return &facility, nil
}

func (r *gormFacilityRepository) FindAll(ctx context.Context, filter model.FacilityFilter, limit int, offset int64) ([]*model.Facility, error) {
	var facilities []*model.Facility
	err := applyFilter(r.conn(ctx).Model(&model.Facility{}), filter).
		Order("name ASC").
		Limit(limit).
		Offset(int(offset)).
		Find(&facilities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query facilities: %w", err)
	}
	return facilities, nil
}

func (r *gormFacilityRepository) Count(ctx context.Context, filter model.FacilityFilter) (int64, error) {
	var count int64
	if err := applyFilter(r.conn(ctx).Model(&model.Facility{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count facilities: %w", err)
	}
	return count, nil
}

func (r *gormFacilityRepository) Update(ctx context.Context, facility *model.Facility) error {
	result := r.conn(ctx).Model(&model.Facility{}).
		Where("id = ?", facility.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(facility)
	if result.Error != nil {
		return fmt.Errorf("failed to update facility: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", facilitieserrors.ErrNotFound, facility.ID)
	}
	return nil
}

func (r *gormFacilityRepository) Delete(ctx context.Context, id string) error {
	result := r.conn(ctx).Delete(&model.Facility{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete facility: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", facilitieserrors.ErrNotFound, id)
	}
	return nil
}

func (r *gormFacilityRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func applyFilter(q *gorm.DB, filter model.FacilityFilter) *gorm.DB {
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	return q
}
