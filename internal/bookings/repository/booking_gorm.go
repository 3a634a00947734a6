package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "condobook/internal/bookings/errors"
	"condobook/pkg/config"
	"condobook/pkg/db"
	"condobook/pkg/db/postgres"
	"condobook/pkg/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormBookingRepository struct {
	gdb       *gorm.DB
	txManager db.TransactionManager
}

func NewGormBookingRepository(cfg *config.Config) BookingRepository {
	return NewGormBookingRepositoryFromDB(cfg.Client.Gorm)
}

func NewGormBookingRepositoryFromDB(gdb *gorm.DB) BookingRepository {
	return &gormBookingRepository{
		gdb:       gdb,
		txManager: postgres.NewTransactionManager(gdb),
	}
}

func (r *gormBookingRepository) conn(ctx context.Context) *gorm.DB {
	return postgres.Conn(ctx, r.gdb)
}

func (r *gormBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	claims, err := model.ClaimsFor(booking, booking.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to build slot claims: %w", err)
	}

	return r.ExecuteTransaction(ctx, func(ctx context.Context) error {
		tx := r.conn(ctx)
		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		if len(claims) == 0 {
			return nil
		}
		if err := tx.Create(&claims).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return bookingserrors.ErrTimeConflict
			}
			return fmt.Errorf("failed to claim booking slots: %w", err)
		}
		return nil
	})
}

func (r *gormBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return r.findByID(r.conn(ctx), id)
}

func (r *gormBookingRepository) findByID(tx *gorm.DB, id string) (*model.Booking, error) {
	var booking model.Booking
	if err := tx.First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *gormBookingRepository) FindOverlapping(
	ctx context.Context,
	facilityID, date, start, end string,
	statuses []model.BookingStatus,
) ([]*model.Booking, error) {
	q := r.conn(ctx).
		Where("facility_id = ? AND booking_date = ?", facilityID, date).
		Where("start_time < ? AND end_time > ?", end, start)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var bookings []*model.Booking
	if err := q.Order("start_time ASC").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	return bookings, nil
}

func (r *gormBookingRepository) FindAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	var bookings []*model.Booking
	err := applyFilter(r.conn(ctx), filter).
		Order("booking_date DESC, start_time DESC").
		Limit(limit).
		Offset(int(offset)).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	return bookings, nil
}

func (r *gormBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	var count int64
	if err := applyFilter(r.conn(ctx).Model(&model.Booking{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func applyFilter(q *gorm.DB, filter model.BookingFilter) *gorm.DB {
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.FacilityID != "" {
		q = q.Where("facility_id = ?", filter.FacilityID)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.DateFrom != "" {
		q = q.Where("booking_date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q = q.Where("booking_date <= ?", filter.DateTo)
	}
	return q
}

func (r *gormBookingRepository) FindElapsed(ctx context.Context, today, clock string) ([]*model.Booking, error) {
	var bookings []*model.Booking
	err := r.conn(ctx).
		Where("status = ?", model.BookingStatusConfirmed).
		Where("(booking_date < ? OR (booking_date = ? AND end_time <= ?))", today, today, clock).
		Order("booking_date ASC, start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find elapsed bookings: %w", err)
	}
	return bookings, nil
}

func (r *gormBookingRepository) UpdateStatus(
	ctx context.Context,
	id string,
	expected []model.BookingStatus,
	change model.StatusChange,
) (*model.Booking, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	var updated *model.Booking
	err := r.ExecuteTransaction(ctx, func(ctx context.Context) error {
		tx := r.conn(ctx)

		res := tx.Model(&model.Booking{}).
			Where("id = ? AND status IN ?", id, expected).
			Updates(statusFields(change))
		if res.Error != nil {
			return fmt.Errorf("failed to update booking status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			if _, err := r.findByID(tx, id); err != nil {
				return err
			}
			return bookingserrors.ErrStatusChanged
		}

		if !change.Status.IsActive() {
			if err := tx.Where("booking_id = ?", id).Delete(&model.SlotClaim{}).Error; err != nil {
				return fmt.Errorf("failed to release booking slots: %w", err)
			}
		}

		booking, err := r.findByID(tx, id)
		if err != nil {
			return err
		}
		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *gormBookingRepository) UpdateDetails(ctx context.Context, id string, update *model.BookingUpdate, at time.Time) (*model.Booking, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	var updated *model.Booking
	err := r.ExecuteTransaction(ctx, func(ctx context.Context) error {
		tx := r.conn(ctx)

		res := tx.Model(&model.Booking{}).
			Where("id = ? AND status = ?", id, model.BookingStatusPending).
			Updates(detailFields(update, at))
		if res.Error != nil {
			return fmt.Errorf("failed to update booking: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			if _, err := r.findByID(tx, id); err != nil {
				return err
			}
			return bookingserrors.ErrStatusChanged
		}

		booking, err := r.findByID(tx, id)
		if err != nil {
			return err
		}
		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *gormBookingRepository) NextSequence(ctx context.Context, year int) (int64, error) {
	var value int64
	err := r.ExecuteTransaction(ctx, func(ctx context.Context) error {
		tx := r.conn(ctx)
		now := time.Now().UTC()

		seq := model.BookingSequence{Year: year, Value: 1, UpdatedAt: now}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "year"}},
			DoUpdates: clause.Assignments(map[string]any{
				"value":      gorm.Expr("booking_sequences.value + 1"),
				"updated_at": now,
			}),
		}).Create(&seq).Error
		if err != nil {
			return fmt.Errorf("failed to allocate booking sequence: %w", err)
		}

		var current model.BookingSequence
		if err := tx.First(&current, "year = ?", year).Error; err != nil {
			return fmt.Errorf("failed to read booking sequence: %w", err)
		}
		value = current.Value
		return nil
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (r *gormBookingRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
