package postgres

import (
	"context"
	"fmt"

	"condobook/pkg/logger"
	"condobook/pkg/model"

	"gorm.io/gorm"
)

// Models lists every table of the relational store.
var Models = []any{
	&model.Facility{},
	&model.Booking{},
	&model.SlotClaim{},
	&model.BookingSequence{},
}

// RunMigration creates or alters the tables to match the models.
func RunMigration(ctx context.Context, gdb *gorm.DB, log *logger.Logger) error {
	log.Info("Running relational migrations", "tables", len(Models))

	if err := gdb.WithContext(ctx).AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	log.Info("All relational migrations applied")
	return nil
}
