// Package migrations brings the schema up to date for every domain table.
package migrations

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"photosession/internal/domain/booking"
	"photosession/internal/domain/catalog"
	"photosession/internal/domain/payment"
	"photosession/internal/domain/promotion"
	"photosession/internal/domain/schedule"
)

// Models lists the tables in dependency order.
func Models() []any {
	return []any{
		&promotion.Promotion{},
		&schedule.PhotographerSchedule{},
		&catalog.Package{},
		&catalog.Service{},
		&booking.Booking{},
		&payment.Transaction{},
	}
}

func Migrate(db *gorm.DB) error {
	log.Info().Msg("running auto-migrate")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if err := booking.EnsureSlotIndex(db); err != nil {
		return fmt.Errorf("create slot index: %w", err)
	}
	return nil
}
