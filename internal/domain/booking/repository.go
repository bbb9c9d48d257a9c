package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"photosession/internal/database"
	"photosession/internal/domain/promotion"
	"photosession/internal/domain/schedule"
)

// PromoConsumer redeems one promotion use inside the booking transaction.
type PromoConsumer interface {
	ConsumeUsageTx(tx *gorm.DB, id int64) error
}

type Repository struct {
	db     *gorm.DB
	promos PromoConsumer
}

func NewRepository(db *gorm.DB, promos PromoConsumer) *Repository {
	return &Repository{db: db, promos: promos}
}

// Create inserts b after consuming consumePromoID (when non-nil) and
// re-checking the photographer's calendar, all in one transaction. The
// partial unique index on the start minute backs the overlap query.
func (r *Repository) Create(ctx context.Context, b *Booking, consumePromoID *int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if consumePromoID != nil {
			if err := r.promos.ConsumeUsageTx(tx, *consumePromoID); err != nil {
				if errors.Is(err, promotion.ErrUsageLimitReached) {
					return ErrPromoExhausted
				}
				return err
			}
		}
		if err := ensureFree(tx, b, 0); err != nil {
			return err
		}
		return tx.Create(b).Error
	})
	return translateWriteError(err)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetByIDUnscoped also returns deactivated bookings.
func (r *Repository) GetByIDUnscoped(ctx context.Context, id int64) (*Booking, error) {
	return r.get(r.db.WithContext(ctx).Unscoped(), id)
}

func (r *Repository) get(db *gorm.DB, id int64) (*Booking, error) {
	var b Booking
	if err := db.First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

func (r *Repository) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&Booking{}).Where("reference = ?", ref).Count(&count).Error
	return count > 0, err
}

// Update writes every column of b if the stored row still has
// expectedVersion. checkSlot re-runs the overlap query first, excluding b.
func (r *Repository) Update(ctx context.Context, b *Booking, expectedVersion int, checkSlot bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if checkSlot && !b.DeletedAt.Valid && b.Status.OccupiesSlot() {
			if err := ensureFree(tx, b, b.ID); err != nil {
				return err
			}
		}

		b.Version = expectedVersion + 1
		res := tx.Unscoped().Model(b).
			Where("version = ?", expectedVersion).
			Select("*").
			Omit("id", "created_at", "created_by").
			Updates(b)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			b.Version = expectedVersion
			return ErrStaleBooking
		}
		return nil
	})
	return translateWriteError(err)
}

// ListOccupied implements schedule.OccupancyReader.
func (r *Repository) ListOccupied(ctx context.Context, photographerID int64, date string, excludeBookingID int64) ([]schedule.TimeSlot, error) {
	var rows []struct {
		StartMinute int
		EndMinute   int
	}
	q := r.db.WithContext(ctx).Model(&Booking{}).
		Select("start_minute, end_minute").
		Where("photographer_id = ? AND booking_date = ? AND status IN ?", photographerID, date, OccupyingStatuses)
	if excludeBookingID != 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}
	if err := q.Order("start_minute").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list occupied: %w", err)
	}

	out := make([]schedule.TimeSlot, 0, len(rows))
	for _, row := range rows {
		out = append(out, schedule.TimeSlot{Start: schedule.Clock(row.StartMinute), End: schedule.Clock(row.EndMinute)})
	}
	return out, nil
}

// ensureFree fails with ErrSlotUnavailable when another occupying booking of
// the same photographer overlaps b.
func ensureFree(tx *gorm.DB, b *Booking, excludeID int64) error {
	if b.PhotographerID == nil {
		return nil
	}
	var count int64
	q := tx.Model(&Booking{}).
		Where("photographer_id = ? AND booking_date = ? AND status IN ?", *b.PhotographerID, b.BookingDate, OccupyingStatuses).
		Where("start_minute < ? AND end_minute > ?", b.EndMinute, b.StartMinute)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	if count > 0 {
		return ErrSlotUnavailable
	}
	return nil
}

func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := database.UniqueViolation(err); ok {
		if strings.Contains(constraint, "reference") {
			return errDuplicateReference
		}
		return ErrSlotUnavailable
	}
	return err
}

// EnsureSlotIndex creates the partial unique index that stops two active
// bookings of one photographer from starting at the same minute.
func EnsureSlotIndex(db *gorm.DB) error {
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_slot
		ON bookings (photographer_id, booking_date, start_minute)
		WHERE photographer_id IS NOT NULL
		AND deleted_at IS NULL
		AND status IN ('pending', 'confirmed', 'ongoing', 'rescheduled')`).Error
}
