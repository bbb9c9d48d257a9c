package schedule

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByPhotographer(ctx context.Context, photographerID int64) (*PhotographerSchedule, error) {
	var s PhotographerSchedule
	err := r.db.WithContext(ctx).Where("photographer_id = ?", photographerID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return &s, nil
}

// Upsert writes the schedule keyed by photographer, replacing weekly hours
// and overrides.
func (r *Repository) Upsert(ctx context.Context, s *PhotographerSchedule) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "photographer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"weekly", "overrides", "updated_by", "updated_at"}),
	}).Create(s).Error
	if err != nil {
		return fmt.Errorf("upsert schedule: %w", err)
	}
	return nil
}
