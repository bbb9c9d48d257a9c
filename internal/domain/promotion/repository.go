package promotion

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"photosession/internal/database"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, p *Promotion) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("create promotion: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Promotion, error) {
	var p Promotion
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	return &p, nil
}

func (r *Repository) GetByCode(ctx context.Context, code string) (*Promotion, error) {
	var p Promotion
	err := r.db.WithContext(ctx).Where("code = ?", NormalizeCode(code)).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get promotion by code: %w", err)
	}
	return &p, nil
}

// ConsumeUsageTx increments usage_count only while it is below usage_limit.
// The check and the increment are a single statement, so two concurrent
// redemptions of the last use cannot both succeed.
func (r *Repository) ConsumeUsageTx(tx *gorm.DB, id int64) error {
	res := tx.Model(&Promotion{}).
		Where("id = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("consume promotion usage: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&Promotion{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("consume promotion usage: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrUsageLimitReached
	}
	return nil
}

func (r *Repository) ConsumeUsage(ctx context.Context, id int64) error {
	return r.ConsumeUsageTx(r.db.WithContext(ctx), id)
}
