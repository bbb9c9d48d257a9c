package promotion

import (
	"strings"
	"time"

	"photosession/internal/domain/audit"
	"photosession/internal/pkg/money"
)

type Type string

const (
	TypePercentage  Type = "percentage"
	TypeFixedAmount Type = "fixed_amount"
)

// Promotion is a discount code. DiscountValue holds percent points for
// percentage promotions and minor currency units for fixed ones.
type Promotion struct {
	ID                int64         `gorm:"primaryKey" json:"id"`
	Code              string        `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Description       string        `json:"description,omitempty"`
	Type              Type          `gorm:"size:20;not null" json:"type"`
	DiscountValue     int64         `gorm:"not null" json:"discount_value"`
	MinAdvanceDays    *int          `json:"min_advance_days,omitempty"`
	MinBookingAmount  *money.Amount `json:"min_booking_amount,omitempty"`
	MaxDiscountAmount *money.Amount `json:"max_discount_amount,omitempty"`
	UsageLimit        *int          `json:"usage_limit,omitempty"`
	UsageCount        int           `gorm:"not null;default:0" json:"usage_count"`
	ValidFrom         time.Time     `gorm:"not null" json:"valid_from"`
	ValidUntil        time.Time     `gorm:"not null" json:"valid_until"`
	IsActive          bool          `gorm:"not null" json:"is_active"`

	audit.Info `gorm:"embedded"`
}

func (Promotion) TableName() string { return "promotions" }

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
