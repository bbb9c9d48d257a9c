package promotion

import (
	"time"

	"photosession/internal/pkg/money"
)

type CreateRequest struct {
	Code              string        `json:"code" validate:"required,min=3,max=64"`
	Description       string        `json:"description" validate:"max=500"`
	Type              Type          `json:"type" validate:"required,oneof=percentage fixed_amount"`
	DiscountValue     int64         `json:"discount_value" validate:"gt=0"`
	MinAdvanceDays    *int          `json:"min_advance_days" validate:"omitempty,gte=0"`
	MinBookingAmount  *money.Amount `json:"min_booking_amount" validate:"omitempty,gte=0"`
	MaxDiscountAmount *money.Amount `json:"max_discount_amount" validate:"omitempty,gt=0"`
	UsageLimit        *int          `json:"usage_limit" validate:"omitempty,gt=0"`
	ValidFrom         time.Time     `json:"valid_from" validate:"required"`
	ValidUntil        time.Time     `json:"valid_until" validate:"required"`
	IsActive          *bool         `json:"is_active"`
}

type EvaluateRequest struct {
	Code        string       `json:"code" validate:"required"`
	TotalAmount money.Amount `json:"total_amount" validate:"gte=0"`
	BookingDate string       `json:"booking_date" validate:"required,isodate"`
}

type EvaluateResponse struct {
	Code string `json:"code"`
	Evaluation
	FinalAmount money.Amount `json:"final_amount"`
}
