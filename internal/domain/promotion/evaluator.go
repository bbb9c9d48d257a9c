package promotion

import (
	"time"

	"photosession/internal/pkg/money"
)

// Evaluation is the outcome of checking a promotion against a provisional
// booking. Reason is set when the promotion does not apply.
type Evaluation struct {
	Applicable     bool         `json:"applicable"`
	DiscountAmount money.Amount `json:"discount_amount"`
	Reason         string       `json:"reason,omitempty"`
}

const (
	ReasonInactive       = "promotion is not active"
	ReasonNotStarted     = "promotion is not valid yet"
	ReasonExpired        = "promotion has expired"
	ReasonAdvanceBooking = "booking is not far enough in advance"
	ReasonMinAmount      = "booking total is below the promotion minimum"
	ReasonExhausted      = "promotion usage limit reached"
)

// Evaluate applies the checks in order: active, validity window, advance days,
// minimum amount, remaining usage. It never mutates p.
func Evaluate(p *Promotion, total money.Amount, bookingDate, now time.Time) Evaluation {
	switch {
	case !p.IsActive:
		return notApplicable(ReasonInactive)
	case now.Before(p.ValidFrom):
		return notApplicable(ReasonNotStarted)
	case now.After(p.ValidUntil):
		return notApplicable(ReasonExpired)
	case p.MinAdvanceDays != nil && DaysBetween(now, bookingDate) < *p.MinAdvanceDays:
		return notApplicable(ReasonAdvanceBooking)
	case !MeetsMinimum(p, total):
		return notApplicable(ReasonMinAmount)
	case p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit:
		return notApplicable(ReasonExhausted)
	}

	return Evaluation{Applicable: true, DiscountAmount: Discount(p, total)}
}

// MeetsMinimum reports whether total reaches the promotion's minimum booking
// amount, if it has one.
func MeetsMinimum(p *Promotion, total money.Amount) bool {
	return p.MinBookingAmount == nil || total >= *p.MinBookingAmount
}

// Discount computes the raw discount for total, capped by MaxDiscountAmount
// and by total itself.
func Discount(p *Promotion, total money.Amount) money.Amount {
	var d money.Amount
	switch p.Type {
	case TypePercentage:
		d = total.Percent(p.DiscountValue)
	case TypeFixedAmount:
		d = money.Amount(p.DiscountValue)
	}
	if p.MaxDiscountAmount != nil {
		d = money.Min(d, *p.MaxDiscountAmount)
	}
	return money.Min(d, total).ClampZero()
}

// DaysBetween counts whole calendar days from now to date in UTC.
func DaysBetween(now, date time.Time) int {
	a := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func notApplicable(reason string) Evaluation {
	return Evaluation{Reason: reason}
}
