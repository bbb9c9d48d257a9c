package booking

import (
	"time"

	"photosession/internal/domain/audit"
	"photosession/internal/domain/schedule"
	"photosession/internal/pkg/money"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusConfirmed   Status = "confirmed"
	StatusOngoing     Status = "ongoing"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
)

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// OccupyingStatuses hold the photographer's time.
var OccupyingStatuses = []Status{StatusPending, StatusConfirmed, StatusOngoing, StatusRescheduled}

func (s Status) OccupiesSlot() bool {
	for _, o := range OccupyingStatuses {
		if s == o {
			return true
		}
	}
	return false
}

// LineItem is one service on a booking. LineTotal is derived.
type LineItem struct {
	ServiceID       int64        `json:"service_id"`
	Name            string       `json:"name,omitempty"`
	Quantity        int          `json:"quantity"`
	PricePerUnit    money.Amount `json:"price_per_unit"`
	LineTotal       money.Amount `json:"line_total"`
	DurationMinutes *int         `json:"duration_minutes,omitempty"`
}

type Booking struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	Reference      string     `gorm:"size:16;uniqueIndex;not null" json:"reference"`
	CustomerID     int64      `gorm:"not null;index" json:"customer_id"`
	PackageID      *int64     `json:"package_id,omitempty"`
	PhotographerID *int64     `gorm:"index:idx_bookings_photographer_date" json:"photographer_id,omitempty"`
	PromotionID    *int64     `json:"promotion_id,omitempty"`
	Services       []LineItem `gorm:"type:text;serializer:json" json:"services"`

	BookingDate     string `gorm:"size:10;not null;index:idx_bookings_photographer_date" json:"booking_date"`
	StartTime       string `gorm:"size:5;not null" json:"start_time"`
	EndTime         string `gorm:"size:5;not null" json:"end_time"`
	StartMinute     int    `gorm:"not null" json:"-"`
	EndMinute       int    `gorm:"not null" json:"-"`
	DurationMinutes int    `gorm:"not null" json:"duration_minutes"`

	TotalAmount    money.Amount `gorm:"not null" json:"total_amount"`
	DiscountAmount money.Amount `gorm:"not null" json:"discount_amount"`
	FinalAmount    money.Amount `gorm:"not null" json:"final_amount"`

	Status          Status     `gorm:"size:20;not null;index" json:"status"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CancelledReason string     `json:"cancelled_reason,omitempty"`
	RescheduledFrom *string    `gorm:"size:16" json:"rescheduled_from,omitempty"`
	Notes           string     `json:"notes,omitempty"`

	Version int `gorm:"not null" json:"version"`

	audit.Info `gorm:"embedded"`
}

func (Booking) TableName() string { return "bookings" }

// SetSchedule places the session at date/start for duration minutes.
func (b *Booking) SetSchedule(date string, start schedule.Clock, duration int) {
	end := start.Add(duration)
	b.BookingDate = date
	b.StartTime = start.String()
	b.EndTime = end.String()
	b.StartMinute = int(start)
	b.EndMinute = int(end)
	b.DurationMinutes = duration
}

func (b *Booking) Slot() schedule.TimeSlot {
	return schedule.TimeSlot{Start: schedule.Clock(b.StartMinute), End: schedule.Clock(b.EndMinute)}
}

// ScheduledStart is the session start in UTC.
func (b *Booking) ScheduledStart() time.Time {
	return scheduledAt(b.BookingDate, schedule.Clock(b.StartMinute))
}

// RecomputeAmounts keeps discount within [0, total] and final = total - discount.
func (b *Booking) RecomputeAmounts() {
	if len(b.Services) > 0 {
		var total money.Amount
		for i := range b.Services {
			item := &b.Services[i]
			item.LineTotal = item.PricePerUnit.Mul(item.Quantity)
			total = total.Add(item.LineTotal)
		}
		b.TotalAmount = total
	}
	b.TotalAmount = b.TotalAmount.ClampZero()
	b.DiscountAmount = money.Min(b.DiscountAmount.ClampZero(), b.TotalAmount)
	b.FinalAmount = b.TotalAmount.Sub(b.DiscountAmount).ClampZero()
}

func (b *Booking) Clone() *Booking {
	c := *b
	c.Services = append([]LineItem(nil), b.Services...)
	return &c
}

func (b *Booking) IsPhotographer(id int64) bool {
	return b.PhotographerID != nil && *b.PhotographerID == id
}

func scheduledAt(date string, start schedule.Clock) time.Time {
	day, err := schedule.ParseDate(date)
	if err != nil {
		return time.Time{}
	}
	return day.Add(time.Duration(start) * time.Minute)
}
