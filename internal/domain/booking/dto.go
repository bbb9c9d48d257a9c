package booking

import (
	"photosession/internal/domain/ledger"
	"photosession/internal/pkg/money"
)

type LineItemRequest struct {
	ServiceID       int64         `json:"service_id" validate:"required,gt=0"`
	Quantity        int           `json:"quantity" validate:"required,gte=1"`
	PricePerUnit    *money.Amount `json:"price_per_unit" validate:"omitempty,gte=0"`
	DurationMinutes *int          `json:"duration_minutes" validate:"omitempty,gte=15"`
}

type CreateRequest struct {
	CustomerID      int64             `json:"customer_id" validate:"omitempty,gt=0"`
	PackageID       *int64            `json:"package_id" validate:"omitempty,gt=0"`
	PhotographerID  *int64            `json:"photographer_id" validate:"omitempty,gt=0"`
	Services        []LineItemRequest `json:"services" validate:"dive"`
	BookingDate     string            `json:"booking_date" validate:"required,isodate"`
	StartTime       string            `json:"start_time" validate:"required,hhmm"`
	EndTime         string            `json:"end_time" validate:"omitempty,hhmm"`
	DurationMinutes int               `json:"duration_minutes" validate:"omitempty,gte=15,lte=480"`
	PromoCode       string            `json:"promo_code" validate:"max=64"`
	Notes           string            `json:"notes" validate:"max=2000"`
}

type UpdateServicesRequest struct {
	Services []LineItemRequest `json:"services" validate:"required,min=1,dive"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type RescheduleRequest struct {
	BookingDate string `json:"booking_date" validate:"required,isodate"`
	StartTime   string `json:"start_time" validate:"required,hhmm"`
}

type Detail struct {
	*Booking
	Payment *ledger.Summary `json:"payment,omitempty"`
}
