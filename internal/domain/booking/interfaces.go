package booking

import (
	"context"

	"photosession/internal/domain/catalog"
	"photosession/internal/domain/ledger"
	"photosession/internal/domain/promotion"
	"photosession/internal/domain/schedule"
)

type CatalogReader interface {
	GetPackage(ctx context.Context, id int64) (*catalog.Package, error)
	GetServices(ctx context.Context, ids []int64) (map[int64]catalog.Service, error)
}

type AvailabilityChecker interface {
	CheckSlot(ctx context.Context, photographerID int64, date string, slot schedule.TimeSlot, excludeBookingID int64) error
}

type PromotionSource interface {
	Lookup(ctx context.Context, code string) (*promotion.Promotion, error)
	GetByID(ctx context.Context, id int64) (*promotion.Promotion, error)
}

// PaymentSummarizer reconciles the transactions of a loaded booking.
type PaymentSummarizer interface {
	Summarize(ctx context.Context, b *Booking) (ledger.Summary, error)
}
