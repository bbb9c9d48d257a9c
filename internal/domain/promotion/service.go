package promotion

import (
	"context"
	"time"

	"photosession/internal/domain/audit"
	"photosession/internal/pkg/apperror"
	"photosession/internal/pkg/logger"
	"photosession/internal/pkg/money"
	"photosession/internal/pkg/validator"
)

type Service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, actor audit.Actor, req CreateRequest) (*Promotion, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, apperror.Validation(errs)
	}
	if req.Type == TypePercentage && req.DiscountValue > 100 {
		return nil, apperror.FieldError("discount_value", "percentage must be at most 100")
	}
	if !req.ValidUntil.After(req.ValidFrom) {
		return nil, apperror.FieldError("valid_until", "must be after valid_from")
	}

	p := &Promotion{
		Code:              NormalizeCode(req.Code),
		Description:       req.Description,
		Type:              req.Type,
		DiscountValue:     req.DiscountValue,
		MinAdvanceDays:    req.MinAdvanceDays,
		MinBookingAmount:  req.MinBookingAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		UsageLimit:        req.UsageLimit,
		ValidFrom:         req.ValidFrom.UTC(),
		ValidUntil:        req.ValidUntil.UTC(),
		IsActive:          req.IsActive == nil || *req.IsActive,
	}
	p.StampCreate(actor.ID, s.now())

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info().Str("code", p.Code).Int64("promotion_id", p.ID).Msg("promotion created")
	return p, nil
}

// Lookup finds a promotion by its case-insensitive code.
func (s *Service) Lookup(ctx context.Context, code string) (*Promotion, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Promotion, error) {
	return s.repo.GetByID(ctx, id)
}

// EvaluatePromo reports whether code applies to a booking of total on
// bookingDate. It does not consume usage.
func (s *Service) EvaluatePromo(ctx context.Context, code string, total money.Amount, bookingDate time.Time) (*Promotion, Evaluation, error) {
	p, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, Evaluation{}, err
	}
	return p, Evaluate(p, total, bookingDate, s.now()), nil
}

// ConsumePromoUsage records one redemption, failing with ErrUsageLimitReached
// once the limit is hit.
func (s *Service) ConsumePromoUsage(ctx context.Context, id int64) error {
	return s.repo.ConsumeUsage(ctx, id)
}
