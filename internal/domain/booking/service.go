package booking

import (
	"context"
	"errors"
	"time"

	"photosession/internal/domain/audit"
	"photosession/internal/domain/catalog"
	"photosession/internal/domain/promotion"
	"photosession/internal/domain/schedule"
	"photosession/internal/events"
	"photosession/internal/pkg/apperror"
	"photosession/internal/pkg/lock"
	"photosession/internal/pkg/logger"
	"photosession/internal/pkg/money"
	"photosession/internal/pkg/refcode"
	"photosession/internal/pkg/validator"
)

const (
	defaultDurationMinutes = 60
	minDurationMinutes     = 15
	maxDurationMinutes     = 480
	referenceAttempts      = 3
)

type Service struct {
	repo         *Repository
	catalog      CatalogReader
	availability AvailabilityChecker
	promotions   PromotionSource
	payments     PaymentSummarizer
	locker       lock.Locker
	publisher    events.Publisher
	now          func() time.Time
}

func NewService(
	repo *Repository,
	catalog CatalogReader,
	availability AvailabilityChecker,
	promotions PromotionSource,
	payments PaymentSummarizer,
	locker lock.Locker,
	publisher events.Publisher,
) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		repo:         repo,
		catalog:      catalog,
		availability: availability,
		promotions:   promotions,
		payments:     payments,
		locker:       locker,
		publisher:    publisher,
		now:          time.Now,
	}
}

// CreateBooking validates the request, prices it, checks the photographer's
// calendar and applies the promotion before persisting. Nothing is written
// unless every step passes.
func (s *Service) CreateBooking(ctx context.Context, actor audit.Actor, req CreateRequest) (*Booking, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, apperror.Validation(errs)
	}

	customerID, err := s.customerFor(actor, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if (req.PackageID != nil) == (len(req.Services) > 0) {
		return nil, apperror.FieldError("services", "exactly one of package_id or services is required")
	}

	start, err := schedule.ParseClock(req.StartTime)
	if err != nil {
		return nil, apperror.FieldError("start_time", "must be HH:MM")
	}

	b := &Booking{
		CustomerID:     customerID,
		PackageID:      req.PackageID,
		PhotographerID: req.PhotographerID,
		Status:         StatusPending,
		Notes:          req.Notes,
		Version:        1,
	}

	duration := req.DurationMinutes
	if req.PackageID != nil {
		pkg, err := s.catalog.GetPackage(ctx, *req.PackageID)
		if err != nil {
			return nil, err
		}
		b.TotalAmount = pkg.Price
		b.Services = []LineItem{}
		if duration == 0 {
			duration = pkg.DurationMinutes
		}
	} else {
		items, itemsDuration, err := s.buildLineItems(ctx, req.Services)
		if err != nil {
			return nil, err
		}
		b.Services = items
		if duration == 0 {
			duration = itemsDuration
		}
	}
	if duration == 0 {
		duration = defaultDurationMinutes
	}
	if duration < minDurationMinutes || duration > maxDurationMinutes {
		return nil, apperror.FieldError("duration_minutes", "must be between 15 and 480")
	}
	if start.Add(duration) > schedule.EndOfDay {
		return nil, apperror.FieldError("start_time", "session must end by 24:00")
	}
	b.SetSchedule(req.BookingDate, start, duration)
	if req.EndTime != "" && req.EndTime != b.EndTime {
		return nil, apperror.FieldError("end_time", "must equal start_time plus duration ("+b.EndTime+")")
	}
	b.RecomputeAmounts()

	now := s.now().UTC()
	if !b.ScheduledStart().After(now) {
		return nil, apperror.Wrapf(ErrNotInFuture, "%s %s has passed", b.BookingDate, b.StartTime)
	}

	if err := s.reserve(ctx, actor, b, req.PromoCode, now); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("booking_ref", b.Reference).
		Int64("customer_id", b.CustomerID).
		Int64("final_amount", int64(b.FinalAmount)).
		Msg("booking created")
	s.emit(ctx, events.BookingCreated, b, actor)
	return b, nil
}

// reserve holds the photographer's slot lock while it checks the calendar,
// applies the promotion and inserts b. The lock is released on return.
func (s *Service) reserve(ctx context.Context, actor audit.Actor, b *Booking, promoCode string, now time.Time) error {
	if b.PhotographerID != nil {
		release, err := s.locker.Acquire(ctx, lock.SlotKey(*b.PhotographerID, b.BookingDate))
		if err != nil {
			return err
		}
		defer release()

		if err := s.availability.CheckSlot(ctx, *b.PhotographerID, b.BookingDate, b.Slot(), 0); err != nil {
			if errors.Is(err, schedule.ErrSlotUnavailable) {
				return ErrSlotUnavailable
			}
			return err
		}
	}

	var consumePromo *int64
	if promoCode != "" {
		p, err := s.promotions.Lookup(ctx, promoCode)
		if err != nil {
			if errors.Is(err, promotion.ErrNotFound) {
				return apperror.FieldError("promo_code", "unknown promotion code")
			}
			return err
		}
		day, _ := schedule.ParseDate(b.BookingDate)
		ev := promotion.Evaluate(p, b.TotalAmount, day, now)
		if ev.Applicable {
			b.PromotionID = &p.ID
			b.DiscountAmount = ev.DiscountAmount
			consumePromo = &p.ID
		} else {
			logger.FromContext(ctx).Info().Str("code", p.Code).Str("reason", ev.Reason).Msg("promotion not applied")
		}
		b.RecomputeAmounts()
	}

	b.StampCreate(actor.ID, now)
	return s.insert(ctx, b, consumePromo)
}

// insert assigns a fresh reference and retries when it collides.
func (s *Service) insert(ctx context.Context, b *Booking, consumePromo *int64) error {
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		ref, err := refcode.Generate(ctx, refcode.BookingPrefix, s.repo.ReferenceExists)
		if err != nil {
			return err
		}
		b.Reference = ref
		err = s.repo.Create(ctx, b, consumePromo)
		if !errors.Is(err, errDuplicateReference) {
			return err
		}
	}
	return refcode.ErrExhausted
}

func (s *Service) buildLineItems(ctx context.Context, reqs []LineItemRequest) ([]LineItem, int, error) {
	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ServiceID)
	}
	services, err := s.catalog.GetServices(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	items := make([]LineItem, 0, len(reqs))
	duration := 0
	for _, r := range reqs {
		svc := services[r.ServiceID]
		item := LineItem{
			ServiceID:       r.ServiceID,
			Name:            svc.Name,
			Quantity:        r.Quantity,
			PricePerUnit:    pickAmount(r.PricePerUnit, svc),
			DurationMinutes: svc.DurationMinutes,
		}
		if r.DurationMinutes != nil {
			item.DurationMinutes = r.DurationMinutes
		}
		item.LineTotal = item.PricePerUnit.Mul(item.Quantity)
		if item.DurationMinutes != nil {
			duration += *item.DurationMinutes * item.Quantity
		}
		items = append(items, item)
	}
	return items, duration, nil
}

func pickAmount(override *money.Amount, svc catalog.Service) money.Amount {
	if override != nil {
		return *override
	}
	return svc.PricePerUnit
}

func (s *Service) customerFor(actor audit.Actor, requested int64) (int64, error) {
	switch actor.Role {
	case audit.RoleCustomer:
		if requested != 0 && requested != actor.ID {
			return 0, ErrForbidden
		}
		return actor.ID, nil
	case audit.RoleAdmin:
		if requested == 0 {
			return 0, apperror.FieldError("customer_id", "required when booking on behalf of a customer")
		}
		return requested, nil
	default:
		return 0, ErrForbidden
	}
}

func (s *Service) GetByID(ctx context.Context, actor audit.Actor, id int64) (*Detail, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(actor, b) {
		return nil, ErrForbidden
	}
	summary, err := s.payments.Summarize(ctx, b)
	if err != nil {
		return nil, err
	}
	return &Detail{Booking: b, Payment: &summary}, nil
}

// Transition applies a lifecycle action. Writers of one booking are
// serialized; a request that loses the race re-reads and fails the guard
// against the state it sees.
func (s *Service) Transition(ctx context.Context, actor audit.Actor, bookingID int64, action Action) (*Booking, error) {
	current, next, err := s.transition(ctx, actor, bookingID, action)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("booking_ref", next.Reference).
		Str("action", action.Name()).
		Str("from", string(current.Status)).
		Str("to", string(next.Status)).
		Int64("actor_id", actor.ID).
		Msg("booking transition")
	s.emit(ctx, transitionEvents[action.Name()], next, actor)
	return next, nil
}

// transition runs under the booking lock, and under the slot lock when
// rescheduling. Both are released before Transition publishes.
func (s *Service) transition(ctx context.Context, actor audit.Actor, bookingID int64, action Action) (current, next *Booking, err error) {
	release, err := s.locker.Acquire(ctx, lock.BookingKey(bookingID))
	if err != nil {
		return nil, nil, err
	}
	defer release()

	current, err = s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if err := Authorize(actor, current, action); err != nil {
		return nil, nil, err
	}

	if _, ok := action.(Complete); ok {
		summary, err := s.payments.Summarize(ctx, current)
		if err != nil {
			return nil, nil, err
		}
		action = Complete{PaymentComplete: summary.IsPaymentComplete}
	}

	now := s.now().UTC()
	next = current.Clone()
	if err := Apply(next, action, now); err != nil {
		return nil, nil, err
	}

	_, rescheduling := action.(Reschedule)
	if rescheduling && next.PhotographerID != nil {
		releaseSlot, err := s.locker.Acquire(ctx, lock.SlotKey(*next.PhotographerID, next.BookingDate))
		if err != nil {
			return nil, nil, err
		}
		defer releaseSlot()

		err = s.availability.CheckSlot(ctx, *next.PhotographerID, next.BookingDate, next.Slot(), next.ID)
		if err != nil {
			if errors.Is(err, schedule.ErrSlotUnavailable) {
				return nil, nil, ErrSlotUnavailable
			}
			return nil, nil, err
		}
	}

	next.StampUpdate(actor.ID, now)
	if err := s.repo.Update(ctx, next, current.Version, rescheduling); err != nil {
		if errors.Is(err, ErrStaleBooking) {
			return nil, nil, apperror.Wrapf(ErrStaleBooking, "read as %s", current.Status)
		}
		return nil, nil, err
	}

	return current, next, nil
}

var transitionEvents = map[string]events.Type{
	Confirm{}.Name():    events.BookingConfirmed,
	Start{}.Name():      events.BookingStarted,
	Complete{}.Name():   events.BookingCompleted,
	Cancel{}.Name():     events.BookingCancelled,
	Reschedule{}.Name(): events.BookingRescheduled,
}

// UpdateServices replaces the line items of a service booking and
// recomputes its amounts. An attached promotion keeps applying only while
// the new total meets its minimum; otherwise it is detached. Usage already
// consumed is not returned.
func (s *Service) UpdateServices(ctx context.Context, actor audit.Actor, bookingID int64, req UpdateServicesRequest) (*Booking, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, apperror.Validation(errs)
	}

	next, err := s.updateServices(ctx, actor, bookingID, req)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.BookingServices, next, actor)
	return next, nil
}

func (s *Service) updateServices(ctx context.Context, actor audit.Actor, bookingID int64, req UpdateServicesRequest) (*Booking, error) {
	release, err := s.locker.Acquire(ctx, lock.BookingKey(bookingID))
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !CanEditServices(actor, current) {
		return nil, ErrForbidden
	}
	if current.Status != StatusPending && current.Status != StatusConfirmed {
		return nil, apperror.Wrapf(ErrServicesLocked, "booking is %s", current.Status)
	}
	if current.PackageID != nil {
		return nil, apperror.FieldError("services", "package bookings have no line items")
	}

	items, _, err := s.buildLineItems(ctx, req.Services)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	next.Services = items
	next.RecomputeAmounts()
	if next.PromotionID != nil {
		p, err := s.promotions.GetByID(ctx, *next.PromotionID)
		if err != nil {
			return nil, err
		}
		if promotion.MeetsMinimum(p, next.TotalAmount) {
			next.DiscountAmount = promotion.Discount(p, next.TotalAmount)
		} else {
			logger.FromContext(ctx).Info().
				Str("booking_ref", next.Reference).
				Str("code", p.Code).
				Msg("promotion detached, total below minimum")
			next.PromotionID = nil
			next.DiscountAmount = 0
		}
		next.RecomputeAmounts()
	}

	now := s.now().UTC()
	next.StampUpdate(actor.ID, now)
	if err := s.repo.Update(ctx, next, current.Version, false); err != nil {
		if errors.Is(err, ErrStaleBooking) {
			return nil, apperror.Wrapf(ErrStaleBooking, "read as %s", current.Status)
		}
		return nil, err
	}
	return next, nil
}

// Deactivate soft-deletes a booking; it stops occupying its slot.
func (s *Service) Deactivate(ctx context.Context, actor audit.Actor, bookingID int64) (*Booking, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	release, err := s.locker.Acquire(ctx, lock.BookingKey(bookingID))
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	next := current.Clone()
	next.MarkDeleted(actor.ID, s.now().UTC())
	if err := s.repo.Update(ctx, next, current.Version, false); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info().Str("booking_ref", next.Reference).Int64("actor_id", actor.ID).Msg("booking deactivated")
	return next, nil
}

// Restore reactivates a deactivated booking if its slot is still free.
func (s *Service) Restore(ctx context.Context, actor audit.Actor, bookingID int64) (*Booking, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	release, err := s.locker.Acquire(ctx, lock.BookingKey(bookingID))
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := s.repo.GetByIDUnscoped(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !current.IsDeleted() {
		return nil, ErrNotDeleted
	}

	next := current.Clone()
	next.MarkRestored(actor.ID, s.now().UTC())
	occupies := next.PhotographerID != nil && next.Status.OccupiesSlot()
	if occupies {
		releaseSlot, err := s.locker.Acquire(ctx, lock.SlotKey(*next.PhotographerID, next.BookingDate))
		if err != nil {
			return nil, err
		}
		defer releaseSlot()
	}
	if err := s.repo.Update(ctx, next, current.Version, occupies); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info().Str("booking_ref", next.Reference).Int64("actor_id", actor.ID).Msg("booking restored")
	return next, nil
}

func (s *Service) emit(ctx context.Context, typ events.Type, b *Booking, actor audit.Actor) {
	events.Emit(ctx, s.publisher, events.Event{
		Type:       typ,
		Key:        b.Reference,
		OccurredAt: s.now().UTC(),
		ActorID:    actor.ID,
		Payload: map[string]any{
			"booking_id":      b.ID,
			"reference":       b.Reference,
			"status":          b.Status,
			"customer_id":     b.CustomerID,
			"photographer_id": b.PhotographerID,
			"booking_date":    b.BookingDate,
			"start_time":      b.StartTime,
			"end_time":        b.EndTime,
			"final_amount":    b.FinalAmount,
		},
	})
}
