package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"photosession/internal/database/dbtest"
	"photosession/internal/domain/audit"
	"photosession/internal/domain/catalog"
	"photosession/internal/domain/ledger"
	"photosession/internal/domain/promotion"
	"photosession/internal/domain/schedule"
	"photosession/internal/events"
	"photosession/internal/pkg/apperror"
	"photosession/internal/pkg/lock"
	"photosession/internal/pkg/money"
)

type stubPayments struct {
	complete bool
}

func (s *stubPayments) Summarize(_ context.Context, b *Booking) (ledger.Summary, error) {
	paid := money.Amount(0)
	if s.complete {
		paid = b.FinalAmount
	}
	return ledger.Summarize(ledger.Input{
		FinalAmount: b.FinalAmount,
		Entries:     []ledger.Entry{{Type: ledger.TypePayment, Status: ledger.StatusCompleted, Amount: paid}},
	}), nil
}

var (
	photographerID = int64(7)
	admin          = audit.Actor{ID: 1, Role: audit.RoleAdmin}
	photographer   = audit.Actor{ID: photographerID, Role: audit.RolePhotographer}
	customer       = audit.Actor{ID: 20, Role: audit.RoleCustomer}
)

type fixture struct {
	svc      *Service
	repo     *Repository
	db       *gorm.DB
	payments *stubPayments
	events   *events.Memory
	retouch  int64
	prints   int64
	pkg      int64
}

func setupTestService(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t, &Booking{}, &promotion.Promotion{}, &schedule.PhotographerSchedule{}, &catalog.Package{}, &catalog.Service{})
	require.NoError(t, EnsureSlotIndex(db))
	ctx := context.Background()

	weekday := schedule.DaySchedule{AcceptsBookings: true, Slots: []schedule.TimeSlot{{Start: 9 * 60, End: 17 * 60}}}
	require.NoError(t, schedule.NewRepository(db).Upsert(ctx, &schedule.PhotographerSchedule{
		PhotographerID: photographerID,
		Weekly: schedule.WeeklySchedule{
			"monday": weekday, "tuesday": weekday, "wednesday": weekday,
		},
	}))

	catalogRepo := catalog.NewRepository(db)
	hour := 60
	retouch := &catalog.Service{Name: "Retouch", PricePerUnit: money.FromMajor(500), DurationMinutes: &hour, IsActive: true}
	prints := &catalog.Service{Name: "Prints", PricePerUnit: money.FromMajor(50), IsActive: true}
	pkg := &catalog.Package{Name: "Portrait", Price: money.FromMajor(1500), DurationMinutes: 90, IsActive: true}
	require.NoError(t, catalogRepo.CreateService(ctx, retouch))
	require.NoError(t, catalogRepo.CreateService(ctx, prints))
	require.NoError(t, catalogRepo.CreatePackage(ctx, pkg))

	promoRepo := promotion.NewRepository(db)
	repo := NewRepository(db, promoRepo)
	scheduleSvc := schedule.NewService(schedule.NewRepository(db), repo)
	payments := &stubPayments{}
	mem := events.NewMemory()

	svc := NewService(repo, catalogRepo, scheduleSvc, promotion.NewService(promoRepo), payments, lock.NewLocal(), mem)
	svc.now = func() time.Time { return clockNow }

	return &fixture{
		svc: svc, repo: repo, db: db, payments: payments, events: mem,
		retouch: retouch.ID, prints: prints.ID, pkg: pkg.ID,
	}
}

func (f *fixture) addPromo(t *testing.T, code string, pct int64, limit *int) *promotion.Promotion {
	t.Helper()
	p := &promotion.Promotion{
		Code:          code,
		Type:          promotion.TypePercentage,
		DiscountValue: pct,
		UsageLimit:    limit,
		ValidFrom:     clockNow.AddDate(0, -1, 0),
		ValidUntil:    clockNow.AddDate(0, 1, 0),
		IsActive:      true,
	}
	require.NoError(t, promotion.NewRepository(f.db).Create(context.Background(), p))
	return p
}

func (f *fixture) serviceRequest(start string) CreateRequest {
	return CreateRequest{
		PhotographerID: &photographerID,
		Services:       []LineItemRequest{{ServiceID: f.retouch, Quantity: 2}},
		BookingDate:    "2026-11-02",
		StartTime:      start,
	}
}

func TestCreateBookingAppliesPromotion(t *testing.T) {
	f := setupTestService(t)
	p := f.addPromo(t, "AUTUMN20", 20, nil)

	req := f.serviceRequest("10:00")
	req.PromoCode = "autumn20"
	b, err := f.svc.CreateBooking(context.Background(), customer, req)
	require.NoError(t, err)

	assert.Regexp(t, `^BK-[A-Z0-9]{8}$`, b.Reference)
	assert.Equal(t, customer.ID, b.CustomerID)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, money.FromMajor(1000), b.TotalAmount)
	assert.Equal(t, money.FromMajor(200), b.DiscountAmount)
	assert.Equal(t, money.FromMajor(800), b.FinalAmount)
	assert.Equal(t, "12:00", b.EndTime, "duration comes from line items")
	require.NotNil(t, b.PromotionID)
	assert.Equal(t, p.ID, *b.PromotionID)

	stored, err := promotion.NewRepository(f.db).GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount)
	assert.Equal(t, []events.Type{events.BookingCreated}, f.events.Types())
}

func TestCreatePackageBooking(t *testing.T) {
	f := setupTestService(t)
	b, err := f.svc.CreateBooking(context.Background(), admin, CreateRequest{
		CustomerID:     customer.ID,
		PackageID:      &f.pkg,
		PhotographerID: &photographerID,
		BookingDate:    "2026-11-02",
		StartTime:      "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, money.FromMajor(1500), b.FinalAmount)
	assert.Equal(t, "10:30", b.EndTime)
	assert.Empty(t, b.Services)
	require.NotNil(t, b.CreatedBy)
	assert.Equal(t, admin.ID, *b.CreatedBy)
}

func TestCreateBookingRejections(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	both := f.serviceRequest("10:00")
	both.PackageID = &f.pkg
	_, err := f.svc.CreateBooking(ctx, customer, both)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	bad := f.serviceRequest("25:00")
	_, err = f.svc.CreateBooking(ctx, customer, bad)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	mismatch := f.serviceRequest("10:00")
	mismatch.EndTime = "11:00"
	_, err = f.svc.CreateBooking(ctx, customer, mismatch)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	past := f.serviceRequest("10:00")
	past.BookingDate = "2026-10-26"
	_, err = f.svc.CreateBooking(ctx, customer, past)
	assert.ErrorIs(t, err, ErrNotInFuture)

	_, err = f.svc.CreateBooking(ctx, customer, f.serviceRequest("16:30"))
	assert.ErrorIs(t, err, schedule.ErrOutsideWorkingHours)

	sunday := f.serviceRequest("10:00")
	sunday.BookingDate = "2026-11-08"
	_, err = f.svc.CreateBooking(ctx, customer, sunday)
	assert.ErrorIs(t, err, schedule.ErrDateUnavailable)

	unknown := f.serviceRequest("10:00")
	unknown.PromoCode = "NOPE"
	_, err = f.svc.CreateBooking(ctx, customer, unknown)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.CreateBooking(ctx, admin, f.serviceRequest("10:00"))
	assert.ErrorIs(t, err, apperror.ErrValidation, "admin must name the customer")

	_, err = f.svc.CreateBooking(ctx, photographer, f.serviceRequest("10:00"))
	assert.ErrorIs(t, err, ErrForbidden)

	var count int64
	require.NoError(t, f.db.Model(&Booking{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInapplicablePromotionIsIgnored(t *testing.T) {
	f := setupTestService(t)
	p := f.addPromo(t, "EARLY", 10, nil)
	days := 30
	require.NoError(t, f.db.Model(p).Update("min_advance_days", days).Error)

	req := f.serviceRequest("10:00")
	req.PromoCode = "EARLY"
	b, err := f.svc.CreateBooking(context.Background(), customer, req)
	require.NoError(t, err)
	assert.Nil(t, b.PromotionID)
	assert.Equal(t, money.Amount(0), b.DiscountAmount)
	assert.Equal(t, b.TotalAmount, b.FinalAmount)
}

func TestConcurrentBookingsOfOneSlot(t *testing.T) {
	f := setupTestService(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateBooking(context.Background(), customer, f.serviceRequest("10:00"))
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotUnavailable)
	}
	assert.Equal(t, 1, ok)

	// overlapping but not identical is rejected too
	_, err := f.svc.CreateBooking(context.Background(), customer, f.serviceRequest("11:00"))
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = f.svc.CreateBooking(context.Background(), customer, f.serviceRequest("12:00"))
	assert.NoError(t, err, "back-to-back sessions do not overlap")
}

func TestSingleUsePromotionUnderConcurrency(t *testing.T) {
	f := setupTestService(t)
	limit := 1
	p := f.addPromo(t, "ONCE", 50, &limit)

	const n = 6
	var wg sync.WaitGroup
	results := make([]*Booking, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := CreateRequest{
				Services:    []LineItemRequest{{ServiceID: f.prints, Quantity: 10}},
				BookingDate: "2026-11-02",
				StartTime:   "10:00",
				PromoCode:   "ONCE",
			}
			results[i], errs[i] = f.svc.CreateBooking(context.Background(), customer, req)
		}(i)
	}
	wg.Wait()

	discounted := 0
	for i := range results {
		if errs[i] != nil {
			assert.ErrorIs(t, errs[i], ErrPromoExhausted)
			continue
		}
		if results[i].PromotionID != nil {
			discounted++
		}
	}
	assert.Equal(t, 1, discounted)

	stored, err := promotion.NewRepository(f.db).GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount)
}

func TestLifecycle(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, customer, f.serviceRequest("10:00"))
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, customer, b.ID, Confirm{})
	assert.ErrorIs(t, err, ErrForbidden)

	b, err = f.svc.Transition(ctx, photographer, b.ID, Confirm{})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, 2, b.Version)

	_, err = f.svc.Transition(ctx, photographer, b.ID, Confirm{})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	f.svc.now = func() time.Time { return time.Date(2026, 11, 2, 9, 50, 0, 0, time.UTC) }
	b, err = f.svc.Transition(ctx, photographer, b.ID, Start{})
	require.NoError(t, err)
	assert.Equal(t, StatusOngoing, b.Status)

	_, err = f.svc.Transition(ctx, photographer, b.ID, Complete{})
	assert.ErrorIs(t, err, ErrPaymentIncomplete)

	f.payments.complete = true
	b, err = f.svc.Transition(ctx, photographer, b.ID, Complete{})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, b.Status)

	detail, err := f.svc.GetByID(ctx, customer, b.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Payment)
	assert.True(t, detail.Payment.IsPaymentComplete)

	assert.Equal(t, []events.Type{
		events.BookingCreated, events.BookingConfirmed, events.BookingStarted, events.BookingCompleted,
	}, f.events.Types())
}

func TestCancelFreesSlot(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, customer, f.serviceRequest("10:00"))
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, customer, b.ID, Cancel{Reason: "ok"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	b, err = f.svc.Transition(ctx, customer, b.ID, Cancel{Reason: "family emergency"})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b.Status)

	_, err = f.svc.CreateBooking(ctx, customer, f.serviceRequest("10:00"))
	assert.NoError(t, err)
}

func TestRescheduleChecksNewSlot(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	first, err := f.svc.CreateBooking(ctx, customer, f.serviceRequest("10:00"))
	require.NoError(t, err)
	second, err := f.svc.CreateBooking(ctx, customer, f.serviceRequest("13:00"))
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, customer, second.ID, Reschedule{Date: "2026-11-02", StartTime: 11 * 60})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// moving within its own interval is fine
	moved, err := f.svc.Transition(ctx, customer, second.ID, Reschedule{Date: "2026-11-02", StartTime: 13*60 + 30})
	require.NoError(t, err)
	assert.Equal(t, StatusRescheduled, moved.Status)

	moved, err = f.svc.Transition(ctx, customer, first.ID, Reschedule{Date: "2026-11-03", StartTime: 10 * 60})
	require.NoError(t, err)
	assert.Equal(t, "2026-11-03", moved.BookingDate)
	require.NotNil(t, moved.RescheduledFrom)
	assert.Equal(t, "2026-11-02", *moved.RescheduledFrom)

	_, err = f.svc.CreateBooking(ctx, customer, f.serviceRequest("10:00"))
	assert.NoError(t, err, "old slot is free again")
}

func TestUpdateServicesReappliesPromotion(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	f.addPromo(t, "TEN", 10, nil)

	req := f.serviceRequest("10:00")
	req.PromoCode = "TEN"
	b, err := f.svc.CreateBooking(ctx, customer, req)
	require.NoError(t, err)
	assert.Equal(t, money.FromMajor(900), b.FinalAmount)

	b, err = f.svc.UpdateServices(ctx, customer, b.ID, UpdateServicesRequest{Services: []LineItemRequest{
		{ServiceID: f.retouch, Quantity: 1},
		{ServiceID: f.prints, Quantity: 10},
	}})
	require.NoError(t, err)
	assert.Equal(t, money.FromMajor(1000), b.TotalAmount)
	assert.Equal(t, money.FromMajor(100), b.DiscountAmount)
	assert.Equal(t, money.FromMajor(900), b.FinalAmount)

	_, err = f.svc.UpdateServices(ctx, photographer, b.ID, UpdateServicesRequest{Services: []LineItemRequest{{ServiceID: f.prints, Quantity: 1}}})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdateServices(ctx, customer, b.ID, UpdateServicesRequest{Services: []LineItemRequest{{ServiceID: 999, Quantity: 1}}})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeactivateAndRestore(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, customer, f.serviceRequest("10:00"))
	require.NoError(t, err)

	_, err = f.svc.Deactivate(ctx, customer, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Deactivate(ctx, admin, b.ID)
	require.NoError(t, err)
	_, err = f.svc.GetByID(ctx, admin, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	other, err := f.svc.CreateBooking(ctx, customer, f.serviceRequest("10:00"))
	require.NoError(t, err, "deactivated booking no longer holds the slot")

	_, err = f.svc.Restore(ctx, admin, b.ID)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	_, err = f.svc.Transition(ctx, customer, other.ID, Cancel{Reason: "not needed anymore"})
	require.NoError(t, err)

	restored, err := f.svc.Restore(ctx, admin, b.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())
	require.NotNil(t, restored.RestoredBy)

	_, err = f.svc.Restore(ctx, admin, b.ID)
	assert.ErrorIs(t, err, ErrNotDeleted)
}

func TestStaleUpdateIsRejected(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, customer, f.serviceRequest("10:00"))
	require.NoError(t, err)

	copyA, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	copyB, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)

	require.NoError(t, Apply(copyA, Confirm{}, clockNow))
	require.NoError(t, f.repo.Update(ctx, copyA, 1, false))

	require.NoError(t, Apply(copyB, Cancel{Reason: "lost the race"}, clockNow))
	assert.ErrorIs(t, f.repo.Update(ctx, copyB, 1, false), ErrStaleBooking)

	stored, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, stored.Status)
}

func TestDurationCountsQuantity(t *testing.T) {
	f := setupTestService(t)
	b, err := f.svc.CreateBooking(context.Background(), customer, CreateRequest{
		PhotographerID: &photographerID,
		Services: []LineItemRequest{
			{ServiceID: f.retouch, Quantity: 3},
			{ServiceID: f.prints, Quantity: 5},
		},
		BookingDate: "2026-11-02",
		StartTime:   "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, 180, b.DurationMinutes)
	assert.Equal(t, "12:00", b.EndTime)

	_, err = f.svc.CreateBooking(context.Background(), customer, f.serviceRequest("11:30"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestUpdateServicesDetachesPromotionBelowMinimum(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	p := f.addPromo(t, "BIG", 10, nil)
	require.NoError(t, f.db.Model(p).Update("min_booking_amount", money.FromMajor(900)).Error)

	req := f.serviceRequest("10:00")
	req.PromoCode = "BIG"
	b, err := f.svc.CreateBooking(ctx, customer, req)
	require.NoError(t, err)
	require.NotNil(t, b.PromotionID)
	assert.Equal(t, money.FromMajor(100), b.DiscountAmount)

	b, err = f.svc.UpdateServices(ctx, customer, b.ID, UpdateServicesRequest{Services: []LineItemRequest{{ServiceID: f.prints, Quantity: 1}}})
	require.NoError(t, err)
	assert.Nil(t, b.PromotionID)
	assert.Equal(t, money.FromMajor(50), b.TotalAmount)
	assert.Equal(t, money.Amount(0), b.DiscountAmount)
	assert.Equal(t, money.FromMajor(50), b.FinalAmount)

	stored, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.PromotionID)
	assert.Equal(t, money.FromMajor(50), stored.FinalAmount)

	// once detached it stays detached
	b, err = f.svc.UpdateServices(ctx, customer, b.ID, UpdateServicesRequest{Services: []LineItemRequest{{ServiceID: f.retouch, Quantity: 2}}})
	require.NoError(t, err)
	assert.Nil(t, b.PromotionID)
	assert.Equal(t, money.FromMajor(1000), b.FinalAmount)
}

// contendingPublisher tries to take keys while each event is published and
// counts the attempts that found a key still held.
type contendingPublisher struct {
	locker    lock.Locker
	keys      []string
	published int
	blocked   int
}

func (p *contendingPublisher) Publish(ctx context.Context, _ events.Event) error {
	p.published++
	for _, key := range p.keys {
		waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		release, err := p.locker.Acquire(waitCtx, key)
		cancel()
		if err != nil {
			p.blocked++
			continue
		}
		release()
	}
	return nil
}

func (p *contendingPublisher) Close() error { return nil }

func TestLocksReleasedBeforePublishing(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	pub := &contendingPublisher{
		locker: f.svc.locker,
		keys:   []string{lock.SlotKey(photographerID, "2026-11-02"), lock.SlotKey(photographerID, "2026-11-03")},
	}
	f.svc.publisher = pub

	b, err := f.svc.CreateBooking(ctx, customer, f.serviceRequest("10:00"))
	require.NoError(t, err)
	pub.keys = append(pub.keys, lock.BookingKey(b.ID))

	_, err = f.svc.UpdateServices(ctx, customer, b.ID, UpdateServicesRequest{Services: []LineItemRequest{{ServiceID: f.prints, Quantity: 2}}})
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, customer, b.ID, Reschedule{Date: "2026-11-03", StartTime: 10 * 60})
	require.NoError(t, err)

	assert.Equal(t, 3, pub.published)
	assert.Zero(t, pub.blocked)
}
