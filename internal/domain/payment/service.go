package payment

import (
	"context"
	"errors"
	"time"

	"photosession/internal/domain/audit"
	"photosession/internal/domain/booking"
	"photosession/internal/domain/ledger"
	"photosession/internal/events"
	"photosession/internal/pkg/apperror"
	"photosession/internal/pkg/lock"
	"photosession/internal/pkg/logger"
	"photosession/internal/pkg/money"
	"photosession/internal/pkg/refcode"
	"photosession/internal/pkg/validator"
)

const referenceAttempts = 3

type Service struct {
	repo      *Repository
	bookings  bookingReader
	locker    lock.Locker
	publisher events.Publisher
	now       func() time.Time
}

func NewService(repo *Repository, bookings bookingReader, locker lock.Locker, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{repo: repo, bookings: bookings, locker: locker, publisher: publisher, now: time.Now}
}

// Summarize reconciles the transactions of b. It satisfies
// booking.PaymentSummarizer.
func (s *Service) Summarize(ctx context.Context, b *booking.Booking) (ledger.Summary, error) {
	txns, err := s.repo.ListByBooking(ctx, b.ID)
	if err != nil {
		return ledger.Summary{}, err
	}
	return summarize(b, txns), nil
}

func summarize(b *booking.Booking, txns []Transaction) ledger.Summary {
	return ledger.Summarize(ledger.Input{
		FinalAmount:      b.FinalAmount,
		BookingCompleted: b.Status == booking.StatusCompleted,
		BookingTerminal:  b.Status.IsTerminal(),
		Entries:          entries(txns),
	})
}

func (s *Service) GetPaymentStatus(ctx context.Context, actor audit.Actor, bookingID int64) (*Status, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.CanView(actor, b) {
		return nil, ErrForbidden
	}
	txns, err := s.repo.ListByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return &Status{
		BookingID:     b.ID,
		Reference:     b.Reference,
		BookingStatus: string(b.Status),
		Summary:       summarize(b, txns),
		Transactions:  txns,
	}, nil
}

func (s *Service) IsPaymentComplete(ctx context.Context, bookingID int64) (bool, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return false, err
	}
	summary, err := s.Summarize(ctx, b)
	if err != nil {
		return false, err
	}
	return summary.IsPaymentComplete, nil
}

// RecordPayment accepts a payment-like transaction. Cash is settled on the
// spot; other methods stay pending until confirmed.
func (s *Service) RecordPayment(ctx context.Context, actor audit.Actor, bookingID int64, req RecordRequest) (*Transaction, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, apperror.Validation(errs)
	}

	release, err := s.locker.Acquire(ctx, lock.BookingKey(bookingID))
	if err != nil {
		return nil, err
	}
	defer release()

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, b) {
		return nil, ErrForbidden
	}
	if b.Status == booking.StatusCancelled {
		return nil, ErrBookingCancelled
	}

	now := s.now().UTC()
	t := &Transaction{
		BookingID: b.ID,
		Type:      req.Type,
		Method:    req.Method,
		Status:    ledger.StatusPending,
		Amount:    req.Amount,
		Notes:     req.Notes,
	}
	if req.Method == MethodCash {
		t.Status = ledger.StatusCompleted
		t.ProcessedAt = &now
	}
	t.StampCreate(actor.ID, now)

	err = s.insert(ctx, t, func(tx *Repository) error {
		txns, err := tx.ListByBooking(ctx, b.ID)
		if err != nil {
			return err
		}
		return checkCapacity(b, txns, t.Amount)
	})
	if err != nil {
		return nil, err
	}
	release()

	logger.FromContext(ctx).Info().
		Str("txn_ref", t.Reference).
		Str("booking_ref", b.Reference).
		Str("type", string(t.Type)).
		Int64("amount", int64(t.Amount)).
		Str("status", string(t.Status)).
		Msg("transaction recorded")
	s.emit(ctx, events.TransactionRecorded, b, t, actor)
	if t.Status == ledger.StatusCompleted {
		s.emit(ctx, events.TransactionCompleted, b, t, actor)
	}
	return t, nil
}

// Refund opens a pending refund against a completed payment.
func (s *Service) Refund(ctx context.Context, actor audit.Actor, originalID int64, req RefundRequest) (*Transaction, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, apperror.Validation(errs)
	}

	original, err := s.repo.GetByID(ctx, originalID)
	if err != nil {
		return nil, err
	}
	release, err := s.locker.Acquire(ctx, lock.BookingKey(original.BookingID))
	if err != nil {
		return nil, err
	}
	defer release()

	b, err := s.bookings.GetByID(ctx, original.BookingID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, b) {
		return nil, ErrForbidden
	}

	method := req.Method
	if method == "" {
		method = original.Method
	}
	now := s.now().UTC()
	refund := &Transaction{
		BookingID:  original.BookingID,
		Type:       ledger.TypeRefund,
		Method:     method,
		Status:     ledger.StatusPending,
		Amount:     req.Amount,
		RefundOfID: &original.ID,
		Notes:      req.Notes,
	}
	refund.StampCreate(actor.ID, now)

	err = s.insert(ctx, refund, func(tx *Repository) error {
		orig, err := tx.GetForUpdate(ctx, original.ID)
		if err != nil {
			return err
		}
		return checkRefundable(ctx, tx, orig, refund)
	})
	if err != nil {
		return nil, err
	}
	release()

	logger.FromContext(ctx).Info().
		Str("txn_ref", refund.Reference).
		Str("refund_of", original.Reference).
		Int64("amount", int64(refund.Amount)).
		Msg("refund opened")
	s.emit(ctx, events.TransactionRecorded, b, refund, actor)
	return refund, nil
}

// Complete settles a pending transaction. Completing a refund marks the
// refunded payment as refunded.
func (s *Service) Complete(ctx context.Context, actor audit.Actor, txnID int64) (*Transaction, error) {
	return s.settle(ctx, actor, txnID, ledger.StatusCompleted)
}

func (s *Service) Fail(ctx context.Context, actor audit.Actor, txnID int64) (*Transaction, error) {
	return s.settle(ctx, actor, txnID, ledger.StatusFailed)
}

func (s *Service) Cancel(ctx context.Context, actor audit.Actor, txnID int64) (*Transaction, error) {
	return s.settle(ctx, actor, txnID, ledger.StatusCancelled)
}

func (s *Service) settle(ctx context.Context, actor audit.Actor, txnID int64, to ledger.TxnStatus) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, txnID)
	if err != nil {
		return nil, err
	}
	release, err := s.locker.Acquire(ctx, lock.BookingKey(t.BookingID))
	if err != nil {
		return nil, err
	}
	defer release()

	b, err := s.bookings.GetByID(ctx, t.BookingID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, b) {
		return nil, ErrForbidden
	}

	now := s.now().UTC()
	var original *Transaction
	err = s.repo.Transaction(ctx, func(tx *Repository) error {
		current, err := tx.GetForUpdate(ctx, txnID)
		if err != nil {
			return err
		}
		if current.Status != ledger.StatusPending {
			return apperror.Wrapf(ErrNotPending, "transaction is %s", current.Status)
		}

		if to == ledger.StatusCompleted {
			if current.Type == ledger.TypeRefund {
				original, err = completeRefund(ctx, tx, current, actor.ID, now)
				if err != nil {
					return err
				}
			} else {
				if b.Status == booking.StatusCancelled {
					return ErrBookingCancelled
				}
				txns, err := tx.ListByBooking(ctx, b.ID)
				if err != nil {
					return err
				}
				if err := checkCapacity(b, txns, current.Amount); err != nil {
					return err
				}
			}
		}

		current.Status = to
		current.ProcessedAt = &now
		current.StampUpdate(actor.ID, now)
		if err := tx.UpdateStatus(ctx, current, ledger.StatusPending); err != nil {
			return err
		}
		t = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	release()

	logger.FromContext(ctx).Info().
		Str("txn_ref", t.Reference).
		Str("booking_ref", b.Reference).
		Str("status", string(t.Status)).
		Msg("transaction settled")
	switch {
	case to == ledger.StatusCompleted && original != nil:
		s.emit(ctx, events.TransactionRefunded, b, original, actor)
		s.emit(ctx, events.TransactionCompleted, b, t, actor)
	case to == ledger.StatusCompleted:
		s.emit(ctx, events.TransactionCompleted, b, t, actor)
	case to == ledger.StatusFailed:
		s.emit(ctx, events.TransactionFailed, b, t, actor)
	default:
		s.emit(ctx, events.TransactionCancelled, b, t, actor)
	}
	return t, nil
}

// completeRefund re-checks the refundable amount and flips the original to
// refunded, linking both ways.
func completeRefund(ctx context.Context, tx *Repository, refund *Transaction, actorID int64, now time.Time) (*Transaction, error) {
	if refund.RefundOfID == nil {
		return nil, apperror.Wrapf(ErrNotRefundable, "refund %s has no original", refund.Reference)
	}
	orig, err := tx.GetForUpdate(ctx, *refund.RefundOfID)
	if err != nil {
		return nil, err
	}
	if err := checkRefundable(ctx, tx, orig, refund); err != nil {
		return nil, err
	}

	from := orig.Status
	orig.Status = ledger.StatusRefunded
	orig.RefundedByID = &refund.ID
	orig.StampUpdate(actorID, now)
	if err := tx.UpdateStatus(ctx, orig, from); err != nil {
		return nil, err
	}
	return orig, nil
}

func checkRefundable(ctx context.Context, tx *Repository, orig, refund *Transaction) error {
	if !orig.Type.IsPaymentLike() {
		return apperror.Wrapf(ErrNotRefundable, "%s is a %s", orig.Reference, orig.Type)
	}
	if orig.Status != ledger.StatusCompleted && orig.Status != ledger.StatusRefunded {
		return apperror.Wrapf(ErrNotRefundable, "%s is %s", orig.Reference, orig.Status)
	}
	already, err := tx.RefundedAmount(ctx, orig.ID, refund.ID)
	if err != nil {
		return err
	}
	if refundable := orig.Amount.Sub(already); refund.Amount > refundable {
		return apperror.Wrapf(ErrRefundExceeds, "at most %s can be refunded", refundable)
	}
	return nil
}

// checkCapacity rejects amount when net paid plus amount would exceed the
// booking's final amount.
func checkCapacity(b *booking.Booking, txns []Transaction, amount money.Amount) error {
	summary := summarize(b, txns)
	if room := b.FinalAmount.Sub(summary.AmountPaid).ClampZero(); amount > room {
		return apperror.Wrapf(ErrOverpayment, "at most %s can still be paid", room)
	}
	return nil
}

func (s *Service) insert(ctx context.Context, t *Transaction, check func(tx *Repository) error) error {
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		ref, err := refcode.Generate(ctx, refcode.TransactionPrefix, s.repo.ReferenceExists)
		if err != nil {
			return err
		}
		t.Reference = ref
		err = s.repo.Transaction(ctx, func(tx *Repository) error {
			if err := check(tx); err != nil {
				return err
			}
			return tx.Create(ctx, t)
		})
		if !errors.Is(err, errDuplicateReference) {
			return err
		}
		t.ID = 0
	}
	return refcode.ErrExhausted
}

func canManage(actor audit.Actor, b *booking.Booking) bool {
	return actor.IsAdmin() || (actor.Role == audit.RolePhotographer && b.IsPhotographer(actor.ID))
}

func (s *Service) emit(ctx context.Context, typ events.Type, b *booking.Booking, t *Transaction, actor audit.Actor) {
	events.Emit(ctx, s.publisher, events.Event{
		Type:       typ,
		Key:        b.Reference,
		OccurredAt: s.now().UTC(),
		ActorID:    actor.ID,
		Payload: map[string]any{
			"transaction_id":    t.ID,
			"reference":         t.Reference,
			"booking_reference": b.Reference,
			"type":              t.Type,
			"method":            t.Method,
			"status":            t.Status,
			"amount":            t.Amount,
			"refund_of_id":      t.RefundOfID,
		},
	})
}
