package booking

import (
	"strings"
	"time"

	"photosession/internal/domain/schedule"
	"photosession/internal/pkg/apperror"
)

// Action is a requested lifecycle transition.
type Action interface {
	Name() string
}

type Confirm struct{}

type Start struct{}

// Complete carries the ledger verdict computed by the caller.
type Complete struct {
	PaymentComplete bool
}

type Cancel struct {
	Reason string
}

type Reschedule struct {
	Date      string
	StartTime schedule.Clock
}

func (Confirm) Name() string    { return "confirm" }
func (Start) Name() string      { return "start" }
func (Complete) Name() string   { return "complete" }
func (Cancel) Name() string     { return "cancel" }
func (Reschedule) Name() string { return "reschedule" }

const minCancelReason = 5

// Apply runs action against b in place. On error b is left untouched.
func Apply(b *Booking, action Action, now time.Time) error {
	now = now.UTC()
	var err error
	switch a := action.(type) {
	case Confirm:
		err = confirm(b, now)
	case Start:
		err = start(b, now)
	case Complete:
		err = complete(b, a, now)
	case Cancel:
		err = cancel(b, a, now)
	case Reschedule:
		err = reschedule(b, a, now)
	default:
		return apperror.Wrapf(ErrInvalidTransition, "unknown action %T", action)
	}
	if err != nil {
		return err
	}
	b.RecomputeAmounts()
	return nil
}

func confirm(b *Booking, now time.Time) error {
	if b.Status != StatusPending {
		return denied("confirm", b.Status)
	}
	if !b.ScheduledStart().After(now) {
		return apperror.Wrapf(ErrNotInFuture, "session at %s %s has passed", b.BookingDate, b.StartTime)
	}
	b.Status = StatusConfirmed
	if b.ConfirmedAt == nil {
		b.ConfirmedAt = &now
	}
	return nil
}

func start(b *Booking, now time.Time) error {
	if b.Status != StatusConfirmed && b.Status != StatusRescheduled {
		return denied("start", b.Status)
	}
	if today := now.Format(schedule.DateLayout); today != b.BookingDate {
		return apperror.Wrapf(ErrNotScheduledToday, "scheduled for %s, today is %s", b.BookingDate, today)
	}
	b.Status = StatusOngoing
	if b.StartedAt == nil {
		b.StartedAt = &now
	}
	return nil
}

func complete(b *Booking, a Complete, now time.Time) error {
	switch b.Status {
	case StatusConfirmed, StatusOngoing, StatusRescheduled:
	default:
		return denied("complete", b.Status)
	}
	if !a.PaymentComplete {
		return ErrPaymentIncomplete
	}
	b.Status = StatusCompleted
	if b.CompletedAt == nil {
		b.CompletedAt = &now
	}
	return nil
}

func cancel(b *Booking, a Cancel, now time.Time) error {
	if b.Status.IsTerminal() {
		return denied("cancel", b.Status)
	}
	reason := strings.TrimSpace(a.Reason)
	if len([]rune(reason)) < minCancelReason {
		return apperror.FieldError("reason", "must be at least 5 characters")
	}
	b.Status = StatusCancelled
	b.CancelledReason = reason
	b.CancelledAt = &now
	return nil
}

func reschedule(b *Booking, a Reschedule, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusConfirmed, StatusRescheduled:
	default:
		return denied("reschedule", b.Status)
	}
	if _, err := schedule.ParseDate(a.Date); err != nil {
		return apperror.FieldError("booking_date", "must be YYYY-MM-DD")
	}
	end := a.StartTime.Add(b.DurationMinutes)
	if a.StartTime < 0 || end > schedule.EndOfDay {
		return apperror.FieldError("start_time", "session must end by 24:00")
	}
	// a reschedule moves to a later day, never later on the current one
	if a.Date <= now.UTC().Format(schedule.DateLayout) {
		return apperror.Wrapf(ErrNotInFuture, "new date %s is not after %s", a.Date, now.UTC().Format(schedule.DateLayout))
	}

	previous := b.BookingDate
	b.RescheduledFrom = &previous
	b.SetSchedule(a.Date, a.StartTime, b.DurationMinutes)
	b.Status = StatusRescheduled
	return nil
}

func denied(action string, from Status) error {
	return apperror.Wrapf(ErrInvalidTransition, "cannot %s a %s booking", action, from)
}
