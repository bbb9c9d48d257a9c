package booking

import "photosession/internal/pkg/apperror"

var (
	ErrNotFound          = apperror.New(apperror.KindNotFound, "BOOKING_NOT_FOUND", "booking not found")
	ErrForbidden         = apperror.New(apperror.KindForbidden, "FORBIDDEN", "not allowed to perform this action on the booking")
	ErrSlotUnavailable   = apperror.New(apperror.KindConflict, "SLOT_UNAVAILABLE", "slot no longer available")
	ErrPromoExhausted    = apperror.New(apperror.KindConflict, "PROMOTION_EXHAUSTED", "promotion was used up while booking, retry without it")
	ErrInvalidTransition = apperror.New(apperror.KindGuard, "INVALID_TRANSITION", "invalid status transition")
	ErrNotInFuture       = apperror.New(apperror.KindGuard, "BOOKING_NOT_IN_FUTURE", "booking must be scheduled in the future")
	ErrNotScheduledToday = apperror.New(apperror.KindGuard, "NOT_SCHEDULED_TODAY", "session can only start on its scheduled date")
	ErrPaymentIncomplete = apperror.New(apperror.KindGuard, "PAYMENT_INCOMPLETE", "booking cannot complete before it is fully paid")
	ErrServicesLocked    = apperror.New(apperror.KindGuard, "SERVICES_LOCKED", "services can only change while pending or confirmed")
	ErrStaleBooking      = apperror.New(apperror.KindGuard, "CONCURRENT_MODIFICATION", "booking changed since it was read")
	ErrNotDeleted        = apperror.New(apperror.KindGuard, "NOT_DEACTIVATED", "booking is not deactivated")

	errDuplicateReference = apperror.New(apperror.KindConflict, "DUPLICATE_REFERENCE", "reference already taken")
)
