package payment

import "photosession/internal/pkg/apperror"

var (
	ErrNotFound         = apperror.New(apperror.KindNotFound, "TRANSACTION_NOT_FOUND", "transaction not found")
	ErrForbidden        = apperror.New(apperror.KindForbidden, "FORBIDDEN", "not allowed to manage payments of this booking")
	ErrNotPending       = apperror.New(apperror.KindGuard, "TRANSACTION_FINALIZED", "only pending transactions can change status")
	ErrOverpayment      = apperror.New(apperror.KindGuard, "OVERPAYMENT", "payment would exceed the booking's final amount")
	ErrRefundExceeds    = apperror.New(apperror.KindGuard, "REFUND_EXCEEDS_PAYMENT", "refund exceeds the refundable amount of the transaction")
	ErrNotRefundable    = apperror.New(apperror.KindGuard, "NOT_REFUNDABLE", "only completed payments can be refunded")
	ErrBookingCancelled = apperror.New(apperror.KindGuard, "BOOKING_CANCELLED", "payments cannot be recorded against a cancelled booking")

	errDuplicateReference = apperror.New(apperror.KindConflict, "DUPLICATE_REFERENCE", "reference already taken")
)
