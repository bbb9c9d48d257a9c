package payment

import (
	"photosession/internal/domain/ledger"
	"photosession/internal/pkg/money"
)

type RecordRequest struct {
	Type   ledger.TxnType `json:"type" validate:"required,oneof=payment partial balance"`
	Method Method         `json:"method" validate:"required,oneof=cash card bank_transfer e_wallet"`
	Amount money.Amount   `json:"amount" validate:"gt=0"`
	Notes  string         `json:"notes" validate:"max=1000"`
}

type RefundRequest struct {
	Amount money.Amount `json:"amount" validate:"gt=0"`
	Method Method       `json:"method" validate:"omitempty,oneof=cash card bank_transfer e_wallet"`
	Notes  string       `json:"notes" validate:"max=1000"`
}

// Status is the payment view of one booking.
type Status struct {
	BookingID     int64         `json:"booking_id"`
	Reference     string        `json:"booking_reference"`
	BookingStatus string        `json:"booking_status"`
	Summary       ledger.Summary `json:"summary"`
	Transactions  []Transaction `json:"transactions"`
}
