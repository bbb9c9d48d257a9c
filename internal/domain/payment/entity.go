package payment

import (
	"time"

	"photosession/internal/domain/audit"
	"photosession/internal/domain/ledger"
	"photosession/internal/pkg/money"
)

type Method string

const (
	MethodCash         Method = "cash"
	MethodCard         Method = "card"
	MethodBankTransfer Method = "bank_transfer"
	MethodEWallet      Method = "e_wallet"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodEWallet:
		return true
	}
	return false
}

// Transaction is a financial event against one booking. Only its status and
// refund link change after creation.
type Transaction struct {
	ID           int64            `gorm:"primaryKey" json:"id"`
	Reference    string           `gorm:"size:16;uniqueIndex;not null" json:"reference"`
	BookingID    int64            `gorm:"not null;index" json:"booking_id"`
	Type         ledger.TxnType   `gorm:"size:20;not null" json:"type"`
	Method       Method           `gorm:"size:20;not null" json:"method"`
	Status       ledger.TxnStatus `gorm:"size:20;not null;index" json:"status"`
	Amount       money.Amount     `gorm:"not null" json:"amount"`
	RefundOfID   *int64           `gorm:"index" json:"refund_of_id,omitempty"`
	RefundedByID *int64           `json:"refunded_by_id,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	ProcessedAt  *time.Time       `json:"processed_at,omitempty"`

	audit.Info `gorm:"embedded"`
}

func (Transaction) TableName() string { return "transactions" }

func (t *Transaction) Entry() ledger.Entry {
	return ledger.Entry{Type: t.Type, Status: t.Status, Amount: t.Amount}
}

func entries(txns []Transaction) []ledger.Entry {
	out := make([]ledger.Entry, 0, len(txns))
	for i := range txns {
		out = append(out, txns[i].Entry())
	}
	return out
}
