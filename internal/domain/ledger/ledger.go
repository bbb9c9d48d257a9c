// Package ledger reconciles the transactions of a booking against its final
// amount. Nothing here is stored; every summary is computed on read.
package ledger

import "photosession/internal/pkg/money"

type TxnType string

const (
	TypePayment TxnType = "payment"
	TypePartial TxnType = "partial"
	TypeBalance TxnType = "balance"
	TypeRefund  TxnType = "refund"
)

func (t TxnType) IsPaymentLike() bool {
	return t == TypePayment || t == TypePartial || t == TypeBalance
}

type TxnStatus string

const (
	StatusPending   TxnStatus = "pending"
	StatusCompleted TxnStatus = "completed"
	StatusFailed    TxnStatus = "failed"
	StatusRefunded  TxnStatus = "refunded"
	StatusCancelled TxnStatus = "cancelled"
)

func (s TxnStatus) IsTerminal() bool { return s != StatusPending }

type Scenario string

const (
	ScenarioNoPayment               Scenario = "no_payment"
	ScenarioRefundOnly              Scenario = "refund_only"
	ScenarioFullyPaidNoRefund       Scenario = "fully_paid_no_refund"
	ScenarioFullyPaidWithRefund     Scenario = "fully_paid_with_refund"
	ScenarioPartiallyPaidNoRefund   Scenario = "partially_paid_no_refund"
	ScenarioPartiallyPaidWithRefund Scenario = "partially_paid_with_refund"
)

type Entry struct {
	Type   TxnType
	Status TxnStatus
	Amount money.Amount
}

type Input struct {
	FinalAmount money.Amount
	// BookingCompleted selects the completed-booking scenarios.
	BookingCompleted bool
	// BookingTerminal forces the remaining balance to zero.
	BookingTerminal bool
	Entries         []Entry
}

type Summary struct {
	FinalAmount       money.Amount `json:"final_amount"`
	TotalPayments     money.Amount `json:"total_payments"`
	TotalRefunded     money.Amount `json:"total_refunded"`
	AmountPaid        money.Amount `json:"amount_paid"`
	RemainingBalance  money.Amount `json:"remaining_balance"`
	IsPaymentComplete bool         `json:"is_payment_complete"`
	IsPartiallyPaid   bool         `json:"is_partially_paid"`
	Scenario          Scenario     `json:"scenario"`
}

// Counts reports whether e contributes to the totals. A payment that was later
// refunded still counts as money received; the refund offsets it.
func Counts(e Entry) bool {
	if e.Type == TypeRefund {
		return e.Status == StatusCompleted
	}
	return e.Status == StatusCompleted || e.Status == StatusRefunded
}

func Summarize(in Input) Summary {
	var payments, refunds money.Amount
	for _, e := range in.Entries {
		if !Counts(e) {
			continue
		}
		if e.Type == TypeRefund {
			refunds = refunds.Add(e.Amount)
		} else if e.Type.IsPaymentLike() {
			payments = payments.Add(e.Amount)
		}
	}

	paid := payments.Sub(refunds)
	s := Summary{
		FinalAmount:       in.FinalAmount,
		TotalPayments:     payments,
		TotalRefunded:     refunds,
		AmountPaid:        paid,
		RemainingBalance:  in.FinalAmount.Sub(paid).ClampZero(),
		IsPaymentComplete: paid >= in.FinalAmount,
		IsPartiallyPaid:   paid > 0 && paid < in.FinalAmount,
	}
	if in.BookingTerminal {
		s.RemainingBalance = 0
	}
	s.Scenario = scenario(in.BookingCompleted, s)
	return s
}

func scenario(completed bool, s Summary) Scenario {
	refunded := s.TotalRefunded > 0
	if completed {
		if refunded {
			return ScenarioFullyPaidWithRefund
		}
		return ScenarioFullyPaidNoRefund
	}

	switch {
	case s.TotalPayments == 0 && !refunded:
		return ScenarioNoPayment
	case s.TotalPayments == 0 && refunded:
		return ScenarioRefundOnly
	case s.IsPaymentComplete && refunded:
		return ScenarioFullyPaidWithRefund
	case s.IsPaymentComplete:
		return ScenarioFullyPaidNoRefund
	case refunded:
		return ScenarioPartiallyPaidWithRefund
	default:
		return ScenarioPartiallyPaidNoRefund
	}
}
