package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"photosession/internal/database"
	"photosession/internal/domain/ledger"
	"photosession/internal/pkg/money"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn against a repository bound to one database transaction.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Create(ctx context.Context, t *Transaction) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		if constraint, ok := database.UniqueViolation(err); ok && (constraint == "" || strings.Contains(constraint, "reference")) {
			return errDuplicateReference
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Transaction, error) {
	var t Transaction
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

// GetForUpdate locks the row on databases that support it.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Transaction, error) {
	var t Transaction
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

// ListByBooking returns every transaction of a booking in creation order, read
// in one statement so totals come from a single snapshot.
func (r *Repository) ListByBooking(ctx context.Context, bookingID int64) ([]Transaction, error) {
	var txns []Transaction
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC, id ASC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

// RefundedAmount sums refunds of originalID that are pending or completed,
// skipping excludeID.
func (r *Repository) RefundedAmount(ctx context.Context, originalID, excludeID int64) (money.Amount, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("refund_of_id = ? AND type = ? AND status IN ?", originalID, ledger.TypeRefund,
			[]ledger.TxnStatus{ledger.StatusPending, ledger.StatusCompleted})
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum refunds: %w", err)
	}
	return money.Amount(total), nil
}

// UpdateStatus writes status fields of t only while the row is still in
// fromStatus, returning ErrNotPending when another writer got there first.
func (r *Repository) UpdateStatus(ctx context.Context, t *Transaction, from ledger.TxnStatus) error {
	res := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("id = ? AND status = ?", t.ID, from).
		Updates(map[string]any{
			"status":         t.Status,
			"refunded_by_id": t.RefundedByID,
			"processed_at":   t.ProcessedAt,
			"updated_by":     t.UpdatedBy,
			"updated_at":     t.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *Repository) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&Transaction{}).Where("reference = ?", ref).Count(&count).Error
	return count > 0, err
}
