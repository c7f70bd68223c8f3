package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Govind-619/CampusDine/models"
	"github.com/Govind-619/CampusDine/services"
	"gorm.io/gorm"
)

// transactionRetries bounds the optimistic-concurrency retry loop.
const transactionRetries = 3

// TransactionRepository implements services.TransactionRepo with a version
// column guarding concurrent writers (a synchronous capture racing a
// webhook for the same gateway payment).
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a TransactionRepository.
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ByID loads a transaction by primary key.
func (r *TransactionRepository) ByID(ctx context.Context, id uint) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := r.db.WithContext(ctx).First(&txn, id).Error; err != nil {
		return nil, translate(err)
	}
	return &txn, nil
}

// ByGatewayPaymentID loads a transaction by its gateway payment id.
func (r *TransactionRepository) ByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := r.db.WithContext(ctx).Where("gateway_payment_id = ?", gatewayPaymentID).First(&txn).Error; err != nil {
		return nil, translate(err)
	}
	return &txn, nil
}

// Upsert inserts the transaction or, when the gateway payment id already
// has a row, returns that row untouched. Captured rows are immutable except
// RefundedAt, so a repeat capture never rewrites anything.
func (r *TransactionRepository) Upsert(ctx context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, bool, error) {
	existing, err := r.ByGatewayPaymentID(ctx, txn.GatewayPaymentID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, services.ErrNoRows) {
		return nil, false, err
	}

	if cerr := r.db.WithContext(ctx).Create(txn).Error; cerr != nil {
		// A concurrent caller may have inserted between the read and the
		// write; the unique index on gateway_payment_id makes that loud.
		existing, rerr := r.ByGatewayPaymentID(ctx, txn.GatewayPaymentID)
		if rerr == nil {
			return existing, false, nil
		}
		return nil, false, translate(cerr)
	}
	return txn, true, nil
}

// ApplyStatusIfNewer moves the transaction to status unless a newer gateway
// event already landed. The version check makes the read-modify-write safe
// against concurrent writers.
func (r *TransactionRepository) ApplyStatusIfNewer(ctx context.Context, gatewayPaymentID, status string, eventTime time.Time, refundedAt *time.Time) (bool, error) {
	for attempt := 0; attempt < transactionRetries; attempt++ {
		txn, err := r.ByGatewayPaymentID(ctx, gatewayPaymentID)
		if err != nil {
			return false, err
		}

		if eventTime.Before(txn.EventTime) {
			// Stale redelivered event; the row already reflects something
			// newer.
			return false, nil
		}
		if txn.Status == status && refundedAt == nil {
			return true, nil
		}

		updates := map[string]interface{}{
			"status":     status,
			"event_time": eventTime,
			"version":    txn.Version + 1,
			"updated_at": time.Now(),
		}
		if refundedAt != nil {
			updates["refunded_at"] = *refundedAt
		}

		result := r.db.WithContext(ctx).
			Model(&models.PaymentTransaction{}).
			Where("id = ? AND version = ?", txn.ID, txn.Version).
			Updates(updates)
		if result.Error != nil {
			return false, translate(result.Error)
		}
		if result.RowsAffected > 0 {
			return true, nil
		}
		// Lost the version race; reload and re-evaluate.
	}
	return false, errors.New("transaction update contention exceeded retries")
}

// CapturedForOrder returns the captured transaction whose payment order is
// linked to the given canteen order.
func (r *TransactionRepository) CapturedForOrder(ctx context.Context, orderID uint) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Joins("JOIN payment_orders ON payment_orders.id = payment_transactions.payment_order_id").
		Where("payment_orders.order_id = ? AND payment_transactions.status = ?", orderID, models.TransactionStatusCaptured).
		First(&txn).Error
	if err != nil {
		return nil, translate(err)
	}
	return &txn, nil
}
