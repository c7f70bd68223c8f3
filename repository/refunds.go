package repository

import (
	"context"
	"time"

	"github.com/Govind-619/CampusDine/models"
	"gorm.io/gorm"
)

// RefundRepository implements services.RefundRepo.
type RefundRepository struct {
	db *gorm.DB
}

// NewRefundRepository creates a RefundRepository.
func NewRefundRepository(db *gorm.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

// Create inserts a refund row.
func (r *RefundRepository) Create(ctx context.Context, refund *models.PaymentRefund) error {
	return translate(r.db.WithContext(ctx).Create(refund).Error)
}

// ByGatewayRefundID loads a refund by its gateway refund id.
func (r *RefundRepository) ByGatewayRefundID(ctx context.Context, gatewayRefundID string) (*models.PaymentRefund, error) {
	var refund models.PaymentRefund
	if err := r.db.WithContext(ctx).Where("gateway_refund_id = ?", gatewayRefundID).First(&refund).Error; err != nil {
		return nil, translate(err)
	}
	return &refund, nil
}

// TotalRefunded sums every non-failed refund against the transaction, so
// the captured-amount ceiling counts pending refunds too.
func (r *RefundRepository) TotalRefunded(ctx context.Context, paymentID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentRefund{}).
		Where("payment_id = ? AND status <> ?", paymentID, models.RefundStatusFailed).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, translate(err)
	}
	return total, nil
}

// Settle records the webhook's authoritative outcome. Settling an already
// settled refund is a no-op returning the current row.
func (r *RefundRepository) Settle(ctx context.Context, gatewayRefundID, status string, processedAt time.Time) (*models.PaymentRefund, error) {
	refund, err := r.ByGatewayRefundID(ctx, gatewayRefundID)
	if err != nil {
		return nil, err
	}
	if refund.Status != models.RefundStatusPending {
		return refund, nil
	}

	updates := map[string]interface{}{
		"status":       status,
		"processed_at": processedAt,
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentRefund{}).
		Where("id = ? AND status = ?", refund.ID, models.RefundStatusPending).
		Updates(updates).Error; err != nil {
		return nil, translate(err)
	}

	return r.ByGatewayRefundID(ctx, gatewayRefundID)
}
