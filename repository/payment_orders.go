package repository

import (
	"context"
	"time"

	"github.com/Govind-619/CampusDine/models"
	"gorm.io/gorm"
)

// PaymentOrderRepository implements services.PaymentOrderRepo.
type PaymentOrderRepository struct {
	db *gorm.DB
}

// NewPaymentOrderRepository creates a PaymentOrderRepository.
func NewPaymentOrderRepository(db *gorm.DB) *PaymentOrderRepository {
	return &PaymentOrderRepository{db: db}
}

// Create inserts a payment order row.
func (r *PaymentOrderRepository) Create(ctx context.Context, order *models.PaymentOrder) error {
	return translate(r.db.WithContext(ctx).Create(order).Error)
}

// ByID loads a payment order by primary key.
func (r *PaymentOrderRepository) ByID(ctx context.Context, id uint) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// ByGatewayOrderID loads a payment order by its gateway order id.
func (r *PaymentOrderRepository) ByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := r.db.WithContext(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&order).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// SetStatus updates the status column for a gateway order id.
func (r *PaymentOrderRepository) SetStatus(ctx context.Context, gatewayOrderID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentOrder{}).
		Where("gateway_order_id = ?", gatewayOrderID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// ExpireCreatedBefore marks stale `created` rows expired and returns them.
func (r *PaymentOrderRepository) ExpireCreatedBefore(ctx context.Context, cutoff time.Time) ([]models.PaymentOrder, error) {
	var stale []models.PaymentOrder
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", models.PaymentOrderStatusCreated, cutoff).
		Find(&stale).Error; err != nil {
		return nil, translate(err)
	}
	if len(stale) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(stale))
	for _, order := range stale {
		ids = append(ids, order.ID)
	}
	// The status guard keeps a capture that raced the sweep from being
	// overwritten.
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentOrder{}).
		Where("id IN ? AND status = ?", ids, models.PaymentOrderStatusCreated).
		Updates(map[string]interface{}{"status": models.PaymentOrderStatusExpired, "updated_at": time.Now()}).Error; err != nil {
		return nil, translate(err)
	}
	return stale, nil
}
