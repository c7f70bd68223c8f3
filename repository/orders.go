package repository

import (
	"context"
	"time"

	"github.com/Govind-619/CampusDine/models"
	"gorm.io/gorm"
)

// OrderRepository implements services.OrderRepo.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an OrderRepository.
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// ByID loads an order with its user.
func (r *OrderRepository) ByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("User").First(&order, id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// CompareAndSetStatus moves the order from->to only if it is still in
// `from`, so two racing transitions cannot both win.
func (r *OrderRepository) CompareAndSetStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// SetCancellationReason records why an order was cancelled.
func (r *OrderRepository) SetCancellationReason(ctx context.Context, id uint, reason string) error {
	return translate(r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("cancellation_reason", reason).Error)
}
