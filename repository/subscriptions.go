package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Govind-619/CampusDine/models"
	"github.com/Govind-619/CampusDine/services"
	"gorm.io/gorm"
)

// PlanRepository implements services.PlanRepo.
type PlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a PlanRepository.
func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Create inserts a plan row.
func (r *PlanRepository) Create(ctx context.Context, plan *models.Plan) error {
	return translate(r.db.WithContext(ctx).Create(plan).Error)
}

// ByGatewayPlanID loads a plan by its gateway plan id.
func (r *PlanRepository) ByGatewayPlanID(ctx context.Context, gatewayPlanID string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).Where("gateway_plan_id = ?", gatewayPlanID).First(&plan).Error; err != nil {
		return nil, translate(err)
	}
	return &plan, nil
}

// SubscriptionRepository implements services.SubscriptionRepo.
type SubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a SubscriptionRepository.
func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create inserts a subscription row.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	return translate(r.db.WithContext(ctx).Create(sub).Error)
}

// ByGatewaySubscriptionID loads a subscription by its gateway id.
func (r *SubscriptionRepository) ByGatewaySubscriptionID(ctx context.Context, gatewaySubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).Where("gateway_subscription_id = ?", gatewaySubscriptionID).First(&sub).Error; err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

// ApplyCharge advances the subscription period. The charged_at guard keeps
// a stale redelivered charge event from rolling back a newer one.
func (r *SubscriptionRepository) ApplyCharge(ctx context.Context, gatewaySubscriptionID string, chargedAt time.Time, paidCount int, currentStart, currentEnd *time.Time) (bool, error) {
	if _, err := r.ByGatewaySubscriptionID(ctx, gatewaySubscriptionID); err != nil {
		if errors.Is(err, services.ErrNoRows) {
			return false, services.ErrNoRows
		}
		return false, err
	}

	updates := map[string]interface{}{
		"status":     models.SubscriptionStatusActive,
		"charged_at": chargedAt,
		"paid_count": paidCount,
		"updated_at": time.Now(),
	}
	if currentStart != nil {
		updates["current_start"] = *currentStart
	}
	if currentEnd != nil {
		updates["current_end"] = *currentEnd
	}

	result := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("gateway_subscription_id = ? AND (charged_at IS NULL OR charged_at <= ?)", gatewaySubscriptionID, chargedAt).
		Updates(updates)
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected > 0, nil
}
