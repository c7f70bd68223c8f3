package repository

import (
	"context"
	"time"

	"github.com/Govind-619/CampusDine/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WebhookEventRepository implements services.WebhookEventRepo.
type WebhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a WebhookEventRepository.
func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Record inserts the audit row; a redelivered event id lands on the
// existing row without error.
func (r *WebhookEventRepository) Record(ctx context.Context, event *models.WebhookEvent) error {
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(event).Error)
}

// Finish stamps the processing outcome on the audit row.
func (r *WebhookEventRepository) Finish(ctx context.Context, eventID, processingError string) error {
	return translate(r.db.WithContext(ctx).
		Model(&models.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"processed_at":     time.Now(),
			"processing_error": processingError,
		}).Error)
}
