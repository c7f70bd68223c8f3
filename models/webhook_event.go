package models

import (
	"time"
)

// WebhookEvent is the audit row kept for every gateway webhook that passed
// signature verification, keyed by the gateway's event id so redeliveries
// land on the same row.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	EventID         string     `gorm:"uniqueIndex" json:"event_id"`
	EventType       string     `json:"event_type"`
	Payload         string     `json:"payload"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	ProcessingError string     `json:"processing_error,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
