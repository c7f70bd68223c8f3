package models

import (
	"time"
)

// PaymentRefund status constants
const (
	RefundStatusPending   = "pending"
	RefundStatusProcessed = "processed"
	RefundStatusFailed    = "failed"
)

// PaymentRefund records one refund issued against a PaymentTransaction.
// Status stays pending until the gateway's refund.processed webhook settles
// it. The sum of refunds per transaction never exceeds the captured amount.
type PaymentRefund struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	PaymentID       uint       `json:"payment_id"` // PaymentTransaction ID
	GatewayRefundID string     `gorm:"uniqueIndex" json:"gateway_refund_id"`
	Amount          int64      `json:"amount"`
	Status          string     `json:"status"` // pending, processed, failed
	Reason          string     `json:"reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
}
