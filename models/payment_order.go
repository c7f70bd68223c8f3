package models

import (
	"time"
)

// PaymentOrder status constants
const (
	PaymentOrderStatusCreated   = "created"
	PaymentOrderStatusPaid      = "paid"
	PaymentOrderStatusExpired   = "expired"
	PaymentOrderStatusCancelled = "cancelled"
)

// PaymentOrder is the local record of a payment intent, mirrored to exactly
// one gateway order. Amounts are minor units (paise).
type PaymentOrder struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	GatewayOrderID string    `gorm:"uniqueIndex" json:"gateway_order_id"`
	UserID         uint      `json:"user_id"`
	OrderID        *uint     `json:"order_id,omitempty"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"` // created, paid, expired, cancelled
	Receipt        string    `json:"receipt"`
	Notes          string    `json:"notes,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
