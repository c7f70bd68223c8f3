package models

import (
	"time"
)

// Order status constants
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Order is a canteen order. Status is owned exclusively by the order state
// machine; every other component requests transitions instead of writing the
// column directly.
type Order struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `json:"user_id"`
	User               User       `json:"user" gorm:"foreignKey:UserID"`
	StudentID          string     `json:"student_id"`
	TotalAmount        int64      `json:"total_amount"`
	Status             string     `json:"status"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	DeliveryTime       *time.Time `json:"delivery_time,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
