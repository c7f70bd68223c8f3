package models

import (
	"time"
)

// Subscription status constants
const (
	SubscriptionStatusCreated   = "created"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
)

// Plan mirrors a recurring-billing plan created on the gateway (e.g. a
// monthly meal plan).
type Plan struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	GatewayPlanID string    `gorm:"uniqueIndex" json:"gateway_plan_id"`
	Name          string    `json:"name"`
	Period        string    `json:"period"` // daily, weekly, monthly
	Interval      int       `json:"interval"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
}

// Subscription mirrors a gateway subscription against a Plan. The
// subscription.charged webhook advances PaidCount and the current period.
type Subscription struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	GatewaySubscriptionID string     `gorm:"uniqueIndex" json:"gateway_subscription_id"`
	PlanID                uint       `json:"plan_id"`
	Plan                  Plan       `json:"plan" gorm:"foreignKey:PlanID"`
	UserID                uint       `json:"user_id"`
	Status                string     `json:"status"` // created, active, cancelled
	TotalCount            int        `json:"total_count"`
	PaidCount             int        `json:"paid_count"`
	CurrentStart          *time.Time `json:"current_start,omitempty"`
	CurrentEnd            *time.Time `json:"current_end,omitempty"`
	ChargedAt             *time.Time `json:"charged_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}
