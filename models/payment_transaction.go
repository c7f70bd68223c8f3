package models

import (
	"time"
)

// PaymentTransaction status constants
const (
	TransactionStatusAuthorized = "authorized"
	TransactionStatusCaptured   = "captured"
	TransactionStatusFailed     = "failed"
	TransactionStatusRefunded   = "refunded"
)

// Payment method types, normalized from the gateway's instrument-specific
// fields at the client boundary.
const (
	MethodCard       = "card"
	MethodUPI        = "upi"
	MethodWallet     = "wallet"
	MethodNetbanking = "netbanking"
)

// PaymentTransaction records a single capture attempt against a PaymentOrder.
// Rows are immutable once captured except RefundedAt, which is written by the
// refund/webhook path. Version guards against a synchronous capture racing a
// webhook for the same gateway payment.
type PaymentTransaction struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	PaymentOrderID   uint       `json:"payment_order_id"`
	GatewayPaymentID string     `gorm:"uniqueIndex" json:"gateway_payment_id"`
	MethodType       string     `json:"method_type"` // card, upi, wallet, netbanking
	MethodProvider   string     `json:"method_provider"`
	MethodDetails    string     `json:"method_details"` // masked: last4, vpa, wallet name, bank code
	Amount           int64      `json:"amount"`
	Currency         string     `json:"currency"`
	Status           string     `json:"status"` // authorized, captured, failed, refunded
	Fee              int64      `json:"fee"`
	Tax              int64      `json:"tax"`
	EventTime        time.Time  `json:"event_time"` // timestamp of the last applied gateway event
	CapturedAt       *time.Time `json:"captured_at,omitempty"`
	RefundedAt       *time.Time `json:"refunded_at,omitempty"`
	Version          int        `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
