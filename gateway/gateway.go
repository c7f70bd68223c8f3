// Package gateway wraps the external payment gateway behind a typed client.
// The gateway's loosely-typed JSON payloads are decoded exactly once, here
// at the boundary; everything past this package works with typed structs and
// minor-unit int64 amounts.
package gateway

import (
	"context"
	"fmt"
	"time"
)

// Gateway order/payment status values as the gateway reports them.
const (
	OrderStatusCreated  = "created"
	PaymentAuthorized   = "authorized"
	PaymentCaptured     = "captured"
	PaymentFailed       = "failed"
	PaymentRefunded     = "refunded"
	RefundPending       = "pending"
	RefundProcessed     = "processed"
)

// Order is a gateway-side payment order.
type Order struct {
	ID       string
	Status   string
	Amount   int64
	Currency string
	Receipt  string
}

// Method is the tagged union of payment instruments. Details only ever
// carries masked data (card last4, UPI handle, wallet name, bank code).
type Method struct {
	Type     string // card, upi, wallet, netbanking
	Provider string
	Details  string
}

// Payment is a gateway-side payment with its instrument normalized.
type Payment struct {
	ID        string
	OrderID   string
	Status    string
	Amount    int64
	Currency  string
	Method    Method
	Fee       int64
	Tax       int64
	Email     string
	Contact   string
	CreatedAt time.Time
}

// Refund is a gateway-side refund.
type Refund struct {
	ID        string
	PaymentID string
	Amount    int64
	Currency  string
	Status    string
}

// Plan is a gateway-side recurring-billing plan.
type Plan struct {
	ID       string
	Period   string
	Interval int
	Name     string
	Amount   int64
	Currency string
}

// Subscription is a gateway-side subscription against a Plan.
type Subscription struct {
	ID         string
	PlanID     string
	Status     string
	TotalCount int
}

// Client is the gateway contract this core consumes. Implementations must
// honor the context deadline and hold no locks while waiting on the wire.
type Client interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]interface{}) (*Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
	CapturePayment(ctx context.Context, paymentID string, amount int64, currency string) (*Payment, error)
	RefundPayment(ctx context.Context, paymentID string, amount int64, notes map[string]interface{}) (*Refund, error)
	CreatePlan(ctx context.Context, period string, interval int, name string, amount int64, currency string) (*Plan, error)
	CreateSubscription(ctx context.Context, planID string, totalCount int, notes map[string]interface{}) (*Subscription, error)
}

// Error is a gateway call failure. Unknown marks outcomes that are
// unresolved (timeouts, cancelled contexts): the charge may have succeeded
// server-side, so callers must re-query before concluding failure.
type Error struct {
	Op      string
	Unknown bool
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Unknown {
		return fmt.Sprintf("gateway %s: outcome unknown: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

// Unwrap implements the unwrap interface
func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnknown reports whether err is a gateway error with an unresolved
// outcome.
func IsUnknown(err error) bool {
	if gwErr, ok := err.(*Error); ok {
		return gwErr.Unknown
	}
	return false
}
