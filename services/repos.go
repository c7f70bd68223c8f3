// Package services holds the payment and order lifecycle core. Every
// service receives its collaborators (gateway client, repositories, TTL
// store, notifier) through its constructor; nothing is resolved from
// ambient scope, so tests substitute doubles without monkeypatching.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/Govind-619/CampusDine/models"
)

// ErrNoRows is returned by repositories when a lookup matches nothing.
// Storage errors of any other shape are treated as transient.
var ErrNoRows = errors.New("repository: no rows")

// UserRepo resolves users for payment intents.
type UserRepo interface {
	ByID(ctx context.Context, id uint) (*models.User, error)
}

// PaymentOrderRepo persists payment intents.
type PaymentOrderRepo interface {
	Create(ctx context.Context, order *models.PaymentOrder) error
	ByID(ctx context.Context, id uint) (*models.PaymentOrder, error)
	ByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentOrder, error)
	SetStatus(ctx context.Context, gatewayOrderID, status string) error
	// ExpireCreatedBefore marks every `created` row whose expiry passed as
	// expired and returns the rows it touched.
	ExpireCreatedBefore(ctx context.Context, cutoff time.Time) ([]models.PaymentOrder, error)
}

// TransactionRepo persists capture attempts. Upsert keys on the gateway
// payment id so repeated captures land on one row; ApplyStatusIfNewer uses
// the version column so a synchronous capture racing a webhook never loses
// an update.
type TransactionRepo interface {
	ByID(ctx context.Context, id uint) (*models.PaymentTransaction, error)
	ByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*models.PaymentTransaction, error)
	// Upsert inserts or refreshes the row keyed on GatewayPaymentID. It
	// reports whether a new row was created.
	Upsert(ctx context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, bool, error)
	// ApplyStatusIfNewer moves the transaction to status only when eventTime
	// is not older than the last applied event. It reports whether the
	// update was applied.
	ApplyStatusIfNewer(ctx context.Context, gatewayPaymentID, status string, eventTime time.Time, refundedAt *time.Time) (bool, error)
	// CapturedForOrder returns the captured transaction whose payment order
	// links the given canteen order.
	CapturedForOrder(ctx context.Context, orderID uint) (*models.PaymentTransaction, error)
}

// RefundRepo persists refunds.
type RefundRepo interface {
	Create(ctx context.Context, refund *models.PaymentRefund) error
	ByGatewayRefundID(ctx context.Context, gatewayRefundID string) (*models.PaymentRefund, error)
	// TotalRefunded sums every non-failed refund against the transaction.
	TotalRefunded(ctx context.Context, paymentID uint) (int64, error)
	// Settle records the authoritative webhook outcome for a refund.
	Settle(ctx context.Context, gatewayRefundID, status string, processedAt time.Time) (*models.PaymentRefund, error)
}

// OrderRepo persists canteen orders. Status writes go through
// CompareAndSetStatus only; the state machine owns the column.
type OrderRepo interface {
	ByID(ctx context.Context, id uint) (*models.Order, error)
	// CompareAndSetStatus moves the order from->to atomically and reports
	// whether the row was in `from` when the write landed.
	CompareAndSetStatus(ctx context.Context, id uint, from, to string) (bool, error)
	SetCancellationReason(ctx context.Context, id uint, reason string) error
}

// WebhookEventRepo keeps the webhook audit log.
type WebhookEventRepo interface {
	// Record inserts the event row; a duplicate event id is not an error.
	Record(ctx context.Context, event *models.WebhookEvent) error
	// Finish stamps processed_at and any processing error on the row.
	Finish(ctx context.Context, eventID, processingError string) error
}

// PlanRepo persists recurring-billing plans.
type PlanRepo interface {
	Create(ctx context.Context, plan *models.Plan) error
	ByGatewayPlanID(ctx context.Context, gatewayPlanID string) (*models.Plan, error)
}

// SubscriptionRepo persists subscriptions.
type SubscriptionRepo interface {
	Create(ctx context.Context, sub *models.Subscription) error
	ByGatewaySubscriptionID(ctx context.Context, gatewaySubscriptionID string) (*models.Subscription, error)
	// ApplyCharge advances the subscription period, guarded so a stale
	// redelivered charge never rolls back a newer one. Reports whether the
	// update was applied.
	ApplyCharge(ctx context.Context, gatewaySubscriptionID string, chargedAt time.Time, paidCount int, currentStart, currentEnd *time.Time) (bool, error)
}

// Notifier is the notification collaborator invoked on lifecycle events.
// Delivery failures are logged by callers and never fail the operation that
// triggered them.
type Notifier interface {
	OrderStatusChanged(order *models.Order, previous string) error
	PaymentCaptured(user *models.User, txn *models.PaymentTransaction) error
	RefundSettled(user *models.User, refund *models.PaymentRefund) error
}
