package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/Govind-619/CampusDine/gateway"
	"github.com/Govind-619/CampusDine/models"
	"github.com/Govind-619/CampusDine/utils"
)

// webhookScope namespaces gateway event ids in the idempotency store.
const webhookScope = "webhook"

// WebhookResult is the outcome of handling one delivery.
type WebhookResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Cached  bool   `json:"cached,omitempty"`
}

// webhookEnvelope is the gateway's event wrapper.
type webhookEnvelope struct {
	Entity    string                     `json:"entity"`
	ID        string                     `json:"id"`
	Event     string                     `json:"event"`
	CreatedAt int64                      `json:"created_at"`
	Payload   map[string]json.RawMessage `json:"payload"`
}

type entityWrapper struct {
	Entity map[string]interface{} `json:"entity"`
}

// WebhookService verifies and dispatches asynchronous gateway events.
// Deliveries are at-least-once and unordered; the event-id idempotency
// register and the event-timestamp guard make application at-most-once and
// convergent.
type WebhookService struct {
	idem          *IdempotencyService
	txns          TransactionRepo
	refunds       RefundRepo
	subs          SubscriptionRepo
	events        WebhookEventRepo
	paymentOrders PaymentOrderRepo
	users         UserRepo
	notifier      Notifier
	secret        []byte
}

// NewWebhookService creates a WebhookService. secret is the webhook signing
// secret configured on the gateway dashboard.
func NewWebhookService(idem *IdempotencyService, txns TransactionRepo, refunds RefundRepo, subs SubscriptionRepo, events WebhookEventRepo, paymentOrders PaymentOrderRepo, users UserRepo, notifier Notifier, secret []byte) *WebhookService {
	return &WebhookService{
		idem:          idem,
		txns:          txns,
		refunds:       refunds,
		subs:          subs,
		events:        events,
		paymentOrders: paymentOrders,
		users:         users,
		notifier:      notifier,
		secret:        secret,
	}
}

// Handle verifies the delivery and applies its event. The returned AppError
// is nil whenever the gateway should not redeliver; transient failures come
// back as errors so the controller answers non-2xx and the gateway retries.
func (s *WebhookService) Handle(ctx context.Context, rawBody []byte, signatureHeader string) (*WebhookResult, *utils.AppError) {
	// Signature first: an unverified body causes zero side effects.
	if !utils.VerifySignature(rawBody, signatureHeader, s.secret) {
		utils.LogWarn("Webhook signature verification failed (%d byte body)", len(rawBody))
		return nil, utils.SignatureInvalid("Webhook signature verification failed")
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		utils.LogError("Malformed webhook body: %v", err)
		return nil, utils.ValidationFailed("Malformed webhook body", err)
	}

	eventID := envelope.ID
	if eventID == "" {
		// Some gateway configurations omit the event id; fall back to a
		// body digest so redeliveries still collapse onto one key.
		sum := sha256.Sum256(rawBody)
		eventID = hex.EncodeToString(sum[:])
		utils.LogDebug("Webhook without event id, using body digest %s", eventID[:12])
	}
	utils.LogInfo("Webhook received - event: %s, id: %s", envelope.Event, eventID)

	isNew, record, err := s.idem.Register(ctx, webhookScope, eventID, DefaultIdempotencyTTL)
	if err != nil {
		return nil, utils.TransientErr("Idempotency store unavailable", err)
	}
	if !isNew {
		if record.Completed {
			var cached WebhookResult
			if jerr := json.Unmarshal([]byte(record.Response), &cached); jerr != nil {
				cached = WebhookResult{Success: record.StatusCode < 400, Message: "replayed"}
			}
			cached.Cached = true
			utils.LogInfo("Webhook replay served from idempotency record - id: %s", eventID)
			return &cached, nil
		}
		// A concurrent delivery holds the claim. Tell the gateway to try
		// again later rather than double-processing.
		utils.LogInfo("Webhook delivery already in flight - id: %s", eventID)
		return nil, utils.TransientErr("Event is being processed", nil)
	}

	if err := s.events.Record(ctx, &models.WebhookEvent{
		EventID:   eventID,
		EventType: envelope.Event,
		Payload:   string(rawBody),
	}); err != nil {
		// Release the claim so redelivery can reprocess once storage is
		// back.
		s.release(ctx, eventID)
		return nil, utils.TransientErr("Failed to record webhook event", err)
	}

	result, appErr := s.dispatch(ctx, &envelope)
	if appErr != nil {
		switch appErr.Kind {
		case utils.KindTransient, utils.KindNotFound:
			// Not-found is usually ordering skew: the synchronous capture
			// path has not landed the row yet. Leave the claim released so
			// gateway redelivery can retry.
			utils.LogWarn("Webhook processing deferred - id: %s: %v", eventID, appErr)
			s.release(ctx, eventID)
			return nil, appErr
		default:
			// Permanent business failure: complete the record so retries
			// stop reprocessing it, and answer 2xx.
			utils.LogError("Webhook processing failed permanently - id: %s: %v", eventID, appErr)
			s.finish(ctx, eventID, appErr.Error())
			result = &WebhookResult{Success: true, Message: appErr.Message}
			s.complete(ctx, eventID, result)
			return result, nil
		}
	}

	s.finish(ctx, eventID, "")
	s.complete(ctx, eventID, result)
	utils.LogInfo("Webhook processed - event: %s, id: %s: %s", envelope.Event, eventID, result.Message)
	return result, nil
}

func (s *WebhookService) dispatch(ctx context.Context, envelope *webhookEnvelope) (*WebhookResult, *utils.AppError) {
	eventTime := time.Unix(envelope.CreatedAt, 0)

	switch envelope.Event {
	case "payment.captured":
		return s.applyPaymentStatus(ctx, envelope, models.TransactionStatusCaptured, eventTime)
	case "payment.failed":
		return s.applyPaymentStatus(ctx, envelope, models.TransactionStatusFailed, eventTime)
	case "refund.processed":
		return s.applyRefundProcessed(ctx, envelope, eventTime)
	case "subscription.charged":
		return s.applySubscriptionCharged(ctx, envelope, eventTime)
	default:
		// Unrecognized events are acknowledged, not errored; the gateway
		// adds event types without notice.
		utils.LogInfo("Unrecognized webhook event %q ignored", envelope.Event)
		return &WebhookResult{Success: true, Message: "event ignored"}, nil
	}
}

func (s *WebhookService) applyPaymentStatus(ctx context.Context, envelope *webhookEnvelope, status string, eventTime time.Time) (*WebhookResult, *utils.AppError) {
	payment, appErr := s.paymentEntity(envelope)
	if appErr != nil {
		return nil, appErr
	}

	applied, err := s.txns.ApplyStatusIfNewer(ctx, payment.ID, status, eventTime, nil)
	if err == ErrNoRows {
		return nil, utils.NotFoundErr("Transaction not found for webhook payment")
	}
	if err != nil {
		return nil, utils.TransientErr("Failed to update transaction", err)
	}
	if !applied {
		// A newer event already landed; an older redelivered event must not
		// flip the status back.
		return &WebhookResult{Success: true, Message: "stale event ignored"}, nil
	}
	return &WebhookResult{Success: true, Message: "transaction marked " + status}, nil
}

func (s *WebhookService) applyRefundProcessed(ctx context.Context, envelope *webhookEnvelope, eventTime time.Time) (*WebhookResult, *utils.AppError) {
	refundEntity, appErr := s.entity(envelope, "refund")
	if appErr != nil {
		return nil, appErr
	}
	gatewayRefundID, _ := refundEntity["id"].(string)
	gatewayPaymentID, _ := refundEntity["payment_id"].(string)
	if gatewayRefundID == "" {
		return nil, utils.ValidationFailed("Webhook refund entity missing id", nil)
	}

	refund, err := s.refunds.Settle(ctx, gatewayRefundID, models.RefundStatusProcessed, eventTime)
	if err == ErrNoRows {
		return nil, utils.NotFoundErr("Refund not found for webhook")
	}
	if err != nil {
		return nil, utils.TransientErr("Failed to settle refund", err)
	}

	if gatewayPaymentID != "" {
		refundedAt := eventTime
		if _, err := s.txns.ApplyStatusIfNewer(ctx, gatewayPaymentID, models.TransactionStatusRefunded, eventTime, &refundedAt); err != nil && err != ErrNoRows {
			return nil, utils.TransientErr("Failed to mark transaction refunded", err)
		}
	}

	s.notifyRefund(ctx, refund)
	return &WebhookResult{Success: true, Message: "refund marked processed"}, nil
}

func (s *WebhookService) applySubscriptionCharged(ctx context.Context, envelope *webhookEnvelope, eventTime time.Time) (*WebhookResult, *utils.AppError) {
	subEntity, appErr := s.entity(envelope, "subscription")
	if appErr != nil {
		return nil, appErr
	}
	gatewaySubID, _ := subEntity["id"].(string)
	if gatewaySubID == "" {
		return nil, utils.ValidationFailed("Webhook subscription entity missing id", nil)
	}

	paidCount := int(asFloat(subEntity["paid_count"]))
	currentStart := unixField(subEntity["current_start"])
	currentEnd := unixField(subEntity["current_end"])

	applied, err := s.subs.ApplyCharge(ctx, gatewaySubID, eventTime, paidCount, currentStart, currentEnd)
	if err == ErrNoRows {
		return nil, utils.NotFoundErr("Subscription not found for webhook")
	}
	if err != nil {
		return nil, utils.TransientErr("Failed to apply subscription charge", err)
	}
	if !applied {
		return &WebhookResult{Success: true, Message: "stale event ignored"}, nil
	}
	return &WebhookResult{Success: true, Message: "subscription period advanced"}, nil
}

// notifyRefund emails the customer behind the refunded transaction. Lookup
// or delivery failures only log; the refund is already settled.
func (s *WebhookService) notifyRefund(ctx context.Context, refund *models.PaymentRefund) {
	if s.notifier == nil {
		return
	}
	txn, err := s.txns.ByID(ctx, refund.PaymentID)
	if err != nil {
		utils.LogError("Failed to load transaction %d for refund notification: %v", refund.PaymentID, err)
		return
	}
	order, err := s.paymentOrders.ByID(ctx, txn.PaymentOrderID)
	if err != nil {
		utils.LogError("Failed to load payment order %d for refund notification: %v", txn.PaymentOrderID, err)
		return
	}
	user, err := s.users.ByID(ctx, order.UserID)
	if err != nil {
		utils.LogError("Failed to load user %d for refund notification: %v", order.UserID, err)
		return
	}
	if nerr := s.notifier.RefundSettled(user, refund); nerr != nil {
		utils.LogError("Failed to send refund notification for %s: %v", refund.GatewayRefundID, nerr)
	}
}

func (s *WebhookService) paymentEntity(envelope *webhookEnvelope) (*gateway.Payment, *utils.AppError) {
	raw, appErr := s.entity(envelope, "payment")
	if appErr != nil {
		return nil, appErr
	}
	payment := gateway.DecodePayment(raw)
	if payment.ID == "" {
		return nil, utils.ValidationFailed("Webhook payment entity missing id", nil)
	}
	return payment, nil
}

func (s *WebhookService) entity(envelope *webhookEnvelope, name string) (map[string]interface{}, *utils.AppError) {
	raw, ok := envelope.Payload[name]
	if !ok {
		return nil, utils.ValidationFailed("Webhook payload missing "+name+" entity", nil)
	}
	var wrapper entityWrapper
	if err := json.Unmarshal(raw, &wrapper); err != nil || wrapper.Entity == nil {
		return nil, utils.ValidationFailed("Webhook "+name+" entity malformed", err)
	}
	return wrapper.Entity, nil
}

func (s *WebhookService) finish(ctx context.Context, eventID, processingError string) {
	if err := s.events.Finish(ctx, eventID, processingError); err != nil {
		utils.LogError("Failed to finish webhook audit row %s: %v", eventID, err)
	}
}

func (s *WebhookService) complete(ctx context.Context, eventID string, result *WebhookResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.idem.Complete(ctx, webhookScope, eventID, 200, payload, DefaultIdempotencyTTL); err != nil {
		utils.LogError("Failed to complete idempotency record for %s: %v", eventID, err)
	}
}

func (s *WebhookService) release(ctx context.Context, eventID string) {
	if err := s.idem.Release(ctx, webhookScope, eventID); err != nil {
		utils.LogError("Failed to release idempotency claim for %s: %v", eventID, err)
	}
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func unixField(v interface{}) *time.Time {
	sec := int64(asFloat(v))
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0)
	return &t
}
