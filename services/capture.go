package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Govind-619/CampusDine/gateway"
	"github.com/Govind-619/CampusDine/models"
	"github.com/Govind-619/CampusDine/utils"
)

// CaptureService confirms and captures payments. The signature gate sits
// before any gateway mutation; the order-confirmed transition sits after the
// money has moved and can only be logged, never unwound.
type CaptureService struct {
	gw            gateway.Client
	paymentOrders *PaymentOrderService
	txns          TransactionRepo
	users         UserRepo
	states        *OrderStateMachine
	notifier      Notifier
	secret        []byte
}

// NewCaptureService creates a CaptureService. secret is the gateway key
// secret used for payment signature verification.
func NewCaptureService(gw gateway.Client, paymentOrders *PaymentOrderService, txns TransactionRepo, users UserRepo, states *OrderStateMachine, notifier Notifier, secret []byte) *CaptureService {
	return &CaptureService{
		gw:            gw,
		paymentOrders: paymentOrders,
		txns:          txns,
		users:         users,
		states:        states,
		notifier:      notifier,
		secret:        secret,
	}
}

// Capture verifies the payment signature, captures the payment if it is
// still only authorized, and persists the transaction. Repeat calls for the
// same gateway payment id are idempotent: the upsert lands on one row and
// the order transition fires only on first creation.
func (s *CaptureService) Capture(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*models.PaymentTransaction, *utils.AppError) {
	utils.LogInfo("Capture requested - Gateway Order ID: %s, Payment ID: %s", gatewayOrderID, gatewayPaymentID)

	order, appErr := s.paymentOrders.Get(ctx, gatewayOrderID)
	if appErr != nil {
		return nil, appErr
	}

	// Verify before touching the gateway. A bad signature makes zero
	// mutations anywhere.
	payload := []byte(gatewayOrderID + "|" + gatewayPaymentID)
	if !utils.VerifySignature(payload, signature, s.secret) {
		utils.LogWarn("Payment signature verification failed - Gateway Order ID: %s, Payment ID: %s",
			gatewayOrderID, gatewayPaymentID)
		return nil, utils.SignatureInvalid("Payment verification failed")
	}
	utils.LogDebug("Payment signature verified - Gateway Order ID: %s", gatewayOrderID)

	payment, err := s.gw.FetchPayment(ctx, gatewayPaymentID)
	if err != nil {
		if gateway.IsUnknown(err) {
			return nil, utils.UnknownOutcome("Payment state fetch did not resolve; re-query before retrying", err)
		}
		return nil, utils.GatewayFailed("Failed to fetch payment from gateway", err)
	}
	utils.LogDebug("Fetched payment %s with status %s", gatewayPaymentID, payment.Status)

	switch payment.Status {
	case gateway.PaymentAuthorized:
		captured, cerr := s.gw.CapturePayment(ctx, gatewayPaymentID, order.Amount, order.Currency)
		if cerr != nil {
			if gateway.IsUnknown(cerr) {
				// The charge may have landed server-side. Surface unknown so
				// the caller re-queries instead of assuming failure.
				return nil, utils.UnknownOutcome("Capture did not resolve; re-verify payment state before retrying", cerr)
			}
			return nil, utils.GatewayFailed("Failed to capture payment", cerr)
		}
		payment = captured
		utils.LogInfo("Payment captured at gateway - Payment ID: %s", gatewayPaymentID)
	case gateway.PaymentCaptured:
		// Already captured (gateway auto-capture or an earlier call); the
		// rest of the flow is read-only against the gateway.
		utils.LogInfo("Payment already captured, continuing read-only - Payment ID: %s", gatewayPaymentID)
	default:
		utils.LogWarn("Payment not successful - Payment ID: %s, status: %s", gatewayPaymentID, payment.Status)
		return nil, utils.StateConflict(fmt.Sprintf("Payment not successful (status %s)", payment.Status))
	}

	now := time.Now()
	txn := &models.PaymentTransaction{
		PaymentOrderID:   order.ID,
		GatewayPaymentID: gatewayPaymentID,
		MethodType:       payment.Method.Type,
		MethodProvider:   payment.Method.Provider,
		MethodDetails:    payment.Method.Details,
		Amount:           payment.Amount,
		Currency:         payment.Currency,
		Status:           models.TransactionStatusCaptured,
		Fee:              payment.Fee,
		Tax:              payment.Tax,
		// The capture is the newest event this row reflects. Baselining on
		// the payment's creation time would let a failed event generated
		// before the capture read as newer and regress the row.
		EventTime:        now,
		CapturedAt:       &now,
	}
	txn, created, err := s.txns.Upsert(ctx, txn)
	if err != nil {
		return nil, utils.TransientErr("Failed to persist transaction", err)
	}
	utils.LogInfo("Transaction persisted - ID: %d, created: %v", txn.ID, created)

	if err := s.paymentOrders.MarkPaid(ctx, gatewayOrderID); err != nil {
		utils.LogError("Failed to mark payment order paid - Gateway Order ID: %s: %v", gatewayOrderID, err)
		return nil, utils.TransientErr("Failed to update payment order", err)
	}

	if created {
		s.afterFirstCapture(ctx, order, txn)
	}

	return txn, nil
}

// afterFirstCapture runs the side effects that must fire exactly once per
// captured payment. Failures here are logged for reconciliation; the money
// has already moved, so nothing can retroactively fail the capture.
func (s *CaptureService) afterFirstCapture(ctx context.Context, order *models.PaymentOrder, txn *models.PaymentTransaction) {
	if order.OrderID != nil {
		if _, terr := s.states.Transition(ctx, *order.OrderID, models.OrderStatusConfirmed); terr != nil {
			utils.LogError("Order confirm transition failed after capture - Order ID: %d, Payment ID: %s: %v (flagged for reconciliation)",
				*order.OrderID, txn.GatewayPaymentID, terr)
		}
	}

	if s.notifier != nil {
		user, uerr := s.users.ByID(ctx, order.UserID)
		if uerr != nil {
			utils.LogError("Failed to load user for capture notification - User ID: %d: %v", order.UserID, uerr)
			return
		}
		if nerr := s.notifier.PaymentCaptured(user, txn); nerr != nil {
			utils.LogError("Failed to send capture notification - Payment ID: %s: %v", txn.GatewayPaymentID, nerr)
		}
	}
}
