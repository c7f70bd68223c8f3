package services

import (
	"context"
	"fmt"

	"github.com/Govind-619/CampusDine/gateway"
	"github.com/Govind-619/CampusDine/models"
	"github.com/Govind-619/CampusDine/utils"
)

// RefundService issues refunds against captured transactions. Local refund
// rows stay pending until the gateway's refund.processed webhook settles
// them.
type RefundService struct {
	gw      gateway.Client
	txns    TransactionRepo
	refunds RefundRepo
}

// NewRefundService creates a RefundService.
func NewRefundService(gw gateway.Client, txns TransactionRepo, refunds RefundRepo) *RefundService {
	return &RefundService{gw: gw, txns: txns, refunds: refunds}
}

// CreateRefund refunds amount minor units of the transaction behind
// gatewayPaymentID. amount zero means the full captured amount. The running
// total of refunds can never exceed what was captured.
func (s *RefundService) CreateRefund(ctx context.Context, gatewayPaymentID string, amount int64, reason string) (*models.PaymentRefund, *utils.AppError) {
	utils.LogInfo("Refund requested - Payment ID: %s, amount: %d", gatewayPaymentID, amount)

	txn, err := s.txns.ByGatewayPaymentID(ctx, gatewayPaymentID)
	if err == ErrNoRows {
		utils.LogError("Transaction not found for refund - Payment ID: %s", gatewayPaymentID)
		return nil, utils.NotFoundErr("Transaction not found")
	}
	if err != nil {
		return nil, utils.TransientErr("Failed to load transaction", err)
	}

	if txn.Status != models.TransactionStatusCaptured && txn.Status != models.TransactionStatusRefunded {
		return nil, utils.StateConflict(fmt.Sprintf("Cannot refund a transaction in status %s", txn.Status))
	}

	if amount == 0 {
		amount = txn.Amount
	}
	if amount < 0 {
		return nil, utils.ValidationFailed("Refund amount must be positive", nil)
	}

	alreadyRefunded, err := s.refunds.TotalRefunded(ctx, txn.ID)
	if err != nil {
		return nil, utils.TransientErr("Failed to sum existing refunds", err)
	}
	if alreadyRefunded+amount > txn.Amount {
		utils.LogWarn("Refund exceeds captured amount - Payment ID: %s, captured: %d, refunded: %d, requested: %d",
			gatewayPaymentID, txn.Amount, alreadyRefunded, amount)
		return nil, utils.ValidationFailed(
			fmt.Sprintf("Refund of %d exceeds remaining captured amount %d", amount, txn.Amount-alreadyRefunded), nil)
	}

	notes := map[string]interface{}{}
	if reason != "" {
		notes["reason"] = reason
	}
	remote, gerr := s.gw.RefundPayment(ctx, gatewayPaymentID, amount, notes)
	if gerr != nil {
		utils.LogError("Gateway refund failed - Payment ID: %s: %v", gatewayPaymentID, gerr)
		if gateway.IsUnknown(gerr) {
			return nil, utils.UnknownOutcome("Refund did not resolve; re-verify before retrying", gerr)
		}
		return nil, utils.GatewayFailed("Failed to create refund at gateway", gerr)
	}
	utils.LogDebug("Gateway refund created - Refund ID: %s", remote.ID)

	refund := &models.PaymentRefund{
		PaymentID:       txn.ID,
		GatewayRefundID: remote.ID,
		Amount:          amount,
		Status:          models.RefundStatusPending,
		Reason:          reason,
	}
	if err := s.refunds.Create(ctx, refund); err != nil {
		utils.LogError("ORPHANED gateway refund %s: local insert failed after remote create: %v", remote.ID, err)
		return nil, utils.TransientErr("Failed to persist refund", err)
	}

	utils.LogInfo("Refund created pending - ID: %d, Gateway Refund ID: %s", refund.ID, refund.GatewayRefundID)
	return refund, nil
}

// RefundForOrder refunds the full captured amount of the transaction behind
// a cancelled canteen order, if one exists. Orders without a captured
// payment cancel without any refund.
func (s *RefundService) RefundForOrder(ctx context.Context, orderID uint, reason string) (*models.PaymentRefund, *utils.AppError) {
	txn, err := s.txns.CapturedForOrder(ctx, orderID)
	if err == ErrNoRows {
		utils.LogInfo("No captured transaction for cancelled order %d, nothing to refund", orderID)
		return nil, nil
	}
	if err != nil {
		return nil, utils.TransientErr("Failed to look up captured transaction", err)
	}
	return s.CreateRefund(ctx, txn.GatewayPaymentID, 0, reason)
}
