package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Govind-619/CampusDine/cache"
	"github.com/Govind-619/CampusDine/gateway"
	"github.com/Govind-619/CampusDine/models"
	"github.com/Govind-619/CampusDine/utils"
	"github.com/google/uuid"
)

const (
	// PaymentOrderExpiry is how long a payment intent stays payable.
	PaymentOrderExpiry = 15 * time.Minute
	// paymentOrderCacheTTL bounds the cache-through read path.
	paymentOrderCacheTTL = 5 * time.Minute
	// DefaultCurrency is the settlement currency.
	DefaultCurrency = "INR"
)

// PaymentOrderService creates payment intents against the gateway and
// answers cache-through reads keyed by gateway order id.
type PaymentOrderService struct {
	gw        gateway.Client
	orders    PaymentOrderRepo
	users     UserRepo
	store     cache.Store
	minAmount int64
}

// NewPaymentOrderService creates a PaymentOrderService. minAmount is the
// smallest accepted amount in minor units.
func NewPaymentOrderService(gw gateway.Client, orders PaymentOrderRepo, users UserRepo, store cache.Store, minAmount int64) *PaymentOrderService {
	return &PaymentOrderService{
		gw:        gw,
		orders:    orders,
		users:     users,
		store:     store,
		minAmount: minAmount,
	}
}

func paymentOrderCacheKey(gatewayOrderID string) string {
	return "payment_order:" + gatewayOrderID
}

// CreateParams carries the inputs for a new payment intent.
type CreateParams struct {
	UserID   uint
	OrderID  *uint
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]interface{}
}

// Create validates the request, creates the remote order on the gateway and
// only then persists the local row. A gateway failure aborts before any
// local write, so no orphan row can exist locally.
func (s *PaymentOrderService) Create(ctx context.Context, params CreateParams) (*models.PaymentOrder, *utils.AppError) {
	utils.LogInfo("Creating payment order - User ID: %d, amount: %d", params.UserID, params.Amount)

	// Amount check comes first, before any gateway traffic.
	if params.Amount < s.minAmount {
		utils.LogWarn("Payment order amount below minimum - User ID: %d, amount: %d, minimum: %d",
			params.UserID, params.Amount, s.minAmount)
		return nil, utils.ValidationFailed(
			fmt.Sprintf("Amount must be at least %d minor units", s.minAmount), nil)
	}

	user, err := s.users.ByID(ctx, params.UserID)
	if err == ErrNoRows {
		utils.LogError("User not found for payment order - User ID: %d", params.UserID)
		return nil, utils.NotFoundErr("User not found")
	}
	if err != nil {
		return nil, utils.TransientErr("Failed to resolve user", err)
	}
	if user.IsBlocked {
		return nil, utils.ValidationFailed("User is blocked", nil)
	}

	currency := strings.ToUpper(params.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}

	receipt := params.Receipt
	if receipt == "" {
		receipt = generateReceipt()
	}

	remote, gerr := s.gw.CreateOrder(ctx, params.Amount, currency, receipt, params.Notes)
	if gerr != nil {
		utils.LogError("Gateway order creation failed - User ID: %d: %v", params.UserID, gerr)
		if gateway.IsUnknown(gerr) {
			return nil, utils.UnknownOutcome("Gateway order creation did not resolve", gerr)
		}
		return nil, utils.GatewayFailed("Failed to create gateway order", gerr)
	}
	utils.LogDebug("Gateway order created - Gateway Order ID: %s", remote.ID)

	notes := ""
	if len(params.Notes) > 0 {
		if raw, merr := json.Marshal(params.Notes); merr == nil {
			notes = string(raw)
		}
	}

	now := time.Now()
	order := &models.PaymentOrder{
		GatewayOrderID: remote.ID,
		UserID:         params.UserID,
		OrderID:        params.OrderID,
		Amount:         params.Amount,
		Currency:       currency,
		Status:         models.PaymentOrderStatusCreated,
		Receipt:        receipt,
		Notes:          notes,
		ExpiresAt:      now.Add(PaymentOrderExpiry),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		// The remote order now has no local record. Flag it loudly for the
		// reconciliation sweep; the gateway order expires on its own.
		utils.LogError("ORPHANED gateway order %s: local insert failed after remote create: %v", remote.ID, err)
		return nil, utils.TransientErr("Failed to persist payment order", err)
	}
	utils.LogInfo("Payment order created - ID: %d, Gateway Order ID: %s", order.ID, order.GatewayOrderID)

	s.cacheOrder(ctx, order)
	return order, nil
}

// Get returns the payment order for a gateway order id, reading through the
// cache. Cache failures are logged and bypassed; they never fail the read.
func (s *PaymentOrderService) Get(ctx context.Context, gatewayOrderID string) (*models.PaymentOrder, *utils.AppError) {
	if raw, err := s.store.Get(ctx, paymentOrderCacheKey(gatewayOrderID)); err == nil {
		var cached models.PaymentOrder
		if jerr := json.Unmarshal(raw, &cached); jerr == nil {
			utils.LogDebug("Payment order cache hit - Gateway Order ID: %s", gatewayOrderID)
			return &cached, nil
		}
		utils.LogWarn("Corrupt payment order cache entry for %s, bypassing", gatewayOrderID)
	} else if err != cache.ErrNotFound {
		utils.LogWarn("Payment order cache read failed for %s, bypassing: %v", gatewayOrderID, err)
	}

	order, err := s.orders.ByGatewayOrderID(ctx, gatewayOrderID)
	if err == ErrNoRows {
		return nil, utils.NotFoundErr("Payment order not found")
	}
	if err != nil {
		return nil, utils.TransientErr("Failed to load payment order", err)
	}

	s.cacheOrder(ctx, order)
	return order, nil
}

// MarkPaid flips the payment order to paid and drops its cache entry.
func (s *PaymentOrderService) MarkPaid(ctx context.Context, gatewayOrderID string) error {
	if err := s.orders.SetStatus(ctx, gatewayOrderID, models.PaymentOrderStatusPaid); err != nil {
		return err
	}
	s.invalidate(ctx, gatewayOrderID)
	return nil
}

// Invalidate drops the cache entry for a gateway order id.
func (s *PaymentOrderService) Invalidate(ctx context.Context, gatewayOrderID string) {
	s.invalidate(ctx, gatewayOrderID)
}

func (s *PaymentOrderService) cacheOrder(ctx context.Context, order *models.PaymentOrder) {
	raw, err := json.Marshal(order)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, paymentOrderCacheKey(order.GatewayOrderID), raw, paymentOrderCacheTTL); err != nil {
		utils.LogWarn("Failed to cache payment order %s: %v", order.GatewayOrderID, err)
	}
}

func (s *PaymentOrderService) invalidate(ctx context.Context, gatewayOrderID string) {
	if err := s.store.Delete(ctx, paymentOrderCacheKey(gatewayOrderID)); err != nil {
		utils.LogWarn("Failed to invalidate payment order cache %s: %v", gatewayOrderID, err)
	}
}

// generateReceipt builds receipt_{epochMillis}_{randomSuffix}.
func generateReceipt() string {
	suffix := strings.Split(uuid.New().String(), "-")[0]
	return fmt.Sprintf("receipt_%d_%s", time.Now().UnixMilli(), suffix)
}
