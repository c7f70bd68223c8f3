package services

import (
	"context"

	"github.com/Govind-619/CampusDine/gateway"
	"github.com/Govind-619/CampusDine/models"
	"github.com/Govind-619/CampusDine/utils"
)

// SubscriptionService creates recurring-billing plans and subscriptions on
// the gateway (meal plans). Charge settlement arrives via the
// subscription.charged webhook.
type SubscriptionService struct {
	gw    gateway.Client
	plans PlanRepo
	subs  SubscriptionRepo
	users UserRepo
}

// NewSubscriptionService creates a SubscriptionService.
func NewSubscriptionService(gw gateway.Client, plans PlanRepo, subs SubscriptionRepo, users UserRepo) *SubscriptionService {
	return &SubscriptionService{gw: gw, plans: plans, subs: subs, users: users}
}

// CreatePlan creates a plan on the gateway and mirrors it locally. The
// remote create happens first; a gateway failure leaves no local row.
func (s *SubscriptionService) CreatePlan(ctx context.Context, period string, interval int, name string, amount int64, currency string) (*models.Plan, *utils.AppError) {
	utils.LogInfo("Creating plan %q - period: %s, amount: %d", name, period, amount)

	if amount <= 0 {
		return nil, utils.ValidationFailed("Plan amount must be positive", nil)
	}
	switch period {
	case "daily", "weekly", "monthly", "yearly":
	default:
		return nil, utils.ValidationFailed("Plan period must be daily, weekly, monthly or yearly", nil)
	}
	if interval <= 0 {
		interval = 1
	}
	if currency == "" {
		currency = DefaultCurrency
	}

	remote, gerr := s.gw.CreatePlan(ctx, period, interval, name, amount, currency)
	if gerr != nil {
		utils.LogError("Gateway plan creation failed: %v", gerr)
		if gateway.IsUnknown(gerr) {
			return nil, utils.UnknownOutcome("Plan creation did not resolve", gerr)
		}
		return nil, utils.GatewayFailed("Failed to create gateway plan", gerr)
	}

	plan := &models.Plan{
		GatewayPlanID: remote.ID,
		Name:          name,
		Period:        period,
		Interval:      interval,
		Amount:        amount,
		Currency:      currency,
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		utils.LogError("ORPHANED gateway plan %s: local insert failed: %v", remote.ID, err)
		return nil, utils.TransientErr("Failed to persist plan", err)
	}
	utils.LogInfo("Plan created - ID: %d, Gateway Plan ID: %s", plan.ID, plan.GatewayPlanID)
	return plan, nil
}

// CreateSubscription subscribes a user to a plan on the gateway.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, userID uint, gatewayPlanID string, totalCount int, notes map[string]interface{}) (*models.Subscription, *utils.AppError) {
	utils.LogInfo("Creating subscription - User ID: %d, plan: %s", userID, gatewayPlanID)

	if totalCount <= 0 {
		return nil, utils.ValidationFailed("Subscription total_count must be positive", nil)
	}

	user, err := s.users.ByID(ctx, userID)
	if err == ErrNoRows {
		return nil, utils.NotFoundErr("User not found")
	}
	if err != nil {
		return nil, utils.TransientErr("Failed to resolve user", err)
	}
	if user.IsBlocked {
		return nil, utils.ValidationFailed("User is blocked", nil)
	}

	plan, err := s.plans.ByGatewayPlanID(ctx, gatewayPlanID)
	if err == ErrNoRows {
		return nil, utils.NotFoundErr("Plan not found")
	}
	if err != nil {
		return nil, utils.TransientErr("Failed to load plan", err)
	}

	remote, gerr := s.gw.CreateSubscription(ctx, gatewayPlanID, totalCount, notes)
	if gerr != nil {
		utils.LogError("Gateway subscription creation failed - User ID: %d: %v", userID, gerr)
		if gateway.IsUnknown(gerr) {
			return nil, utils.UnknownOutcome("Subscription creation did not resolve", gerr)
		}
		return nil, utils.GatewayFailed("Failed to create gateway subscription", gerr)
	}

	sub := &models.Subscription{
		GatewaySubscriptionID: remote.ID,
		PlanID:                plan.ID,
		UserID:                userID,
		Status:                models.SubscriptionStatusCreated,
		TotalCount:            totalCount,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		utils.LogError("ORPHANED gateway subscription %s: local insert failed: %v", remote.ID, err)
		return nil, utils.TransientErr("Failed to persist subscription", err)
	}
	utils.LogInfo("Subscription created - ID: %d, Gateway Subscription ID: %s", sub.ID, sub.GatewaySubscriptionID)
	return sub, nil
}
