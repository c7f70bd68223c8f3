package services

import (
	"context"
	"fmt"

	"github.com/Govind-619/CampusDine/models"
	"github.com/Govind-619/CampusDine/utils"
)

// orderTransitions is the full lifecycle: pending -> confirmed -> preparing
// -> ready -> delivered -> completed, with cancellation allowed only until
// the kitchen marks the order ready.
var orderTransitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed: {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing: {models.OrderStatusReady, models.OrderStatusCancelled},
	models.OrderStatusReady:     {models.OrderStatusDelivered},
	models.OrderStatusDelivered: {models.OrderStatusCompleted},
	models.OrderStatusCompleted: {},
	models.OrderStatusCancelled: {},
}

// OrderStateMachine owns the order status column. All status writes in the
// system go through Transition.
type OrderStateMachine struct {
	orders   OrderRepo
	notifier Notifier
}

// NewOrderStateMachine creates an OrderStateMachine.
func NewOrderStateMachine(orders OrderRepo, notifier Notifier) *OrderStateMachine {
	return &OrderStateMachine{orders: orders, notifier: notifier}
}

// CanTransition reports whether target is reachable from current in one
// step.
func CanTransition(current, target string) bool {
	for _, allowed := range orderTransitions[current] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	_, ok := orderTransitions[s]
	return ok
}

// Transition moves the order to target, failing with a state conflict when
// target is not reachable from the order's current status. The write is a
// compare-and-set so two racing transitions cannot both win.
func (m *OrderStateMachine) Transition(ctx context.Context, orderID uint, target string) (*models.Order, *utils.AppError) {
	utils.LogInfo("Order transition requested - Order ID: %d, target: %s", orderID, target)

	if !ValidStatus(target) {
		return nil, utils.ValidationFailed(fmt.Sprintf("Unknown order status %q", target), nil)
	}

	order, err := m.orders.ByID(ctx, orderID)
	if err == ErrNoRows {
		utils.LogError("Order not found for transition - Order ID: %d", orderID)
		return nil, utils.NotFoundErr("Order not found")
	}
	if err != nil {
		return nil, utils.TransientErr("Failed to load order", err)
	}

	current := order.Status
	if !CanTransition(current, target) {
		utils.LogWarn("Invalid order transition - Order ID: %d, %s -> %s", orderID, current, target)
		return nil, utils.StateConflict(fmt.Sprintf("Invalid transition from %s to %s", current, target))
	}

	applied, err := m.orders.CompareAndSetStatus(ctx, orderID, current, target)
	if err != nil {
		return nil, utils.TransientErr("Failed to update order status", err)
	}
	if !applied {
		// Someone else moved the order first. Report the conflict with the
		// state we lost to.
		fresh, ferr := m.orders.ByID(ctx, orderID)
		currentNow := "unknown"
		if ferr == nil {
			currentNow = fresh.Status
		}
		utils.LogWarn("Order transition lost race - Order ID: %d, now %s", orderID, currentNow)
		return nil, utils.StateConflict(fmt.Sprintf("Invalid transition from %s to %s", currentNow, target))
	}

	order.Status = target
	utils.LogInfo("Order transitioned - Order ID: %d, %s -> %s", orderID, current, target)

	// Notification failures never unwind a committed transition.
	if m.notifier != nil {
		if nerr := m.notifier.OrderStatusChanged(order, current); nerr != nil {
			utils.LogError("Failed to send order status notification - Order ID: %d: %v", orderID, nerr)
		}
	}

	return order, nil
}
