package controllers

import (
	"strconv"

	"github.com/Govind-619/CampusDine/models"
	"github.com/Govind-619/CampusDine/services"
	"github.com/Govind-619/CampusDine/utils"
	"github.com/gin-gonic/gin"
)

// OrderController exposes canteen order lookup, status transitions and
// cancellation.
type OrderController struct {
	orders  services.OrderRepo
	states  *services.OrderStateMachine
	refunds *services.RefundService
}

// NewOrderController creates an OrderController.
func NewOrderController(orders services.OrderRepo, states *services.OrderStateMachine, refunds *services.RefundService) *OrderController {
	return &OrderController{orders: orders, states: states, refunds: refunds}
}

func (ctl *OrderController) orderID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.LogError("Invalid order ID format: %v", err)
		utils.BadRequest(c, "Invalid order ID", nil)
		return 0, false
	}
	return uint(id), true
}

// Get handles GET /orders/:id
func (ctl *OrderController) Get(c *gin.Context) {
	id, ok := ctl.orderID(c)
	if !ok {
		return
	}
	utils.LogInfo("GetOrder called - Order ID: %d", id)

	order, err := ctl.orders.ByID(c.Request.Context(), id)
	if err == services.ErrNoRows {
		utils.NotFound(c, "Order not found")
		return
	}
	if err != nil {
		utils.LogError("Failed to load order ID: %d: %v", id, err)
		utils.InternalServerError(c, "Failed to load order", nil)
		return
	}

	utils.Success(c, "Order retrieved", gin.H{
		"order": order,
	})
}

// UpdateStatus handles PATCH /orders/:id/status. Cancellation goes through
// Cancel instead so the refund side effect runs.
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := ctl.orderID(c)
	if !ok {
		return
	}
	utils.LogInfo("UpdateOrderStatus called - Order ID: %d", id)

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid status update request for order ID: %d: %v", id, err)
		utils.BadRequest(c, "Invalid request. status is required", err.Error())
		return
	}

	if !services.ValidStatus(req.Status) {
		utils.BadRequest(c, "Unknown order status: "+req.Status, nil)
		return
	}
	if req.Status == models.OrderStatusCancelled {
		utils.BadRequest(c, "Use the cancel endpoint to cancel an order", nil)
		return
	}

	order, appErr := ctl.states.Transition(c.Request.Context(), id, req.Status)
	if appErr != nil {
		utils.RespondAppError(c, appErr)
		return
	}

	utils.LogInfo("Order status updated - Order ID: %d, status: %s", order.ID, order.Status)
	utils.Success(c, "Order status updated", gin.H{
		"order": order,
	})
}

// Cancel handles POST /orders/:id/cancel. The transition is applied first;
// only a cancellation that actually landed triggers the refund.
func (ctl *OrderController) Cancel(c *gin.Context) {
	id, ok := ctl.orderID(c)
	if !ok {
		return
	}
	utils.LogInfo("CancelOrder called - Order ID: %d", id)

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.LogError("Invalid cancel request for order ID: %d: %v", id, err)
		utils.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	order, appErr := ctl.states.Transition(c.Request.Context(), id, models.OrderStatusCancelled)
	if appErr != nil {
		utils.RespondAppError(c, appErr)
		return
	}

	if req.Reason != "" {
		if err := ctl.orders.SetCancellationReason(c.Request.Context(), id, req.Reason); err != nil {
			utils.LogError("Failed to record cancellation reason for order ID: %d: %v", id, err)
		} else {
			order.CancellationReason = req.Reason
		}
	}

	refund, refundErr := ctl.refunds.RefundForOrder(c.Request.Context(), id, req.Reason)
	if refundErr != nil {
		// The order stays cancelled. The refund goes to reconciliation
		// rather than failing the cancellation the student already got.
		utils.LogError("Refund failed after cancelling order ID: %d, flagged for reconciliation: %v", id, refundErr)
		utils.Success(c, "Order cancelled; refund pending reconciliation", gin.H{
			"order": order,
		})
		return
	}

	data := gin.H{"order": order}
	if refund != nil {
		data["refund"] = refund
		utils.LogInfo("Refund initiated for cancelled order ID: %d - Gateway Refund ID: %s", id, refund.GatewayRefundID)
	}
	utils.Success(c, "Order cancelled", data)
}
