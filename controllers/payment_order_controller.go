package controllers

import (
	"github.com/Govind-619/CampusDine/models"
	"github.com/Govind-619/CampusDine/services"
	"github.com/Govind-619/CampusDine/utils"
	"github.com/gin-gonic/gin"
)

// PaymentOrderController exposes payment intent creation and lookup.
type PaymentOrderController struct {
	payments *services.PaymentOrderService
}

// NewPaymentOrderController creates a PaymentOrderController.
func NewPaymentOrderController(payments *services.PaymentOrderService) *PaymentOrderController {
	return &PaymentOrderController{payments: payments}
}

// Create handles POST /payment-orders
func (ctl *PaymentOrderController) Create(c *gin.Context) {
	utils.LogInfo("CreatePaymentOrder called")

	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		Amount   int64                  `json:"amount" binding:"required"`
		Currency string                 `json:"currency"`
		Receipt  string                 `json:"receipt"`
		OrderID  *uint                  `json:"order_id"`
		Notes    map[string]interface{} `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid payment order request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Invalid request. amount is required", err.Error())
		return
	}

	order, appErr := ctl.payments.Create(c.Request.Context(), services.CreateParams{
		UserID:   user.ID,
		OrderID:  req.OrderID,
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if appErr != nil {
		utils.RespondAppError(c, appErr)
		return
	}

	utils.LogInfo("Payment order created - Gateway Order ID: %s, user ID: %d", order.GatewayOrderID, user.ID)
	utils.Success(c, "Payment order created", gin.H{
		"payment_order": order,
	})
}

// Get handles GET /payment-orders/:gatewayOrderId
func (ctl *PaymentOrderController) Get(c *gin.Context) {
	gatewayOrderID := c.Param("gatewayOrderId")
	utils.LogInfo("GetPaymentOrder called - Gateway Order ID: %s", gatewayOrderID)

	if gatewayOrderID == "" {
		utils.BadRequest(c, "Gateway order id is required", nil)
		return
	}

	order, appErr := ctl.payments.Get(c.Request.Context(), gatewayOrderID)
	if appErr != nil {
		utils.RespondAppError(c, appErr)
		return
	}

	utils.Success(c, "Payment order retrieved", gin.H{
		"payment_order": order,
	})
}
