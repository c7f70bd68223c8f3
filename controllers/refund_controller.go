package controllers

import (
	"github.com/Govind-619/CampusDine/services"
	"github.com/Govind-619/CampusDine/utils"
	"github.com/gin-gonic/gin"
)

// RefundController exposes refund creation against captured payments.
type RefundController struct {
	refunds *services.RefundService
}

// NewRefundController creates a RefundController.
func NewRefundController(refunds *services.RefundService) *RefundController {
	return &RefundController{refunds: refunds}
}

// Create handles POST /refunds. Omitting amount refunds the full captured
// amount; partial refunds may repeat until the captured total is exhausted.
func (ctl *RefundController) Create(c *gin.Context) {
	utils.LogInfo("CreateRefund called")

	var req struct {
		GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
		Amount           int64  `json:"amount"`
		Reason           string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid refund request: %v", err)
		utils.BadRequest(c, "Invalid request. gateway_payment_id is required", err.Error())
		return
	}

	refund, appErr := ctl.refunds.CreateRefund(c.Request.Context(), req.GatewayPaymentID, req.Amount, req.Reason)
	if appErr != nil {
		utils.RespondAppError(c, appErr)
		return
	}

	utils.LogInfo("Refund created - Gateway Refund ID: %s, amount: %d", refund.GatewayRefundID, refund.Amount)
	utils.Success(c, "Refund initiated", gin.H{
		"refund": refund,
	})
}
