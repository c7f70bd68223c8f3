package controllers

import (
	"github.com/Govind-619/CampusDine/services"
	"github.com/Govind-619/CampusDine/utils"
	"github.com/gin-gonic/gin"
)

// PaymentCaptureController finalizes checkout payments.
type PaymentCaptureController struct {
	captures *services.CaptureService
}

// NewPaymentCaptureController creates a PaymentCaptureController.
func NewPaymentCaptureController(captures *services.CaptureService) *PaymentCaptureController {
	return &PaymentCaptureController{captures: captures}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Capture handles POST /payments/capture. The client posts back the ids and
// signature it received from the gateway checkout; both the checkout's
// razorpay_* field names and the plain gatewayOrderId / gatewayPaymentId /
// signature spellings are accepted. The signature is checked before
// anything else happens.
func (ctl *PaymentCaptureController) Capture(c *gin.Context) {
	utils.LogInfo("CapturePayment called")

	var req struct {
		GatewayOrderID    string `json:"gatewayOrderId"`
		GatewayPaymentID  string `json:"gatewayPaymentId"`
		Signature         string `json:"signature"`
		RazorpayOrderID   string `json:"razorpay_order_id"`
		RazorpayPaymentID string `json:"razorpay_payment_id"`
		RazorpaySignature string `json:"razorpay_signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid capture request: %v", err)
		utils.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	orderID := firstNonEmpty(req.GatewayOrderID, req.RazorpayOrderID)
	paymentID := firstNonEmpty(req.GatewayPaymentID, req.RazorpayPaymentID)
	signature := firstNonEmpty(req.Signature, req.RazorpaySignature)
	if orderID == "" || paymentID == "" || signature == "" {
		utils.BadRequest(c, "Invalid request. Order id, payment id and signature are required", nil)
		return
	}
	utils.LogInfo("Processing capture - Gateway Order ID: %s, Payment ID: %s", orderID, paymentID)

	txn, appErr := ctl.captures.Capture(c.Request.Context(), orderID, paymentID, signature)
	if appErr != nil {
		utils.RespondAppError(c, appErr)
		return
	}

	utils.LogInfo("Payment captured - Payment ID: %s, status: %s", txn.GatewayPaymentID, txn.Status)
	utils.Success(c, "Payment captured", gin.H{
		"transaction": txn,
	})
}
