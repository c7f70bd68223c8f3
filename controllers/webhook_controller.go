package controllers

import (
	"github.com/Govind-619/CampusDine/services"
	"github.com/Govind-619/CampusDine/utils"
	"github.com/gin-gonic/gin"
)

// WebhookController receives gateway webhook deliveries. The route carries no
// user auth; the HMAC signature over the raw body is the authentication.
type WebhookController struct {
	webhooks *services.WebhookService
}

// NewWebhookController creates a WebhookController.
func NewWebhookController(webhooks *services.WebhookService) *WebhookController {
	return &WebhookController{webhooks: webhooks}
}

// Receive handles POST /webhooks/payment. A non-2xx response makes the
// gateway redeliver, so transient failures map to 503 and everything the
// service acknowledged maps to 200.
func (ctl *WebhookController) Receive(c *gin.Context) {
	utils.LogInfo("Webhook received")

	body, err := c.GetRawData()
	if err != nil {
		utils.LogError("Failed to read webhook body: %v", err)
		utils.BadRequest(c, "Failed to read request body", nil)
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	result, appErr := ctl.webhooks.Handle(c.Request.Context(), body, signature)
	if appErr != nil {
		utils.RespondAppError(c, appErr)
		return
	}

	if result.Cached {
		c.Header("X-Idempotency-Cached", "true")
	}
	utils.Success(c, result.Message, gin.H{
		"processed": result.Success,
	})
}
