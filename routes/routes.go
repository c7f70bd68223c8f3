package routes

import (
	"net/http"

	"github.com/Govind-619/CampusDine/controllers"
	"github.com/Govind-619/CampusDine/middleware"
	"github.com/Govind-619/CampusDine/services"
	"github.com/Govind-619/CampusDine/utils"
	"github.com/gin-gonic/gin"
)

// Deps carries the wired controllers and middleware collaborators into the
// router. main builds this once at startup.
type Deps struct {
	PaymentOrders *controllers.PaymentOrderController
	Captures      *controllers.PaymentCaptureController
	Refunds       *controllers.RefundController
	Webhooks      *controllers.WebhookController
	Orders        *controllers.OrderController
	Subscriptions *controllers.SubscriptionController
	Receipts      *controllers.PaymentReceiptController
	Idempotency   *services.IdempotencyService
	Users         services.UserRepo
	JWTSecret     string
}

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(
		utils.RequestIDMiddleware(),
		utils.LoggerMiddleware(),
		utils.RecoveryMiddleware(),
		utils.CORSMiddleware(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Webhook deliveries authenticate via HMAC signature, not JWT.
	router.POST("/webhooks/payment", deps.Webhooks.Receive)

	idem := middleware.IdempotencyMiddleware(deps.Idempotency)

	// API version group
	api := router.Group("/v1")
	api.Use(middleware.AuthMiddleware(deps.Users, deps.JWTSecret))
	{
		api.POST("/payment-orders", deps.PaymentOrders.Create)
		api.GET("/payment-orders/:gatewayOrderId", deps.PaymentOrders.Get)

		api.POST("/payments/capture", idem, deps.Captures.Capture)
		api.GET("/payments/:gatewayPaymentId/receipt", deps.Receipts.Download)

		api.POST("/refunds", idem, deps.Refunds.Create)

		api.GET("/orders/:id", deps.Orders.Get)
		api.PATCH("/orders/:id/status", deps.Orders.UpdateStatus)
		api.POST("/orders/:id/cancel", deps.Orders.Cancel)

		api.POST("/plans", deps.Subscriptions.CreatePlan)
		api.POST("/subscriptions", deps.Subscriptions.CreateSubscription)
	}

	return router
}
