package main

import (
	"log"

	"github.com/Govind-619/CampusDine/cache"
	"github.com/Govind-619/CampusDine/config"
	"github.com/Govind-619/CampusDine/controllers"
	"github.com/Govind-619/CampusDine/gateway"
	"github.com/Govind-619/CampusDine/repository"
	"github.com/Govind-619/CampusDine/routes"
	"github.com/Govind-619/CampusDine/services"
	"github.com/Govind-619/CampusDine/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.LogError("Error connecting to database: %v", err)
		log.Fatal("Error connecting to database:", err)
	}

	// Initialize Redis backed TTL store
	redisClient, err := config.InitRedis(cfg)
	if err != nil {
		utils.LogError("Error connecting to Redis: %v", err)
		log.Fatal("Error connecting to Redis:", err)
	}
	store := cache.NewRedisStore(redisClient)

	// Repositories
	users := repository.NewUserRepository(db)
	paymentOrders := repository.NewPaymentOrderRepository(db)
	txns := repository.NewTransactionRepository(db)
	refundRows := repository.NewRefundRepository(db)
	orders := repository.NewOrderRepository(db)
	events := repository.NewWebhookEventRepository(db)
	plans := repository.NewPlanRepository(db)
	subRows := repository.NewSubscriptionRepository(db)

	// Gateway client and notifier
	gw := gateway.NewRazorpayClient(cfg.RazorpayKey, cfg.RazorpaySecret)
	notifier := utils.NewEmailNotifier(utils.EmailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	// Services
	idem := services.NewIdempotencyService(store)
	states := services.NewOrderStateMachine(orders, notifier)
	paymentOrderSvc := services.NewPaymentOrderService(gw, paymentOrders, users, store, cfg.MinPaymentAmount)
	captureSvc := services.NewCaptureService(gw, paymentOrderSvc, txns, users, states, notifier, []byte(cfg.RazorpaySecret))
	refundSvc := services.NewRefundService(gw, txns, refundRows)
	webhookSvc := services.NewWebhookService(idem, txns, refundRows, subRows, events, paymentOrders, users, notifier, []byte(cfg.WebhookSecret))
	subSvc := services.NewSubscriptionService(gw, plans, subRows, users)

	// Background sweep for expired payment intents
	sweeper := services.NewExpirySweeper(paymentOrders, store)
	if err := sweeper.Start(); err != nil {
		utils.LogError("Failed to start expiry sweeper: %v", err)
		log.Fatal("Failed to start expiry sweeper:", err)
	}
	defer sweeper.Stop()

	// Set up router
	router := routes.SetupRouter(routes.Deps{
		PaymentOrders: controllers.NewPaymentOrderController(paymentOrderSvc),
		Captures:      controllers.NewPaymentCaptureController(captureSvc),
		Refunds:       controllers.NewRefundController(refundSvc),
		Webhooks:      controllers.NewWebhookController(webhookSvc),
		Orders:        controllers.NewOrderController(orders, states, refundSvc),
		Subscriptions: controllers.NewSubscriptionController(subSvc),
		Receipts:      controllers.NewPaymentReceiptController(txns, paymentOrders, users),
		Idempotency:   idem,
		Users:         users,
		JWTSecret:     cfg.JWTSecret,
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	utils.LogInfo("Server starting on port %s", port)
	// Start server
	if err := router.Run(":" + port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
