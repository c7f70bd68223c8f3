package controllers

import (
	"github.com/Govind-619/CampusDine/models"
	"github.com/Govind-619/CampusDine/services"
	"github.com/Govind-619/CampusDine/utils"
	"github.com/gin-gonic/gin"
)

// SubscriptionController exposes meal plan and subscription creation.
type SubscriptionController struct {
	subs *services.SubscriptionService
}

// NewSubscriptionController creates a SubscriptionController.
func NewSubscriptionController(subs *services.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{subs: subs}
}

// CreatePlan handles POST /plans
func (ctl *SubscriptionController) CreatePlan(c *gin.Context) {
	utils.LogInfo("CreatePlan called")

	var req struct {
		Period   string `json:"period" binding:"required"`
		Interval int    `json:"interval" binding:"required"`
		Name     string `json:"name" binding:"required"`
		Amount   int64  `json:"amount" binding:"required"`
		Currency string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid plan request: %v", err)
		utils.BadRequest(c, "Invalid request. period, interval, name and amount are required", err.Error())
		return
	}

	plan, appErr := ctl.subs.CreatePlan(c.Request.Context(), req.Period, req.Interval, req.Name, req.Amount, req.Currency)
	if appErr != nil {
		utils.RespondAppError(c, appErr)
		return
	}

	utils.LogInfo("Plan created - Gateway Plan ID: %s", plan.GatewayPlanID)
	utils.Created(c, "Plan created", gin.H{
		"plan": plan,
	})
}

// CreateSubscription handles POST /subscriptions
func (ctl *SubscriptionController) CreateSubscription(c *gin.Context) {
	utils.LogInfo("CreateSubscription called")

	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		PlanID     string                 `json:"plan_id" binding:"required"`
		TotalCount int                    `json:"total_count" binding:"required"`
		Notes      map[string]interface{} `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid subscription request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Invalid request. plan_id and total_count are required", err.Error())
		return
	}

	sub, appErr := ctl.subs.CreateSubscription(c.Request.Context(), user.ID, req.PlanID, req.TotalCount, req.Notes)
	if appErr != nil {
		utils.RespondAppError(c, appErr)
		return
	}

	utils.LogInfo("Subscription created - Gateway Subscription ID: %s, user ID: %d", sub.GatewaySubscriptionID, user.ID)
	utils.Created(c, "Subscription created", gin.H{
		"subscription": sub,
	})
}
