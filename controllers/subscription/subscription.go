package subscriptionController

import (
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	subscriptionValidator "lms/validators/subscription"

	"github.com/gofiber/fiber/v2"
)

// Subscribe creates an ACTIVE subscription for the caller
func Subscribe(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedSubscribe").(*subscriptionValidator.SubscribeRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// One live subscription per user
	var existing models.Subscription
	if err := db.Where("user_id = ? AND status = ? AND is_deleted = false",
		userID, models.SubscriptionActive).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You already have an active subscription!", existing)
	}

	now := time.Now()
	expiresAt := now.AddDate(0, 1, 0)
	if reqData.Plan == models.PlanYearly {
		expiresAt = now.AddDate(1, 0, 0)
	}

	sub := models.Subscription{
		UserID:       userID,
		Plan:         reqData.Plan,
		Status:       models.SubscriptionActive,
		SubscribedAt: now,
		ExpiresAt:    &expiresAt,
	}

	if err := db.Create(&sub).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create subscription!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Subscribed successfully!", sub)
}

// CancelSubscription cancels the caller's active subscription
func CancelSubscription(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	// Conditional update so a concurrent cancel/expiry applies only once
	res := db.Model(&models.Subscription{}).
		Where("user_id = ? AND status = ? AND is_deleted = false", userID, models.SubscriptionActive).
		Update("status", models.SubscriptionCancelled)
	if res.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to cancel subscription!", nil)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No active subscription found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription cancelled!", nil)
}

// GetMySubscription returns the caller's most recent subscription
func GetMySubscription(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var sub models.Subscription
	if err := database.Database.Db.
		Where("user_id = ? AND is_deleted = false", userID).
		Order("created_at desc").First(&sub).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No subscription found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription fetched!", sub)
}
