package paymentController

import (
	"errors"
	"log"

	"lms/config"
	"lms/database"
	"lms/lifecycle"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/payments"
	"lms/utils"
	paymentValidator "lms/validators/payment"

	"github.com/gofiber/fiber/v2"
)

// Lifecycle drives enrollment/payment transitions. Set once from main.
var Lifecycle *lifecycle.Service

// InitLifecycle wires the enrollment state machine into this package
func InitLifecycle(s *lifecycle.Service) {
	Lifecycle = s
}

// HandleWebhook receives payment-confirmation events from the provider. The
// signature is verified against the raw, unparsed body before anything is
// decoded; a bad signature gets a generic rejection with no state change.
func HandleWebhook(c *fiber.Ctx) error {
	rawBody := c.Body()
	signature := c.Get("X-Webhook-Signature")

	if signature == "" || !payments.VerifySignature(config.AppConfig.WebhookSecret, rawBody, signature) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Webhook rejected!", nil)
	}

	event, err := payments.DecodeEvent(rawBody)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid webhook payload!", nil)
	}

	if event.Type != payments.EventPaymentConfirmed {
		// Unknown event types are acknowledged and ignored
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Event ignored.", nil)
	}

	enrollment, err := Lifecycle.ConfirmPayment(event.CheckoutRef, event.AmountCents)
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Unknown checkout reference!", nil)
	case errors.Is(err, lifecycle.ErrPaymentMismatch):
		log.Printf("[WEBHOOK] Amount mismatch for %s: got %d", event.CheckoutRef, event.AmountCents)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment rejected, enrollment failed.", enrollment)
	case errors.Is(err, lifecycle.ErrConflictingTransition):
		// Duplicate delivery racing another confirmation: already handled
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Already processed.", enrollment)
	case err != nil:
		log.Printf("[WEBHOOK] Confirmation error for %s: %v", event.CheckoutRef, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process webhook!", nil)
	}

	notifyActivation(enrollment)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment confirmed.", enrollment)
}

// VerifyPayment is the authenticated manual-verification path: the payer
// submits the checkout reference and paid amount, and the same idempotent
// confirmation logic runs.
func VerifyPayment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedVerifyPayment").(*paymentValidator.VerifyPaymentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Only the enrollment's owner may verify it manually
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.
		Where("checkout_ref = ? AND is_deleted = false", reqData.CheckoutRef).
		First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Unknown checkout reference!", nil)
	}
	if enrollment.UserID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this enrollment!", nil)
	}

	result, err := Lifecycle.ConfirmPayment(reqData.CheckoutRef, reqData.AmountCents)
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Unknown checkout reference!", nil)
	case errors.Is(err, lifecycle.ErrPaymentMismatch):
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Payment amount mismatch!", result)
	case errors.Is(err, lifecycle.ErrConflictingTransition):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Enrollment is not pending!", result)
	case err != nil:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify payment!", nil)
	}

	notifyActivation(result)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment verified!", result)
}

// notifyActivation emails the student once the enrollment turns ACTIVE.
func notifyActivation(e *courseModels.Enrollment) {
	if e == nil || e.Status != courseModels.EnrollmentActive {
		return
	}
	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ?", e.UserID).First(&user).Error; err != nil {
		log.Printf("[WEBHOOK] Could not load user %d for confirmation email: %v", e.UserID, err)
		return
	}
	var course courseModels.Course
	if err := db.Where("id = ?", e.CourseID).First(&course).Error; err != nil {
		log.Printf("[WEBHOOK] Could not load course %d for confirmation email: %v", e.CourseID, err)
		return
	}

	go utils.SendEnrollmentConfirmation(user.Email, user.Name, course.Title)
}
