package paymentRoutes

import (
	paymentControllers "lms/controllers/payment"
	"lms/guards"
	"lms/middleware"
	paymentValidators "lms/validators/payment"

	"github.com/gofiber/fiber/v2"
)

// SetupPaymentRoutes sets up payment webhook and verification routes.
// The webhook endpoint is unauthenticated; the HMAC signature on the raw
// body is its only credential.
func SetupPaymentRoutes(app *fiber.App) {
	paymentGroup := app.Group("/payment")

	paymentGroup.Post("/webhook", paymentControllers.HandleWebhook)
	paymentGroup.Post("/verify", middleware.JWTMiddleware,
		middleware.Protect(guards.Chain{guards.Authenticated{}}),
		paymentValidators.VerifyPayment(), paymentControllers.VerifyPayment)
}
