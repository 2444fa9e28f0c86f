package subscriptionRoutes

import (
	subscriptionControllers "lms/controllers/subscription"
	"lms/guards"
	"lms/middleware"
	subscriptionValidators "lms/validators/subscription"

	"github.com/gofiber/fiber/v2"
)

// SetupSubscriptionRoutes sets up instructor subscription routes.
func SetupSubscriptionRoutes(app *fiber.App) {
	authenticated := guards.Chain{guards.Authenticated{}}

	subGroup := app.Group("/subscription")

	subGroup.Post("/subscribe", middleware.JWTMiddleware, middleware.Protect(authenticated),
		subscriptionValidators.Subscribe(), subscriptionControllers.Subscribe)
	subGroup.Post("/cancel", middleware.JWTMiddleware, middleware.Protect(authenticated),
		subscriptionControllers.CancelSubscription)
	subGroup.Get("/me", middleware.JWTMiddleware, middleware.Protect(authenticated),
		subscriptionControllers.GetMySubscription)
}
