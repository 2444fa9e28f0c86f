package featureRoutes

import (
	featureControllers "lms/controllers/feature"
	"lms/features"
	"lms/guards"
	"lms/middleware"
	"lms/models"
	featureValidators "lms/validators/feature"

	"github.com/gofiber/fiber/v2"
)

// SetupFeatureRoutes sets up feature flag administration routes.
func SetupFeatureRoutes(app *fiber.App, registry *features.Registry) {
	manageFlags := guards.Chain{
		guards.Authenticated{},
		guards.HasRole{Allowed: []string{models.RoleAdmin}},
		guards.HasFeature{Registry: registry, Feature: models.FeatureManageFeatureFlags},
	}

	app.Get("/feature-flags/check/:role", middleware.JWTMiddleware,
		middleware.Protect(guards.Chain{guards.Authenticated{}}),
		featureValidators.RoleParam(), featureControllers.CheckFeature)

	adminGroup := app.Group("/admin/feature-flags")
	adminGroup.Get("/role/:role", middleware.JWTMiddleware, middleware.Protect(manageFlags),
		featureValidators.RoleParam(), featureControllers.GetRoleFeatures)
	adminGroup.Post("/role/:role", middleware.JWTMiddleware, middleware.Protect(manageFlags),
		featureValidators.RoleParam(), featureValidators.SetRoleFeatures(), featureControllers.SetRoleFeatures)
}
