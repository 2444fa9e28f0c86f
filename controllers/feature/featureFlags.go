package featureController

import (
	"lms/features"
	"lms/middleware"
	featureValidator "lms/validators/feature"

	"github.com/gofiber/fiber/v2"
)

// Registry is the process-wide feature table. Set once from main.
var Registry *features.Registry

// InitRegistry wires the feature registry into this package
func InitRegistry(r *features.Registry) {
	Registry = r
}

// GetRoleFeatures returns the enabled feature set for a role
func GetRoleFeatures(c *fiber.Ctx) error {
	role := c.Params("role")
	feats := Registry.RoleFeatures(role)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role features fetched!", fiber.Map{
		"role":     role,
		"features": feats,
	})
}

// SetRoleFeatures replaces a role's enabled feature set (last-writer-wins)
func SetRoleFeatures(c *fiber.Ctx) error {
	role := c.Params("role")

	reqData, ok := c.Locals("validatedFeatures").(*featureValidator.SetRoleFeaturesRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := Registry.SetRoleFeatures(role, reqData.Features); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update role features!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role features updated successfully!", fiber.Map{
		"role":     role,
		"features": Registry.RoleFeatures(role),
	})
}

// CheckFeature reports whether a single feature is enabled for a role
func CheckFeature(c *fiber.Ctx) error {
	role := c.Params("role")
	feature := c.Query("feature")
	if feature == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Missing feature query param!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Feature checked!", fiber.Map{
		"role":    role,
		"feature": feature,
		"enabled": Registry.IsEnabled(role, feature),
	})
}
