package featureValidator

import (
	"lms/middleware"
	"lms/models"

	"github.com/gofiber/fiber/v2"
)

var knownRoles = map[string]bool{
	models.RoleStudent:    true,
	models.RoleInstructor: true,
	models.RoleAdmin:      true,
}

// SetRoleFeaturesRequest is the validated feature-flag update body
type SetRoleFeaturesRequest struct {
	Features []string `json:"features"`
}

// RoleParam rejects unknown roles in the :role path param
func RoleParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := c.Params("role")
		if !knownRoles[role] {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unknown role!", nil)
		}
		return c.Next()
	}
}

// SetRoleFeatures validates the feature replacement body
func SetRoleFeatures() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SetRoleFeaturesRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.Features == nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"features": "features list is required"})
		}
		c.Locals("validatedFeatures", reqData)
		return c.Next()
	}
}
