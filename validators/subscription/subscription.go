package subscriptionValidator

import (
	"lms/middleware"
	"lms/models"

	"github.com/gofiber/fiber/v2"
)

// SubscribeRequest is the validated subscribe body
type SubscribeRequest struct {
	Plan string `json:"plan"`
}

// Subscribe validates the plan choice
func Subscribe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubscribeRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.Plan == "" {
			reqData.Plan = models.PlanMonthly
		}
		if reqData.Plan != models.PlanMonthly && reqData.Plan != models.PlanYearly {
			return middleware.ValidationErrorResponse(c, map[string]string{"plan": "plan must be MONTHLY or YEARLY"})
		}
		c.Locals("validatedSubscribe", reqData)
		return c.Next()
	}
}
