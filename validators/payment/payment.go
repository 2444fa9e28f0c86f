package paymentValidator

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// VerifyPaymentRequest is the validated manual-verification body
type VerifyPaymentRequest struct {
	CheckoutRef string `json:"checkout_ref"`
	AmountCents uint   `json:"amount_cents"`
}

// VerifyPayment validates the manual payment-verification body
func VerifyPayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(VerifyPaymentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.CheckoutRef == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"checkout_ref": "checkout_ref is required"})
		}
		c.Locals("validatedVerifyPayment", reqData)
		return c.Next()
	}
}
