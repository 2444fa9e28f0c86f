package middleware

import (
	"errors"
	"log"
	"time"

	"lms/guards"

	"github.com/gofiber/fiber/v2"
)

// Protect turns a guard chain into a route middleware. The chain context is
// built from the principal set by JWTMiddleware and the route's resource id
// param (":id" by default; pass idParam to override). Evaluation order is the
// declared guard order and stops at the first denial.
func Protect(chain guards.Chain, idParam ...string) fiber.Handler {
	param := "id"
	if len(idParam) > 0 {
		param = idParam[0]
	}
	return func(c *fiber.Ctx) error {
		gc := &guards.Context{Now: time.Now()}
		if p, ok := c.Locals("principal").(*guards.Principal); ok {
			gc.Principal = p
		}
		if id, err := c.ParamsInt(param, 0); err == nil && id > 0 {
			gc.ResourceID = uint(id)
		}

		if err := chain.Check(gc); err != nil {
			return denyResponse(c, err)
		}
		return c.Next()
	}
}

// denyResponse maps guard errors to client responses. Denial reasons are safe
// to expose; anything outside the taxonomy is logged and masked.
func denyResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, guards.ErrUnauthenticated):
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthenticated!", nil)
	case errors.Is(err, guards.ErrRoleForbidden):
		return JsonResponse(c, fiber.StatusForbidden, false, "Your role cannot access this resource!", nil)
	case errors.Is(err, guards.ErrFeatureDisabled):
		return JsonResponse(c, fiber.StatusForbidden, false, "This feature is not enabled for your role!", nil)
	case errors.Is(err, guards.ErrSubscriptionRequired):
		return JsonResponse(c, fiber.StatusForbidden, false, "An active subscription is required!", nil)
	case errors.Is(err, guards.ErrNotOwner):
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not own this resource!", nil)
	case errors.Is(err, guards.ErrNotFound):
		return JsonResponse(c, fiber.StatusNotFound, false, "Resource not found!", nil)
	default:
		log.Printf("[GUARDS] evaluation error: %v", err)
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking access!", nil)
	}
}
