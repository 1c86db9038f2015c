package auth

import (
	"github.com/gofiber/fiber/v2"
)

// RequirePermission rejects callers whose role may not perform action on resource.
func RequirePermission(enforcer *Enforcer, resource, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}
		if err := enforcer.Authorize(user, resource, action); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAnyRole ensures caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := CurrentUser(c); err != nil {
			return err
		}
		return c.Next()
	}
}
