package serverutils

import (
	"strings"

	"doj-chatbot-client/internal/routeguard"

	"github.com/gofiber/fiber/v2"
)

// RouteGuard resolves every page request through the router before any
// handler runs: protected pages without a session go to /login, unknown
// pages go home. Paths under one of the skip prefixes are not pages and
// pass through untouched.
func RouteGuard(router *routeguard.Router, skip ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if under(c.Path(), skip) {
			return c.Next()
		}

		decision := router.Resolve(c.Path())
		if !decision.Allow {
			return c.Redirect(decision.Redirect, fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// under reports whether p is one of prefixes or below one of them.
// "/api" covers "/api" and "/api/session" but not "/apix".
func under(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if p == prefix || strings.HasPrefix(p, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}
