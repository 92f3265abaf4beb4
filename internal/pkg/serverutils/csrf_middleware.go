package serverutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
)

const (
	// CSRFField is the form field every page form carries its token in.
	CSRFField      = "_csrf"
	CSRFCookie     = "dojchat_csrf"
	csrfContextKey = "csrf"
)

// CSRF requires every form post to carry the double-submit token issued
// with one of our own pages. The session lives in this process, not in the
// browser, so a post from another site would otherwise act as the user.
// Paths under one of the skip prefixes are not checked.
func CSRF(skip ...string) fiber.Handler {
	return csrf.New(csrf.Config{
		Next: func(c *fiber.Ctx) bool {
			return under(c.Path(), skip)
		},
		KeyLookup:      "form:" + CSRFField,
		CookieName:     CSRFCookie,
		CookieSameSite: "Strict",
		CookieHTTPOnly: true,
		Expiration:     12 * time.Hour,
		ContextKey:     csrfContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fiber.NewError(fiber.StatusForbidden, "Forbidden: "+err.Error())
		},
	})
}

// CSRFToken returns the token the CSRF middleware issued for this request,
// "" when the middleware did not run.
func CSRFToken(c *fiber.Ctx) string {
	token, _ := c.Locals(csrfContextKey).(string)
	return token
}
