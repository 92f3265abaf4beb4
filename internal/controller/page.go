package controller

import (
	"errors"

	"doj-chatbot-client/internal/apiclient"
	"doj-chatbot-client/internal/pkg/serverutils"
	"doj-chatbot-client/internal/service"
	"doj-chatbot-client/internal/theme"
	"doj-chatbot-client/internal/view"

	"github.com/gofiber/fiber/v2"
)

// pages fills the parts of view.Page every controller shares.
type pages struct {
	themes *theme.ThemeStore
	auth   service.IAuthService
}

func (p pages) page(ctx *fiber.Ctx, title string, data interface{}) view.Page {
	return view.Page{
		Title:         title,
		Path:          ctx.Path(),
		Theme:         p.themes.Get(),
		Authenticated: p.auth.IsAuthenticated(),
		CSRF:          serverutils.CSRFToken(ctx),
		Data:          data,
	}
}

// withError is page plus the user-facing text for err.
func (p pages) withError(ctx *fiber.Ctx, title string, data interface{}, err error) view.Page {
	page := p.page(ctx, title, data)
	page.Error = service.UserMessage(err)
	return page
}

// statusFor picks the HTTP status a page is re-rendered with after err.
func statusFor(err error) int {
	var (
		reqErr     *apiclient.RequestError
		netErr     *apiclient.NetworkError
		timeoutErr *apiclient.TimeoutError
	)

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case apiclient.IsValidationError(err):
		return fiber.StatusBadRequest
	case errors.As(err, &reqErr):
		if reqErr.Status >= 400 && reqErr.Status < 500 {
			return reqErr.Status
		}
		return fiber.StatusBadGateway
	case errors.As(err, &timeoutErr):
		return fiber.StatusGatewayTimeout
	case errors.As(err, &netErr):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}
