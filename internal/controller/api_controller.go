package controller

import (
	"doj-chatbot-client/internal/apiclient"
	"doj-chatbot-client/internal/pkg/serverutils"
	"doj-chatbot-client/internal/service"
	"doj-chatbot-client/internal/theme"

	"github.com/gofiber/fiber/v2"
)

// IApiController serves the small JSON surface next to the pages: session
// status for scripts and a pass-through backend health probe.
type IApiController interface {
	RegisterRoutes(r fiber.Router)
	Session(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type apiController struct {
	api    apiclient.IApiClient
	auth   service.IAuthService
	themes *theme.ThemeStore
}

type sessionStatus struct {
	Authenticated bool   `json:"authenticated"`
	Theme         string `json:"theme"`
}

func NewApiController(api apiclient.IApiClient, auth service.IAuthService, themes *theme.ThemeStore) IApiController {
	return &apiController{api: api, auth: auth, themes: themes}
}

func (c *apiController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api")
	h.Get("/session", c.Session)
	h.Get("/health", c.Health)
}

func (c *apiController) Session(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Session status", sessionStatus{
		Authenticated: c.auth.IsAuthenticated(),
		Theme:         string(c.themes.Get()),
	}))
}

func (c *apiController) Health(ctx *fiber.Ctx) error {
	if err := c.api.Health(ctx.UserContext()); err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(fiber.StatusBadGateway, service.UserMessage(err)))
	}
	return ctx.JSON(serverutils.SuccessResponse("Backend reachable", fiber.Map{"api": "ok"}))
}
