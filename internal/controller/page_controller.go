package controller

import (
	"doj-chatbot-client/internal/entity"
	"doj-chatbot-client/internal/pkg/logger"
	"doj-chatbot-client/internal/routeguard"
	"doj-chatbot-client/internal/service"
	"doj-chatbot-client/internal/session"
	"doj-chatbot-client/internal/theme"

	"github.com/gofiber/fiber/v2"
)

type IPageController interface {
	RegisterRoutes(r fiber.Router)
	Home(ctx *fiber.Ctx) error
	Profile(ctx *fiber.Ctx) error
	Settings(ctx *fiber.Ctx) error
	SetTheme(ctx *fiber.Ctx) error
}

type pageController struct {
	tokens *session.TokenStore
	themes *theme.ThemeStore
	pages  pages
	logger logger.ILogger
}

func NewPageController(tokens *session.TokenStore, themes *theme.ThemeStore, auth service.IAuthService, log logger.ILogger) IPageController {
	return &pageController{
		tokens: tokens,
		themes: themes,
		pages:  pages{themes: themes, auth: auth},
		logger: log,
	}
}

func (c *pageController) RegisterRoutes(r fiber.Router) {
	r.Get(routeguard.HomePath, c.Home)
	r.Get(routeguard.ProfilePath, c.Profile)
	r.Get(routeguard.SettingsPath, c.Settings)
	r.Post(routeguard.SettingsPath+"/theme", c.SetTheme)
}

func (c *pageController) Home(ctx *fiber.Ctx) error {
	return ctx.Render("home", c.pages.page(ctx, "Home", nil))
}

// Profile shows what the token says about the user. The token is decoded,
// not verified.
func (c *pageController) Profile(ctx *fiber.Ctx) error {
	var data interface{}
	if claims, err := c.tokens.Claims(); err != nil {
		c.logger.Debug("PageController", "Token has no readable claims", map[string]interface{}{"error": err.Error()})
	} else {
		data = claims
	}
	return ctx.Render("profile", c.pages.page(ctx, "Profile", data))
}

func (c *pageController) Settings(ctx *fiber.Ctx) error {
	return ctx.Render("settings", c.pages.page(ctx, "Settings", nil))
}

// SetTheme applies the submitted theme, or toggles when none is given.
func (c *pageController) SetTheme(ctx *fiber.Ctx) error {
	var err error
	if value := ctx.FormValue("theme"); value == "" {
		_, err = c.themes.Toggle()
	} else {
		var t entity.Theme
		if t, err = entity.ParseTheme(value); err == nil {
			err = c.themes.Set(t)
		}
	}

	if err != nil {
		page := c.pages.page(ctx, "Settings", nil)
		page.Error = "Could not change the theme: " + err.Error()
		return ctx.Status(fiber.StatusBadRequest).Render("settings", page)
	}
	return ctx.Redirect(routeguard.SettingsPath, fiber.StatusSeeOther)
}
