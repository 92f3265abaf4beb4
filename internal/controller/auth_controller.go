package controller

import (
	"doj-chatbot-client/internal/routeguard"
	"doj-chatbot-client/internal/service"
	"doj-chatbot-client/internal/theme"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	LoginPage(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	RegisterPage(ctx *fiber.Ctx) error
	Register(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
	pages   pages
}

func NewAuthController(service service.IAuthService, themes *theme.ThemeStore) IAuthController {
	return &authController{
		service: service,
		pages:   pages{themes: themes, auth: service},
	}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	r.Get(routeguard.LoginPath, c.LoginPage)
	r.Post(routeguard.LoginPath, c.Login)
	r.Get(routeguard.RegisterPath, c.RegisterPage)
	r.Post(routeguard.RegisterPath, c.Register)
	r.Post(routeguard.LogoutPath, c.Logout)
}

func (c *authController) LoginPage(ctx *fiber.Ctx) error {
	return ctx.Render("login", c.pages.page(ctx, "Log in", fiber.Map{"Username": ""}))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	username := ctx.FormValue("username")

	if err := c.service.Login(ctx.UserContext(), username, ctx.FormValue("password")); err != nil {
		return ctx.Status(statusFor(err)).Render("login",
			c.pages.withError(ctx, "Log in", fiber.Map{"Username": username}, err))
	}
	return ctx.Redirect(routeguard.ChatPath, fiber.StatusSeeOther)
}

func (c *authController) RegisterPage(ctx *fiber.Ctx) error {
	return ctx.Render("register", c.pages.page(ctx, "Register", fiber.Map{"Email": ""}))
}

// Register signs the user up and in; on success the session exists and the
// chat page is next.
func (c *authController) Register(ctx *fiber.Ctx) error {
	email := ctx.FormValue("email")

	if err := c.service.Register(ctx.UserContext(), email, ctx.FormValue("password")); err != nil {
		return ctx.Status(statusFor(err)).Render("register",
			c.pages.withError(ctx, "Register", fiber.Map{"Email": email}, err))
	}
	return ctx.Redirect(routeguard.ChatPath, fiber.StatusSeeOther)
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	if err := c.service.Logout(); err != nil {
		return err
	}
	return ctx.Redirect(routeguard.LoginPath, fiber.StatusSeeOther)
}
