package controller

import (
	"net/url"

	"doj-chatbot-client/internal/apiclient"
	"doj-chatbot-client/internal/routeguard"
	"doj-chatbot-client/internal/service"
	"doj-chatbot-client/internal/theme"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	ChatPage(ctx *fiber.Ctx) error
	NewChat(ctx *fiber.Ctx) error
	Send(ctx *fiber.Ctx) error
	Retry(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
	pages   pages
}

type chatPageData struct {
	State  service.ChatState
	Groups []service.MessageGroup
}

func NewChatController(service service.IChatService, auth service.IAuthService, themes *theme.ThemeStore) IChatController {
	return &chatController{
		service: service,
		pages:   pages{themes: themes, auth: auth},
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group(routeguard.ChatPath)
	h.Get("/", c.ChatPage)
	h.Post("/new", c.NewChat)
	h.Post("/send", c.Send)
	h.Post("/retry/:id", c.Retry)
}

func chatURL(chatId string) string {
	if chatId == "" {
		return routeguard.ChatPath
	}
	return routeguard.ChatPath + "?chat=" + url.QueryEscape(chatId)
}

// render draws the chat page from the current state. An auth failure has
// already ended the session, so it sends the user to the login page instead.
func (c *chatController) render(ctx *fiber.Ctx, err error) error {
	if apiclient.IsAuthError(err) {
		return ctx.Redirect(routeguard.LoginPath, fiber.StatusSeeOther)
	}

	data := chatPageData{State: c.service.State(), Groups: c.service.Groups()}
	if err != nil {
		return ctx.Status(statusFor(err)).Render("chat", c.pages.withError(ctx, "Chat", data, err))
	}
	return ctx.Render("chat", c.pages.page(ctx, "Chat", data))
}

// ChatPage lists the chats and shows the one named by ?chat=, or the first
// one when none is selected yet.
func (c *chatController) ChatPage(ctx *fiber.Ctx) error {
	if err := c.service.Refresh(ctx.UserContext()); err != nil {
		return c.render(ctx, err)
	}

	if want := ctx.Query("chat"); want != "" && want != c.service.State().ActiveChatId {
		if err := c.service.Select(ctx.UserContext(), want); err != nil {
			return c.render(ctx, err)
		}
	}
	return c.render(ctx, nil)
}

func (c *chatController) NewChat(ctx *fiber.Ctx) error {
	chat, err := c.service.NewChat(ctx.UserContext())
	if err != nil {
		return c.render(ctx, err)
	}
	return ctx.Redirect(chatURL(chat.Id), fiber.StatusSeeOther)
}

// Send posts the question to the chat the form was rendered for.
func (c *chatController) Send(ctx *fiber.Ctx) error {
	chatId := ctx.FormValue("chat")
	if chatId != "" && chatId != c.service.State().ActiveChatId {
		if err := c.service.Select(ctx.UserContext(), chatId); err != nil {
			return c.render(ctx, err)
		}
	}

	if _, err := c.service.Send(ctx.UserContext(), ctx.FormValue("text")); err != nil {
		return c.render(ctx, err)
	}
	return ctx.Redirect(chatURL(c.service.State().ActiveChatId), fiber.StatusSeeOther)
}

func (c *chatController) Retry(ctx *fiber.Ctx) error {
	if _, err := c.service.Retry(ctx.UserContext(), ctx.Params("id")); err != nil {
		return c.render(ctx, err)
	}
	return ctx.Redirect(chatURL(c.service.State().ActiveChatId), fiber.StatusSeeOther)
}
