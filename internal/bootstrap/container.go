package bootstrap

import (
	"fmt"

	"doj-chatbot-client/internal/apiclient"
	"doj-chatbot-client/internal/config"
	"doj-chatbot-client/internal/controller"
	"doj-chatbot-client/internal/entity"
	"doj-chatbot-client/internal/pkg/logger"
	"doj-chatbot-client/internal/routeguard"
	"doj-chatbot-client/internal/service"
	"doj-chatbot-client/internal/session"
	"doj-chatbot-client/internal/theme"
	"doj-chatbot-client/internal/view"
	"doj-chatbot-client/pkg/kvstore"
)

type Container struct {
	Logger logger.ILogger
	Store  kvstore.Store

	// Session state
	Tokens *session.TokenStore
	Themes *theme.ThemeStore

	// Access
	Api    apiclient.IApiClient
	Guard  *routeguard.Guard
	Router *routeguard.Router

	// Page logic
	AuthService service.IAuthService
	ChatService service.IChatService

	// Web front-end
	Views          *view.Engine
	AuthController controller.IAuthController
	ChatController controller.IChatController
	PageController controller.IPageController
	ApiController  controller.IApiController
}

func NewContainer(cfg *config.Config, log logger.ILogger) (*Container, error) {
	// 1. Persistence
	store, err := kvstore.Open(kvstore.Options{
		Backend:   cfg.State.Backend,
		Path:      cfg.State.Path,
		RedisURL:  cfg.State.RedisURL,
		Namespace: cfg.State.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	log.Info("Bootstrap", "State store opened", map[string]interface{}{"backend": cfg.State.Backend})

	c, err := NewContainerWithStore(cfg, store, log)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithStore wires everything on top of an already open store.
func NewContainerWithStore(cfg *config.Config, store kvstore.Store, log logger.ILogger) (*Container, error) {
	// 2. Session state
	tokens, err := session.NewTokenStore(store, log)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	themes, err := theme.NewThemeStore(store, entity.Theme(cfg.App.ThemeDefault), log)
	if err != nil {
		return nil, fmt.Errorf("load theme: %w", err)
	}

	// 3. Access
	api := apiclient.NewApiClient(cfg.Api.BaseURL, cfg.Api.Timeout, tokens, log)
	guard := routeguard.NewGuard(tokens)
	router := routeguard.NewRouter(guard)

	// 4. Services
	authService := service.NewAuthService(api, tokens, log)
	chatService := service.NewChatService(api, tokens, log)

	// 5. Controllers
	views := view.NewEngine()
	if err := views.Load(); err != nil {
		return nil, err
	}

	return &Container{
		Logger: log,
		Store:  store,

		Tokens: tokens,
		Themes: themes,

		Api:    api,
		Guard:  guard,
		Router: router,

		AuthService: authService,
		ChatService: chatService,

		Views:          views,
		AuthController: controller.NewAuthController(authService, themes),
		ChatController: controller.NewChatController(chatService, authService, themes),
		PageController: controller.NewPageController(tokens, themes, authService, log),
		ApiController:  controller.NewApiController(api, authService, themes),
	}, nil
}

// Close flushes the logger and releases the state store.
func (c *Container) Close() error {
	_ = c.Logger.Sync()
	return c.Store.Close()
}
