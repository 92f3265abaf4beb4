package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"doj-chatbot-client/internal/dto"
	"doj-chatbot-client/internal/entity"
	"doj-chatbot-client/internal/mapper"
	"doj-chatbot-client/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
)

type IApiClient interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, username, password string) (*entity.Session, error)
	ListChats(ctx context.Context) ([]entity.Chat, error)
	CreateChat(ctx context.Context) (*entity.Chat, error)
	GetMessages(ctx context.Context, chatId string) ([]entity.Message, error)
	SendMessage(ctx context.Context, chatId, text string) (*entity.Message, error)
	Health(ctx context.Context) error
}

type apiClient struct {
	baseURL  string
	client   *http.Client
	validate *validator.Validate
	mapper   *mapper.ChatMapper
	logger   logger.ILogger
}

// Ensure apiClient implements IApiClient
var _ IApiClient = &apiClient{}

func NewApiClient(baseURL string, timeout time.Duration, tokens TokenSource, log logger.ILogger) IApiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{base: http.DefaultTransport, tokens: tokens},
		},
		validate: newValidator(),
		mapper:   mapper.NewChatMapper(),
		logger:   log,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return strings.ToLower(fld.Name)
	})
	return v
}

// check runs struct validation and turns the first failure into a
// ValidationError.
func (c *apiClient) check(req interface{}) error {
	err := c.validate.Struct(req)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}

	fe := ve[0]
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("%s is required", fe.Field())}
	case "email":
		return &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("%s must be a valid email address", fe.Field())}
	default:
		return &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("%s is invalid", fe.Field())}
	}
}

func (c *apiClient) Register(ctx context.Context, email, password string) error {
	req := dto.RegisterRequest{Email: strings.TrimSpace(email), Password: password}
	if err := c.check(req); err != nil {
		return err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	// The response (the created user) is not consumed.
	return c.do(ctx, http.MethodPost, "/auth/register", bytes.NewReader(payload), "application/json", nil)
}

func (c *apiClient) Login(ctx context.Context, username, password string) (*entity.Session, error) {
	req := dto.LoginRequest{Username: strings.TrimSpace(username), Password: password}
	if err := c.check(req); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("username", req.Username)
	form.Set("password", req.Password)

	var res dto.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &res)
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, errors.New("login response carried no access_token")
	}

	session := c.mapper.ToSession(res)
	return &session, nil
}

func (c *apiClient) ListChats(ctx context.Context) ([]entity.Chat, error) {
	var res []dto.ChatResponse
	if err := c.do(ctx, http.MethodGet, "/chats", nil, "", &res); err != nil {
		return nil, err
	}
	return c.mapper.ToChats(res), nil
}

func (c *apiClient) CreateChat(ctx context.Context) (*entity.Chat, error) {
	var res dto.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chats", nil, "", &res); err != nil {
		return nil, err
	}
	chat := c.mapper.ToChat(res)
	return &chat, nil
}

func (c *apiClient) GetMessages(ctx context.Context, chatId string) ([]entity.Message, error) {
	if strings.TrimSpace(chatId) == "" {
		return nil, &ValidationError{Field: "chatId", Message: "chatId is required"}
	}

	var res []dto.MessageResponse
	if err := c.do(ctx, http.MethodGet, "/chats/"+url.PathEscape(chatId)+"/messages", nil, "", &res); err != nil {
		return nil, err
	}
	return c.mapper.ToMessages(res)
}

// SendMessage returns the bot's reply. The user's own message is not echoed
// back; the caller records it.
func (c *apiClient) SendMessage(ctx context.Context, chatId, text string) (*entity.Message, error) {
	if strings.TrimSpace(chatId) == "" {
		return nil, &ValidationError{Field: "chatId", Message: "chatId is required"}
	}
	req := dto.SendMessageRequest{Text: strings.TrimSpace(text)}
	if err := c.check(req); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var res dto.MessageResponse
	err = c.do(ctx, http.MethodPost, "/chats/"+url.PathEscape(chatId)+"/message", bytes.NewReader(payload), "application/json", &res)
	if err != nil {
		return nil, err
	}

	msg, err := c.mapper.ToMessage(res)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *apiClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, "", nil)
}

func (c *apiClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		err = classifyTransportError(ctx, err)
		c.logger.Warn("ApiClient", "Request failed", map[string]interface{}{"method": method, "path": path, "error": err.Error()})
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("ApiClient", "Request completed", map[string]interface{}{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newRequestError(resp.StatusCode, bodyBytes)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Err: err}
	}
	return &NetworkError{Err: err}
}
