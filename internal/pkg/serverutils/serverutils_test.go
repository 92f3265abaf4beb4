package serverutils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"doj-chatbot-client/internal/pkg/logger"
	"doj-chatbot-client/internal/routeguard"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenVar struct{ token string }

func (v *tokenVar) Get() (string, bool) { return v.token, v.token != "" }

func newApp(tokens *tokenVar) *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Use(RouteGuard(routeguard.NewRouter(routeguard.NewGuard(tokens)), "/api"))

	ok := func(c *fiber.Ctx) error { return c.SendString("page " + c.Path()) }
	app.Get("/", ok)
	app.Get("/login", ok)
	app.Get("/chat", ok)
	app.Post("/chat/send", ok)
	app.Get("/api/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/api/boom", func(c *fiber.Ctx) error { return errors.New("secret internals") })
	return app
}

func TestRouteGuard(t *testing.T) {
	tokens := &tokenVar{}
	app := newApp(tokens)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		status   int
		location string
	}{
		{"public page", http.MethodGet, "/login", "", http.StatusOK, ""},
		{"protected without token", http.MethodGet, "/chat", "", http.StatusSeeOther, "/login"},
		{"protected sub-path without token", http.MethodPost, "/chat/send", "", http.StatusSeeOther, "/login"},
		{"protected with token", http.MethodGet, "/chat", "abc", http.StatusOK, ""},
		{"unknown page", http.MethodGet, "/admin", "abc", http.StatusSeeOther, "/"},
		{"api is not guarded", http.MethodGet, "/api/teapot", "", http.StatusTeapot, ""},
		{"lookalike of the api prefix is a page", http.MethodGet, "/apix", "", http.StatusSeeOther, "/"},
		{"dashed lookalike is a page", http.MethodGet, "/api-foo/teapot", "abc", http.StatusSeeOther, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens.token = tt.token
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.location, resp.Header.Get("Location"))
		})
	}
}

func TestErrorHandler(t *testing.T) {
	app := newApp(&tokenVar{})

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/api/teapot", http.StatusTeapot, "short and stout"},
		{"/api/boom", http.StatusInternalServerError, "Internal server error"},
		{"/api/none", http.StatusNotFound, "Cannot GET /api/none"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body BaseResponse[any]
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.status, body.Code)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestSuccessResponse(t *testing.T) {
	res := SuccessResponse("ok", map[string]int{"n": 1})
	assert.True(t, res.Success)
	assert.Equal(t, 200, res.Code)
	assert.Equal(t, 1, res.Data["n"])
}
