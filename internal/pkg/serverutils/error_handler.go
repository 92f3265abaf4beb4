package serverutils

import (
	"errors"

	"doj-chatbot-client/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns an error escaping a handler into a JSON
// ErrorResponse. Server-side failures are logged; the client only sees a
// generic message for them.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("Server", "Unhandled error", map[string]interface{}{
				"method": c.Method(),
				"path":   c.Path(),
				"error":  err.Error(),
			})
		}

		return c.Status(code).JSON(ErrorResponse(code, message))
	}
}
