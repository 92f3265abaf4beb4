package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"doj-chatbot-client/internal/dto"
)

// ValidationError is raised before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RequestError is a non-2xx response.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: status %d, body: %s", e.Status, e.Body)
}

// Detail extracts the server's human-readable reason from the body, or ""
// when there is none.
func (e *RequestError) Detail() string {
	var res dto.ErrorResponse
	if err := json.Unmarshal([]byte(e.Body), &res); err != nil {
		return ""
	}
	if res.Message != "" {
		return res.Message
	}

	switch d := res.Detail.(type) {
	case string:
		return d
	case []interface{}:
		// validation errors: [{"loc": [...], "msg": "..."}]
		var msgs []string
		for _, item := range d {
			if m, ok := item.(map[string]interface{}); ok {
				if msg, ok := m["msg"].(string); ok {
					msgs = append(msgs, msg)
				}
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// AuthError is a RequestError with status 401 or 403. The caller should
// drop the session.
type AuthError struct {
	*RequestError
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("unauthorized: status %d", e.Status)
}

func (e *AuthError) Unwrap() error {
	return e.RequestError
}

// NetworkError means no response was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TimeoutError means the request outlived its deadline.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

func newRequestError(status int, body []byte) error {
	reqErr := &RequestError{Status: status, Body: string(body)}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &AuthError{RequestError: reqErr}
	}
	return reqErr
}

func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
