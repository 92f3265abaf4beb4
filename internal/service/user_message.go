package service

import (
	"errors"

	"doj-chatbot-client/internal/apiclient"
)

const (
	msgGeneric      = "Something went wrong. Please try again."
	msgCredentials  = "Invalid credentials"
	msgSessionEnded = "Your session has ended. Please log in again."
	msgUnreachable  = "Cannot reach the server. Check your connection and try again."
	msgTimeout      = "The server took too long to answer. Please try again."
)

// UserMessage turns an error from the page logic into the line shown to the
// user. Server-provided detail is kept when there is any.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		vErr       *apiclient.ValidationError
		authErr    *apiclient.AuthError
		reqErr     *apiclient.RequestError
		netErr     *apiclient.NetworkError
		timeoutErr *apiclient.TimeoutError
	)

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return msgCredentials
	case errors.As(err, &vErr):
		return vErr.Message
	case errors.As(err, &authErr):
		return msgSessionEnded
	case errors.As(err, &reqErr):
		if detail := reqErr.Detail(); detail != "" {
			return detail
		}
		return msgGeneric
	case errors.As(err, &timeoutErr):
		return msgTimeout
	case errors.As(err, &netErr):
		return msgUnreachable
	}
	return msgGeneric
}
