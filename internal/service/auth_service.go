package service

import (
	"context"
	"errors"
	"fmt"

	"doj-chatbot-client/internal/apiclient"
	"doj-chatbot-client/internal/pkg/logger"
	"doj-chatbot-client/internal/session"
)

// ErrInvalidCredentials marks a login the server rejected as unauthorized.
var ErrInvalidCredentials = errors.New("invalid credentials")

type IAuthService interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, username, password string) error
	Logout() error
	IsAuthenticated() bool
}

type authService struct {
	api    apiclient.IApiClient
	tokens *session.TokenStore
	logger logger.ILogger
}

func NewAuthService(api apiclient.IApiClient, tokens *session.TokenStore, log logger.ILogger) IAuthService {
	return &authService{
		api:    api,
		tokens: tokens,
		logger: log,
	}
}

// Register creates the account, then logs in with the same credentials so
// the user lands in a session.
func (s *authService) Register(ctx context.Context, email, password string) error {
	if err := s.api.Register(ctx, email, password); err != nil {
		s.logger.Warn("AuthService", "Registration failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("AuthService", "Account registered", nil)

	return s.Login(ctx, email, password)
}

func (s *authService) Login(ctx context.Context, username, password string) error {
	sess, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.logger.Warn("AuthService", "Login failed", map[string]interface{}{"error": err.Error()})
		if apiclient.IsAuthError(err) {
			return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return err
	}
	return s.tokens.Set(sess.AccessToken)
}

func (s *authService) Logout() error {
	return s.tokens.Clear()
}

func (s *authService) IsAuthenticated() bool {
	_, ok := s.tokens.Get()
	return ok
}
