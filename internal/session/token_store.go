package session

import (
	"doj-chatbot-client/internal/pkg/logger"
	"doj-chatbot-client/pkg/kvstore"
)

const tokenKey = "token"

// TokenStore is the single source of truth for the bearer token. Construct
// it once at startup and hand it to whoever needs the session.
type TokenStore struct {
	value  *kvstore.Observed[string]
	logger logger.ILogger
}

func NewTokenStore(store kvstore.Store, log logger.ILogger) (*TokenStore, error) {
	value, err := kvstore.NewObserved(store, tokenKey, "")
	if err != nil {
		return nil, err
	}
	return &TokenStore{value: value, logger: log}, nil
}

// Get returns the current token; ok is false when logged out.
func (s *TokenStore) Get() (string, bool) {
	token := s.value.Get()
	return token, token != ""
}

// Set replaces the token. An empty token logs out. Observers have run by
// the time Set returns.
func (s *TokenStore) Set(token string) error {
	err := s.value.Set(token)
	if err != nil {
		s.logger.Warn("TokenStore", "Failed to persist token", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("TokenStore", "Session changed", map[string]interface{}{"present": token != ""})
	return nil
}

func (s *TokenStore) Clear() error {
	return s.Set("")
}

// Subscribe calls fn with the new token ("" when logged out) after every
// change.
func (s *TokenStore) Subscribe(fn func(token string)) func() {
	return s.value.Subscribe(fn)
}
