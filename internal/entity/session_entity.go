package entity

import (
	"strings"

	"golang.org/x/oauth2"
)

// Session is the result of a credential exchange.
type Session struct {
	AccessToken string
	TokenType   string
}

// OAuth2Token exposes the session as an oauth2 token so the header is
// formatted the way oauth2 clients do it ("Bearer <token>").
func (s Session) OAuth2Token() *oauth2.Token {
	tokenType := s.TokenType
	if tokenType == "" || strings.EqualFold(tokenType, "bearer") {
		tokenType = "Bearer"
	}
	return &oauth2.Token{AccessToken: s.AccessToken, TokenType: tokenType}
}
