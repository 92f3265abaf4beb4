package apiclient

import (
	"net/http"

	"doj-chatbot-client/internal/entity"
)

// TokenSource is read on every request. *session.TokenStore satisfies it.
type TokenSource interface {
	Get() (string, bool)
}

// bearerTransport attaches "Authorization: Bearer <token>" when a token is
// present and leaves the request untouched otherwise.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, ok := t.tokens.Get()
	if !ok {
		return t.base.RoundTrip(req)
	}

	// RoundTrip must not modify the caller's request.
	authed := req.Clone(req.Context())
	entity.Session{AccessToken: token}.OAuth2Token().SetAuthHeader(authed)
	return t.base.RoundTrip(authed)
}
