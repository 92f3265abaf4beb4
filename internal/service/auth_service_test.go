package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"doj-chatbot-client/internal/apiclient"
	"doj-chatbot-client/internal/apitest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLogsIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var seen []string
	f.tokens.Subscribe(func(token string) { seen = append(seen, token) })

	require.False(t, f.auth.IsAuthenticated())
	require.NoError(t, f.auth.Register(ctx, "a@x.com", "pw1"))
	assert.True(t, f.auth.IsAuthenticated())

	token, ok := f.tokens.Get()
	require.True(t, ok)
	require.Len(t, seen, 1)
	assert.Equal(t, token, seen[0])

	_, err := f.api.ListChats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+token, f.backend.LastAuthHeader())
}

func TestRegisterFailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.auth.Register(ctx, "a@x.com", "pw1"))
	before, _ := f.tokens.Get()

	err := f.auth.Register(ctx, "a@x.com", "pw1")
	require.Error(t, err)
	assert.Equal(t, "Email already registered", UserMessage(err))

	after, _ := f.tokens.Get()
	assert.Equal(t, before, after)
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture)
		user    string
		pass    string
		want    string
		isCreds bool
	}{
		{
			name: "wrong password",
			user: "a@x.com", pass: "nope",
			want: msgCredentials, isCreds: true,
		},
		{
			name: "unknown user",
			user: "b@x.com", pass: "pw1",
			want: msgCredentials, isCreds: true,
		},
		{
			name: "empty password",
			user: "a@x.com", pass: "",
			want: "password is required",
		},
		{
			name:    "server error",
			prepare: func(f *fixture) { f.backend.FailNext(apitest.OpLogin, http.StatusInternalServerError) },
			user:    "a@x.com", pass: "pw1",
			want: "injected failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			require.NoError(t, f.api.Register(ctx, "a@x.com", "pw1"))
			if tt.prepare != nil {
				tt.prepare(f)
			}

			err := f.auth.Login(ctx, tt.user, tt.pass)
			require.Error(t, err)
			assert.Equal(t, tt.isCreds, errors.Is(err, ErrInvalidCredentials))
			assert.Equal(t, tt.want, UserMessage(err))
			assert.False(t, f.auth.IsAuthenticated())
		})
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.auth.Register(ctx, "a@x.com", "pw1"))
	_, err := f.chat.NewChat(ctx)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout())
	assert.False(t, f.auth.IsAuthenticated())
	assert.Equal(t, ChatState{}, f.chat.State())

	_, err = f.api.ListChats(ctx)
	assert.True(t, apiclient.IsAuthError(err))
	assert.Equal(t, "", f.backend.LastAuthHeader())
}
