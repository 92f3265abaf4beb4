package service

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"doj-chatbot-client/internal/apiclient"
	"doj-chatbot-client/internal/apitest"
	"doj-chatbot-client/internal/entity"
	"doj-chatbot-client/internal/pkg/logger"
	"doj-chatbot-client/internal/session"
	"doj-chatbot-client/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	backend *apitest.Server
	tokens  *session.TokenStore
	api     apiclient.IApiClient
	auth    IAuthService
	chat    IChatService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNopLogger()
	backend := apitest.Start(t)

	tokens, err := session.NewTokenStore(kvstore.NewMemoryStore(), log)
	require.NoError(t, err)
	api := apiclient.NewApiClient(backend.URL, 5*time.Second, tokens, log)

	return &fixture{
		backend: backend,
		tokens:  tokens,
		api:     api,
		auth:    NewAuthService(api, tokens, log),
		chat:    NewChatService(api, tokens, log),
	}
}

// withChat registers, logs in and creates one active chat.
func (f *fixture) withChat(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.auth.Register(ctx, "a@x.com", "pw1"))
	chat, err := f.chat.NewChat(ctx)
	require.NoError(t, err)
	require.Equal(t, chat.Id, f.chat.State().ActiveChatId)
	return chat.Id
}

func TestRefreshActivatesFirstChat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.auth.Register(ctx, "a@x.com", "pw1"))

	require.NoError(t, f.chat.Refresh(ctx))
	st := f.chat.State()
	assert.Empty(t, st.Chats)
	assert.Empty(t, st.ActiveChatId)

	older, err := f.api.CreateChat(ctx)
	require.NoError(t, err)
	newer, err := f.api.CreateChat(ctx)
	require.NoError(t, err)
	_, err = f.api.SendMessage(ctx, newer.Id, "hi")
	require.NoError(t, err)

	require.NoError(t, f.chat.Refresh(ctx))
	st = f.chat.State()
	require.Len(t, st.Chats, 2)
	assert.Equal(t, newer.Id, st.ActiveChatId)
	assert.Len(t, st.Messages, 2)

	require.NoError(t, f.chat.Select(ctx, older.Id))
	st = f.chat.State()
	assert.Equal(t, older.Id, st.ActiveChatId)
	assert.Empty(t, st.Messages)
}

func TestMessagesRenderInTimestampOrder(t *testing.T) {
	f := newFixture(t)
	chatId := f.withChat(t)
	ctx := context.Background()

	for _, q := range []string{"one", "two", "three"} {
		_, err := f.api.SendMessage(ctx, chatId, q)
		require.NoError(t, err)
	}

	f.backend.ReverseMessages(true)
	require.NoError(t, f.chat.Select(ctx, chatId))

	msgs := f.chat.State().Messages
	require.Len(t, msgs, 6)
	for i := 1; i < len(msgs); i++ {
		assert.True(t, msgs[i-1].Timestamp.Before(msgs[i].Timestamp), "message %d out of order", i)
	}
	assert.Equal(t, "one", msgs[0].Text)
	assert.Equal(t, entity.SenderBot, msgs[5].Sender)
}

func TestSendIsOptimistic(t *testing.T) {
	f := newFixture(t)
	f.withChat(t)

	inFlight := make(chan struct{})
	release := make(chan struct{})
	f.backend.OnSend(func(string) {
		close(inFlight)
		<-release
	})

	type result struct {
		reply *entity.Message
		err   error
	}
	done := make(chan result, 1)
	go func() {
		reply, err := f.chat.Send(context.Background(), "hello")
		done <- result{reply, err}
	}()

	<-inFlight
	// the request is held by the server; the user's message is already visible
	st := f.chat.State()
	require.Len(t, st.Messages, 1)
	assert.Equal(t, entity.SenderUser, st.Messages[0].Sender)
	assert.Equal(t, "hello", st.Messages[0].Text)
	assert.Equal(t, entity.MessagePending, st.Messages[0].Status)
	assert.True(t, st.Loading)

	close(release)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, entity.SenderBot, res.reply.Sender)

	st = f.chat.State()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, entity.MessageSent, st.Messages[0].Status)
	assert.Equal(t, entity.SenderBot, st.Messages[1].Sender)
	assert.False(t, st.Loading)
}

func TestSendNotifiesBeforeNetworkCall(t *testing.T) {
	f := newFixture(t)
	f.withChat(t)

	var requests atomic.Int32
	f.backend.OnSend(func(string) { requests.Add(1) })

	var seenAtFirstNotify int32
	notified := false
	f.chat.Subscribe(func(st ChatState) {
		if !notified {
			notified = true
			seenAtFirstNotify = requests.Load()
			require.Len(t, st.Messages, 1)
			assert.Equal(t, entity.MessagePending, st.Messages[0].Status)
		}
	})

	_, err := f.chat.Send(context.Background(), "  hello  ")
	require.NoError(t, err)
	assert.True(t, notified)
	assert.Equal(t, int32(0), seenAtFirstNotify)
	assert.Equal(t, int32(1), requests.Load())
	assert.Equal(t, "hello", f.chat.State().Messages[0].Text)
}

func TestSendFailureMarksMessageAndRetrySucceeds(t *testing.T) {
	f := newFixture(t)
	f.withChat(t)
	ctx := context.Background()

	f.backend.FailNext(apitest.OpSendMessage, http.StatusInternalServerError)
	_, err := f.chat.Send(ctx, "What is bail?")
	require.Error(t, err)

	st := f.chat.State()
	require.Len(t, st.Messages, 1)
	failed := st.Messages[0]
	assert.Equal(t, entity.MessageFailed, failed.Status)
	assert.False(t, st.Loading)
	assert.Equal(t, "injected failure", UserMessage(err))

	reply, err := f.chat.Retry(ctx, failed.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.SenderBot, reply.Sender)

	st = f.chat.State()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, entity.MessageSent, st.Messages[0].Status)
	assert.Equal(t, reply.Id, st.Messages[1].Id)

	_, err = f.chat.Retry(ctx, failed.Id)
	assert.ErrorIs(t, err, ErrNotRetryable)
	_, err = f.chat.Retry(ctx, "nope")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestSendValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.auth.Register(ctx, "a@x.com", "pw1"))

	_, err := f.chat.Send(ctx, "hello")
	assert.ErrorIs(t, err, ErrNoActiveChat)
	assert.Empty(t, f.chat.State().Messages)

	f.withChatFor(t)
	_, err = f.chat.Send(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, f.chat.State().Messages)
}

func (f *fixture) withChatFor(t *testing.T) {
	t.Helper()
	_, err := f.chat.NewChat(context.Background())
	require.NoError(t, err)
}

func TestAuthErrorClearsSession(t *testing.T) {
	ops := []struct {
		name string
		op   string
		call func(f *fixture) error
	}{
		{"list", apitest.OpListChats, func(f *fixture) error { return f.chat.Refresh(context.Background()) }},
		{"create", apitest.OpCreateChat, func(f *fixture) error { _, err := f.chat.NewChat(context.Background()); return err }},
		{"messages", apitest.OpGetMessages, func(f *fixture) error {
			return f.chat.Select(context.Background(), f.chat.State().ActiveChatId)
		}},
		{"send", apitest.OpSendMessage, func(f *fixture) error { _, err := f.chat.Send(context.Background(), "hi"); return err }},
	}

	for _, tt := range ops {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.withChat(t)

			f.backend.FailNext(tt.op, http.StatusUnauthorized)
			err := tt.call(f)
			require.Error(t, err)
			assert.True(t, apiclient.IsAuthError(err))

			_, ok := f.tokens.Get()
			assert.False(t, ok)
			assert.Equal(t, ChatState{}, f.chat.State())
			assert.Equal(t, msgSessionEnded, UserMessage(err))
		})
	}
}

func TestGroupByDate(t *testing.T) {
	day1 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	day2 := day1.Add(24 * time.Hour)

	groups := GroupByDate([]entity.Message{
		{Id: "1", Timestamp: day1},
		{Id: "2", Timestamp: day1.Add(time.Minute)},
		{Id: "3", Timestamp: day2},
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "2024-05-01", groups[0].DateLabel)
	assert.Len(t, groups[0].Messages, 2)
	assert.Equal(t, "2024-05-02", groups[1].DateLabel)
	assert.Equal(t, "3", groups[1].Messages[0].Id)

	assert.Empty(t, GroupByDate(nil))
}

func TestAnotherLoginStartsFromEmptyView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chatA := f.withChat(t)
	_, err := f.chat.Send(ctx, "secret of A")
	require.NoError(t, err)
	require.Len(t, f.chat.State().Messages, 2)

	// B logs in over A's session without logging out first
	require.NoError(t, f.auth.Register(ctx, "b@x.com", "pw2"))
	assert.Equal(t, ChatState{}, f.chat.State())

	require.NoError(t, f.chat.Refresh(ctx))
	st := f.chat.State()
	assert.Empty(t, st.Chats)
	assert.Empty(t, st.ActiveChatId)
	assert.Empty(t, st.Messages)

	_, err = f.chat.Send(ctx, "question of B")
	assert.ErrorIs(t, err, ErrNoActiveChat)

	chatB, err := f.chat.NewChat(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, chatA, chatB.Id)
}

func TestRefreshDropsUnlistedActiveChat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chatId := f.withChat(t)

	require.Error(t, f.chat.Select(ctx, "gone"))
	require.Equal(t, "gone", f.chat.State().ActiveChatId)

	require.NoError(t, f.chat.Refresh(ctx))
	assert.Equal(t, chatId, f.chat.State().ActiveChatId)
}
