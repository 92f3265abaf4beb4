package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"doj-chatbot-client/internal/apiclient"
	"doj-chatbot-client/internal/entity"
	"doj-chatbot-client/internal/pkg/logger"
	"doj-chatbot-client/internal/session"

	"github.com/google/uuid"
)

var (
	ErrNoActiveChat    = &apiclient.ValidationError{Field: "chat", Message: "Select or create a chat first"}
	ErrEmptyMessage    = &apiclient.ValidationError{Field: "text", Message: "Type a message first"}
	ErrMessageNotFound = &apiclient.ValidationError{Field: "message", Message: "That message no longer exists"}
	ErrNotRetryable    = &apiclient.ValidationError{Field: "message", Message: "Only failed messages can be retried"}
)

// ChatState is a snapshot of the chat view.
type ChatState struct {
	Chats        []entity.Chat
	ActiveChatId string
	Messages     []entity.Message
	Loading      bool
}

// MessageGroup is a run of messages sharing one calendar date.
type MessageGroup struct {
	DateLabel string
	Messages  []entity.Message
}

type IChatService interface {
	Refresh(ctx context.Context) error
	Select(ctx context.Context, chatId string) error
	NewChat(ctx context.Context) (*entity.Chat, error)
	Send(ctx context.Context, text string) (*entity.Message, error)
	Retry(ctx context.Context, messageId string) (*entity.Message, error)
	State() ChatState
	Groups() []MessageGroup
	Subscribe(fn func(ChatState)) func()
}

type chatService struct {
	api    apiclient.IApiClient
	tokens *session.TokenStore
	logger logger.ILogger
	now    func() time.Time

	mu        sync.Mutex
	state     ChatState
	observers map[int]func(ChatState)
	nextId    int
}

func NewChatService(api apiclient.IApiClient, tokens *session.TokenStore, log logger.ILogger) IChatService {
	s := &chatService{
		api:       api,
		tokens:    tokens,
		logger:    log,
		now:       time.Now,
		observers: make(map[int]func(ChatState)),
	}

	// Any change of session, logout or another login, wipes the view so
	// nobody sees the previous user's chats.
	tokens.Subscribe(func(string) {
		s.update(func(st *ChatState) { *st = ChatState{} })
	})
	return s
}

func (s *chatService) Subscribe(fn func(ChatState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId++
	id := s.nextId
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *chatService) State() ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (st ChatState) clone() ChatState {
	return ChatState{
		Chats:        slices.Clone(st.Chats),
		ActiveChatId: st.ActiveChatId,
		Messages:     slices.Clone(st.Messages),
		Loading:      st.Loading,
	}
}

// update mutates the state under the lock, then notifies observers with a
// snapshot after releasing it.
func (s *chatService) update(fn func(st *ChatState)) ChatState {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state.clone()
	observers := make([]func(ChatState), 0, len(s.observers))
	for id := 1; id <= s.nextId; id++ {
		if o, ok := s.observers[id]; ok {
			observers = append(observers, o)
		}
	}
	s.mu.Unlock()

	for _, o := range observers {
		o(snapshot)
	}
	return snapshot
}

// handleErr drops the session on an auth failure so the caller can send the
// user back to the login page.
func (s *chatService) handleErr(op string, err error) error {
	if err == nil {
		return nil
	}
	s.logger.Warn("ChatService", op+" failed", map[string]interface{}{"error": err.Error()})
	if apiclient.IsAuthError(err) {
		if clearErr := s.tokens.Clear(); clearErr != nil {
			s.logger.Error("ChatService", "Failed to clear session", map[string]interface{}{"error": clearErr.Error()})
		}
	}
	return err
}

// Refresh reloads the chat list. An active chat the list no longer holds is
// dropped. With no active chat, the first listed chat becomes active and its
// messages are loaded.
func (s *chatService) Refresh(ctx context.Context) error {
	chats, err := s.api.ListChats(ctx)
	if err != nil {
		return s.handleErr("ListChats", err)
	}

	var activate string
	s.update(func(st *ChatState) {
		st.Chats = chats
		listed := slices.ContainsFunc(chats, func(c entity.Chat) bool { return c.Id == st.ActiveChatId })
		if st.ActiveChatId != "" && !listed {
			st.ActiveChatId = ""
			st.Messages = nil
		}
		if st.ActiveChatId == "" && len(chats) > 0 {
			activate = chats[0].Id
		}
	})

	if activate != "" {
		return s.Select(ctx, activate)
	}
	return nil
}

func sortByTimestamp(msgs []entity.Message) {
	slices.SortStableFunc(msgs, func(a, b entity.Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}

// Select activates chatId and loads its messages in timestamp order.
func (s *chatService) Select(ctx context.Context, chatId string) error {
	s.update(func(st *ChatState) {
		if st.ActiveChatId != chatId {
			st.Messages = nil
		}
		st.ActiveChatId = chatId
	})

	msgs, err := s.api.GetMessages(ctx, chatId)
	if err != nil {
		return s.handleErr("GetMessages", err)
	}
	sortByTimestamp(msgs)

	s.update(func(st *ChatState) {
		// a newer Select may have switched chats meanwhile
		if st.ActiveChatId == chatId {
			st.Messages = msgs
		}
	})
	return nil
}

func (s *chatService) NewChat(ctx context.Context) (*entity.Chat, error) {
	chat, err := s.api.CreateChat(ctx)
	if err != nil {
		return nil, s.handleErr("CreateChat", err)
	}
	if err := s.Refresh(ctx); err != nil {
		return chat, err
	}
	return chat, s.Select(ctx, chat.Id)
}

// Send shows the user's message immediately (pending), then asks the
// server. On success the message is marked sent and exactly one bot reply
// is appended; on failure it is marked failed and can be retried.
func (s *chatService) Send(ctx context.Context, text string) (*entity.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	local := entity.Message{
		Id:        uuid.NewString(),
		Sender:    entity.SenderUser,
		Text:      text,
		Timestamp: s.now().UTC(),
		Status:    entity.MessagePending,
	}

	var chatId string
	s.update(func(st *ChatState) {
		chatId = st.ActiveChatId
		if chatId == "" {
			return
		}
		st.Messages = append(st.Messages, local)
		st.Loading = true
	})
	if chatId == "" {
		return nil, ErrNoActiveChat
	}

	return s.deliver(ctx, chatId, local.Id, text)
}

func (s *chatService) Retry(ctx context.Context, messageId string) (*entity.Message, error) {
	var (
		chatId string
		text   string
		err    error
	)
	s.update(func(st *ChatState) {
		i := indexOf(st.Messages, messageId)
		switch {
		case i < 0:
			err = ErrMessageNotFound
		case st.Messages[i].Status != entity.MessageFailed:
			err = ErrNotRetryable
		default:
			st.Messages[i].Status = entity.MessagePending
			st.Loading = true
			chatId = st.ActiveChatId
			text = st.Messages[i].Text
		}
	})
	if err != nil {
		return nil, err
	}

	return s.deliver(ctx, chatId, messageId, text)
}

func (s *chatService) deliver(ctx context.Context, chatId, localId, text string) (*entity.Message, error) {
	reply, err := s.api.SendMessage(ctx, chatId, text)

	s.update(func(st *ChatState) {
		st.Loading = false
		if st.ActiveChatId != chatId {
			return
		}
		i := indexOf(st.Messages, localId)
		if i < 0 {
			return
		}
		if err != nil {
			st.Messages[i].Status = entity.MessageFailed
			return
		}
		st.Messages[i].Status = entity.MessageSent
		st.Messages = append(st.Messages, *reply)
	})

	if err != nil {
		return nil, s.handleErr("SendMessage", err)
	}
	return reply, nil
}

func indexOf(msgs []entity.Message, id string) int {
	return slices.IndexFunc(msgs, func(m entity.Message) bool { return m.Id == id })
}

// Groups splits the current messages by local calendar date, preserving
// order.
func (s *chatService) Groups() []MessageGroup {
	return GroupByDate(s.State().Messages)
}

func GroupByDate(msgs []entity.Message) []MessageGroup {
	var groups []MessageGroup
	for _, m := range msgs {
		label := m.Timestamp.Local().Format("2006-01-02")
		if len(groups) == 0 || groups[len(groups)-1].DateLabel != label {
			groups = append(groups, MessageGroup{DateLabel: label})
		}
		last := &groups[len(groups)-1]
		last.Messages = append(last.Messages, m)
	}
	return groups
}
