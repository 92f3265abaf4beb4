package mapper

import (
	"fmt"

	"doj-chatbot-client/internal/dto"
	"doj-chatbot-client/internal/entity"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ToChat(res dto.ChatResponse) entity.Chat {
	return entity.Chat{
		Id:        res.Id,
		CreatedAt: res.CreatedAt.Time,
	}
}

func (m *ChatMapper) ToChats(res []dto.ChatResponse) []entity.Chat {
	chats := make([]entity.Chat, 0, len(res))
	for _, r := range res {
		chats = append(chats, m.ToChat(r))
	}
	return chats
}

// ToMessage rejects senders outside {user, bot}. Server messages are
// always sent.
func (m *ChatMapper) ToMessage(res dto.MessageResponse) (entity.Message, error) {
	sender, err := entity.ParseSender(res.Sender)
	if err != nil {
		return entity.Message{}, fmt.Errorf("message %s: %w", res.Id, err)
	}
	return entity.Message{
		Id:        res.Id,
		Sender:    sender,
		Text:      res.Text,
		Timestamp: res.Timestamp.Time,
		Status:    entity.MessageSent,
	}, nil
}

func (m *ChatMapper) ToMessages(res []dto.MessageResponse) ([]entity.Message, error) {
	messages := make([]entity.Message, 0, len(res))
	for _, r := range res {
		msg, err := m.ToMessage(r)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (m *ChatMapper) ToSession(res dto.LoginResponse) entity.Session {
	return entity.Session{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
	}
}
