package mapper

import (
	"testing"
	"time"

	"doj-chatbot-client/internal/dto"
	"doj-chatbot-client/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMessages(t *testing.T) {
	m := NewChatMapper()
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	msgs, err := m.ToMessages([]dto.MessageResponse{
		{Id: "1", Sender: "user", Text: "What is bail?", Timestamp: dto.Timestamp{Time: ts}},
		{Id: "2", Sender: "bot", Text: "Bail is...", Timestamp: dto.Timestamp{Time: ts.Add(time.Second)}},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, entity.SenderUser, msgs[0].Sender)
	assert.Equal(t, entity.MessageSent, msgs[1].Status)
	assert.Equal(t, ts, msgs[0].Timestamp)
}

func TestToMessagesRejectsUnknownSender(t *testing.T) {
	_, err := NewChatMapper().ToMessages([]dto.MessageResponse{{Id: "x", Sender: "system"}})
	assert.Error(t, err)
}

func TestToChatsKeepsServerOrder(t *testing.T) {
	chats := NewChatMapper().ToChats([]dto.ChatResponse{{Id: "newer"}, {Id: "older"}})
	assert.Equal(t, []string{"newer", "older"}, []string{chats[0].Id, chats[1].Id})

	assert.NotNil(t, NewChatMapper().ToChats(nil))
}
