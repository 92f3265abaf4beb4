package entity

import (
	"fmt"
	"time"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

func ParseSender(s string) (Sender, error) {
	switch Sender(s) {
	case SenderUser, SenderBot:
		return Sender(s), nil
	}
	return "", fmt.Errorf("unknown message sender %q", s)
}

// MessageStatus is local-only. Messages loaded from the server are always
// sent; an optimistic user message is pending until its reply arrives and
// failed if the call errors.
type MessageStatus string

const (
	MessageSent    MessageStatus = "sent"
	MessagePending MessageStatus = "pending"
	MessageFailed  MessageStatus = "failed"
)

type Message struct {
	Id        string
	Sender    Sender
	Text      string
	Timestamp time.Time
	Status    MessageStatus
}

func (m Message) FromUser() bool {
	return m.Sender == SenderUser
}
