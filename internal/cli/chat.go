package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"doj-chatbot-client/internal/apiclient"
	"doj-chatbot-client/internal/entity"
	"doj-chatbot-client/internal/service"
	"doj-chatbot-client/internal/ui"
)

// transcript prints chat state changes as they happen: each message once
// when it first appears, and a note when a message fails to send.
type transcript struct {
	out     io.Writer
	palette *ui.Palette
	chatId  string
	seen    map[string]entity.MessageStatus
	day     string
}

func newTranscript(out io.Writer, palette *ui.Palette) *transcript {
	return &transcript{out: out, palette: palette, seen: make(map[string]entity.MessageStatus)}
}

func (t *transcript) update(st service.ChatState) {
	if st.ActiveChatId != t.chatId {
		t.chatId = st.ActiveChatId
		t.seen = make(map[string]entity.MessageStatus)
		t.day = ""
	}

	for _, m := range st.Messages {
		prev, ok := t.seen[m.Id]
		t.seen[m.Id] = m.Status
		switch {
		case !ok:
			if day := m.Timestamp.Local().Format("2006-01-02"); day != t.day {
				t.day = day
				t.palette.DateHeader(t.out, day)
			}
			// pending lines are confirmed implicitly by the reply
			t.palette.Message(t.out, m)
		case prev != m.Status && m.Status == entity.MessageFailed:
			t.palette.Error.Fprintf(t.out, "  not delivered: %q (type /retry)\n", m.Text)
		}
	}
}

const chatHelp = `/new    start a new chat
/retry  resend the last undelivered message
/quit   leave`

// runChat is an interactive loop over one chat. Lines are questions;
// lines starting with "/" are commands.
func runChat(ctx context.Context, a *App, args []string) error {
	if len(args) > 1 {
		return errUsage
	}

	view := newTranscript(a.out, a.palette)
	unsubscribe := a.c.ChatService.Subscribe(view.update)
	defer unsubscribe()

	var chatId string
	if len(args) == 1 {
		chatId = args[0]
	}
	if err := a.activate(ctx, chatId); err != nil {
		if !errors.Is(err, service.ErrNoActiveChat) {
			return err
		}
		if _, err := a.c.ChatService.NewChat(ctx); err != nil {
			return err
		}
	}

	a.palette.Muted.Fprintln(a.out, "Ask a question, or /help.")
	for {
		line, err := a.prompt("› ")
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)

		switch line {
		case "":
			if a.atEOF() {
				return nil
			}
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			a.palette.Muted.Fprintln(a.out, chatHelp)
			continue
		case "/new":
			_, err = a.c.ChatService.NewChat(ctx)
		case "/retry":
			err = a.retryLast(ctx)
		default:
			_, err = a.c.ChatService.Send(ctx, line)
		}

		if err != nil {
			// a lost session ends the loop; anything else is shown and the
			// conversation goes on
			if apiclient.IsAuthError(err) {
				return err
			}
			a.palette.Error.Fprintln(a.out, service.UserMessage(err))
		}
	}
}

func (a *App) retryLast(ctx context.Context) error {
	msgs := a.c.ChatService.State().Messages
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Status == entity.MessageFailed {
			_, err := a.c.ChatService.Retry(ctx, msgs[i].Id)
			return err
		}
	}
	return service.ErrNotRetryable
}

func (a *App) atEOF() bool {
	_, err := a.in.Peek(1)
	return errors.Is(err, io.EOF)
}
