package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"doj-chatbot-client/internal/apiclient"
	"doj-chatbot-client/internal/entity"
	"doj-chatbot-client/internal/service"
	"doj-chatbot-client/internal/session"
)

// credentials takes the email from args and the password from args or,
// when missing, from the next input line.
func (a *App) credentials(args []string) (string, string, error) {
	switch len(args) {
	case 1:
		password, err := a.prompt("password: ")
		return args[0], password, err
	case 2:
		return args[0], args[1], nil
	}
	return "", "", errUsage
}

func runRegister(ctx context.Context, a *App, args []string) error {
	email, password, err := a.credentials(args)
	if err != nil {
		return err
	}
	if err := a.c.AuthService.Register(ctx, email, password); err != nil {
		return err
	}
	a.palette.Success.Fprintf(a.out, "Registered and logged in as %s\n", email)
	return nil
}

func runLogin(ctx context.Context, a *App, args []string) error {
	email, password, err := a.credentials(args)
	if err != nil {
		return err
	}
	if err := a.c.AuthService.Login(ctx, email, password); err != nil {
		return err
	}
	a.palette.Success.Fprintf(a.out, "Logged in as %s\n", email)
	return nil
}

func runLogout(_ context.Context, a *App, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	if err := a.c.AuthService.Logout(); err != nil {
		return err
	}
	a.palette.Success.Fprintln(a.out, "Logged out")
	return nil
}

func runStatus(ctx context.Context, a *App, _ []string) error {
	if claims, err := a.c.Tokens.Claims(); errors.Is(err, session.ErrNoSession) {
		fmt.Fprintln(a.out, "session: logged out")
	} else if err != nil {
		fmt.Fprintln(a.out, "session: logged in (opaque token)")
	} else {
		fmt.Fprintf(a.out, "session: logged in as %s", claims.Subject)
		switch {
		case claims.ExpiresAt.IsZero():
		case claims.Expired(time.Now()):
			a.palette.Error.Fprint(a.out, " (expired)")
		default:
			a.palette.Muted.Fprintf(a.out, " (until %s)", claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(a.out)
	}

	fmt.Fprintf(a.out, "theme:   %s\n", a.c.Themes.Get())

	if err := a.c.Api.Health(ctx); err != nil {
		fmt.Fprint(a.out, "backend: ")
		a.palette.Error.Fprintln(a.out, service.UserMessage(err))
		return nil
	}
	fmt.Fprint(a.out, "backend: ")
	a.palette.Success.Fprintln(a.out, "ok")
	return nil
}

func runChats(ctx context.Context, a *App, _ []string) error {
	if err := a.c.ChatService.Refresh(ctx); err != nil {
		return err
	}
	st := a.c.ChatService.State()
	if len(st.Chats) == 0 {
		a.palette.Muted.Fprintln(a.out, "No chats yet. Run: dojchat new")
		return nil
	}
	for _, chat := range st.Chats {
		fmt.Fprintf(a.out, "%-36s  %-9s ", chat.Id, chat.ShortLabel())
		a.palette.Muted.Fprintln(a.out, chat.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runNew(ctx context.Context, a *App, _ []string) error {
	chat, err := a.c.ChatService.NewChat(ctx)
	if err != nil {
		return err
	}
	a.palette.Success.Fprintf(a.out, "Created %s\n", chat.ShortLabel())
	fmt.Fprintln(a.out, chat.Id)
	return nil
}

// activate selects chatId, or the newest chat when chatId is empty.
func (a *App) activate(ctx context.Context, chatId string) error {
	if chatId == "" {
		if err := a.c.ChatService.Refresh(ctx); err != nil {
			return err
		}
		if a.c.ChatService.State().ActiveChatId == "" {
			return service.ErrNoActiveChat
		}
		return nil
	}
	return a.c.ChatService.Select(ctx, chatId)
}

func runMessages(ctx context.Context, a *App, args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	var chatId string
	if len(args) == 1 {
		chatId = args[0]
	}
	if err := a.activate(ctx, chatId); err != nil {
		return err
	}

	groups := a.c.ChatService.Groups()
	if len(groups) == 0 {
		a.palette.Muted.Fprintln(a.out, "No messages yet.")
	}
	for _, g := range groups {
		a.palette.DateHeader(a.out, g.DateLabel)
		for _, m := range g.Messages {
			a.palette.Message(a.out, m)
		}
	}
	return nil
}

func runSend(ctx context.Context, a *App, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	if err := a.activate(ctx, args[0]); err != nil {
		return err
	}

	reply, err := a.c.ChatService.Send(ctx, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	a.palette.Message(a.out, *reply)
	return nil
}

func runTheme(_ context.Context, a *App, args []string) error {
	var err error
	switch {
	case len(args) == 0:
	case len(args) > 1:
		return errUsage
	case args[0] == "toggle":
		_, err = a.c.Themes.Toggle()
	default:
		t, parseErr := entity.ParseTheme(args[0])
		if parseErr != nil {
			return &apiclient.ValidationError{Field: "theme", Message: parseErr.Error()}
		}
		err = a.c.Themes.Set(t)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "theme: %s\n", a.c.Themes.Get())
	return nil
}

func runOpen(_ context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	decision := a.c.Router.Resolve(args[0])
	if decision.Allow {
		a.palette.Success.Fprintf(a.out, "%s: allowed\n", decision.Target)
		return nil
	}
	a.palette.Accent.Fprintf(a.out, "%s: redirect to %s\n", args[0], decision.Redirect)
	return nil
}

func runLogs(_ context.Context, a *App, args []string) error {
	fs := newFlags("logs", a.out)
	level := fs.String("level", "", "only entries of this level (DEBUG, INFO, WARN, ERROR)")
	limit := fs.Int("n", 20, "number of entries")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	entries, err := a.c.Logger.GetLogs(strings.ToUpper(*level), *limit)
	if err != nil {
		return fmt.Errorf("read logs: %w", err)
	}
	for _, e := range entries {
		a.palette.Muted.Fprintf(a.out, "%s ", e.Timestamp)
		fmt.Fprintf(a.out, "%-5s [%s] %s\n", e.Level, e.Module, e.Message)
	}
	return nil
}
