// Package cli is the terminal front-end. Each subcommand maps to a view of
// the web front-end and goes through the same route guard and page logic.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"doj-chatbot-client/internal/bootstrap"
	"doj-chatbot-client/internal/routeguard"
	"doj-chatbot-client/internal/service"
	"doj-chatbot-client/internal/ui"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

type command struct {
	name    string
	args    string
	summary string
	view    string // guarded view the command belongs to
	run     func(ctx context.Context, a *App, args []string) error
}

// App runs one invocation of the CLI.
type App struct {
	c       *bootstrap.Container
	in      *bufio.Reader
	out     io.Writer
	palette *ui.Palette
}

func New(c *bootstrap.Container, in io.Reader, out io.Writer) *App {
	return &App{
		c:       c,
		in:      bufio.NewReader(in),
		out:     out,
		palette: ui.NewPalette(c.Themes.Get()),
	}
}

func commands() []command {
	return []command{
		{"register", "<email> [password]", "create an account and log in", routeguard.RegisterPath, runRegister},
		{"login", "<email> [password]", "log in", routeguard.LoginPath, runLogin},
		{"logout", "", "end the session", routeguard.LogoutPath, runLogout},
		{"status", "", "show session, theme and backend health", routeguard.HomePath, runStatus},
		{"chats", "", "list chats, newest first", routeguard.ChatPath, runChats},
		{"new", "", "create a chat", routeguard.ChatPath, runNew},
		{"messages", "[chat-id]", "print a chat's messages", routeguard.ChatPath, runMessages},
		{"send", "<chat-id> <text...>", "ask a question in a chat", routeguard.ChatPath, runSend},
		{"chat", "[chat-id]", "interactive chat", routeguard.ChatPath, runChat},
		{"theme", "[light|dark|toggle]", "show or change the theme", routeguard.SettingsPath, runTheme},
		{"open", "<path>", "show where a page path leads", routeguard.HomePath, runOpen},
		{"logs", "[-level L] [-n N]", "show recent log entries", routeguard.HomePath, runLogs},
	}
}

// Run executes args (without the program name) and returns the exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.usage()
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}

	var cmd *command
	for _, c := range commands() {
		if c.name == args[0] {
			cmd = &c
			break
		}
	}
	if cmd == nil {
		a.palette.Error.Fprintf(a.out, "unknown command %q\n", args[0])
		a.usage()
		return exitUsage
	}

	// Same gate as the web pages: protected commands need a session.
	if decision := a.c.Router.Resolve(cmd.view); !decision.Allow {
		a.palette.Error.Fprintln(a.out, "You are not logged in.")
		fmt.Fprintln(a.out, "Run: dojchat login <email>")
		return exitError
	}

	err := cmd.run(ctx, a, args[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintf(a.out, "usage: dojchat %s %s\n", cmd.name, cmd.args)
		return exitUsage
	default:
		a.palette.Error.Fprintln(a.out, service.UserMessage(err))
		a.c.Logger.Debug("CLI", "Command failed", map[string]interface{}{"command": cmd.name, "error": err.Error()})
		return exitError
	}
}

func (a *App) usage() {
	a.palette.Accent.Fprintln(a.out, "dojchat: Department of Justice chatbot client")
	fmt.Fprintln(a.out, "\nCommands:")
	for _, c := range commands() {
		fmt.Fprintf(a.out, "  %-9s %-22s %s\n", c.name, c.args, c.summary)
	}
}

// prompt reads one line from the input, "" at EOF.
func (a *App) prompt(label string) (string, error) {
	a.palette.Muted.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newFlags(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}
