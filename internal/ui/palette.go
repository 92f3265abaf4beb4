// Package ui holds the terminal color palette. Each theme maps to a set of
// fatih/color styles; color.NoColor switches all of them off.
package ui

import (
	"fmt"
	"io"

	"doj-chatbot-client/internal/entity"

	"github.com/fatih/color"
)

type Palette struct {
	User    *color.Color
	Bot     *color.Color
	Muted   *color.Color
	Accent  *color.Color
	Success *color.Color
	Error   *color.Color
}

func NewPalette(t entity.Theme) *Palette {
	if t == entity.ThemeDark {
		return &Palette{
			User:    color.New(color.FgHiCyan, color.Bold),
			Bot:     color.New(color.FgHiWhite),
			Muted:   color.New(color.FgHiBlack),
			Accent:  color.New(color.FgHiBlue),
			Success: color.New(color.FgHiGreen),
			Error:   color.New(color.FgHiRed),
		}
	}
	return &Palette{
		User:    color.New(color.FgBlue, color.Bold),
		Bot:     color.New(color.FgBlack),
		Muted:   color.New(color.FgHiBlack),
		Accent:  color.New(color.FgMagenta),
		Success: color.New(color.FgGreen),
		Error:   color.New(color.FgRed),
	}
}

// Message prints one chat line, "you ›" or "bot ›" followed by the text and
// its local time.
func (p *Palette) Message(w io.Writer, m entity.Message) {
	who, style := "bot", p.Bot
	if m.FromUser() {
		who, style = "you", p.User
	}
	style.Fprintf(w, "%s › ", who)
	fmt.Fprint(w, m.Text)
	p.Muted.Fprintf(w, "  %s", m.Timestamp.Local().Format("15:04"))
	switch m.Status {
	case entity.MessagePending:
		p.Muted.Fprint(w, "  sending…")
	case entity.MessageFailed:
		p.Error.Fprint(w, "  not delivered")
	}
	fmt.Fprintln(w)
}

// DateHeader separates message groups.
func (p *Palette) DateHeader(w io.Writer, label string) {
	p.Muted.Fprintf(w, "── %s ──\n", label)
}
