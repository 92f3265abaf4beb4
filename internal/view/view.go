// Package view renders the web front-end's pages from templates embedded in
// the binary. Every page is drawn inside the shared layout.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"doj-chatbot-client/internal/entity"
)

//go:embed templates/*.html
var templatesFS embed.FS

const layoutFile = "templates/layout.html"

var pageNames = []string{"home", "login", "register", "chat", "profile", "settings"}

// Page is the data every template receives. Data carries the page-specific
// part.
type Page struct {
	Title         string
	Path          string
	Theme         entity.Theme
	Authenticated bool
	CSRF          string
	Error         string
	Data          interface{}
}

// Engine satisfies fiber.Views.
type Engine struct {
	pages map[string]*template.Template
}

func NewEngine() *Engine {
	return &Engine{}
}

var funcs = template.FuncMap{
	"clock": func(t time.Time) string {
		return t.Local().Format("15:04")
	},
	"day": func(t time.Time) string {
		return t.Local().Format("Mon, 02 Jan 2006")
	},
}

// Load parses the layout together with each page.
func (e *Engine) Load() error {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, layoutFile, "templates/"+name+".html")
		if err != nil {
			return fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	e.pages = pages
	return nil
}

// Render writes page name. Layouts are fixed, so the layout argument is
// ignored.
func (e *Engine) Render(w io.Writer, name string, binding interface{}, _ ...string) error {
	if e.pages == nil {
		if err := e.Load(); err != nil {
			return err
		}
	}

	tmpl, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", binding)
}
