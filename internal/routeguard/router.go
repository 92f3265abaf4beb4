package routeguard

import (
	"path"
	"strings"
)

type Access int

const (
	Public Access = iota
	Protected
)

// Router maps a request path to its view and applies the guard to
// protected views. Sub-paths ("/chat/new") belong to their first segment.
type Router struct {
	guard *Guard
	views map[string]Access
}

func NewRouter(guard *Guard) *Router {
	return &Router{
		guard: guard,
		views: map[string]Access{
			HomePath:     Public,
			LoginPath:    Public,
			RegisterPath: Public,
			LogoutPath:   Public,
			ChatPath:     Protected,
			ProfilePath:  Protected,
			SettingsPath: Protected,
		},
	}
}

// View returns the top-level view a path belongs to.
func View(p string) string {
	clean := path.Clean("/" + p)
	if clean == "/" {
		return HomePath
	}
	first := strings.SplitN(strings.TrimPrefix(clean, "/"), "/", 2)[0]
	return "/" + first
}

// Resolve decides what to render for p. Unknown paths go home.
func (r *Router) Resolve(p string) Decision {
	view := View(p)
	access, known := r.views[view]
	if !known {
		return Decision{Redirect: HomePath}
	}
	if access == Protected {
		return r.guard.Check(p)
	}
	return Decision{Allow: true, Target: p}
}

func (r *Router) IsProtected(p string) bool {
	return r.views[View(p)] == Protected
}
