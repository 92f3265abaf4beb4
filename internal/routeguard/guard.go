package routeguard

const (
	HomePath     = "/"
	LoginPath    = "/login"
	RegisterPath = "/register"
	LogoutPath   = "/logout"
	ChatPath     = "/chat"
	ProfilePath  = "/profile"
	SettingsPath = "/settings"
)

// TokenReader is the read side of the token store.
type TokenReader interface {
	Get() (string, bool)
}

// Decision is the outcome of a navigation attempt: either render Target, or
// go to Redirect instead.
type Decision struct {
	Allow    bool
	Target   string
	Redirect string
}

// Guard gates views that need a session. It only checks that a token is
// present; validity is for the server to judge.
type Guard struct {
	tokens TokenReader
}

func NewGuard(tokens TokenReader) *Guard {
	return &Guard{tokens: tokens}
}

// Check decides fresh on every call. Without a token the answer is always
// the login page and the original target is dropped.
func (g *Guard) Check(target string) Decision {
	if _, ok := g.tokens.Get(); ok {
		return Decision{Allow: true, Target: target}
	}
	return Decision{Redirect: LoginPath}
}
