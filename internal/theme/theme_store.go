package theme

import (
	"doj-chatbot-client/internal/entity"
	"doj-chatbot-client/internal/pkg/logger"
	"doj-chatbot-client/pkg/kvstore"
)

const themeKey = "theme"

// ThemeStore holds the light/dark preference, persisted next to the token.
type ThemeStore struct {
	value  *kvstore.Observed[entity.Theme]
	logger logger.ILogger
}

// NewThemeStore loads the stored theme, falling back to def. A stored value
// that is not a known theme is ignored.
func NewThemeStore(store kvstore.Store, def entity.Theme, log logger.ILogger) (*ThemeStore, error) {
	if _, err := entity.ParseTheme(string(def)); err != nil {
		def = entity.ThemeLight
	}

	value, err := kvstore.NewObserved(store, themeKey, def)
	if err != nil {
		return nil, err
	}
	if _, err := entity.ParseTheme(string(value.Get())); err != nil {
		log.Warn("ThemeStore", "Ignoring stored theme", map[string]interface{}{"theme": value.Get()})
		if err := value.Set(def); err != nil {
			return nil, err
		}
	}

	return &ThemeStore{value: value, logger: log}, nil
}

func (s *ThemeStore) Get() entity.Theme {
	return s.value.Get()
}

func (s *ThemeStore) Set(t entity.Theme) error {
	if _, err := entity.ParseTheme(string(t)); err != nil {
		return err
	}
	return s.value.Set(t)
}

// Toggle flips the theme and returns the new one.
func (s *ThemeStore) Toggle() (entity.Theme, error) {
	next := s.Get().Toggle()
	return next, s.Set(next)
}

func (s *ThemeStore) Subscribe(fn func(entity.Theme)) func() {
	return s.value.Subscribe(fn)
}
