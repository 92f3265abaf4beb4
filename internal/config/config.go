package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App   AppConfig
	Api   ApiConfig
	State StateConfig
}

type AppConfig struct {
	Port         string
	Environment  string
	LogFilePath  string
	ThemeDefault string
}

type ApiConfig struct {
	BaseURL string
	Timeout time.Duration
}

type StateConfig struct {
	Backend   string // "bolt", "redis" or "memory"
	Path      string
	RedisURL  string
	Namespace string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:         getEnv("APP_PORT", "5173"),
			Environment:  getEnv("GO_ENV", "development"),
			LogFilePath:  getEnv("LOG_FILE_PATH", "dojchat.log"),
			ThemeDefault: getEnv("THEME_DEFAULT", "light"),
		},
		Api: ApiConfig{
			BaseURL: getEnv("API_URL", "http://localhost:8000"),
			Timeout: time.Duration(getEnvAsInt("API_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		State: StateConfig{
			Backend:   getEnv("STATE_BACKEND", "bolt"),
			Path:      getEnv("STATE_PATH", "dojchat.db"),
			RedisURL:  getEnv("REDIS_URL", "redis://localhost:6379"),
			Namespace: getEnv("STATE_NAMESPACE", "dojchat"),
		},
	}
}

// getEnv treats an empty value like an unset one, matching how the web
// build falls back when API_URL is blank.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}
