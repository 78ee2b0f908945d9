package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string
	Location    *time.Location
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string

	// Аутентификация
	JWTSecret      string
	JWTLifetime    time.Duration
	GoogleClientID string
	// Супер-админ: единственный, кому доступна страница управления ролями,
	// и кого нельзя удалить из admins.
	PrimaryAdmin string

	// Генерация квизов
	AnthropicAPIKey string
	AIModel         string
	AIDailyLimit    int

	// Поиск книг (Google Books работает и без ключа, но с ключом — без
	// жёстких анонимных квот)
	BooksAPIKey string

	// Необязательные телеграм-алерты админам
	BotToken     string
	AdminChatIDs []int64
}

func Load() (*Config, error) {
	tz := getenv("TZ", "America/Denver")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	chatIDs, err := parseIDs(os.Getenv("ADMIN_CHAT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_CHAT_IDS: %w", err)
	}

	lifetime := 24 * time.Hour
	if v := os.Getenv("JWT_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("JWT_LIFETIME: %w", err)
		}
		lifetime = d
	}

	dailyLimit := 5
	if v := os.Getenv("AI_DAILY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("AI_DAILY_LIMIT: bad value %q", v)
		}
		dailyLimit = n
	}

	cfg := &Config{
		DatabaseURL:     mustEnv("DATABASE_URL"),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		Location:        loc,
		LogLevel:        getenv("LOG_LEVEL", "info"),
		Env:             getenv("ENV", "dev"),
		SentryDSN:       os.Getenv("SENTRY_DSN"),
		JWTSecret:       mustEnv("JWT_SECRET"),
		JWTLifetime:     lifetime,
		GoogleClientID:  mustEnv("GOOGLE_CLIENT_ID"),
		PrimaryAdmin:    strings.ToLower(getenv("PRIMARY_ADMIN", "techride.trevor@gmail.com")),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AIModel:         getenv("AI_MODEL", "claude-sonnet-4-5-20250929"),
		AIDailyLimit:    dailyLimit,
		BooksAPIKey:     os.Getenv("GOOGLE_BOOKS_API_KEY"),
		BotToken:        os.Getenv("BOT_TOKEN"),
		AdminChatIDs:    chatIDs,
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
