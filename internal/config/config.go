package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Telegram
	BotToken      string
	BotAPIURL     string
	WebhookSecret string

	// Clan
	ClanName    string
	OwnerID     int64
	AdminChatID int64
	ClanChatID  int64

	// Roster
	RosterURL         string
	ReconcileInterval time.Duration
	FetchTimeout      time.Duration
	InactiveAfterDays int

	// Form
	SessionTTL time.Duration

	// Admin API
	AdminToken string

	// Server
	Port string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "guilder_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		BotToken:      getEnv("BOT_TOKEN", ""),
		BotAPIURL:     getEnv("BOT_API_URL", "https://api.telegram.org"),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),

		ClanName:    getEnv("CLAN_NAME", "IOT"),
		OwnerID:     parseInt64(getEnv("OWNER_ID", "0")),
		AdminChatID: parseInt64(getEnv("ADMIN_CHAT_ID", "0")),
		ClanChatID:  parseInt64(getEnv("CLAN_CHAT_ID", "0")),

		RosterURL:         getEnv("ROSTER_URL", ""),
		ReconcileInterval: parseDuration(getEnv("RECONCILE_INTERVAL", "30m"), 30*time.Minute),
		FetchTimeout:      parseDuration(getEnv("FETCH_TIMEOUT", "15s"), 15*time.Second),
		InactiveAfterDays: parseInt(getEnv("INACTIVE_AFTER_DAYS", "14"), 14),

		SessionTTL: parseDuration(getEnv("SESSION_TTL", "2h"), 2*time.Hour),

		AdminToken: getEnv("ADMIN_TOKEN", ""),

		Port: getEnv("PORT", "8080"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseInt64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
