package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	Driver   string
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type NATSConfig struct {
	URL     string
	Subject string
}

type Settings struct {
	Port string

	Database DatabaseConfig

	JWTSecret         string
	ActionTokenSecret string
	ActionTokenMaxAge time.Duration
	PublicBaseURL     string

	Notifier        string
	NotifyWorkers   int
	NotifyQueueSize int
	SMTP            SMTPConfig
	NATS            NATSConfig

	MemcacheURL string

	LogLevel  string
	LogFormat string
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// Load reads settings from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Settings, error) {
	// Missing .env is fine in production.
	_ = godotenv.Load()

	s := &Settings{
		Port: getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     getEnv("DB_PORT", "5432"),
		},
		JWTSecret:         os.Getenv("JWT_SECRET"),
		ActionTokenSecret: os.Getenv("ACTION_TOKEN_SECRET"),
		ActionTokenMaxAge: getEnvDuration("ACTION_TOKEN_MAX_AGE", 7*24*time.Hour),
		PublicBaseURL:     getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		Notifier:          getEnv("NOTIFIER", "log"),
		NotifyWorkers:     getEnvInt("NOTIFY_WORKERS", 2),
		NotifyQueueSize:   getEnvInt("NOTIFY_QUEUE_SIZE", 256),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "no-reply@example.com"),
		},
		NATS: NATSConfig{
			URL:     os.Getenv("NATS_URL"),
			Subject: getEnv("NATS_SUBJECT", "follow.requests"),
		},
		MemcacheURL: os.Getenv("MEM_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
	}

	if s.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	if s.ActionTokenSecret == "" {
		s.ActionTokenSecret = s.JWTSecret
	}

	return s, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}
