// Package config содержит логику чтения конфигурации витрины cheapplay.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации витрины cheapplay.
type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseURI   string `env:"DATABASE_URI"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	SMTP  SMTPConfig
	Auth  AuthConfig
	Redis RedisConfig
}

// SMTPConfig описывает SMTP-ретранслятор для писем клиентам.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM"`
}

// AuthConfig описывает проверку сессий администраторов.
// Если задан JWTSecret, токены проверяются локально, иначе запросом к URL.
type AuthConfig struct {
	JWTSecret   string   `env:"AUTH_JWT_SECRET"`
	Audience    string   `env:"AUTH_JWT_AUDIENCE" envDefault:"authenticated"`
	URL         string   `env:"AUTH_URL"`
	APIKey      string   `env:"AUTH_API_KEY"`
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`
}

// RedisConfig описывает хранилище счётчиков ограничителя частоты запросов.
type RedisConfig struct {
	Addr       string        `env:"REDIS_ADDR"`
	Password   string        `env:"REDIS_PASSWORD"`
	RateLimit  int           `env:"RATE_LIMIT" envDefault:"10"`
	RateWindow time.Duration `env:"RATE_WINDOW" envDefault:"1m"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envBaseURL := cfg.PublicBaseURL

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.PublicBaseURL, "b", "", "public base URL used in email links")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envBaseURL != "" {
		cfg.PublicBaseURL = envBaseURL
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}
