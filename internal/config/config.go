package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config chứa toàn bộ application configuration.
// Populated from environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Admin    AdminConfig
	Toss     TossConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	SiteURL     string // public site URL, used to build payment redirect URLs
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

// SessionConfig is used by the identity resolver to verify signed
// session_token cookies. Legacy JSON cookies need no secret.
type SessionConfig struct {
	JWTSecret string
}

// AdminConfig carries the settlement/dashboard allow-list.
// The gate itself receives this list at construction (no globals).
type AdminConfig struct {
	Emails []string
}

// TossConfig holds the payment gateway confirm-API credentials.
type TossConfig struct {
	SecretKey  string
	ConfirmURL string
}

// defaultAdminEmail is the fallback when ADMIN_EMAILS is not configured.
const defaultAdminEmail = "dlwnstjr37@gmail.com"

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Autobomber API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			SiteURL:     getEnv("SITE_URL", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "autobomber"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			JWTSecret: getEnv("SESSION_JWT_SECRET", "change-me-in-production"),
		},
		Admin: AdminConfig{
			Emails: getEnvList("ADMIN_EMAILS", []string{defaultAdminEmail}),
		},
		Toss: TossConfig{
			SecretKey:  getEnv("TOSSPAY_SECRET_KEY", ""),
			ConfirmURL: getEnv("TOSSPAY_CONFIRM_URL", "https://api.tosspayments.com/v1/payments/confirm"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.Session.JWTSecret == "change-me-in-production" {
			return fmt.Errorf("SESSION_JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.Toss.SecretKey == "" {
			fmt.Println("WARNING: TOSSPAY_SECRET_KEY not set - payment confirmation will not work")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvList parses a comma-separated env var, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	var values []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
