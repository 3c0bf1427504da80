package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
)

const (
	AuthModeSession    = "session"
	AuthModePassphrase = "passphrase"
)

type Config struct {
	Port        string
	Env         string
	LogLevel    string
	FrontendURL string
	StaticDir   string

	AuthMode           string
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string
	SessionSecret      string
	CalendarID         string
	LegacyOwnerEmail   string

	AppPassword        string
	AppPasswordHash    string
	OperatorEmail      string
	GoogleRefreshToken string

	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	TokenEncryptionKey string

	RedisAddr     string
	RedisPassword string

	StorageType       string
	ExportDir         string
	ExportBucket      string
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	ExportSchedule    string
}

func LoadConfig() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "/"),
		StaticDir:   os.Getenv("STATIC_DIR"),

		AuthMode:           strings.ToLower(getEnv("AUTH_MODE", AuthModeSession)),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		CalendarID:         getEnv("CALENDAR_ID", "primary"),
		LegacyOwnerEmail:   os.Getenv("LEGACY_OWNER_EMAIL"),

		AppPassword:        os.Getenv("APP_PASSWORD"),
		AppPasswordHash:    os.Getenv("APP_PASSWORD_HASH"),
		OperatorEmail:      os.Getenv("OPERATOR_EMAIL"),
		GoogleRefreshToken: os.Getenv("GOOGLE_REFRESH_TOKEN"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),

		TokenEncryptionKey: os.Getenv("TOKEN_ENCRYPTION_KEY"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		StorageType:       strings.ToLower(getEnv("STORAGE_TYPE", "local")),
		ExportDir:         getEnv("EXPORT_DIR", "./exports"),
		ExportBucket:      os.Getenv("EXPORT_BUCKET"),
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		ExportSchedule:    os.Getenv("EXPORT_SCHEDULE"),
	}
}

// Validate reports the first configuration problem that would prevent the
// selected auth mode from serving requests.
func (c *Config) Validate() error {
	switch c.AuthMode {
	case AuthModeSession:
		if c.SessionSecret == "" {
			return errors.New("SESSION_SECRET is required in session mode")
		}
		if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
			return errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required in session mode")
		}
	case AuthModePassphrase:
		if c.AppPassword == "" && c.AppPasswordHash == "" {
			return errors.New("APP_PASSWORD or APP_PASSWORD_HASH is required in passphrase mode")
		}
		if c.OperatorEmail == "" {
			return errors.New("OPERATOR_EMAIL is required in passphrase mode")
		}
		if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
			return errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required in passphrase mode")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}

	if c.ExportSchedule != "" {
		if _, err := cron.ParseStandard(c.ExportSchedule); err != nil {
			return fmt.Errorf("invalid EXPORT_SCHEDULE: %w", err)
		}
	}

	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// DSN builds the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.DBDriver == "sqlite" {
		return getEnv("SQLITE_PATH", "calendar.db")
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv retrieves an environment variable or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

