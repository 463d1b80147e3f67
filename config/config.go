// Package config loads and validates application configuration from
// environment variables. Required variables that are missing, and optional
// variables that fail to parse, are collected and reported together so that a
// misconfigured deployment fails once with the full list instead of dying on
// the first problem.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DatabaseConfig holds connection settings for the PostgreSQL pool.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxConns int
}

// AuthConfig holds authentication and token settings. The secret key signs
// both session tokens and password-reset tokens; its absence is a fatal
// configuration error.
type AuthConfig struct {
	SecretKey        string
	SessionDuration  time.Duration // plain login sessions
	RememberDuration time.Duration // sessions created with "remember me"
	ResetDuration    time.Duration // password-reset tokens
	BcryptCost       int           // work factor for password hashing
}

// MailConfig holds SMTP settings for outbound mail. When Host is empty the
// application falls back to a log-only mailer, which is useful in development.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    string
	BaseURL string // external base URL used when building links in emails
}

// UploadConfig holds settings for stored profile pictures.
type UploadConfig struct {
	Dir string
}

// AppConfig is the top-level configuration for the application.
type AppConfig struct {
	Database *DatabaseConfig
	Auth     *AuthConfig
	Mail     *MailConfig
	Server   *ServerConfig
	Upload   *UploadConfig
}

func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the connection pool within sane bounds.
func clampPoolSize(size int, varName string, errs *[]string) int {
	if size < 2 {
		*errs = append(*errs, fmt.Sprintf("pool size for %s (%d) is less than minimum 2, clamping to 2", varName, size))
		return 2
	}
	if size > 100 {
		*errs = append(*errs, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100, clamping to 100", varName, size))
		return 100
	}
	return size
}

// LoadConfig reads the environment and returns a populated AppConfig, or a
// single aggregated error listing everything that was wrong.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	// Database
	dbUser := getRequiredEnv("DB_USER", &errs)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errs)
	dbName := getRequiredEnv("DB_NAME", &errs)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errs)
	maxConns := clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errs), "DB_POOL_SIZE", &errs)

	database := &DatabaseConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
		MaxConns: maxConns,
	}

	// Auth. The default reset-token lifetime mirrors the classic 1800 second
	// horizon; all durations are overridable per deployment.
	secretKey := getRequiredEnv("APP_SECRET_KEY", &errs)
	authConfig := &AuthConfig{
		SecretKey:        secretKey,
		SessionDuration:  getOptionalEnvDuration("SESSION_DURATION", 24*time.Hour, &errs),
		RememberDuration: getOptionalEnvDuration("SESSION_REMEMBER_DURATION", 30*24*time.Hour, &errs),
		ResetDuration:    getOptionalEnvDuration("RESET_TOKEN_DURATION", 30*time.Minute, &errs),
		BcryptCost:       getOptionalEnvInt("BCRYPT_COST", bcrypt.DefaultCost, &errs),
	}
	if authConfig.BcryptCost < bcrypt.MinCost || authConfig.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Sprintf("invalid BCRYPT_COST %d: must be between %d and %d",
			authConfig.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}

	// Mail. Optional: without SMTP_HOST the app logs reset links instead of
	// sending them.
	mailConfig := &MailConfig{
		Host:     getOptionalEnv("SMTP_HOST", ""),
		Port:     getOptionalEnvInt("SMTP_PORT", 587, &errs),
		Username: getOptionalEnv("SMTP_USERNAME", ""),
		Password: getOptionalEnv("SMTP_PASSWORD", ""),
		From:     getOptionalEnv("MAIL_FROM", "noreply@localhost"),
	}

	serverConfig := &ServerConfig{
		Port:    getOptionalEnv("PORT", "8080"),
		BaseURL: strings.TrimRight(getOptionalEnv("APP_BASE_URL", "http://localhost:8080"), "/"),
	}

	uploadConfig := &UploadConfig{
		Dir: getOptionalEnv("UPLOAD_DIR", "./uploads/profile_pics"),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		Database: database,
		Auth:     authConfig,
		Mail:     mailConfig,
		Server:   serverConfig,
		Upload:   uploadConfig,
	}, nil
}
