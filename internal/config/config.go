package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	OAuth2Google OAuth2GoogleConfig
	Storage      StorageConfig
	SMTP         SMTPConfig
	Face         FaceConfig
	Attendance   AttendanceConfig
	Cache        CacheConfig
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
	LoginURL    string
	// Timezone decides the calendar day for attendance and the cron jobs.
	Timezone    string
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Enabled reports whether Google sign-in is configured.
func (o OAuth2GoogleConfig) Enabled() bool {
	return o.ClientID != "" && o.ClientSecret != "" && o.RedirectURL != ""
}

// StorageConfig selects where avatars and face photos are kept.
type StorageConfig struct {
	Driver    string // "local" or "s3"
	LocalPath string
	BaseURL   string
	S3Bucket  string
	S3Region  string
	S3Public  string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether outgoing mail is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

type FaceConfig struct {
	ServiceURL     string
	MatchThreshold float64
	// CheckinRate is the sustained number of check-in attempts allowed per employee per minute.
	CheckinRate  float64
	CheckinBurst int
}

type AttendanceConfig struct {
	ExpectedDailyHours float64
}

type CacheConfig struct {
	JanitorInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
		slog.Warn("No .env file found, using process environment")
	}

	config := &Config{}

	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		URL:      getEnv("DATABASE_URL", ""),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hrx"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:5173"}),
		LoginURL:    getEnv("APP_LOGIN_URL", "http://localhost:5173/"),
		Timezone:    getEnv("APP_TIMEZONE", "Local"),
	}

	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "12h"),
	}

	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		Scopes: getEnvSlice("GOOGLE_SCOPES", []string{
			"https://www.googleapis.com/auth/userinfo.email",
		}),
	}

	config.Storage = StorageConfig{
		Driver:    strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		LocalPath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
		BaseURL:   getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
		S3Bucket:  getEnv("S3_BUCKET", ""),
		S3Region:  getEnv("S3_REGION", ""),
		S3Public:  getEnv("S3_PUBLIC_URL", ""),
	}

	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		User:     getEnv("SMTP_USER", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", ""),
	}

	threshold, err := getEnvFloat("FACE_MATCH_THRESHOLD", 0.6)
	if err != nil {
		return nil, err
	}
	checkinRate, err := getEnvFloat("FACE_CHECKIN_RATE", 6)
	if err != nil {
		return nil, err
	}
	checkinBurst, err := getEnvInt("FACE_CHECKIN_BURST", 3)
	if err != nil {
		return nil, err
	}
	config.Face = FaceConfig{
		ServiceURL:     getEnv("FACE_SERVICE_URL", "http://localhost:5001"),
		MatchThreshold: threshold,
		CheckinRate:    checkinRate,
		CheckinBurst:   checkinBurst,
	}

	expected, err := getEnvFloat("EXPECTED_DAILY_HOURS", 8)
	if err != nil {
		return nil, err
	}
	config.Attendance = AttendanceConfig{ExpectedDailyHours: expected}

	janitor, err := getEnvDuration("CACHE_JANITOR_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}
	config.Cache = CacheConfig{JanitorInterval: janitor}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" && c.Database.Password == "" {
		return fmt.Errorf("DATABASE_URL or DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.ParseDuration(c.JWT.RefreshExpiration); err != nil {
		return fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_TIME: %w", err)
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Face.MatchThreshold <= 0 || c.Face.MatchThreshold > 1 {
		return fmt.Errorf("FACE_MATCH_THRESHOLD must be in (0, 1]")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if c.Cache.JanitorInterval <= 0 {
		return fmt.Errorf("CACHE_JANITOR_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the configured time zone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
