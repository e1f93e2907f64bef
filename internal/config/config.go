package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/random"
)

// Config is the complete runtime configuration of the portal. It is built once
// at startup and passed by reference to the components that need it.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Storage  StorageConfig  `toml:"storage"`
	Stripe   StripeConfig   `toml:"stripe"`
	Email    EmailConfig    `toml:"email"`
	Auth     AuthConfig     `toml:"auth"`
	Queue    QueueConfig    `toml:"queue"`
}

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Port               string   `toml:"port"`
	SiteURL            string   `toml:"site_url"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	Environment        string   `toml:"environment"`
	// APISunset (YYYY-MM-DD) marks the current API version deprecated
	APISunset          string   `toml:"api_sunset"`
	APISunsetMessage   string   `toml:"api_sunset_message"`
}

// DatabaseConfig holds Postgres settings
type DatabaseConfig struct {
	URL         string `toml:"url"`
	AutoMigrate bool   `toml:"auto_migrate"`
}

// RedisConfig holds cache and queue broker settings
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StorageConfig holds object storage settings for customer uploads
type StorageConfig struct {
	Endpoint  string        `toml:"endpoint"`
	AccessKey string        `toml:"access_key"`
	SecretKey string        `toml:"secret_key"`
	UseSSL    bool          `toml:"use_ssl"`
	Bucket    string        `toml:"bucket"`
	URLExpiry time.Duration `toml:"url_expiry"`
}

// StripeConfig holds payment processor credentials
type StripeConfig struct {
	SecretKey      string `toml:"secret_key"`
	PublishableKey string `toml:"publishable_key"`
	WebhookSecret  string `toml:"webhook_secret"`
	Currency       string `toml:"currency"`
}

// EmailConfig holds transactional email settings
type EmailConfig struct {
	ResendAPIKey string `toml:"resend_api_key"`
	From         string `toml:"from"`
	AdminEmail   string `toml:"admin_email"`
}

// AuthConfig holds customer session and admin API settings
type AuthConfig struct {
	MagicLinkTTL   time.Duration `toml:"magic_link_ttl"`
	SessionTTL     time.Duration `toml:"session_ttl"`
	CookieName     string        `toml:"cookie_name"`
	CookieSecure   bool          `toml:"cookie_secure"`
	AdminJWTSecret string        `toml:"admin_jwt_secret"`
	AdminJWKSURL   string        `toml:"admin_jwks_url"`
}

// QueueConfig holds asynq worker settings
type QueueConfig struct {
	Enabled     bool `toml:"enabled"`
	Concurrency int  `toml:"concurrency"`
	MaxRetry    int  `toml:"max_retry"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               "8080",
			SiteURL:            "http://localhost:8080",
			CORSAllowedOrigins: []string{"*"},
			Environment:        "development",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Storage: StorageConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "customer-uploads",
			URLExpiry: 24 * time.Hour,
		},
		Stripe: StripeConfig{
			Currency: "usd",
		},
		Email: EmailConfig{
			From: "Billing <billing@localhost>",
		},
		Auth: AuthConfig{
			MagicLinkTTL: time.Hour,
			SessionTTL:   30 * 24 * time.Hour,
			CookieName:   "portal_session",
		},
		Queue: QueueConfig{
			Enabled:     true,
			Concurrency: 5,
			MaxRetry:    5,
		},
	}
}

// Load builds the configuration from an optional TOML file, an optional .env
// file and the process environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN: could not read .env file: %v", err)
	}

	cfg.applyEnv()

	if cfg.Auth.AdminJWTSecret == "" && cfg.Auth.AdminJWKSURL == "" {
		cfg.Auth.AdminJWTSecret = random.String(32)
		log.Printf("WARNING: ADMIN_JWT_SECRET not set, using a generated secret for this process")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.SiteURL, "SITE_URL")
	setString(&c.Server.Environment, "APP_ENV")
	setString(&c.Server.APISunset, "API_SUNSET")
	setString(&c.Server.APISunsetMessage, "API_SUNSET_MESSAGE")
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.CORSAllowedOrigins = splitList(v)
	}

	setString(&c.Database.URL, "DATABASE_URL")
	setBool(&c.Database.AutoMigrate, "AUTO_MIGRATE")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")

	setString(&c.Storage.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Storage.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Storage.SecretKey, "MINIO_SECRET_KEY")
	setBool(&c.Storage.UseSSL, "MINIO_USE_SSL")
	setString(&c.Storage.Bucket, "MINIO_BUCKET")
	setDuration(&c.Storage.URLExpiry, "MINIO_URL_EXPIRY")

	setString(&c.Stripe.SecretKey, "STRIPE_SECRET_KEY")
	setString(&c.Stripe.PublishableKey, "STRIPE_PUBLISHABLE_KEY")
	setString(&c.Stripe.WebhookSecret, "STRIPE_WEBHOOK_SECRET")
	setString(&c.Stripe.Currency, "CURRENCY")

	setString(&c.Email.ResendAPIKey, "RESEND_API_KEY")
	setString(&c.Email.From, "EMAIL_FROM")
	setString(&c.Email.AdminEmail, "ADMIN_EMAIL")

	setDuration(&c.Auth.MagicLinkTTL, "MAGIC_LINK_TTL")
	setDuration(&c.Auth.SessionTTL, "SESSION_TTL")
	setString(&c.Auth.CookieName, "SESSION_COOKIE_NAME")
	setBool(&c.Auth.CookieSecure, "COOKIE_SECURE")
	setString(&c.Auth.AdminJWTSecret, "ADMIN_JWT_SECRET")
	setString(&c.Auth.AdminJWKSURL, "ADMIN_JWKS_URL")

	setBool(&c.Queue.Enabled, "EMAIL_QUEUE_ENABLED")
	setInt(&c.Queue.Concurrency, "EMAIL_QUEUE_CONCURRENCY")
	setInt(&c.Queue.MaxRetry, "EMAIL_QUEUE_MAX_RETRY")

	c.Server.SiteURL = strings.TrimRight(c.Server.SiteURL, "/")
	c.Stripe.Currency = strings.ToLower(c.Stripe.Currency)
	if c.IsProduction() {
		c.Auth.CookieSecure = true
	}
}

// Validate reports the first missing or inconsistent setting
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Server.SiteURL == "" {
		return errors.New("SITE_URL is required")
	}
	if c.Auth.MagicLinkTTL <= 0 || c.Auth.SessionTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if _, _, err := c.Server.SunsetDate(); err != nil {
		return err
	}
	if c.IsProduction() && c.Stripe.WebhookSecret == "" {
		return errors.New("STRIPE_WEBHOOK_SECRET is required in production")
	}
	return nil
}

// SunsetDate parses APISunset, reporting false when no sunset is configured
func (s ServerConfig) SunsetDate() (time.Time, bool, error) {
	if s.APISunset == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.DateOnly, s.APISunset)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("API_SUNSET must be YYYY-MM-DD: %w", err)
	}
	return t, true, nil
}

// IsProduction reports whether the process runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		} else {
			log.Printf("WARN: ignoring invalid boolean %s=%q", key, v)
		}
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		} else {
			log.Printf("WARN: ignoring invalid integer %s=%q", key, v)
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		} else {
			log.Printf("WARN: ignoring invalid duration %s=%q", key, v)
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
