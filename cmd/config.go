package cmd

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"dispatch/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	HTTPPort     string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSslMode    string
	StoreTimeout time.Duration

	RedisURL     string
	RedisChannel string
	AMQPURL      string
	AMQPAddress  string

	JWTSecret string
	TokenTTL  time.Duration

	LogLevel       string
	LogDevelopment bool

	DashboardStatsSchedule string

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// LoadConfig reads the environment, after loading .env when one exists.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort:     getString("HTTP_PORT", "8080"),
		DBHost:       getString("DB_HOST", "localhost"),
		DBPort:       getString("DB_PORT", "5432"),
		DBUser:       getString("DB_USER", "postgres"),
		DBPassword:   getString("DB_PASSWORD", ""),
		DBName:       getString("DB_NAME", "dispatch"),
		DBSslMode:    getString("DB_SSLMODE", "disable"),
		StoreTimeout: getDuration("STORE_TIMEOUT", 5*time.Second),

		RedisURL:     getString("REDIS_URL", ""),
		RedisChannel: getString("REDIS_CHANNEL", "dispatch:events"),
		AMQPURL:      getString("AMQP_URL", ""),
		AMQPAddress:  getString("AMQP_ADDRESS", "/queues/dispatch.events"),

		JWTSecret: getString("JWT_SECRET", ""),
		TokenTTL:  getDuration("TOKEN_TTL", 24*time.Hour),

		LogLevel:       getString("LOG_LEVEL", "info"),
		LogDevelopment: cast.ToBool(getString("LOG_DEVELOPMENT", "false")),

		DashboardStatsSchedule: getString("DASHBOARD_STATS_SCHEDULE", jobs.DefaultDashboardStatsSchedule),

		AdminName:     getString("ADMIN_NAME", "Administrator"),
		AdminEmail:    getString("ADMIN_EMAIL", "admin@dispatch.local"),
		AdminPassword: getString("ADMIN_PASSWORD", ""),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// DSN is the PostgreSQL connection string shared by gorm and the migration runner.
func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSslMode}}.Encode(),
	}
	return u.String()
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// getDuration accepts Go durations ("5s") and plain integers, read as seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	if secs, err := cast.ToInt64E(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := cast.ToDurationE(raw)
	if err != nil {
		return fallback
	}
	return d
}
