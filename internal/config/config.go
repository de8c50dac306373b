package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Redis    RedisConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
	// Storage is "postgres" or "memory". Memory mode keeps nothing across restarts.
	Storage string
}

// RedisConfig holds the realtime channel connection. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// PayrollConfig holds recompute and generation tuning
type PayrollConfig struct {
	RecomputeWorkers   int
	RecomputeQueueSize int
	SweepSchedule      string
	GenerateParallel   int
}

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "nmw-payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "Asia/Karachi"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
		Storage:        getEnv("APP_STORAGE", StoragePostgres),
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{"http://localhost:3000"}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
		Channel:  getEnv("REDIS_CHANNEL", "nmw:invalidate"),
	}

	// Payroll configuration
	workers, err := strconv.Atoi(getEnv("PAYROLL_RECOMPUTE_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_RECOMPUTE_WORKERS: %w", err)
	}
	queueSize, err := strconv.Atoi(getEnv("PAYROLL_RECOMPUTE_QUEUE", "256"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_RECOMPUTE_QUEUE: %w", err)
	}
	parallel, err := strconv.Atoi(getEnv("PAYROLL_GENERATE_PARALLEL", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_GENERATE_PARALLEL: %w", err)
	}

	config.Payroll = PayrollConfig{
		RecomputeWorkers:   workers,
		RecomputeQueueSize: queueSize,
		SweepSchedule:      getEnv("PAYROLL_SWEEP_SCHEDULE", "30 2 * * *"),
		GenerateParallel:   parallel,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.App.Storage {
	case StoragePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("APP_STORAGE must be %q or %q", StoragePostgres, StorageMemory)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if c.Payroll.RecomputeWorkers < 1 {
		return fmt.Errorf("PAYROLL_RECOMPUTE_WORKERS must be at least 1")
	}
	if c.Payroll.RecomputeQueueSize < 1 {
		return fmt.Errorf("PAYROLL_RECOMPUTE_QUEUE must be at least 1")
	}
	if c.Payroll.GenerateParallel < 1 {
		return fmt.Errorf("PAYROLL_GENERATE_PARALLEL must be at least 1")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// UsesMemory reports whether repositories live in process memory
func (c *Config) UsesMemory() bool {
	return c.App.Storage == StorageMemory
}

// SlogLevel maps LOG_LEVEL onto slog levels, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Location returns the business timezone used for "today" and future-date checks
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
