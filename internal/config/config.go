package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // CASEFLOW_BUSINESS_TZ must resolve in minimal images

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/caseflow/internal/deadline"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Store    string
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Server   ServerConfig
	Slack    SlackConfig
	Business BusinessConfig
	Async    AsyncConfig
	Log      LogConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings. An empty Addr disables push
// events.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds the secret used to verify access tokens.
type JWTConfig struct {
	Secret string //nolint:gosec // G117: JWT verification secret config
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	RateLimitRPS float64
	RateBurst    int
}

// SlackConfig holds Slack notification settings. An empty BotToken disables
// Slack delivery.
type SlackConfig struct {
	BotToken string
}

// BusinessConfig is the daily working window used for task deadlines.
type BusinessConfig struct {
	StartHour int
	EndHour   int
	Location  *time.Location
}

// Window returns the deadline window described by b.
func (b BusinessConfig) Window() deadline.Window {
	return deadline.Window{StartHour: b.StartHour, EndHour: b.EndHour, Location: b.Location}
}

// AsyncConfig sizes the side-effect worker pool.
type AsyncConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  zerolog.Level
	Format string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("CASEFLOW_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("CASEFLOW_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("CASEFLOW_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("CASEFLOW_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("CASEFLOW_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateRPS, err := getEnvFloat("CASEFLOW_SERVER_RATE_LIMIT", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateBurst, err := getEnvInt("CASEFLOW_SERVER_RATE_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	startHour, err := getEnvInt("CASEFLOW_BUSINESS_START_HOUR", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	endHour, err := getEnvInt("CASEFLOW_BUSINESS_END_HOUR", 19)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	tzName := getEnv("CASEFLOW_BUSINESS_TZ", "UTC")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("config.Load: parsing CASEFLOW_BUSINESS_TZ=%q: %w", tzName, err)
	}

	workers, err := getEnvInt("CASEFLOW_ASYNC_WORKERS", 4)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	queueSize, err := getEnvInt("CASEFLOW_ASYNC_QUEUE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	asyncTimeout, err := getEnvDuration("CASEFLOW_ASYNC_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	levelName := getEnv("CASEFLOW_LOG_LEVEL", "info")
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("config.Load: parsing CASEFLOW_LOG_LEVEL=%q: %w", levelName, err)
	}

	cfg := &Config{
		Store: getEnv("CASEFLOW_STORE", StorePostgres),
		Database: DatabaseConfig{
			Host:     getEnv("CASEFLOW_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("CASEFLOW_DB_USER", "caseflow"),
			Password: getEnv("CASEFLOW_DB_PASSWORD", ""),
			DBName:   getEnv("CASEFLOW_DB_NAME", "caseflow_dev"),
			SSLMode:  getEnv("CASEFLOW_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("CASEFLOW_REDIS_ADDR", ""),
			Password: getEnv("CASEFLOW_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret: getEnv("CASEFLOW_JWT_SECRET", ""),
		},
		Server: ServerConfig{
			Addr:         getEnv("CASEFLOW_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  getEnvList("CASEFLOW_CORS_ORIGINS", []string{"http://localhost:5173"}),
			RateLimitRPS: rateRPS,
			RateBurst:    rateBurst,
		},
		Slack: SlackConfig{
			BotToken: getEnv("CASEFLOW_SLACK_BOT_TOKEN", ""),
		},
		Business: BusinessConfig{
			StartHour: startHour,
			EndHour:   endHour,
			Location:  loc,
		},
		Async: AsyncConfig{
			Workers:   workers,
			QueueSize: queueSize,
			Timeout:   asyncTimeout,
		},
		Log: LogConfig{
			Level:  level,
			Format: getEnv("CASEFLOW_LOG_FORMAT", "json"),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("CASEFLOW_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("CASEFLOW_JWT_SECRET must be at least 32 characters")
	}

	switch c.Store {
	case StorePostgres:
		if c.Database.SSLMode == "disable" {
			log.Warn().Msg("CASEFLOW_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("CASEFLOW_DB_PORT must be 1-65535, got %d", c.Database.Port)
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("CASEFLOW_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("CASEFLOW_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("CASEFLOW_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("CASEFLOW_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.RateLimitRPS <= 0 {
		return fmt.Errorf("CASEFLOW_SERVER_RATE_LIMIT must be positive, got %g", c.Server.RateLimitRPS)
	}
	if c.Server.RateBurst < 1 {
		return fmt.Errorf("CASEFLOW_SERVER_RATE_BURST must be >= 1, got %d", c.Server.RateBurst)
	}

	if err := c.Business.Window().Validate(); err != nil {
		return fmt.Errorf("CASEFLOW_BUSINESS_START_HOUR/END_HOUR: %w", err)
	}

	if c.Async.Workers < 1 {
		return fmt.Errorf("CASEFLOW_ASYNC_WORKERS must be >= 1, got %d", c.Async.Workers)
	}
	if c.Async.QueueSize < 1 {
		return fmt.Errorf("CASEFLOW_ASYNC_QUEUE_SIZE must be >= 1, got %d", c.Async.QueueSize)
	}
	if c.Async.Timeout <= 0 {
		return fmt.Errorf("CASEFLOW_ASYNC_TIMEOUT must be positive, got %s", c.Async.Timeout)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("CASEFLOW_LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
