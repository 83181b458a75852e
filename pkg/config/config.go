package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the market service
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional, enables the postgres snapshot store)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Simulation
	Market MarketConfig

	// Simulated clock driver
	Clock ClockConfig

	// Snapshots
	Snapshot SnapshotConfig

	// API
	API APIConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// MarketConfig configures the simulation engine
type MarketConfig struct {
	PresetPath    string    // YAML preset, empty = built-in default
	Seed          int64     // 0 = seeded from wall clock
	Drift         float64   // daily drift applied by the random walk
	PageSize      int       // slots per page
	RetentionDays int       // 0 = keep full history
	Start         time.Time // simulated time at startup
}

// ClockConfig configures how real time drives simulated time
type ClockConfig struct {
	Schedule string        // cron expression (with seconds) of each clock fire
	Step     time.Duration // simulated time added per fire
}

// SnapshotConfig configures persistence
type SnapshotConfig struct {
	Store    string // file, postgres, redis
	Path     string // file store location
	Schedule string // cron expression of the snapshot job
	Keep     int    // postgres: snapshots retained, 0 = all
}

// APIConfig configures the HTTP surface
type APIConfig struct {
	RateLimit  float64 // requests per second per client
	RateBurst  int
	SessionTTL time.Duration // idle viewing sessions are dropped after this
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only caller of os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	start, err := getEnvAsTime("MARKET_START", "2024-01-01T09:00:00Z")
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Market: MarketConfig{
			PresetPath:    getEnv("MARKET_PRESET", ""),
			Seed:          int64(getEnvAsInt("MARKET_SEED", 0)),
			Drift:         getEnvAsFloat("MARKET_DRIFT", 0.0002),
			PageSize:      getEnvAsInt("MARKET_PAGE_SIZE", 5),
			RetentionDays: getEnvAsInt("MARKET_RETENTION_DAYS", 0),
			Start:         start,
		},

		Clock: ClockConfig{
			Schedule: getEnv("CLOCK_SCHEDULE", "* * * * * *"), // every second
			Step:     getEnvAsDuration("CLOCK_STEP", "1m"),
		},

		Snapshot: SnapshotConfig{
			Store:    getEnv("SNAPSHOT_STORE", "file"),
			Path:     getEnv("SNAPSHOT_PATH", "market-snapshot.json"),
			Schedule: getEnv("SNAPSHOT_SCHEDULE", "0 */5 * * * *"),
			Keep:     getEnvAsInt("SNAPSHOT_KEEP", 48),
		},

		API: APIConfig{
			RateLimit:  getEnvAsFloat("API_RATE_LIMIT", 20),
			RateBurst:  getEnvAsInt("API_RATE_BURST", 40),
			SessionTTL: getEnvAsDuration("API_SESSION_TTL", "30m"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Market.PageSize <= 0 {
		return fmt.Errorf("MARKET_PAGE_SIZE must be > 0")
	}

	// Larger drifts overflow the random walk within a few simulated days.
	if !(math.Abs(c.Market.Drift) <= 1) {
		return fmt.Errorf("MARKET_DRIFT must be in [-1, 1]")
	}

	// A shorter window would prune the anchors of monthly comparisons.
	if c.Market.RetentionDays != 0 && c.Market.RetentionDays < 30 {
		return fmt.Errorf("MARKET_RETENTION_DAYS must be 0 or >= 30")
	}

	if c.Clock.Step <= 0 {
		return fmt.Errorf("CLOCK_STEP must be positive")
	}

	switch c.Snapshot.Store {
	case "file":
		if c.Snapshot.Path == "" {
			return fmt.Errorf("SNAPSHOT_PATH is required for the file store")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("REDIS_ENABLED must be true for the redis store")
		}
	default:
		return fmt.Errorf("SNAPSHOT_STORE must be one of: file, postgres, redis")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsTime parses an RFC3339 timestamp; unlike the other helpers a bad
// value is an error since silently starting at another date corrupts history.
func getEnvAsTime(key string, defaultValue string) (time.Time, error) {
	valueStr := getEnv(key, defaultValue)

	t, err := time.Parse(time.RFC3339, valueStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC3339: %w", key, err)
	}

	return t, nil
}
