package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingDB         = errors.New("DATABASE_URL is required")
	ErrNoSurface         = errors.New("enable the HTTP API or set TELEGRAM_BOT_TOKEN")
	ErrInvalidCacheType  = errors.New("CACHE_TYPE must be memory or redis")
	ErrMissingRedisAddr  = errors.New("REDIS_ADDR is required when CACHE_TYPE=redis")
	ErrInvalidMarketTime = errors.New("market timeouts must be positive")
)

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Telegram   TelegramConfig
	HTTP       HTTPConfig
	Database   DatabaseConfig
	Log        LogConfig
	Market     MarketConfig
	Geocoding  GeocodingConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Terrains   TerrainConfig
	PolicyFile string
}

type TelegramConfig struct {
	Token string
}

type HTTPConfig struct {
	Enabled bool
	Addr    string
}

type DatabaseConfig struct {
	URL string
}

type LogConfig struct {
	Level string
	// Format is "json" or "console". Empty picks console at debug level, json otherwise.
	Format string
}

type MarketConfig struct {
	SearchURL         string
	PlaceURL          string
	AccessToken       string
	AccountID         string
	RequestTimeout    time.Duration
	Attempts          int
	Backoff           time.Duration
	RequestsPerSecond float64
	Burst             int
	// LookupTimeout bounds a whole estimate (zone + listings, retries included).
	LookupTimeout time.Duration
}

type GeocodingConfig struct {
	Enabled bool
	BaseURL string
	Timeout time.Duration
}

type CacheConfig struct {
	Type  string
	TTL   time.Duration
	Redis RedisConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

type TerrainConfig struct {
	MaxPerOwner int
}

// Load reads the environment, after an optional .env file in the working directory.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	loadDotEnv(".env")

	cfg := &Config{
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
		HTTP: HTTPConfig{
			Enabled: getEnvBoolOrDefault("HTTP_ENABLED", true),
			Addr:    getEnvOrDefault("HTTP_ADDR", ":8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: os.Getenv("LOG_FORMAT"),
		},
		Market: MarketConfig{
			SearchURL:         getEnvOrDefault("BIENICI_SEARCH_URL", "https://www.bienici.com/realEstateAds.json"),
			PlaceURL:          getEnvOrDefault("BIENICI_PLACE_URL", "https://res.bienici.com/place.json"),
			AccessToken:       os.Getenv("BIENICI_ACCESS_TOKEN"),
			AccountID:         os.Getenv("BIENICI_ACCOUNT_ID"),
			RequestTimeout:    time.Duration(getEnvIntOrDefault("MARKET_REQUEST_TIMEOUT_SEC", 5)) * time.Second,
			Attempts:          getEnvIntOrDefault("MARKET_ATTEMPTS", 3),
			Backoff:           time.Duration(getEnvIntOrDefault("MARKET_BACKOFF_MS", 1000)) * time.Millisecond,
			RequestsPerSecond: getEnvFloatOrDefault("MARKET_REQUESTS_PER_SEC", 2),
			Burst:             getEnvIntOrDefault("MARKET_BURST", 2),
			LookupTimeout:     time.Duration(getEnvIntOrDefault("MARKET_LOOKUP_TIMEOUT_SEC", 20)) * time.Second,
		},
		Geocoding: GeocodingConfig{
			Enabled: getEnvBoolOrDefault("GEOCODING_ENABLED", true),
			BaseURL: getEnvOrDefault("GEOCODING_BASE_URL", "https://geo.api.gouv.fr"),
			Timeout: time.Duration(getEnvIntOrDefault("GEOCODING_TIMEOUT_SEC", 5)) * time.Second,
		},
		Cache: CacheConfig{
			Type: strings.ToLower(getEnvOrDefault("CACHE_TYPE", CacheMemory)),
			TTL:  time.Duration(getEnvIntOrDefault("CACHE_TTL_SEC", 6*3600)) * time.Second,
			Redis: RedisConfig{
				Addr:     os.Getenv("REDIS_ADDR"),
				Password: os.Getenv("REDIS_PASSWORD"),
				DB:       getEnvIntOrDefault("REDIS_DB", 0),
			},
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", 10),
		},
		Terrains: TerrainConfig{
			MaxPerOwner: getEnvIntOrDefault("MAX_TERRAINS_PER_OWNER", 0),
		},
		PolicyFile: os.Getenv("POLICY_FILE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings shared by every command. Commands touching the
// database or serving users add RequireDatabase / RequireSurface.
func (c *Config) Validate() error {
	switch c.Cache.Type {
	case CacheMemory:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return ErrMissingRedisAddr
		}
	default:
		return ErrInvalidCacheType
	}
	if c.Market.RequestTimeout <= 0 || c.Market.LookupTimeout <= 0 {
		return ErrInvalidMarketTime
	}
	return nil
}

func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return ErrMissingDB
	}
	return nil
}

func (c *Config) RequireSurface() error {
	if !c.HTTP.Enabled && c.Telegram.Token == "" {
		return ErrNoSurface
	}
	return nil
}

func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	// a malformed file is ignored, the environment still applies
	_ = godotenv.Load(path)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
