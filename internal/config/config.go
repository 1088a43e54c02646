package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Requirements sources
const (
	SourceHTTP  = "http"
	SourceMongo = "mongo"
)

// Config holds service configuration
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string // json | console

	MongoURI string // empty disables Mongo
	MongoDB  string
	RedisURI string // empty selects the in-memory session store

	SessionTTL time.Duration

	// Upstream requirements service
	RequirementsSource string
	RequirementsURL    string
	RequirementsToken  string
	FetchTimeout       time.Duration
	FetchRetries       int

	// Downstream negotiation collaborator; empty disables the HTTP sink
	NegotiationURL   string
	NegotiationToken string
	PersistTimeout time.Duration

	JWTSecret string `json:"-"`
	TokenTTL  time.Duration

	CORSAllowedOrigins []string
}

// Load builds the configuration from defaults, an optional .env file and
// the process environment, in that order.
func Load(envFile string) (*Config, error) {
	cfg := DefaultConfig()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Port:               "8080",
		LogLevel:           "info",
		LogFormat:          "json",
		MongoDB:            "contractpilot",
		SessionTTL:         24 * time.Hour,
		RequirementsSource: SourceHTTP,
		FetchTimeout:       10 * time.Second,
		FetchRetries:       3,
		PersistTimeout:     10 * time.Second,
		JWTSecret:          "change-me-in-production",
		TokenTTL:           24 * time.Hour,
		CORSAllowedOrigins: []string{"*"},
	}
}

func loadFromEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", cfg.LogFormat))
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDB = getEnv("MONGO_DB", cfg.MongoDB)
	cfg.RedisURI = getEnv("REDIS_URI", cfg.RedisURI)
	cfg.SessionTTL = getDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.RequirementsSource = strings.ToLower(getEnv("REQUIREMENTS_SOURCE", cfg.RequirementsSource))
	cfg.RequirementsURL = strings.TrimRight(getEnv("REQUIREMENTS_URL", cfg.RequirementsURL), "/")
	cfg.RequirementsToken = getEnv("REQUIREMENTS_TOKEN", cfg.RequirementsToken)
	cfg.FetchTimeout = getDuration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.FetchRetries = getInt("FETCH_RETRIES", cfg.FetchRetries)
	cfg.NegotiationURL = strings.TrimRight(getEnv("NEGOTIATION_URL", cfg.NegotiationURL), "/")
	cfg.NegotiationToken = getEnv("NEGOTIATION_TOKEN", cfg.NegotiationToken)
	cfg.PersistTimeout = getDuration("PERSIST_TIMEOUT", cfg.PersistTimeout)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTL = getDuration("TOKEN_TTL", cfg.TokenTTL)

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSAllowedOrigins = origins
	}
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	switch c.RequirementsSource {
	case SourceHTTP:
		if c.RequirementsURL == "" {
			return fmt.Errorf("REQUIREMENTS_URL is required when REQUIREMENTS_SOURCE=http")
		}
	case SourceMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when REQUIREMENTS_SOURCE=mongo")
		}
	default:
		return fmt.Errorf("invalid requirements source %q", c.RequirementsSource)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	if c.FetchTimeout <= 0 || c.PersistTimeout <= 0 {
		return fmt.Errorf("fetch and persist timeouts must be positive")
	}
	if c.FetchRetries < 1 {
		return fmt.Errorf("fetch_retries must be at least 1")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
