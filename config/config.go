package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig
	Mongo   MongoConfig
	JWT     JWTConfig
	Log     LogConfig
	Metrics MetricsConfig
	Email   EmailConfig
	NATS    NATSConfig
	Redis   RedisConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// MongoConfig holds database configuration
type MongoConfig struct {
	URI              string
	Database         string
	MaxPoolSize      uint64
	MinPoolSize      uint64
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// EmailConfig selects the transactional email provider.
// An empty Provider disables outgoing mail.
type EmailConfig struct {
	Provider string
	APIKey   string
	Sender   string
}

// NATSConfig holds event publishing configuration
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// RedisConfig holds the login throttling configuration
type RedisConfig struct {
	URL         string
	LoginLimit  int
	LoginWindow time.Duration
}

var (
	ErrMissingMongoURI  = errors.New("MONGODB_URI is not set")
	ErrMissingMongoDB   = errors.New("MONGODB_DB is not set")
	ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")
	ErrWeakJWTSecret    = errors.New("JWT_SECRET is a well-known placeholder")
)

// placeholderSecrets are values that must never sign production tokens.
var placeholderSecrets = map[string]struct{}{
	"fallback-secret": {},
	"your_secret_key": {},
	"secret":          {},
	"changeme":        {},
}

// Load loads the application configuration from environment variables
func Load() (*Config, error) {
	// A missing .env file is fine, the environment may be set directly
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8000"),
			Env:             getEnv("APP_ENV", "development"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Mongo: MongoConfig{
			URI:              getEnv("MONGODB_URI", ""),
			Database:         getEnv("MONGODB_DB", ""),
			MaxPoolSize:      uint64(getEnvAsInt("MONGODB_MAX_POOL_SIZE", 50)),
			MinPoolSize:      uint64(getEnvAsInt("MONGODB_MIN_POOL_SIZE", 0)),
			ConnectTimeout:   getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
			OperationTimeout: getEnvAsDuration("MONGODB_OPERATION_TIMEOUT", 5*time.Second),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Expiration: getEnvAsDuration("JWT_EXPIRATION", 7*24*time.Hour),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "seva"),
		},
		Email: EmailConfig{
			Provider: strings.ToLower(getEnv("EMAIL_PROVIDER", "")),
			APIKey:   getEnv("EMAIL_API_KEY", ""),
			Sender:   getEnv("EMAIL_SENDER", ""),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "seva"),
		},
		Redis: RedisConfig{
			URL:         getEnv("REDIS_URL", ""),
			LoginLimit:  getEnvAsInt("LOGIN_RATE_LIMIT", 10),
			LoginWindow: getEnvAsDuration("LOGIN_RATE_WINDOW", 15*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return ErrMissingMongoURI
	}
	if c.Mongo.Database == "" {
		return ErrMissingMongoDB
	}
	if c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}
	if _, weak := placeholderSecrets[strings.ToLower(c.JWT.Secret)]; weak {
		return ErrWeakJWTSecret
	}
	switch c.Email.Provider {
	case "", "postmark", "sendgrid":
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER %q", c.Email.Provider)
	}
	return nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
