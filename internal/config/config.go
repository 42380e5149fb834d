// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port            string
	DB              DBConfig
	Session         SessionConfig
	HTTP            HTTPConfig
	RateLimit       RateLimitConfig
	Sentiment       SentimentConfig
	AMQP            AMQPConfig
	S3              S3Config
	ConversationLog ConversationLogConfig
}

// DBConfig selects the session store.
type DBConfig struct {
	Driver string // "sqlite", "postgres" or "memory"
	Path   string
	URL    string
}

// SessionConfig controls session lifetime.
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	ExitKeyword   string
}

// HTTPConfig controls the HTTP surface.
type HTTPConfig struct {
	AllowedOrigins     []string
	MaxRequestBodySize int64
	HealthCheckTimeout time.Duration
}

// RateLimitConfig limits turns per session.
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// SentimentConfig points at an optional remote scorer.
type SentimentConfig struct {
	Addr    string
	Timeout time.Duration
}

// AMQPConfig configures the submission queue. Empty URL disables it.
type AMQPConfig struct {
	URL   string
	Queue string
}

// S3Config configures the transcript archive. Empty bucket disables it.
type S3Config struct {
	Bucket    string
	Prefix    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// ConversationLogConfig controls JSON conversation logging.
type ConversationLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("CONVERSATION_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		DB: DBConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			Path:   getEnv("DB_PATH", "./data/talentscout.db"),
			URL:    getEnv("DATABASE_URL", ""),
		},
		Session: SessionConfig{
			TTL:           getEnvDuration("SESSION_TTL", 24*time.Hour),
			SweepInterval: getEnvDuration("SWEEP_INTERVAL", 5*time.Minute),
			ExitKeyword:   getEnv("EXIT_KEYWORD", "exit"),
		},
		HTTP: HTTPConfig{
			AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "*")),
			MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)),
			HealthCheckTimeout: getEnvDuration("HEALTH_CHECK_TIMEOUT", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("RATE_LIMIT_REQUESTS", 30),
			WindowDuration:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Sentiment: SentimentConfig{
			Addr:    getEnv("SENTIMENT_ADDR", ""),
			Timeout: getEnvDuration("SENTIMENT_TIMEOUT", 2*time.Second),
		},
		AMQP: AMQPConfig{
			URL:   getEnv("AMQP_URL", ""),
			Queue: getEnv("AMQP_QUEUE", "talentscout.submissions"),
		},
		S3: S3Config{
			Bucket:    getEnv("S3_BUCKET", ""),
			Prefix:    getEnv("S3_PREFIX", "transcripts"),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", "auto"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		ConversationLog: ConversationLogConfig{
			Enabled:   getEnvBool("CONVERSATION_LOG_ENABLED", true),
			Dir:       getEnv("CONVERSATION_LOG_DIR", "./data/logs/conversations"),
			QueueSize: queueSize,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.DB.Driver {
	case "sqlite":
		if c.DB.Path == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	case "postgres":
		if c.DB.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite, postgres or memory, got %q", c.DB.Driver)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be > 0")
	}
	if strings.TrimSpace(c.Session.ExitKeyword) == "" {
		return fmt.Errorf("EXIT_KEYWORD cannot be empty")
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS cannot be empty")
	}
	if c.HTTP.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0")
	}
	if c.RateLimit.WindowDuration <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be > 0")
	}
	if c.AMQP.URL != "" && c.AMQP.Queue == "" {
		return fmt.Errorf("AMQP_QUEUE cannot be empty when AMQP_URL is set")
	}
	if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY must be set together")
	}
	if c.ConversationLog.Enabled && c.ConversationLog.Dir == "" {
		return fmt.Errorf("CONVERSATION_LOG_DIR cannot be empty")
	}
	if c.ConversationLog.QueueSize <= 0 {
		return fmt.Errorf("CONVERSATION_LOG_QUEUE_SIZE must be > 0")
	}
	return nil
}

// DBTarget returns the connection target for the configured driver.
func (c *Config) DBTarget() string {
	if c.DB.Driver == "postgres" {
		return c.DB.URL
	}
	return c.DB.Path
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
