package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "DB_DRIVER", "DB_PATH", "DATABASE_URL", "SESSION_TTL", "SWEEP_INTERVAL",
	"EXIT_KEYWORD", "ALLOWED_ORIGINS", "MAX_REQUEST_BODY_SIZE", "HEALTH_CHECK_TIMEOUT",
	"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "SENTIMENT_ADDR", "SENTIMENT_TIMEOUT",
	"AMQP_URL", "AMQP_QUEUE", "S3_BUCKET", "S3_PREFIX", "S3_ENDPOINT", "S3_REGION",
	"S3_ACCESS_KEY", "S3_SECRET_KEY", "CONVERSATION_LOG_ENABLED", "CONVERSATION_LOG_DIR",
	"CONVERSATION_LOG_QUEUE_SIZE",
}

// clearEnv unsets every configuration variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "./data/talentscout.db", cfg.DBTarget())
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerWindow)
	assert.Equal(t, time.Minute, cfg.RateLimit.WindowDuration)
	assert.Equal(t, 2*time.Second, cfg.Sentiment.Timeout)
	assert.Equal(t, "auto", cfg.S3.Region)
	assert.Equal(t, "transcripts", cfg.S3.Prefix)
	assert.True(t, cfg.ConversationLog.Enabled)
	assert.Equal(t, 1000, cfg.ConversationLog.QueueSize)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/talentscout?sslmode=disable")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("CONVERSATION_LOG_QUEUE_SIZE", "-5")
	t.Setenv("SWEEP_INTERVAL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "postgres://u:p@localhost/talentscout?sslmode=disable", cfg.DBTarget())
	assert.Equal(t, 90*time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 1000, cfg.ConversationLog.QueueSize)
	assert.Equal(t, 5*time.Minute, cfg.Session.SweepInterval)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:      "8080",
			DB:        DBConfig{Driver: "sqlite", Path: "x.db"},
			Session:   SessionConfig{TTL: time.Hour, SweepInterval: time.Minute, ExitKeyword: "exit"},
			HTTP:      HTTPConfig{AllowedOrigins: []string{"*"}, MaxRequestBodySize: 1024},
			RateLimit: RateLimitConfig{RequestsPerWindow: 10, WindowDuration: time.Minute},
			ConversationLog: ConversationLogConfig{
				Enabled: true, Dir: "logs", QueueSize: 10,
			},
		}
	}

	base := valid()
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"unknown driver", func(c *Config) { c.DB.Driver = "mysql" }},
		{"postgres without url", func(c *Config) { c.DB.Driver = "postgres" }},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }},
		{"blank exit keyword", func(c *Config) { c.Session.ExitKeyword = "  " }},
		{"no origins", func(c *Config) { c.HTTP.AllowedOrigins = nil }},
		{"half s3 credentials", func(c *Config) { c.S3.AccessKey = "key" }},
		{"amqp without queue", func(c *Config) { c.AMQP.URL = "amqp://localhost"; c.AMQP.Queue = "" }},
		{"log dir missing", func(c *Config) { c.ConversationLog.Dir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	memory := valid()
	memory.DB = DBConfig{Driver: "memory"}
	assert.NoError(t, memory.Validate())
}
