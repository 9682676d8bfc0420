// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"
)

// Config is read from the environment (and a .env file, when the binary
// autoloads one).
type Config struct {
	Port         string        `env:"PORT,default=8080"`
	LogLevel     string        `env:"LOG_LEVEL,default=info"`
	LogFormat    string        `env:"LOG_FORMAT,default=text"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT,default=10s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT,default=60s"`
	CORSOrigins  string        `env:"CORS_ORIGINS,default=*"`

	// GameStore selects where games live: "memory" or "redis".
	GameStore      string        `env:"GAME_STORE,default=memory"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisDB        int           `env:"REDIS_DB,default=0"`
	RedisKeyPrefix string        `env:"REDIS_KEY_PREFIX,default=uno"`
	FinishedTTL    time.Duration `env:"FINISHED_GAME_TTL,default=1h"`

	// History settings; the historian and the action queue are disabled when
	// REDIS_ADDR / DATABASE_URL are empty.
	HistorianQueue     string        `env:"HISTORIAN_QUEUE_NAME,default=uno_actions"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	HistorianBatchSize int           `env:"HISTORIAN_BATCH_SIZE,default=20"`
	HistorianFlush     time.Duration `env:"HISTORIAN_FLUSH_INTERVAL,default=500ms"`
	InactivityTimeout  time.Duration `env:"GAME_INACTIVITY_TIMEOUT,default=10m"`
}

// Load decodes the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	switch c.GameStore {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("GAME_STORE=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown GAME_STORE %q, want memory or redis", c.GameStore)
	}
	if c.HistorianBatchSize <= 0 {
		return errors.New("HISTORIAN_BATCH_SIZE must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// Origins splits CORS_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()
	if err := c.ConfigureLogger(logger); err != nil {
		return nil, err
	}
	return logger, nil
}

// ConfigureLogger applies LOG_LEVEL and LOG_FORMAT to an existing logger, such
// as logrus.StandardLogger() used by the game engine.
func (c *Config) ConfigureLogger(logger *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	logger.SetLevel(level)
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return nil
}
