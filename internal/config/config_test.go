package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "memory", cfg.GameStore)
	assert.Equal(t, "uno_actions", cfg.HistorianQueue)
	assert.Equal(t, 20, cfg.HistorianBatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.HistorianFlush)
	assert.Equal(t, time.Hour, cfg.FinishedTTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GAME_STORE", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("GAME_INACTIVITY_TIMEOUT", "2m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "redis", cfg.GameStore)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 2*time.Minute, cfg.InactivityTimeout)
}

func TestValidate(t *testing.T) {
	t.Run("redis store without address", func(t *testing.T) {
		t.Setenv("GAME_STORE", "redis")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("GAME_STORE", "etcd")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	cfg.LogLevel = "loud"
	_, err = cfg.NewLogger()
	assert.Error(t, err)
}

func TestOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: "https://a.example, https://b.example,,"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}

func TestConfigureLogger(t *testing.T) {
	logger := logrus.New()
	cfg := &Config{LogLevel: "warn", LogFormat: "json"}
	require.NoError(t, cfg.ConfigureLogger(logger))
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	cfg.LogLevel = "loud"
	assert.Error(t, cfg.ConfigureLogger(logger))
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel(), "a bad level leaves the logger untouched")
}
