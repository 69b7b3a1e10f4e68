package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	// В тестовой директории config.yaml нет — ожидаем дефолты
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Poll.Interval)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.True(t, cfg.UI.Enabled)
	assert.Empty(t, cfg.Audit.DSN, "audit journal must be off by default")
	assert.Less(t, cfg.Backend.Timeout, cfg.Poll.Interval,
		"a hung read must not eat the next tick")
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(LoggerConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, log)

	_, err = NewLogger(LoggerConfig{Level: "verbose"})
	assert.Error(t, err)
}
