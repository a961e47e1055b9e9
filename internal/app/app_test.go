package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sysmonitor/internal/collector"
	"sysmonitor/internal/config"
	"sysmonitor/internal/logger"
	"sysmonitor/internal/session"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Mode:    config.ModeMCP,
		Session: session.Config{Duration: time.Minute, Interval: time.Second},
		Collector: collector.DefaultCollectorConfig().
			WithGPU(false).
			WithTemperatures(false),
		Report: config.ReportConfig{Dir: t.TempDir()},
		Log:    config.LogConfig{Level: "debug"},
	}
}

func TestSetupLogging_File(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.File = filepath.Join(t.TempDir(), "sysmonitor.log")

	closer, err := SetupLogging(cfg)
	require.NoError(t, err)
	require.NotNil(t, closer)

	logger.Info().Str("check", "file").Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"check":"file"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestSetupLogging_InvalidLevel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.Level = "loud"

	_, err := SetupLogging(cfg)
	assert.Error(t, err)
}

func TestSetupLogging_NoFile(t *testing.T) {
	for _, mode := range []string{config.ModeTUI, config.ModeConsole, config.ModeMCP} {
		cfg := testConfig(t)
		cfg.Mode = mode
		closer, err := SetupLogging(cfg)
		require.NoError(t, err, mode)
		assert.Nil(t, closer, mode)
	}
}

func TestNew_InvalidSession(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.Interval = 2 * time.Minute

	_, err := New(context.Background(), cfg)
	var cfgErr *session.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNew_ShutdownWithoutSession(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Archive = true

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, session.StateIdle, a.Controller.Status().State)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, a.Shutdown(ctx))
}
