package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadSparseDocumentFillsDefaults(t *testing.T) {
	path := writeConfig(t, `
output_root: /srv/sites
scheduler:
  batch_size: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/sites", cfg.OutputRoot)
	assert.Equal(t, 2, cfg.Scheduler.BatchSize)
	assert.Equal(t, time.Minute, cfg.Scheduler.Interval())
	assert.Equal(t, "sitebuilder.db", cfg.DatabasePath)
	assert.Equal(t, RenderModeInProc, cfg.EffectiveRenderMode())
}

func TestLoadHTTPRenderModeRequiresEndpoint(t *testing.T) {
	path := writeConfig(t, `
render:
  mode: http
`)
	_, err := Load(path)
	require.Error(t, err)

	path = writeConfig(t, `
render:
  mode: http
  endpoint: http://render.internal/internal/render
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, RenderModeHTTP, cfg.EffectiveRenderMode())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `
scheduler:
  tick_interval: often
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadNATSRequiresURL(t *testing.T) {
	path := writeConfig(t, `
nats:
  enabled: true
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SITEBUILDER_OUTPUT_ROOT", "/tmp/out")
	t.Setenv("SITEBUILDER_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", cfg.OutputRoot)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, NormalizeLogLevel("DEBUG"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("bogus"))
	assert.Equal(t, slog.LevelWarn, NormalizeLogLevel("warn").SlogLevel())
}

func TestNormalizeRenderMode(t *testing.T) {
	assert.Equal(t, RenderModeInProc, NormalizeRenderMode("in-process"))
	assert.Equal(t, RenderModeHTTP, NormalizeRenderMode(" HTTP "))
	assert.Equal(t, RenderModeInProc, NormalizeRenderMode("unknown"))
}
