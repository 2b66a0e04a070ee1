package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"calculator-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFlagsOverrideFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server:\n  port: 5001\nlog:\n  level: warn\n"), 0o600))
	t.Setenv("CALC_LOG_LEVEL", "error")

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", cfgPath,
		"--env-file", filepath.Join(dir, "missing.env"),
		"--port", "5002",
	}))

	var f flags
	f.configPath, _ = cmd.Flags().GetString("config")
	f.envFile, _ = cmd.Flags().GetString("env-file")
	f.port, _ = cmd.Flags().GetInt("port")

	cfg, err := loadConfig(cmd, f)
	require.NoError(t, err)

	assert.Equal(t, 5002, cfg.Server.Port, "flag wins over file")
	assert.Equal(t, "error", cfg.Log.Level, "env wins over file when no flag is set")
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoadConfigRejectsInvalidFlag(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--log-level", "loud"}))

	f := flags{envFile: filepath.Join(t.TempDir(), "missing.env"), logLevel: "loud"}
	_, err := loadConfig(cmd, f)
	assert.Error(t, err)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CALC_TEST_DOTENV_A=file\nCALC_TEST_DOTENV_B=file\n"), 0o600))

	t.Setenv("CALC_TEST_DOTENV_A", "process")
	t.Cleanup(func() { os.Unsetenv("CALC_TEST_DOTENV_B") })

	require.NoError(t, loadDotEnv(path))

	assert.Equal(t, "process", os.Getenv("CALC_TEST_DOTENV_A"))
	assert.Equal(t, "file", os.Getenv("CALC_TEST_DOTENV_B"))
}

func TestLoadDotEnvIgnoresMissingFile(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}

func TestInitTelemetryDisabledIsNoop(t *testing.T) {
	shutdown, err := initTelemetry(context.Background(), config.TelemetryConfig{Enabled: false, ServiceName: "calculator-api"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
