package config

import (
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

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: test\n")

	cfg, err := LoadConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Name)
	assert.Equal(t, time.Second, cfg.Scan.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Scan.BannerTimeout)
	assert.Equal(t, 500, cfg.Scan.Concurrency)
	assert.Equal(t, DefaultPorts, cfg.Scan.Ports)
	assert.True(t, cfg.Scan.Banner)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, 8090, cfg.Server.Port)
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeConfig(t, `
scan:
  timeout: 250ms
  banner_timeout: 100ms
  concurrency: 64
  ports: "22,80"
  banner: false
output:
  format: json
log:
  level: debug
`)

	cfg, err := LoadConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Scan.Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Scan.BannerTimeout)
	assert.Equal(t, 64, cfg.Scan.Concurrency)
	assert.Equal(t, "22,80", cfg.Scan.Ports)
	assert.False(t, cfg.Scan.Banner)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := writeConfig(t, "scan:\n  concurrency: 64\n")
	t.Setenv("NEOPORT_SCAN_CONCURRENCY", "8")
	t.Setenv("NEOPORT_SCAN_TIMEOUT", "3s")

	cfg, err := LoadConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Scan.Concurrency)
	assert.Equal(t, 3*time.Second, cfg.Scan.Timeout)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "zero concurrency", content: "scan:\n  concurrency: 0\n"},
		{name: "negative timeout", content: "scan:\n  timeout: -1s\n"},
		{name: "unknown output format", content: "output:\n  format: xml\n"},
		{name: "bad server port", content: "server:\n  port: 70000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromFile(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvLoader_SkipsMissingFiles(t *testing.T) {
	assert.NoError(t, NewEnvLoader(filepath.Join(t.TempDir(), ".env")).Load())
}

func TestEnvLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NEOPORT_TEST_DOTENV=from-file\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("NEOPORT_TEST_DOTENV") })

	require.NoError(t, NewEnvLoader(path).Load())
	assert.Equal(t, "from-file", os.Getenv("NEOPORT_TEST_DOTENV"))
}

func TestConfigWatcher_Reload(t *testing.T) {
	path := writeConfig(t, "scan:\n  concurrency: 10\n")
	initial, err := LoadConfigFromFile(path)
	require.NoError(t, err)

	changed := make(chan int, 1)
	w, err := WatchConfig(path, initial, func(oldConfig, newConfig *Config) error {
		select {
		case changed <- newConfig.Scan.Concurrency:
		default:
		}
		return nil
	})
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("scan:\n  concurrency: 20\n"), 0o644))

	select {
	case c := <-changed:
		assert.Equal(t, 20, c)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}

	assert.Eventually(t, func() bool {
		return w.GetConfig().Scan.Concurrency == 20
	}, 2*time.Second, 20*time.Millisecond)
}
