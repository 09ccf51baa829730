package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neoport/internal/config"
)

func TestInitLogger_InvalidConfig(t *testing.T) {
	_, err := InitLogger(nil)
	assert.Error(t, err)

	_, err = InitLogger(&config.LogConfig{Level: "info", Format: "xml", Output: "stdout"})
	assert.Error(t, err)

	_, err = InitLogger(&config.LogConfig{Level: "info", Format: "text", Output: "syslog"})
	assert.Error(t, err)

	_, err = InitLogger(&config.LogConfig{Level: "info", Format: "text", Output: "file"})
	assert.Error(t, err, "file output requires a path")
}

func TestInitLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "neoport.log")
	lm, err := InitLogger(&config.LogConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: path,
		MaxSize:  1,
	})
	require.NoError(t, err)
	assert.Same(t, lm, LoggerInstance)

	Info("hello file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestLogScanOperation_Fields(t *testing.T) {
	lm, err := InitLogger(&config.LogConfig{Level: "debug", Format: "json", Output: "stdout"})
	require.NoError(t, err)

	var buf bytes.Buffer
	lm.GetLogger().SetOutput(&buf)

	LogScanOperation("task-1", "port_scan", "127.0.0.1", "completed", 1500*time.Millisecond, map[string]interface{}{"open": 2})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "scan", entry["type"])
	assert.Equal(t, "task-1", entry["task_id"])
	assert.Equal(t, "completed", entry["status"])
	assert.EqualValues(t, 1500, entry["duration"])
	assert.EqualValues(t, 2, entry["open"])
	assert.Equal(t, "info", entry["level"])
}

func TestUpdateConfig_Level(t *testing.T) {
	lm, err := InitLogger(&config.LogConfig{Level: "info", Format: "text", Output: "stderr"})
	require.NoError(t, err)

	require.NoError(t, lm.UpdateConfig(&config.LogConfig{Level: "debug", Format: "text", Output: "stderr"}))
	assert.Equal(t, logrus.DebugLevel, lm.GetLogger().GetLevel())
	assert.Equal(t, "debug", lm.GetConfig().Level)

	assert.Error(t, lm.UpdateConfig(&config.LogConfig{Level: "loud", Format: "text", Output: "stderr"}))
}
