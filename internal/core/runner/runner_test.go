package runner

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neoport/internal/core/model"
	"neoport/internal/core/pipeline"
)

func listenBanner(t *testing.T, banner string) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_, _ = conn.Write([]byte(banner))
			conn.Close()
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port
}

func newTask(target, ports string) *model.Task {
	task := model.NewTask(model.TaskTypePortScan, target)
	task.PortRange = ports
	task.Timeout = time.Second
	task.BannerTimeout = 300 * time.Millisecond
	task.Concurrency = 10
	task.Banner = true
	return task
}

func TestPortScanRunner_Run(t *testing.T) {
	port := listenBanner(t, "220 ready\r\n")
	task := newTask("127.0.0.1", strconv.Itoa(port))

	r := NewPortScanRunner()
	result, err := r.Run(context.Background(), task)
	require.NoError(t, err)

	assert.Equal(t, task.ID, result.TaskID)
	assert.Equal(t, model.TaskStatusCompleted, result.Status)
	require.Len(t, result.Results, 1)
	assert.Equal(t, port, result.Results[0].Port)
	require.NotNil(t, result.Results[0].Banner)
	assert.Equal(t, "220 ready", *result.Results[0].Banner)
	assert.Equal(t, 1, result.Stats.Total)
	assert.False(t, result.EndTime.Before(result.StartTime))
}

func TestPortScanRunner_ConfigErrors(t *testing.T) {
	r := NewPortScanRunner()

	_, err := r.Run(context.Background(), newTask("127.0.0.1", "0-10"))
	assert.ErrorIs(t, err, pipeline.ErrInvalidPortSpec)

	_, err = r.Run(context.Background(), newTask("bad host!", "80"))
	assert.ErrorIs(t, err, pipeline.ErrInvalidTarget)

	task := newTask("127.0.0.1", "80")
	task.Proxy = "ftp://127.0.0.1:21"
	_, err = r.Run(context.Background(), task)
	assert.Error(t, err)
}

func TestPortScanRunner_MaxTargets(t *testing.T) {
	r := NewPortScanRunner(WithMaxTargets(10))
	_, err := r.Prepare(newTask("10.0.0.0/29", "1-2"))
	assert.ErrorIs(t, err, ErrTooManyTargets)

	targets, err := r.Prepare(newTask("10.0.0.0/30", "1-2"))
	require.NoError(t, err)
	assert.Len(t, targets, 4)
}

func TestPortScanRunner_TargetFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.txt")
	require.NoError(t, os.WriteFile(path, []byte("10.0.0.1\n10.0.0.2\n"), 0o600))

	_, err := NewPortScanRunner().Prepare(newTask(path, "80"))
	assert.ErrorIs(t, err, pipeline.ErrInvalidTarget, "files are only read when enabled")

	targets, err := NewPortScanRunner(WithTargetFiles()).Prepare(newTask(path, "80"))
	require.NoError(t, err)
	assert.Len(t, targets, 2)
}

func TestPortScanRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewPortScanRunner().Run(ctx, newTask("127.0.0.1", "1-100"))
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusCancelled, result.Status)
	assert.NotEmpty(t, result.Error)
	assert.NotNil(t, result.Results)
}

func TestRunnerManager(t *testing.T) {
	m := NewRunnerManager(NewPortScanRunner())

	r, err := m.Get(model.TaskTypePortScan)
	require.NoError(t, err)
	assert.Equal(t, model.TaskTypePortScan, r.Name())

	_, err = m.Get("unknown")
	assert.Error(t, err)

	_, err = m.Execute(context.Background(), &model.Task{Type: "unknown"})
	assert.Error(t, err)

	port := listenBanner(t, "")
	result, err := m.Execute(context.Background(), newTask("127.0.0.1", strconv.Itoa(port)))
	require.NoError(t, err)
	assert.Len(t, result.Results, 1)
}
