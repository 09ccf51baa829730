package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"neoport/internal/core/lib/network/dialer"
	"neoport/internal/core/model"
	"neoport/internal/core/pipeline"
	"neoport/internal/core/scanner/port"
	"neoport/internal/pkg/logger"
)

// ErrTooManyTargets 主机数 × 端口数超过上限
var ErrTooManyTargets = errors.New("too many scan targets")

// PortScanRunner 端口扫描适配器
// 负责把 Task 展开为扫描单元并交给 port.Scanner 执行
type PortScanRunner struct {
	metrics    *port.Metrics
	progress   port.ProgressFunc
	dialer     dialer.Dialer
	maxTargets int
	allowFiles bool
}

type PortScanOption func(*PortScanRunner)

func WithMetrics(m *port.Metrics) PortScanOption {
	return func(r *PortScanRunner) { r.metrics = m }
}

func WithProgress(fn port.ProgressFunc) PortScanOption {
	return func(r *PortScanRunner) { r.progress = fn }
}

// WithDialer 指定拨号器后忽略 Task.Proxy
func WithDialer(d dialer.Dialer) PortScanOption {
	return func(r *PortScanRunner) { r.dialer = d }
}

// WithMaxTargets n <= 0 表示不限制
func WithMaxTargets(n int) PortScanOption {
	return func(r *PortScanRunner) { r.maxTargets = n }
}

// WithTargetFiles 允许 Task.Target 指向本地目标文件，仅供 CLI 使用
func WithTargetFiles() PortScanOption {
	return func(r *PortScanRunner) { r.allowFiles = true }
}

func NewPortScanRunner(opts ...PortScanOption) *PortScanRunner {
	r := &PortScanRunner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *PortScanRunner) Name() model.TaskType {
	return model.TaskTypePortScan
}

// Prepare 解析端口与目标，生成扫描单元
func (r *PortScanRunner) Prepare(task *model.Task) ([]model.ScanTarget, error) {
	ports, err := pipeline.ParsePorts(task.PortRange)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ports: %w", err)
	}
	var expandOpts []pipeline.ExpandOption
	if r.allowFiles {
		expandOpts = append(expandOpts, pipeline.WithTargetFiles())
	}
	hosts, err := pipeline.ExpandTargets(task.Target, expandOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to expand targets: %w", err)
	}

	if r.maxTargets > 0 && len(hosts)*len(ports) > r.maxTargets {
		return nil, fmt.Errorf("%w: %d hosts x %d ports exceeds %d", ErrTooManyTargets, len(hosts), len(ports), r.maxTargets)
	}
	return pipeline.BuildTargets(hosts, ports), nil
}

func (r *PortScanRunner) Run(ctx context.Context, task *model.Task) (*model.TaskResult, error) {
	targets, err := r.Prepare(task)
	if err != nil {
		return nil, err
	}

	d := r.dialer
	if d == nil {
		d, err = dialer.New(task.Proxy, task.Timeout)
		if err != nil {
			return nil, err
		}
	}

	scanner, err := port.NewScanner(port.Config{
		Timeout:       task.Timeout,
		BannerTimeout: task.BannerTimeout,
		Concurrency:   task.Concurrency,
		Banner:        task.Banner,
		Adaptive:      task.Adaptive,
	}, port.WithDialer(d), port.WithMetrics(r.metrics), port.WithProgress(r.progress))
	if err != nil {
		return nil, err
	}

	logger.LogScanOperation(task.ID, string(task.Type), task.Target, string(model.TaskStatusRunning), 0, map[string]interface{}{
		"targets":     len(targets),
		"concurrency": task.Concurrency,
		"proxy":       task.Proxy != "",
	})

	result := &model.TaskResult{
		TaskID:    task.ID,
		Status:    model.TaskStatusCompleted,
		StartTime: time.Now(),
	}

	report, scanErr := scanner.Run(ctx, targets)
	result.EndTime = time.Now()
	if report != nil {
		result.Results = report.Results
		result.Stats = report.Stats
	}
	if result.Results == nil {
		result.Results = []model.ScanResult{}
	}

	switch {
	case scanErr == nil:
	case errors.Is(scanErr, context.Canceled), errors.Is(scanErr, context.DeadlineExceeded):
		result.Status = model.TaskStatusCancelled
		result.Error = scanErr.Error()
	default:
		result.Status = model.TaskStatusFailed
		result.Error = scanErr.Error()
	}

	logger.LogScanOperation(task.ID, string(task.Type), task.Target, string(result.Status), result.EndTime.Sub(result.StartTime), map[string]interface{}{
		"open":     result.Stats.Open,
		"closed":   result.Stats.Closed,
		"filtered": result.Stats.Filtered,
	})
	return result, nil
}
