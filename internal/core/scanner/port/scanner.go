package port

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"

	"neoport/internal/core/lib/network/dialer"
	"neoport/internal/core/lib/network/qos"
	"neoport/internal/core/model"
	"neoport/internal/pkg/logger"
)

const DefaultConcurrency = 500

// Config 扫描参数
type Config struct {
	Timeout       time.Duration
	BannerTimeout time.Duration
	Concurrency   int
	Banner        bool
	Adaptive      bool // 使用 AIMD 闸门，上限仍为 Concurrency
}

// ProgressFunc 进度回调，done 为已完成的探测数
// 回调被串行调用
type ProgressFunc func(done, total int)

// Report 一次扫描的完整输出
type Report struct {
	Results []model.ScanResult
	Stats   model.ScanStats
}

// Scanner 扫描协调器
// 每个目标派发一次探测，由闸门限制在途数量，结果汇总后按 (host, port) 排序
type Scanner struct {
	cfg      Config
	dialer   dialer.Dialer
	gate     qos.Gate
	progress ProgressFunc
	metrics  *Metrics
}

type Option func(*Scanner)

// WithDialer 指定拨号器，默认使用全局拨号器
func WithDialer(d dialer.Dialer) Option {
	return func(s *Scanner) { s.dialer = d }
}

// WithGate 指定闸门，默认每次扫描按配置新建
func WithGate(g qos.Gate) Option {
	return func(s *Scanner) { s.gate = g }
}

func WithProgress(fn ProgressFunc) Option {
	return func(s *Scanner) { s.progress = fn }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

func NewScanner(cfg Config, opts ...Option) (*Scanner, error) {
	if cfg.Concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}

	s := &Scanner{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.dialer == nil {
		s.dialer = dialer.Get()
	}
	return s, nil
}

// Scan 扫描全部目标，返回排序后的开放端口列表
func (s *Scanner) Scan(ctx context.Context, targets []model.ScanTarget) ([]model.ScanResult, error) {
	report, err := s.Run(ctx, targets)
	if report == nil {
		return nil, err
	}
	return report.Results, err
}

// Run 扫描全部目标并返回结果与统计
// ctx 取消时尚未获得闸门的探测不再执行，返回已有的部分结果和 ctx.Err()
func (s *Scanner) Run(ctx context.Context, targets []model.ScanTarget) (*Report, error) {
	start := time.Now()
	total := len(targets)
	report := &Report{
		Results: []model.ScanResult{},
		Stats:   model.ScanStats{Total: total},
	}
	if total == 0 {
		return report, nil
	}

	gate := s.gate
	if gate == nil {
		g, err := qos.NewGate(s.cfg.Concurrency, s.cfg.Adaptive)
		if err != nil {
			return nil, err
		}
		gate = g
	}
	feedback, _ := gate.(qos.Feedback)
	prober := NewProber(s.dialer, s.cfg.Timeout, s.cfg.BannerTimeout, s.cfg.Banner)

	logger.WithFields(logrus.Fields{
		"targets":     total,
		"concurrency": s.cfg.Concurrency,
		"adaptive":    s.cfg.Adaptive,
		"timeout":     s.cfg.Timeout.String(),
	}).Debug("port scan started")

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		progressMu sync.Mutex
		results    = make([]model.ScanResult, 0)

		done, open, closed, filtered int64
	)

	worker := func(i interface{}) {
		defer wg.Done()
		defer func() {
			n := atomic.AddInt64(&done, 1)
			if s.progress != nil {
				progressMu.Lock()
				s.progress(int(n), total)
				progressMu.Unlock()
			}
		}()

		target := i.(model.ScanTarget)
		if err := gate.Acquire(ctx); err != nil {
			return
		}
		defer gate.Release()

		if s.metrics != nil {
			s.metrics.InFlight.Inc()
			defer s.metrics.InFlight.Dec()
		}

		res, state := prober.Probe(ctx, target)
		if res == nil && ctx.Err() != nil {
			// 被取消打断的探测不计入统计
			return
		}

		switch state {
		case model.PortStateOpen:
			atomic.AddInt64(&open, 1)
		case model.PortStateClosed:
			atomic.AddInt64(&closed, 1)
		default:
			atomic.AddInt64(&filtered, 1)
		}
		s.metrics.observeProbe(state)

		if feedback != nil {
			if state == model.PortStateFiltered {
				feedback.OnFailure()
			} else {
				feedback.OnSuccess()
			}
		}

		if res != nil {
			mu.Lock()
			results = append(results, *res)
			mu.Unlock()
		}
	}

	poolSize := s.cfg.Concurrency
	if total < poolSize {
		poolSize = total
	}
	pool, err := ants.NewPoolWithFunc(poolSize, worker, ants.WithPanicHandler(func(p interface{}) {
		logger.Errorf("port scan worker panic: %v", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var dispatchErr error
	for _, t := range targets {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		if err := pool.Invoke(t); err != nil {
			wg.Done()
			dispatchErr = fmt.Errorf("failed to dispatch probe: %w", err)
			break
		}
	}
	wg.Wait()

	model.SortResults(results)
	report.Results = results
	report.Stats.Open = int(atomic.LoadInt64(&open))
	report.Stats.Closed = int(atomic.LoadInt64(&closed))
	report.Stats.Filtered = int(atomic.LoadInt64(&filtered))
	report.Stats.Duration = time.Since(start)

	if s.metrics != nil {
		s.metrics.Scans.Inc()
		s.metrics.ScanDuration.Observe(report.Stats.Duration.Seconds())
	}

	if dispatchErr != nil {
		return report, dispatchErr
	}
	return report, ctx.Err()
}
