/**
 * Server 模式应用程序核心逻辑
 * @date: 2026.01.21
 * @description: 负责初始化指标、Runner、路由和 HTTP 服务，并在配置文件变化时热更新
 */

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"neoport/internal/app/server/router"
	"neoport/internal/config"
	"neoport/internal/core/runner"
	"neoport/internal/core/scanner/port"
	"neoport/internal/handler/scan"
	"neoport/internal/pkg/logger"
	"neoport/internal/pkg/monitor"
)

// App server 模式应用程序
type App struct {
	config        atomic.Pointer[config.Config]
	configFile    string
	registry      *prometheus.Registry
	metrics       *port.Metrics
	runnerManager *runner.RunnerManager
	router        *router.Router
	httpServer    *http.Server
	watcher       *config.ConfigWatcher
	listener      net.Listener
}

// NewApp configFile 非空时启动后会监听该文件并热更新配置
func NewApp(cfg *config.Config, configFile string) (*App, error) {
	if cfg == nil || cfg.Server == nil {
		return nil, fmt.Errorf("server config is required")
	}

	a := &App{
		configFile: configFile,
		registry:   prometheus.NewRegistry(),
	}
	a.config.Store(cfg)

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = port.NewMetrics(a.registry)

	a.runnerManager = runner.NewRunnerManager(
		runner.NewPortScanRunner(
			runner.WithMetrics(a.metrics),
			runner.WithMaxTargets(cfg.Server.MaxTargets),
		),
	)

	scanHandler := scan.NewScanHandler(a.runnerManager, a.Config)
	a.router = router.NewRouter(&router.RouterConfig{Mode: cfg.Server.Mode}, scanHandler, a.registry)

	a.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      a.router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return a, nil
}

// Config 返回当前生效的配置
func (a *App) Config() *config.Config {
	return a.config.Load()
}

// Handler 返回 HTTP 处理器
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Addr 返回实际监听地址，Start 之前为空
func (a *App) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Start 监听端口并在后台提供服务，端口占用等错误同步返回
func (a *App) Start() error {
	ln, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.httpServer.Addr, err)
	}
	a.listener = ln

	go func() {
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("HTTP server stopped unexpectedly: %v", err)
		}
	}()

	if a.configFile != "" {
		w, err := config.WatchConfig(a.configFile, a.Config(), a.onConfigChange)
		if err != nil {
			logger.Warnf("config hot reload disabled: %v", err)
		} else {
			w.SetErrorHandler(func(err error) {
				logger.Warnf("config reload failed: %v", err)
			})
			a.watcher = w
		}
	}

	fields := map[string]interface{}{
		"address": a.Addr(),
	}
	if info, err := monitor.GetHostInfo(context.Background()); err == nil {
		fields["hostname"] = info.Hostname
		fields["os"] = info.OS
		fields["arch"] = info.Arch
		fields["cpu_cores"] = info.CPUCores
	}
	if limit, err := monitor.FileDescriptorLimit(context.Background()); err == nil {
		fields["nofile_limit"] = limit
	}
	logger.LogSystemEvent("server", "start", "neoport server started", logger.InfoLevel, fields)
	return nil
}

// Stop 停止监听并等待进行中的请求结束
func (a *App) Stop(ctx context.Context) error {
	if a.watcher != nil {
		_ = a.watcher.Stop()
	}
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	logger.LogSystemEvent("server", "stop", "neoport server stopped", logger.InfoLevel, nil)
	return nil
}

// onConfigChange 热更新 scan 默认值与日志配置；监听地址、超时和目标上限需要重启生效
func (a *App) onConfigChange(_, newConfig *config.Config) error {
	if logger.LoggerInstance != nil {
		if err := logger.LoggerInstance.UpdateConfig(newConfig.Log); err != nil {
			return err
		}
	}
	a.config.Store(newConfig)

	logger.LogSystemEvent("config", "reload", "configuration reloaded", logger.InfoLevel, map[string]interface{}{
		"file": a.configFile,
	})
	return nil
}
