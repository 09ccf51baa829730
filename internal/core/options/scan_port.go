package options

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"neoport/internal/config"
	"neoport/internal/core/model"
	"neoport/internal/core/pipeline"
	"neoport/internal/core/scanner/port"
)

// PortScanOptions 端口扫描参数 (CLI flags / HTTP 请求体)
type PortScanOptions struct {
	Target        string
	Port          string
	Timeout       time.Duration
	BannerTimeout time.Duration
	Concurrency   int
	Banner        bool
	Adaptive      bool
	Proxy         string
}

// NewPortScanOptions 以配置中的 scan 段作为默认值，cfg 为 nil 时使用内置默认值
func NewPortScanOptions(cfg *config.ScanConfig) *PortScanOptions {
	if cfg == nil {
		return &PortScanOptions{
			Port:          config.DefaultPorts,
			Timeout:       time.Second,
			BannerTimeout: 500 * time.Millisecond,
			Concurrency:   500,
			Banner:        true,
		}
	}
	return &PortScanOptions{
		Port:          cfg.Ports,
		Timeout:       cfg.Timeout,
		BannerTimeout: cfg.BannerTimeout,
		Concurrency:   cfg.Concurrency,
		Banner:        cfg.Banner,
		Adaptive:      cfg.Adaptive,
		Proxy:         cfg.Proxy,
	}
}

func (o *PortScanOptions) Validate() error {
	if strings.TrimSpace(o.Target) == "" {
		return fmt.Errorf("target is required")
	}
	if _, err := pipeline.ParsePorts(o.Port); err != nil {
		return err
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", o.Timeout)
	}
	if o.BannerTimeout < 0 {
		return fmt.Errorf("banner timeout must not be negative, got %s", o.BannerTimeout)
	}
	if o.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", o.Concurrency)
	}
	if o.Proxy != "" {
		u, err := url.Parse(o.Proxy)
		if err != nil {
			return fmt.Errorf("invalid proxy address: %w", err)
		}
		if u.Scheme != "socks5" && u.Scheme != "socks5h" {
			return fmt.Errorf("unsupported proxy scheme: %q (only socks5 is supported)", u.Scheme)
		}
	}
	return nil
}

// ToTask Banner 宽限期为 0 时取 port.DefaultBannerTimeout，且不超过连接超时
func (o *PortScanOptions) ToTask() *model.Task {
	task := model.NewTask(model.TaskTypePortScan, strings.TrimSpace(o.Target))
	task.PortRange = o.Port
	task.Timeout = o.Timeout
	task.BannerTimeout = o.BannerTimeout
	if task.BannerTimeout <= 0 {
		task.BannerTimeout = port.DefaultBannerTimeout
	}
	if task.BannerTimeout > task.Timeout {
		task.BannerTimeout = task.Timeout
	}
	task.Concurrency = o.Concurrency
	task.Banner = o.Banner
	task.Adaptive = o.Adaptive
	task.Proxy = o.Proxy
	return task
}
