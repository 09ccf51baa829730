package port

import (
	"context"
	"errors"
	"strings"
	"syscall"
	"time"

	"neoport/internal/core/lib/network/dialer"
	"neoport/internal/core/model"
)

const (
	DefaultTimeout       = time.Second
	DefaultBannerTimeout = 500 * time.Millisecond

	// bannerBufSize 单次读取 Banner 的最大字节数
	bannerBufSize = 1024
)

// Prober 单次 TCP Connect 探测
// 对同一个目标只尝试一次连接，不重试
type Prober struct {
	dialer        dialer.Dialer
	timeout       time.Duration
	bannerTimeout time.Duration
	banner        bool
}

// NewProber bannerTimeout 会被限制在 timeout 以内
func NewProber(d dialer.Dialer, timeout, bannerTimeout time.Duration, banner bool) *Prober {
	if d == nil {
		d = dialer.Get()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if bannerTimeout <= 0 {
		bannerTimeout = DefaultBannerTimeout
	}
	if bannerTimeout > timeout {
		bannerTimeout = timeout
	}
	return &Prober{
		dialer:        d,
		timeout:       timeout,
		bannerTimeout: bannerTimeout,
		banner:        banner,
	}
}

// Probe 探测一个目标
// 端口开放时返回结果和 open；关闭或过滤时返回 nil 和对应状态，这两种情况都不是错误
func (p *Prober) Probe(ctx context.Context, target model.ScanTarget) (*model.ScanResult, model.PortState) {
	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	conn, err := p.dialer.DialContext(dialCtx, "tcp", target.Address())
	cancel()
	if err != nil {
		return nil, classify(err)
	}
	defer conn.Close()

	result := &model.ScanResult{
		Host:    target.Host,
		Port:    target.Port,
		State:   model.PortStateOpen,
		Service: LookupService(target.Port),
	}
	if !p.banner {
		return result, model.PortStateOpen
	}

	// 整体取消时立即打断 Banner 读取
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if err := conn.SetReadDeadline(time.Now().Add(p.bannerTimeout)); err != nil {
		return result, model.PortStateOpen
	}

	buf := make([]byte, bannerBufSize)
	n, _ := conn.Read(buf)
	// 超时与读错误同样处理: 端口仍为 open，只是没有 Banner
	result.Banner = decodeBanner(buf[:n])
	return result, model.PortStateOpen
}

// decodeBanner 丢弃非法 UTF-8 字节并去掉首尾空白，结果为空时返回 nil
func decodeBanner(raw []byte) *string {
	if len(raw) == 0 {
		return nil
	}
	text := strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
	if text == "" {
		return nil
	}
	return &text
}

// classify 连接被拒绝为 closed，其余 (超时、不可达等) 均为 filtered
func classify(err error) model.PortState {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return model.PortStateClosed
	}
	return model.PortStateFiltered
}
