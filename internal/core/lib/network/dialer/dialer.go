package dialer

import (
	"context"
	"net"
	"time"
)

// Dialer 定义了网络连接器接口
type Dialer interface {
	// DialContext 建立连接
	// network: 协议 (tcp)
	// address: 目标地址 (host:port)
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// DefaultDialer 默认直连拨号器
type DefaultDialer struct {
	dialer *net.Dialer
}

// NewDefaultDialer timeout 为拨号兜底超时，调用方通常还会通过 ctx 设置更短的超时
func NewDefaultDialer(timeout time.Duration) *DefaultDialer {
	return &DefaultDialer{
		dialer: &net.Dialer{
			Timeout:   timeout,
			KeepAlive: -1, // 探测连接是一次性的，不需要 keep-alive
		},
	}
}

func (d *DefaultDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return d.dialer.DialContext(ctx, network, address)
}
