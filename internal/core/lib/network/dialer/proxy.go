package dialer

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

// ProxyDialer 通过 SOCKS5 代理建立 TCP 连接
//
// 经代理探测时，目标端口关闭和被过滤都表现为代理返回的失败应答，
// 无法区分 RST，因此这类失败一律按 filtered 处理。
type ProxyDialer struct {
	ProxyURL *url.URL
	Timeout  time.Duration
	socks    proxy.ContextDialer
}

// NewProxyDialer 解析 socks5://[user:pass@]host:port 形式的代理地址
func NewProxyDialer(proxyAddr string, timeout time.Duration) (*ProxyDialer, error) {
	u, err := url.Parse(proxyAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy address: %w", err)
	}
	switch u.Scheme {
	case "socks5", "socks5h":
	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %q (only socks5 is supported for raw tcp)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid proxy address: missing host in %q", proxyAddr)
	}

	var auth *proxy.Auth
	if u.User != nil {
		pass, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: pass}
	}

	forward, err := proxy.SOCKS5("tcp", u.Host, auth, &net.Dialer{Timeout: timeout, KeepAlive: -1})
	if err != nil {
		return nil, fmt.Errorf("failed to create socks5 dialer: %w", err)
	}
	cd, ok := forward.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("socks5 dialer %T does not support context", forward)
	}

	return &ProxyDialer{ProxyURL: u, Timeout: timeout, socks: cd}, nil
}

// DialContext 握手和 CONNECT 整体受 Timeout 约束
func (d *ProxyDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	return d.socks.DialContext(ctx, network, address)
}
