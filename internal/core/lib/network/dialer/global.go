package dialer

import (
	"sync"
	"time"
)

var (
	mu sync.RWMutex
	// globalDialer 全局拨号器实例，配置了全局代理时通过 SetGlobalDialer 替换
	globalDialer Dialer = NewDefaultDialer(10 * time.Second)
)

// SetGlobalDialer 设置全局拨号器
func SetGlobalDialer(d Dialer) {
	mu.Lock()
	defer mu.Unlock()
	globalDialer = d
}

// Get 获取全局拨号器
func Get() Dialer {
	mu.RLock()
	defer mu.RUnlock()
	return globalDialer
}

// New 根据代理地址创建拨号器，proxyAddr 为空时返回直连拨号器
func New(proxyAddr string, timeout time.Duration) (Dialer, error) {
	if proxyAddr == "" {
		return NewDefaultDialer(timeout), nil
	}
	return NewProxyDialer(proxyAddr, timeout)
}
