package port

import (
	"context"
	"net"
	"os"
	"strconv"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

// dialerFunc 将函数适配为 dialer.Dialer
type dialerFunc func(ctx context.Context, network, address string) (net.Conn, error)

func (f dialerFunc) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return f(ctx, network, address)
}

// redirectDialer 按端口把连接重定向到本地监听地址，未登记的端口返回连接被拒绝
type redirectDialer struct {
	routes map[int]string
	base   net.Dialer
}

func (d *redirectDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	_, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	port, _ := strconv.Atoi(portStr)
	if to, ok := d.routes[port]; ok {
		return d.base.DialContext(ctx, network, to)
	}
	return nil, refused(network)
}

func refused(network string) error {
	return &net.OpError{Op: "dial", Net: network, Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
}

// serve 启动一个本地监听，每个连接交给 handle 处理
func serve(t *testing.T, handle func(net.Conn)) string {
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
			go handle(conn)
		}
	}()
	return ln.Addr().String()
}

// closedAddr 返回一个当前无人监听的本地地址
func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

// holdOpen 返回一个保持连接直到测试结束的处理函数，连接建立后先写入 greeting
func holdOpen(t *testing.T, greeting []byte) func(net.Conn) {
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	return func(conn net.Conn) {
		defer conn.Close()
		if len(greeting) > 0 {
			_, _ = conn.Write(greeting)
		}
		<-done
	}
}

func closeImmediately(conn net.Conn) {
	conn.Close()
}

func splitAddr(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}
