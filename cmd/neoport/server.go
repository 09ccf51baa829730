/*
 * @date: 2026.01.21
 * @description: server 子命令，以 HTTP 服务方式提供扫描能力
 */

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"neoport/internal/app/server"
	"neoport/internal/pkg/logger"
)

func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "启动 HTTP 服务模式",
		Long: `以守护进程方式启动 HTTP 服务，通过 POST /api/v1/scans 提交扫描任务。
配置文件发生变化时自动重新加载扫描默认值和日志配置。

示例:
  neoport server --listen 127.0.0.1:8090 --config ./configs/config.yaml`,
		Args: cobra.NoArgs,
		RunE: runServer,
	}

	cmd.Flags().String("listen", "", "监听地址 host:port (默认 0.0.0.0:8090)")
	return cmd
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, loader, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		host, portStr, err := net.SplitHostPort(listen)
		if err != nil {
			return fmt.Errorf("invalid listen address %q: %w", listen, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 0 || port > 65535 {
			return fmt.Errorf("invalid listen port %q", portStr)
		}
		cfg.Server.Host = host
		cfg.Server.Port = port
	}

	// 服务模式使用配置文件中的日志设置
	if flag := cmd.Flags().Lookup("log-level"); flag != nil && flag.Changed {
		cfg.Log.Level = flag.Value.String()
	}
	if _, err := logger.InitLogger(cfg.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	app, err := server.NewApp(cfg, loader.GetConfigPath())
	if err != nil {
		return err
	}
	if err := app.Start(); err != nil {
		return err
	}
	logger.Infof("neoport server listening on %s", app.Addr())

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down neoport server...")

	// 给服务器 5 秒钟的时间来完成现有请求
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return app.Stop(ctx)
}
