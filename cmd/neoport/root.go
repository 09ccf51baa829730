/*
 * @date: 2026.01.21
 * @description: Cobra Root Command 定义
 */

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"neoport/internal/config"
	"neoport/internal/pkg/logger"
)

// NewRootCmd 构建完整的命令树
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neoport",
		Short: "neoport 并发 TCP Connect 端口扫描器",
		Long: `neoport 对一组主机和端口发起 TCP 连接，将端口分类为 open/closed/filtered，
并可抓取服务主动发送的 Banner。既可以作为 CLI 工具运行，也可以作为 HTTP 服务运行。

示例:
  1.扫描单个主机的默认端口
	neoport scan 192.168.1.1
  2.扫描网段的指定端口并输出 JSON
	neoport scan 10.0.0.0/24 -p 22,80,8000-8100 -o json
  3.启动服务模式
	neoport server --listen 127.0.0.1:8090
`,
		SilenceUsage: true,
	}

	// 全局 Flag
	pFlags := cmd.PersistentFlags()
	pFlags.String("config", "", "配置文件路径 (默认: ./configs/config.yaml)")
	pFlags.String("log-level", "", "日志级别 (debug, info, warn, error)")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewServerCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

func Execute() {
	// 全局 Panic Recovery
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n[FATAL] neoport crashed unexpectedly: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig 加载配置，bindings 将 viper key 绑定到当前命令的 flag
// 优先级: 命令行 Flag > 环境变量 > 配置文件 > 默认值
func loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, *config.ConfigLoader, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	loader := config.NewConfigLoader(cfgFile, config.DefaultEnvPrefix)
	v := loader.Viper()

	if err := v.BindPFlag("log.level", cmd.Flags().Lookup("log-level")); err != nil {
		return nil, nil, err
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	cfg, err := loader.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}

// initCLILogger 初始化 CLI 模式下的日志
// 未显式指定 --log-level 时只输出错误，避免干扰扫描结果
func initCLILogger(cmd *cobra.Command, cfg *config.Config) {
	level := "error"
	if flag := cmd.Flags().Lookup("log-level"); flag != nil && flag.Changed {
		level = flag.Value.String()
	}

	switch level {
	case "debug":
		pterm.EnableDebugMessages()
	case "info":
		pterm.DisableDebugMessages()
	default:
		pterm.DisableDebugMessages()
		pterm.Info = *pterm.Info.WithWriter(io.Discard)
	}

	logConfig := *cfg.Log
	logConfig.Level = level

	if _, err := logger.InitLogger(&logConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
	}
}
