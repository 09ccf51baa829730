/**
 * 配置管理
 * @date: 2025.10.21
 * @description: 负责定义扫描器的全部配置项，加载逻辑见 loader.go
 */
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Config 全局配置
type Config struct {
	// 应用配置
	App *AppConfig `yaml:"app" mapstructure:"app"`

	// 日志配置
	Log *LogConfig `yaml:"log" mapstructure:"log"`

	// 扫描配置
	Scan *ScanConfig `yaml:"scan" mapstructure:"scan"`

	// 输出配置
	Output *OutputConfig `yaml:"output" mapstructure:"output"`

	// 服务器配置 (server 模式)
	Server *ServerConfig `yaml:"server" mapstructure:"server"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`               // 应用名称
	Environment string `yaml:"environment" mapstructure:"environment"` // 运行环境
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`             // 日志级别 (debug/info/warn/error)
	Format     string `yaml:"format" mapstructure:"format"`           // 日志格式 (json/text)
	Output     string `yaml:"output" mapstructure:"output"`           // 日志输出 (stdout/stderr/file)
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`     // 日志文件路径
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // 最大文件大小（MB）
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // 最大备份数
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // 最大保留天数
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // 是否压缩
	Caller     bool   `yaml:"caller" mapstructure:"caller"`           // 是否显示调用者信息
}

// ScanConfig 扫描引擎配置
type ScanConfig struct {
	Ports         string        `yaml:"ports" mapstructure:"ports"`                   // 默认端口范围
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`               // 连接超时
	BannerTimeout time.Duration `yaml:"banner_timeout" mapstructure:"banner_timeout"` // Banner 读取宽限期
	Concurrency   int           `yaml:"concurrency" mapstructure:"concurrency"`       // 最大并发探测数
	Banner        bool          `yaml:"banner" mapstructure:"banner"`                 // 是否抓取 Banner
	Adaptive      bool          `yaml:"adaptive" mapstructure:"adaptive"`             // AIMD 自适应并发
	Proxy         string        `yaml:"proxy" mapstructure:"proxy"`                   // SOCKS5 代理地址
}

// OutputConfig 结果输出配置
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // text/json/csv/yaml
	File   string `yaml:"file" mapstructure:"file"`     // 输出文件，为空时写 stdout
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`                   // 监听地址
	Port         int           `yaml:"port" mapstructure:"port"`                   // 监听端口
	Mode         string        `yaml:"mode" mapstructure:"mode"`                   // gin 运行模式 (debug/release/test)
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`   // 读取超时时间
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"` // 写入超时时间
	MaxTargets   int           `yaml:"max_targets" mapstructure:"max_targets"`     // 单次 API 扫描允许的最大 (host, port) 数
}

// 支持的输出格式
var OutputFormats = []string{"text", "json", "csv", "yaml"}

// Address 返回 host:port 形式的监听地址
func (s *ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Validate 验证配置合法性
func (c *Config) Validate() error {
	if c.Scan == nil || c.Log == nil || c.Output == nil || c.Server == nil {
		return fmt.Errorf("incomplete config")
	}

	if c.Scan.Concurrency < 1 {
		return fmt.Errorf("invalid scan concurrency: %d", c.Scan.Concurrency)
	}
	if c.Scan.Timeout <= 0 {
		return fmt.Errorf("invalid scan timeout: %s", c.Scan.Timeout)
	}
	if c.Scan.BannerTimeout < 0 {
		return fmt.Errorf("invalid banner timeout: %s", c.Scan.BannerTimeout)
	}

	if !isOutputFormat(c.Output.Format) {
		return fmt.Errorf("unsupported output format: %s (expected one of %s)", c.Output.Format, strings.Join(OutputFormats, "/"))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

func isOutputFormat(format string) bool {
	for _, f := range OutputFormats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}
