// 日志管理器
//
// CLI 模式下扫描结果写 stdout，因此日志默认输出到 stderr。
// server 模式下 LoggerManager 随配置热重载更新级别、格式和输出。
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"neoport/internal/config"
)

// timestampLayout 毫秒精度，不带时区
const timestampLayout = "2006-01-02 15:04:05.000"

// LoggerManager 持有全局 logrus 实例及其生效配置
type LoggerManager struct {
	logger *logrus.Logger
	config *config.LogConfig
	mu     sync.Mutex
}

// LoggerInstance 全局日志实例，InitLogger 之前为 nil
var LoggerInstance *LoggerManager

// InitLogger 按配置构建 logrus 实例并设置为全局实例
func InitLogger(cfg *config.LogConfig) (*LoggerManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("log config cannot be nil")
	}

	formatter, err := buildFormatter(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to set log formatter: %w", err)
	}
	out, err := buildWriter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set log output: %w", err)
	}

	l := logrus.New()
	l.SetFormatter(formatter)
	l.SetOutput(out)
	l.SetReportCaller(cfg.Caller)
	if level, perr := logrus.ParseLevel(cfg.Level); perr == nil {
		l.SetLevel(level)
	} else {
		l.SetLevel(logrus.InfoLevel)
		l.Warnf("Invalid log level '%s', falling back to info", cfg.Level)
	}

	LoggerInstance = &LoggerManager{logger: l, config: cfg}
	return LoggerInstance, nil
}

func buildFormatter(format string) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "text", "":
		return &logrus.TextFormatter{TimestampFormat: timestampLayout, FullTimestamp: true}, nil
	case "json":
		return &logrus.JSONFormatter{
			TimestampFormat: timestampLayout,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "function",
				logrus.FieldKeyFile:  "file",
			},
		}, nil
	}
	return nil, fmt.Errorf("unsupported log format: %s", format)
}

func buildWriter(cfg *config.LogConfig) (io.Writer, error) {
	switch strings.ToLower(cfg.Output) {
	case "stderr", "":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "file":
	default:
		return nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}

	if cfg.FilePath == "" {
		return nil, fmt.Errorf("file path is required when output is file")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotated := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize, // MB
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge, // 天
		Compress:   cfg.Compress,
	}
	// debug 级别同时输出到 stderr 方便排查
	if strings.EqualFold(cfg.Level, "debug") {
		return io.MultiWriter(os.Stderr, rotated), nil
	}
	return rotated, nil
}

// GetLogger 获取底层 logrus 实例
func (lm *LoggerManager) GetLogger() *logrus.Logger {
	return lm.logger
}

// GetConfig 获取当前生效的日志配置
func (lm *LoggerManager) GetConfig() *config.LogConfig {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.config
}

// UpdateConfig 运行时应用新的日志配置，只改动发生变化的部分
func (lm *LoggerManager) UpdateConfig(newCfg *config.LogConfig) error {
	if newCfg == nil {
		return fmt.Errorf("new config cannot be nil")
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	old := lm.config

	if newCfg.Level != old.Level {
		level, err := logrus.ParseLevel(newCfg.Level)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		lm.logger.SetLevel(level)
		lm.logger.Infof("Log level updated from %s to %s", old.Level, newCfg.Level)
	}
	if newCfg.Format != old.Format {
		formatter, err := buildFormatter(newCfg.Format)
		if err != nil {
			return fmt.Errorf("failed to update log formatter: %w", err)
		}
		lm.logger.SetFormatter(formatter)
	}
	if newCfg.Output != old.Output || newCfg.FilePath != old.FilePath {
		out, err := buildWriter(newCfg)
		if err != nil {
			return fmt.Errorf("failed to update log output: %w", err)
		}
		lm.logger.SetOutput(out)
	}
	lm.logger.SetReportCaller(newCfg.Caller)

	lm.config = newCfg
	return nil
}

// std 返回全局实例；未初始化时退回 logrus 标准 logger，保证字段不丢失
func std() *logrus.Logger {
	if lm := LoggerInstance; lm != nil {
		return lm.logger
	}
	return logrus.StandardLogger()
}

func Debug(args ...interface{})                 { std().Debug(args...) }
func Debugf(format string, args ...interface{}) { std().Debugf(format, args...) }
func Info(args ...interface{})                  { std().Info(args...) }
func Infof(format string, args ...interface{})  { std().Infof(format, args...) }
func Warn(args ...interface{})                  { std().Warn(args...) }
func Warnf(format string, args ...interface{})  { std().Warnf(format, args...) }
func Error(args ...interface{})                 { std().Error(args...) }
func Errorf(format string, args ...interface{}) { std().Errorf(format, args...) }

// WithField 添加单个字段
func WithField(key string, value interface{}) *logrus.Entry {
	return std().WithField(key, value)
}

// WithFields 添加多个字段
func WithFields(fields logrus.Fields) *logrus.Entry {
	return std().WithFields(fields)
}
