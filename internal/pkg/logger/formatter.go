// 结构化日志辅助函数
package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// FormatTimestamp 格式化时间戳为统一的毫秒精度格式
// 返回格式："2006-01-02 15:04:05.000"
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05.000")
}

// NowFormatted 返回当前时间的格式化字符串
func NowFormatted() string {
	return FormatTimestamp(time.Now())
}

// LogType 日志类型枚举
type LogType string

const (
	// AccessLog 访问日志 - 记录HTTP请求 (server 模式)
	AccessLog LogType = "access"
	// SystemLog 系统日志 - 记录启动、关闭、配置重载等
	SystemLog LogType = "system"
	// ScanLog 扫描日志 - 记录扫描任务执行情况
	ScanLog LogType = "scan"
)

// LogLevel 日志级别类型，封装logrus.Level避免调用方直接依赖logrus
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var logrusLevels = map[LogLevel]logrus.Level{
	DebugLevel: logrus.DebugLevel,
	InfoLevel:  logrus.InfoLevel,
	WarnLevel:  logrus.WarnLevel,
	ErrorLevel: logrus.ErrorLevel,
}

func toLogrusLevel(level LogLevel) logrus.Level {
	if l, ok := logrusLevels[level]; ok {
		return l
	}
	return logrus.InfoLevel
}

// LogAccessRequest 记录HTTP访问日志
func LogAccessRequest(c *gin.Context, startTime time.Time, requestID string) {
	std().WithFields(logrus.Fields{
		"type":          AccessLog,
		"method":        c.Request.Method,
		"path":          c.Request.URL.Path,
		"query":         c.Request.URL.RawQuery,
		"status_code":   c.Writer.Status(),
		"response_time": time.Since(startTime).Milliseconds(),
		"client_ip":     c.ClientIP(),
		"user_agent":    c.Request.UserAgent(),
		"request_id":    requestID,
		"response_size": c.Writer.Size(),
	}).Info("HTTP request processed")
}

// LogSystemEvent 记录系统事件日志
// 用于记录系统启动、关闭、组件状态变化等系统级事件
func LogSystemEvent(component, event, message string, level LogLevel, extraFields map[string]interface{}) {
	fields := logrus.Fields{
		"type":      SystemLog,
		"component": component,
		"event":     event,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	std().WithFields(fields).Log(toLogrusLevel(level), fmt.Sprintf("System event: %s - %s: %s", component, event, message))
}

// LogScanOperation 记录扫描操作日志
// status: running / completed / failed / cancelled
func LogScanOperation(taskID, scanType, target, status string, duration time.Duration, extraFields map[string]interface{}) {
	fields := logrus.Fields{
		"type":      ScanLog,
		"task_id":   taskID,
		"scan_type": scanType,
		"target":    target,
		"status":    status,
		"duration":  duration.Milliseconds(),
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	entry := std().WithFields(fields)
	switch status {
	case "completed":
		entry.Info(fmt.Sprintf("Scan completed: %s on %s", scanType, target))
	case "failed":
		entry.Error(fmt.Sprintf("Scan failed: %s on %s", scanType, target))
	case "running":
		entry.Debug(fmt.Sprintf("Scan running: %s on %s", scanType, target))
	default:
		entry.Info(fmt.Sprintf("Scan %s: %s on %s", status, scanType, target))
	}
}
