/**
 * 日志中间件
 * @date: 2026.01.21
 * @description: 为每个请求分配 request id 并记录访问日志
 */

package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"neoport/internal/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// LoggingConfig 日志配置
type LoggingConfig struct {
	// 跳过日志的路径
	SkipPaths []string `json:"skip_paths"`

	// 慢请求阈值，0 表示不检测
	SlowRequestThreshold time.Duration `json:"slow_request_threshold"`
}

// LoggingMiddleware 日志中间件
type LoggingMiddleware struct {
	config *LoggingConfig
	skip   map[string]struct{}
}

// NewLoggingMiddleware 创建日志中间件
func NewLoggingMiddleware(config *LoggingConfig) *LoggingMiddleware {
	if config == nil {
		config = &LoggingConfig{
			SkipPaths:            []string{"/health", "/metrics"},
			SlowRequestThreshold: time.Minute,
		}
	}

	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}
	return &LoggingMiddleware{config: config, skip: skip}
}

// Handler 日志处理器
func (m *LoggingMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		if _, ok := m.skip[c.Request.URL.Path]; ok {
			return
		}
		logger.LogAccessRequest(c, startTime, requestID)

		if d := time.Since(startTime); m.config.SlowRequestThreshold > 0 && d > m.config.SlowRequestThreshold {
			logger.WithField("request_id", requestID).Warnf("slow request: %s %s took %s", c.Request.Method, c.Request.URL.Path, d)
		}
	}
}

// Recovery 捕获 handler 中的 panic，记录日志并返回 500
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.LogSystemEvent("http", "panic", "handler panic recovered", logger.ErrorLevel, map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": recovered,
		})
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "internal server error",
		})
	})
}
