/**
 * 扫描任务处理器
 * @date: 2026.01.21
 * @description: 接收 HTTP 扫描请求，转换为 Task 后同步执行并返回 TaskResult
 */

package scan

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"neoport/internal/config"
	"neoport/internal/core/options"
	"neoport/internal/core/pipeline"
	"neoport/internal/core/runner"
	"neoport/internal/pkg/logger"
)

// ScanRequest 扫描请求体
// 未填写的字段使用当前配置中的 scan 默认值；时长使用 Go duration 字符串 (e.g. "1s", "500ms")
type ScanRequest struct {
	Target        string `json:"target" binding:"required"`
	Ports         string `json:"ports"`
	Timeout       string `json:"timeout"`
	BannerTimeout string `json:"banner_timeout"`
	Concurrency   int    `json:"concurrency"`
	Banner        *bool  `json:"banner"`
	Adaptive      *bool  `json:"adaptive"`
	Proxy         string `json:"proxy"`
}

// ConfigProvider 返回当前生效的配置，配置热更新后返回新值
type ConfigProvider func() *config.Config

// ScanHandler 扫描处理器
type ScanHandler struct {
	manager *runner.RunnerManager
	config  ConfigProvider
}

func NewScanHandler(manager *runner.RunnerManager, provider ConfigProvider) *ScanHandler {
	return &ScanHandler{
		manager: manager,
		config:  provider,
	}
}

// CreateScan 提交并同步执行一次端口扫描
// @Router /api/v1/scans [post]
func (h *ScanHandler) CreateScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	opts, err := h.buildOptions(&req)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	task, err := options.BuildTask(opts)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.manager.Execute(c.Request.Context(), task)
	if err != nil {
		if isConfigError(err) {
			badRequest(c, err.Error())
			return
		}
		logger.WithField("task_id", task.ID).Errorf("scan task failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"message":   fmt.Sprintf("found %d open port(s)", len(result.Results)),
		"timestamp": logger.NowFormatted(),
		"data":      result,
	})
}

func (h *ScanHandler) buildOptions(req *ScanRequest) (*options.PortScanOptions, error) {
	var scanCfg *config.ScanConfig
	if h.config != nil {
		if cfg := h.config(); cfg != nil {
			scanCfg = cfg.Scan
		}
	}

	opts := options.NewPortScanOptions(scanCfg)
	opts.Target = req.Target
	if req.Ports != "" {
		opts.Port = req.Ports
	}
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}
		opts.Timeout = d
	}
	if req.BannerTimeout != "" {
		d, err := time.ParseDuration(req.BannerTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid banner_timeout: %w", err)
		}
		opts.BannerTimeout = d
	}
	if req.Concurrency != 0 {
		opts.Concurrency = req.Concurrency
	}
	if req.Banner != nil {
		opts.Banner = *req.Banner
	}
	if req.Adaptive != nil {
		opts.Adaptive = *req.Adaptive
	}
	if req.Proxy != "" {
		opts.Proxy = req.Proxy
	}
	return opts, nil
}

func isConfigError(err error) bool {
	return errors.Is(err, pipeline.ErrInvalidPortSpec) ||
		errors.Is(err, pipeline.ErrInvalidTarget) ||
		errors.Is(err, runner.ErrTooManyTargets)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  "error",
		"message": message,
	})
}
