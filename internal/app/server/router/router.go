/**
 * 服务端路由注册
 * @date: 2026.01.21
 * @description: 统一管理 server 模式下的所有路由
 */

package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"neoport/internal/app/server/middleware"
	"neoport/internal/handler/scan"
	"neoport/internal/pkg/version"
)

// RouterConfig 路由配置
type RouterConfig struct {
	// gin 运行模式 (debug/release/test)
	Mode string `json:"mode"`

	// 路由前缀
	Prefix string `json:"prefix"`

	// 日志中间件配置，nil 使用默认值
	Logging *middleware.LoggingConfig `json:"logging"`
}

// Router 服务端路由器
type Router struct {
	engine   *gin.Engine
	config   *RouterConfig
	scan     *scan.ScanHandler
	gatherer prometheus.Gatherer
}

// NewRouter 创建新的路由器
// gatherer 为 /metrics 暴露的指标来源
func NewRouter(config *RouterConfig, scanHandler *scan.ScanHandler, gatherer prometheus.Gatherer) *Router {
	if config == nil {
		config = &RouterConfig{Mode: gin.ReleaseMode}
	}
	if config.Prefix == "" {
		config.Prefix = "/api/" + version.APIVersion
	}
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	r := &Router{
		engine:   gin.New(),
		config:   config,
		scan:     scanHandler,
		gatherer: gatherer,
	}

	r.engine.Use(middleware.Recovery(), middleware.NewLoggingMiddleware(config.Logging).Handler())
	r.setupHealthRoutes()
	r.setupScanRoutes()
	return r
}

// Engine 返回 gin 引擎，用于挂载到 http.Server
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupScanRoutes() {
	api := r.engine.Group(r.config.Prefix)
	api.POST("/scans", r.scan.CreateScan)
}

func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.handleHealth)
	r.engine.GET("/version", r.handleVersion)

	if r.gatherer != nil {
		r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}
}
