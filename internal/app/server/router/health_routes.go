package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neoport/internal/pkg/logger"
	"neoport/internal/pkg/version"
)

func (r *Router) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": logger.NowFormatted(),
		"service":   "neoport",
	})
}

func (r *Router) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "neoport",
		"version":     version.GetVersion(),
		"api_version": version.APIVersion,
		"build_time":  version.BuildTime,
		"git_commit":  version.GitCommit,
		"go_version":  version.GoVersion(),
	})
}
