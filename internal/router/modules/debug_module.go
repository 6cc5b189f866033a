package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sgexamenes/examenes-api/internal/container"
	"github.com/sgexamenes/examenes-api/internal/interface/middleware"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// Public metrics endpoint (expvar), rate-limited per IP. In-cluster
	// probes are exempt from the limit.
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
