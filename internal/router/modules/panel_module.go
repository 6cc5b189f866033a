package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sgexamenes/examenes-api/internal/application"
	"github.com/sgexamenes/examenes-api/internal/container"
	handlers "github.com/sgexamenes/examenes-api/internal/interface/http"
	"github.com/sgexamenes/examenes-api/internal/interface/middleware"
)

// PanelModule registers the dashboard routes.
type PanelModule struct {
	Handler *handlers.PanelHandler
	Auth    *application.AuthService
}

func NewPanelModule(h *handlers.PanelHandler, auth *application.AuthService) *PanelModule {
	return &PanelModule{Handler: h, Auth: auth}
}

func (m *PanelModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/panel")
	g.Use(middleware.Auth(m.Auth))
	g.Use(middleware.RequireActivo())
	g.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		g.GET("/resumen", m.Handler.Resumen)
		g.GET("/intentos", m.Handler.IntentosRecientes)
		g.GET("/examenes/:id/intentos", m.Handler.IntentosDeExamen)
	}
}
