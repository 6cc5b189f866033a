package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sgexamenes/examenes-api/internal/application"
	"github.com/sgexamenes/examenes-api/internal/container"
	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	handlers "github.com/sgexamenes/examenes-api/internal/interface/http"
	"github.com/sgexamenes/examenes-api/internal/interface/middleware"
)

// UsuarioModule registers the administrator-only account management routes.
type UsuarioModule struct {
	Handler *handlers.UsuarioHandler
	Auth    *application.AuthService
}

func NewUsuarioModule(h *handlers.UsuarioHandler, auth *application.AuthService) *UsuarioModule {
	return &UsuarioModule{Handler: h, Auth: auth}
}

func (m *UsuarioModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/usuarios")
	admin.Use(middleware.Auth(m.Auth))
	admin.Use(middleware.RequireRol(entity.RolAdministrador))
	admin.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		admin.GET("", m.Handler.Listar)
		admin.POST("/:id/aprobar", m.Handler.Aprobar)
		admin.POST("/:id/suspender", m.Handler.Suspender)
	}
}
