package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sgexamenes/examenes-api/internal/application"
	"github.com/sgexamenes/examenes-api/internal/container"
	handlers "github.com/sgexamenes/examenes-api/internal/interface/http"
	"github.com/sgexamenes/examenes-api/internal/interface/middleware"
)

// ExamenModule registers the exam wizard and attempt routes. All routes
// require an authenticated, active account; ownership is enforced per
// handler so administrators can reach any exam.
type ExamenModule struct {
	Handler *handlers.ExamenHandler
	Auth    *application.AuthService
}

func NewExamenModule(h *handlers.ExamenHandler, auth *application.AuthService) *ExamenModule {
	return &ExamenModule{Handler: h, Auth: auth}
}

func (m *ExamenModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/examenes")
	g.Use(middleware.Auth(m.Auth))
	g.Use(middleware.RequireActivo())
	g.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		g.POST("", m.Handler.Crear)
		g.GET("", m.Handler.Listar)
		g.GET("/:id", m.Handler.Obtener)
		g.PUT("/:id", m.Handler.ActualizarDatos)
		g.PUT("/:id/subpruebas", m.Handler.Subpruebas)
		g.PUT("/:id/postulaciones", m.Handler.Postulaciones)
		g.POST("/:id/publicar", m.Handler.Publicar)
		g.POST("/:id/intentos", m.Handler.RegistrarIntento)
	}
}
