package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sgexamenes/examenes-api/internal/application"
	"github.com/sgexamenes/examenes-api/internal/container"
	handlers "github.com/sgexamenes/examenes-api/internal/interface/http"
	"github.com/sgexamenes/examenes-api/internal/interface/middleware"
)

// PreguntaModule registers the question bank routes: categories, question
// CRUD, search and attachment upload.
type PreguntaModule struct {
	Handler *handlers.PreguntaHandler
	Auth    *application.AuthService
}

func NewPreguntaModule(h *handlers.PreguntaHandler, auth *application.AuthService) *PreguntaModule {
	return &PreguntaModule{Handler: h, Auth: auth}
}

func (m *PreguntaModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/")
	g.Use(middleware.Auth(m.Auth))
	g.Use(middleware.RequireActivo())
	g.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		g.GET("/categorias", m.Handler.ListarCategorias)
		g.POST("/categorias", m.Handler.CrearCategoria)

		g.GET("/preguntas", m.Handler.Listar)
		g.POST("/preguntas", m.Handler.Crear)
		g.GET("/preguntas/buscar", m.Handler.Buscar)
		g.GET("/preguntas/:id", m.Handler.Obtener)
		g.PUT("/preguntas/:id", m.Handler.Actualizar)
		g.DELETE("/preguntas/:id", m.Handler.Eliminar)
	}

	// Uploads get a tighter limit
	subir := rg.Group("/")
	subir.Use(middleware.Auth(m.Auth))
	subir.Use(middleware.RequireActivo())
	subir.Use(middleware.RateLimit(container.GetRedis(), 20, time.Minute, middleware.KeyByUserID(), nil))
	{
		subir.POST("/preguntas/:id/adjunto", m.Handler.SubirAdjunto)
	}
}
