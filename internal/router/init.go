package router

import (
	"github.com/sgexamenes/examenes-api/internal/application"
	"github.com/sgexamenes/examenes-api/internal/container"
	pginfra "github.com/sgexamenes/examenes-api/internal/infrastructure/postgres"
	handlers "github.com/sgexamenes/examenes-api/internal/interface/http"
	"github.com/sgexamenes/examenes-api/internal/router/modules"
)

// Deps holds every repository, service and handler the HTTP modules need.
type Deps struct {
	Auth      *application.AuthService
	Usuarios  *application.UsuarioService
	Examenes  *application.ExamenService
	Preguntas *application.PreguntaService
	Panel     *application.PanelService

	AuthHandler     *handlers.AuthHandler
	UsuarioHandler  *handlers.UsuarioHandler
	ExamenHandler   *handlers.ExamenHandler
	PreguntaHandler *handlers.PreguntaHandler
	PanelHandler    *handlers.PanelHandler
}

func buildDeps() Deps {
	cfg := container.GetConfig()
	log := container.GetLogger()
	pool := container.GetPGPool()

	usuarioRepo := pginfra.NewUsuarioRepository(pool)
	examenRepo := pginfra.NewExamenRepository(pool)
	preguntaRepo := pginfra.NewPreguntaRepository(pool)
	intentoRepo := pginfra.NewIntentoRepository(pool)

	auth := application.NewAuthService(usuarioRepo, container.GetJWT(), container.GetRedis(), log, cfg.SessionTTL)
	usuarios := application.NewUsuarioService(usuarioRepo, container.GetRabbitPub(), log, cfg)
	examenes := application.NewExamenService(examenRepo, intentoRepo, log)
	preguntas := application.NewPreguntaService(preguntaRepo, container.GetGCS(), cfg.GCSBucket, container.GetES(), cfg.ESPreguntasIndex, log)
	panel := application.NewPanelService(intentoRepo, container.GetRedis(), log)

	return Deps{
		Auth:      auth,
		Usuarios:  usuarios,
		Examenes:  examenes,
		Preguntas: preguntas,
		Panel:     panel,

		AuthHandler:     handlers.NewAuthHandler(auth, usuarios, container.GetCookies(), log),
		UsuarioHandler:  handlers.NewUsuarioHandler(usuarios, log),
		ExamenHandler:   handlers.NewExamenHandler(examenes, log),
		PreguntaHandler: handlers.NewPreguntaHandler(preguntas, log),
		PanelHandler:    handlers.NewPanelHandler(panel, log),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildDeps()
	r.Add(modules.NewAuthModule(deps.AuthHandler, deps.Auth))
	r.Add(modules.NewUsuarioModule(deps.UsuarioHandler, deps.Auth))
	r.Add(modules.NewExamenModule(deps.ExamenHandler, deps.Auth))
	r.Add(modules.NewPreguntaModule(deps.PreguntaHandler, deps.Auth))
	r.Add(modules.NewPanelModule(deps.PanelHandler, deps.Auth))
	r.Add(modules.NewDebugModule())
}
