package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sgexamenes/examenes-api/internal/application"
	"github.com/sgexamenes/examenes-api/internal/container"
	handlers "github.com/sgexamenes/examenes-api/internal/interface/http"
	"github.com/sgexamenes/examenes-api/internal/interface/middleware"
)

// AuthModule registers registration, login and session routes.
// Public: POST /api/registro, POST /api/login, POST /api/refresh
// Protected: POST /api/logout, GET /api/perfil
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    *application.AuthService
}

func NewAuthModule(h *handlers.AuthHandler, auth *application.AuthService) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public with IP-based rate limits
	registroLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/registro", registroLimiter, m.Handler.Registro)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Auth))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/perfil", m.Handler.Perfil)
	}
}
