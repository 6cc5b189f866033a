package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sgexamenes/examenes-api/internal/application"
	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/pkg/response"
)

const (
	CtxUsuarioKey = "usuario"
	CtxUserIDKey  = "userID"
)

// Auth validates the bearer access token against its server-side session and
// injects the resolved account into the Gin context.
func Auth(auth *application.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Denial(c, 401, application.DenegacionNoAutenticado, "Falta el token de acceso.", nil)
			c.Abort()
			return
		}
		u, err := auth.ValidarAcceso(c.Request.Context(), token)
		if err != nil {
			response.Denial(c, 401, application.DenegacionNoAutenticado, "Token de acceso inválido o sesión expirada.", nil)
			c.Abort()
			return
		}
		c.Set(CtxUsuarioKey, u)
		c.Set(CtxUserIDKey, u.IDUsuario)
		c.Next()
	}
}

// RequireRol gates a route on role + active status using the combined check.
// Must run after Auth.
func RequireRol(rol entity.Rol) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := UsuarioDe(c)
		if d := application.ValidarRolActivo(rol, u); d != nil {
			response.Denial(c, d.Status(), d.Kind, d.Message, d.Contexto)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireActivo gates a route on active status only (any role). Must run
// after Auth.
func RequireActivo() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := UsuarioDe(c)
		if d := application.ValidarActivo(u); d != nil {
			response.Denial(c, d.Status(), d.Kind, d.Message, d.Contexto)
			c.Abort()
			return
		}
		c.Next()
	}
}

// UsuarioDe extracts the authenticated account from the Gin context, or nil.
func UsuarioDe(c *gin.Context) *entity.Usuario {
	if v, ok := c.Get(CtxUsuarioKey); ok {
		if u, ok := v.(*entity.Usuario); ok {
			return u
		}
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
