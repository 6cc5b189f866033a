package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sgexamenes/examenes-api/internal/application"
	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/internal/domain/repository"
	"github.com/sgexamenes/examenes-api/internal/interface/middleware"
	"github.com/sgexamenes/examenes-api/pkg/helpers"
	"github.com/sgexamenes/examenes-api/pkg/response"
	"github.com/sgexamenes/examenes-api/pkg/validation"
)

// MensajeRegistroExitoso is the fixed confirmation returned on registration.
const MensajeRegistroExitoso = "Registro exitoso. Su cuenta está pendiente de aprobación."

type AuthHandler struct {
	Auth     *application.AuthService
	Usuarios *application.UsuarioService
	Cookies  *helpers.CookieManager
	Logger   *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, usuarios *application.UsuarioService, cookies *helpers.CookieManager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Usuarios: usuarios, Cookies: cookies, Logger: logger}
}

type registroRequest struct {
	Nombre               string `json:"nombre" binding:"required,max=100"`
	Apellidos            string `json:"apellidos" binding:"required,max=150"`
	Correo               string `json:"correo" binding:"required,email"`
	Password             string `json:"password" binding:"required,pwd"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type loginRequest struct {
	Correo   string `json:"correo" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// usuarioWire is the public profile shape of the login payload.
func usuarioWire(u *entity.Usuario) gin.H {
	return gin.H{
		"idUsuario": u.IDUsuario,
		"nombre":    u.Nombre,
		"apellidos": u.Apellidos,
		"correo":    u.Correo,
		"rol":       string(u.Rol),
	}
}

func perfilWire(u *entity.Usuario) gin.H {
	w := usuarioWire(u)
	w["estado"] = string(u.Estado)
	w["created_at"] = u.CreatedAt
	return w
}

func (h *AuthHandler) auditar(c *gin.Context, idUsuario, correo, accion string, metadata map[string]any) {
	ip := c.GetString("real_ip")
	if ip == "" {
		ip = c.ClientIP()
	}
	reg := repository.RegistroAuditoria{
		IDUsuario: idUsuario,
		Correo:    correo,
		Accion:    accion,
		IP:        ip,
		UserAgent: c.GetHeader("User-Agent"),
		Metadata:  metadata,
	}
	if err := h.Auth.Repo.Auditar(c.Request.Context(), reg); err != nil && h.Logger != nil {
		h.Logger.WithError(err).Warn("no se pudo registrar auditoría")
	}
}

// Registro POST /api/registro
func (h *AuthHandler) Registro(c *gin.Context) {
	var req registroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, validation.ToErrores(err))
		return
	}

	_, err := h.Usuarios.Registrar(c.Request.Context(), application.RegistroInput{
		Nombre:    req.Nombre,
		Apellidos: req.Apellidos,
		Correo:    req.Correo,
		Password:  req.Password,
	})
	if err != nil {
		if errors.Is(err, application.ErrCorreoDuplicado) {
			response.FieldError(c, "correo", "El correo ya está registrado.")
			return
		}
		response.Message(c, http.StatusInternalServerError, "No se pudo completar el registro.")
		return
	}
	h.auditar(c, "", req.Correo, "registro", nil)
	response.Message(c, http.StatusCreated, MensajeRegistroExitoso)
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, validation.ToErrores(err))
		return
	}

	u, pair, err := h.Auth.Login(c.Request.Context(), req.Correo, req.Password)
	if err != nil {
		var d *application.Denegacion
		if errors.As(err, &d) {
			h.auditar(c, "", req.Correo, "login_bloqueado", map[string]any{"error": d.Kind})
			response.Denial(c, d.Status(), d.Kind, d.Message, d.Contexto)
			return
		}
		if errors.Is(err, application.ErrCredencialesInvalidas) {
			h.auditar(c, "", req.Correo, "login_fallido", nil)
			response.FieldError(c, "correo", "Las credenciales proporcionadas no son correctas.")
			return
		}
		response.Message(c, http.StatusInternalServerError, "No se pudo iniciar sesión.")
		return
	}

	h.Cookies.SetRefresh(c, pair.RefreshToken, pair.RefreshTokenExpiry)
	h.auditar(c, u.IDUsuario, u.Correo, "login", nil)
	response.OK(c, http.StatusOK, gin.H{
		"access_token": pair.AccessToken,
		"token_type":   "Bearer",
		"usuario":      usuarioWire(u),
	})
}

// Refresh POST /api/refresh — rotates the pair using the HttpOnly cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Denial(c, http.StatusUnauthorized, application.DenegacionNoAutenticado, "Falta el token de renovación.", nil)
		return
	}
	u, pair, err := h.Auth.Refrescar(c.Request.Context(), refresh)
	if err != nil {
		var d *application.Denegacion
		if errors.As(err, &d) {
			response.Denial(c, d.Status(), d.Kind, d.Message, d.Contexto)
			return
		}
		h.Cookies.ClearRefresh(c)
		response.Denial(c, http.StatusUnauthorized, application.DenegacionNoAutenticado, "Token de renovación inválido.", nil)
		return
	}
	h.Cookies.SetRefresh(c, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.OK(c, http.StatusOK, gin.H{
		"access_token": pair.AccessToken,
		"token_type":   "Bearer",
		"usuario":      usuarioWire(u),
	})
}

// Logout POST /api/logout — revokes the session; revocation failure never
// blocks clearing the client's cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if u := middleware.UsuarioDe(c); u != nil {
		if err := h.Auth.Revocar(c.Request.Context(), u.IDUsuario); err != nil && h.Logger != nil {
			h.Logger.WithError(err).WithField("id_usuario", u.IDUsuario).Warn("fallo al revocar la sesión")
		}
		h.auditar(c, u.IDUsuario, u.Correo, "logout", nil)
	}
	h.Cookies.ClearRefresh(c)
	response.Message(c, http.StatusOK, "Sesión cerrada.")
}

// Perfil GET /api/perfil — doubles as the token issuer's validate operation
// for the client session store.
func (h *AuthHandler) Perfil(c *gin.Context) {
	u := middleware.UsuarioDe(c)
	if u == nil {
		response.Denial(c, http.StatusUnauthorized, application.DenegacionNoAutenticado, "No autenticado.", nil)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"usuario": perfilWire(u)})
}
