package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sgexamenes/examenes-api/internal/application"
	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/pkg/response"
)

// UsuarioHandler exposes administrator account management. Routes are gated
// by RequireRol(administrador) at the router.
type UsuarioHandler struct {
	Usuarios *application.UsuarioService
	Logger   *logrus.Logger
}

func NewUsuarioHandler(usuarios *application.UsuarioService, logger *logrus.Logger) *UsuarioHandler {
	return &UsuarioHandler{Usuarios: usuarios, Logger: logger}
}

// Listar GET /api/usuarios?estado=pendiente|activo|suspendido
func (h *UsuarioHandler) Listar(c *gin.Context) {
	var estado *entity.Estado
	switch c.Query("estado") {
	case "":
	case "pendiente":
		e := entity.EstadoPendiente
		estado = &e
	case "activo":
		e := entity.EstadoActivo
		estado = &e
	case "suspendido":
		e := entity.EstadoSuspendido
		estado = &e
	default:
		response.FieldError(c, "estado", "debe ser uno de: pendiente, activo, suspendido")
		return
	}

	usuarios, err := h.Usuarios.Listar(c.Request.Context(), estado)
	if err != nil {
		response.Message(c, http.StatusInternalServerError, "No se pudieron listar los usuarios.")
		return
	}
	out := make([]gin.H, 0, len(usuarios))
	for i := range usuarios {
		out = append(out, perfilWire(&usuarios[i]))
	}
	response.OK(c, http.StatusOK, gin.H{"usuarios": out})
}

// Aprobar POST /api/usuarios/:id/aprobar
func (h *UsuarioHandler) Aprobar(c *gin.Context) {
	u, err := h.Usuarios.Aprobar(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, application.ErrUsuarioNoEncontrado) {
			response.Message(c, http.StatusNotFound, "Usuario no encontrado.")
			return
		}
		response.Message(c, http.StatusInternalServerError, "No se pudo aprobar la cuenta.")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"usuario": perfilWire(u), "message": "Cuenta aprobada."})
}

// Suspender POST /api/usuarios/:id/suspender
func (h *UsuarioHandler) Suspender(c *gin.Context) {
	u, err := h.Usuarios.Suspender(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, application.ErrUsuarioNoEncontrado) {
			response.Message(c, http.StatusNotFound, "Usuario no encontrado.")
			return
		}
		response.Message(c, http.StatusInternalServerError, "No se pudo suspender la cuenta.")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"usuario": perfilWire(u), "message": "Cuenta suspendida."})
}
