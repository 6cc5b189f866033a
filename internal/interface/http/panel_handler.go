package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sgexamenes/examenes-api/internal/application"
	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/pkg/response"
)

type PanelHandler struct {
	Panel  *application.PanelService
	Logger *logrus.Logger
}

func NewPanelHandler(panel *application.PanelService, logger *logrus.Logger) *PanelHandler {
	return &PanelHandler{Panel: panel, Logger: logger}
}

func intentoWire(i *entity.Intento) gin.H {
	return gin.H{
		"idIntento":      i.IDIntento,
		"id_usuario":     i.IDUsuario,
		"id_examen":      i.IDExamen,
		"id_postulacion": i.IDPostulacion,
		"nota_final":     i.NotaFinal,
		"aprobado":       i.Aprobado,
		"created_at":     i.CreatedAt,
	}
}

// Resumen GET /api/panel/resumen — per-exam attempt and pass-rate aggregates.
func (h *PanelHandler) Resumen(c *gin.Context) {
	resumen, err := h.Panel.Resumen(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("fallo al calcular el resumen del panel")
		response.Message(c, http.StatusInternalServerError, "No se pudo calcular el resumen.")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"resumen": resumen})
}

// IntentosRecientes GET /api/panel/intentos?limit=<n>
func (h *PanelHandler) IntentosRecientes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	intentos, err := h.Panel.IntentosRecientes(c.Request.Context(), limit)
	if err != nil {
		response.Message(c, http.StatusInternalServerError, "No se pudieron listar los intentos.")
		return
	}
	out := make([]gin.H, 0, len(intentos))
	for i := range intentos {
		out = append(out, intentoWire(&intentos[i]))
	}
	response.OK(c, http.StatusOK, gin.H{"intentos": out})
}

// IntentosDeExamen GET /api/panel/examenes/:id/intentos
func (h *PanelHandler) IntentosDeExamen(c *gin.Context) {
	intentos, err := h.Panel.IntentosDeExamen(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Message(c, http.StatusInternalServerError, "No se pudieron listar los intentos.")
		return
	}
	out := make([]gin.H, 0, len(intentos))
	for i := range intentos {
		out = append(out, intentoWire(&intentos[i]))
	}
	response.OK(c, http.StatusOK, gin.H{"intentos": out})
}
