package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sgexamenes/examenes-api/internal/application"
	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/internal/interface/middleware"
	"github.com/sgexamenes/examenes-api/pkg/response"
	"github.com/sgexamenes/examenes-api/pkg/validation"
)

type ExamenHandler struct {
	Examenes *application.ExamenService
	Logger   *logrus.Logger
}

func NewExamenHandler(examenes *application.ExamenService, logger *logrus.Logger) *ExamenHandler {
	return &ExamenHandler{Examenes: examenes, Logger: logger}
}

type examenDatosRequest struct {
	Titulo      string     `json:"titulo" binding:"required,max=200"`
	Descripcion string     `json:"descripcion"`
	DuracionMin int        `json:"duracion_min" binding:"gte=0"`
	Fecha       *time.Time `json:"fecha"`
}

type subpruebaRequest struct {
	Nombre       string  `json:"nombre" binding:"required,max=150"`
	Orden        int     `json:"orden" binding:"gte=0"`
	NumPreguntas int     `json:"num_preguntas" binding:"gte=0"`
	PuntajeMax   float64 `json:"puntaje_max" binding:"gt=0"`
}

type postulacionRequest struct {
	Nombre       string   `json:"nombre" binding:"required,max=150"`
	NotaMinima   float64  `json:"nota_minima" binding:"gte=0,lte=100"`
	MinSubprueba float64  `json:"min_subprueba" binding:"gte=0,lte=100"`
	Subpruebas   []string `json:"subpruebas"`
}

type intentoRequest struct {
	IDPostulacion string                    `json:"id_postulacion" binding:"required,uuid"`
	Puntajes      []entity.PuntajeSubprueba `json:"puntajes" binding:"required,min=1"`
}

func examenWire(e *entity.Examen) gin.H {
	subs := make([]gin.H, 0, len(e.Subpruebas))
	for _, s := range e.Subpruebas {
		subs = append(subs, gin.H{
			"id_subprueba":  s.IDSubprueba,
			"nombre":        s.Nombre,
			"orden":         s.Orden,
			"num_preguntas": s.NumPreguntas,
			"puntaje_max":   s.PuntajeMax,
		})
	}
	posts := make([]gin.H, 0, len(e.Postulaciones))
	for _, p := range e.Postulaciones {
		posts = append(posts, gin.H{
			"id_postulacion": p.IDPostulacion,
			"nombre":         p.Nombre,
			"regla":          p.Regla,
			"subpruebas":     p.Subpruebas,
		})
	}
	return gin.H{
		"idExamen":      e.IDExamen,
		"titulo":        e.Titulo,
		"descripcion":   e.Descripcion,
		"estado":        e.Estado,
		"duracion_min":  e.DuracionMin,
		"fecha":         e.Fecha,
		"creado_por":    e.CreadoPor,
		"subpruebas":    subs,
		"postulaciones": posts,
	}
}

// cargarPropio loads the exam and enforces the ownership gate. Returns nil
// after writing the response when access is denied.
func (h *ExamenHandler) cargarPropio(c *gin.Context) *entity.Examen {
	u := middleware.UsuarioDe(c)
	e, err := h.Examenes.Obtener(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, application.ErrExamenNoEncontrado) {
			response.Message(c, http.StatusNotFound, "Examen no encontrado.")
			return nil
		}
		response.Message(c, http.StatusInternalServerError, "No se pudo cargar el examen.")
		return nil
	}
	if d := application.ValidarPropietario(u, e.CreadoPor); d != nil {
		response.Denial(c, d.Status(), d.Kind, d.Message, d.Contexto)
		return nil
	}
	return e
}

// Crear POST /api/examenes — wizard step 1, creates the draft.
func (h *ExamenHandler) Crear(c *gin.Context) {
	var req examenDatosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, validation.ToErrores(err))
		return
	}
	u := middleware.UsuarioDe(c)
	e := &entity.Examen{
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		DuracionMin: req.DuracionMin,
		Fecha:       req.Fecha,
	}
	if err := h.Examenes.CrearBorrador(c.Request.Context(), e, u.IDUsuario); err != nil {
		response.Message(c, http.StatusInternalServerError, "No se pudo crear el examen.")
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"examen": examenWire(e)})
}

// Listar GET /api/examenes
func (h *ExamenHandler) Listar(c *gin.Context) {
	u := middleware.UsuarioDe(c)
	examenes, err := h.Examenes.Listar(c.Request.Context(), u)
	if err != nil {
		response.Message(c, http.StatusInternalServerError, "No se pudieron listar los exámenes.")
		return
	}
	out := make([]gin.H, 0, len(examenes))
	for i := range examenes {
		out = append(out, examenWire(&examenes[i]))
	}
	response.OK(c, http.StatusOK, gin.H{"examenes": out})
}

// Obtener GET /api/examenes/:id
func (h *ExamenHandler) Obtener(c *gin.Context) {
	if e := h.cargarPropio(c); e != nil {
		response.OK(c, http.StatusOK, gin.H{"examen": examenWire(e)})
	}
}

// ActualizarDatos PUT /api/examenes/:id — wizard general-data step.
func (h *ExamenHandler) ActualizarDatos(c *gin.Context) {
	e := h.cargarPropio(c)
	if e == nil {
		return
	}
	var req examenDatosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, validation.ToErrores(err))
		return
	}
	e.Titulo = req.Titulo
	e.Descripcion = req.Descripcion
	e.DuracionMin = req.DuracionMin
	e.Fecha = req.Fecha
	if err := h.Examenes.ActualizarDatos(c.Request.Context(), e); err != nil {
		response.Message(c, http.StatusInternalServerError, "No se pudo actualizar el examen.")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"examen": examenWire(e)})
}

// Subpruebas PUT /api/examenes/:id/subpruebas — wizard sub-test step.
func (h *ExamenHandler) Subpruebas(c *gin.Context) {
	e := h.cargarPropio(c)
	if e == nil {
		return
	}
	var req struct {
		Subpruebas []subpruebaRequest `json:"subpruebas" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, validation.ToErrores(err))
		return
	}
	subs := make([]entity.Subprueba, 0, len(req.Subpruebas))
	for _, s := range req.Subpruebas {
		subs = append(subs, entity.Subprueba{
			Nombre:       s.Nombre,
			Orden:        s.Orden,
			NumPreguntas: s.NumPreguntas,
			PuntajeMax:   s.PuntajeMax,
		})
	}
	if err := h.Examenes.ReemplazarSubpruebas(c.Request.Context(), e.IDExamen, subs); err != nil {
		response.Message(c, http.StatusInternalServerError, "No se pudieron guardar las subpruebas.")
		return
	}
	response.Message(c, http.StatusOK, "Subpruebas guardadas.")
}

// Postulaciones PUT /api/examenes/:id/postulaciones — wizard tracks step.
func (h *ExamenHandler) Postulaciones(c *gin.Context) {
	e := h.cargarPropio(c)
	if e == nil {
		return
	}
	var req struct {
		Postulaciones []postulacionRequest `json:"postulaciones" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, validation.ToErrores(err))
		return
	}
	posts := make([]entity.Postulacion, 0, len(req.Postulaciones))
	for _, p := range req.Postulaciones {
		posts = append(posts, entity.Postulacion{
			Nombre:     p.Nombre,
			Regla:      entity.ReglaAprobacion{NotaMinima: p.NotaMinima, MinSubprueba: p.MinSubprueba},
			Subpruebas: p.Subpruebas,
		})
	}
	if err := h.Examenes.ReemplazarPostulaciones(c.Request.Context(), e.IDExamen, posts); err != nil {
		response.Message(c, http.StatusInternalServerError, "No se pudieron guardar las postulaciones.")
		return
	}
	response.Message(c, http.StatusOK, "Postulaciones guardadas.")
}

// Publicar POST /api/examenes/:id/publicar — wizard final step.
func (h *ExamenHandler) Publicar(c *gin.Context) {
	e := h.cargarPropio(c)
	if e == nil {
		return
	}
	pub, err := h.Examenes.Publicar(c.Request.Context(), e.IDExamen)
	if err != nil {
		if errors.Is(err, application.ErrExamenIncompleto) {
			response.FieldError(c, "examen", "debe tener al menos una subprueba y una postulación")
			return
		}
		response.Message(c, http.StatusInternalServerError, "No se pudo publicar el examen.")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"examen": examenWire(pub)})
}

// RegistrarIntento POST /api/examenes/:id/intentos
func (h *ExamenHandler) RegistrarIntento(c *gin.Context) {
	var req intentoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, validation.ToErrores(err))
		return
	}
	u := middleware.UsuarioDe(c)
	intento, err := h.Examenes.RegistrarIntento(c.Request.Context(), u.IDUsuario, c.Param("id"), req.IDPostulacion, req.Puntajes)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrExamenNoEncontrado):
			response.Message(c, http.StatusNotFound, "Examen no encontrado.")
		case errors.Is(err, application.ErrPostulacionNoEncontrada):
			response.Message(c, http.StatusNotFound, "Postulación no encontrada.")
		case errors.Is(err, application.ErrExamenNoPublicado):
			response.FieldError(c, "examen", "el examen no está publicado")
		case errors.Is(err, application.ErrPuntajeInvalido):
			response.FieldError(c, "puntajes", "hay puntajes fuera de rango")
		default:
			response.Message(c, http.StatusInternalServerError, "No se pudo registrar el intento.")
		}
		return
	}
	response.OK(c, http.StatusCreated, gin.H{
		"intento": gin.H{
			"idIntento":  intento.IDIntento,
			"nota_final": intento.NotaFinal,
			"aprobado":   intento.Aprobado,
		},
	})
}
