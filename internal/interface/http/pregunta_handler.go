package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sgexamenes/examenes-api/internal/application"
	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/internal/interface/middleware"
	"github.com/sgexamenes/examenes-api/pkg/response"
	"github.com/sgexamenes/examenes-api/pkg/validation"
)

const maxAdjuntoBytes = 5 << 20 // 5 MiB

type PreguntaHandler struct {
	Preguntas *application.PreguntaService
	Logger    *logrus.Logger
}

func NewPreguntaHandler(preguntas *application.PreguntaService, logger *logrus.Logger) *PreguntaHandler {
	return &PreguntaHandler{Preguntas: preguntas, Logger: logger}
}

type categoriaRequest struct {
	Nombre string `json:"nombre" binding:"required,max=100"`
}

type preguntaRequest struct {
	IDCategoria string          `json:"id_categoria" binding:"required,uuid"`
	Enunciado   string          `json:"enunciado" binding:"required"`
	Opciones    []entity.Opcion `json:"opciones" binding:"required,min=2"`
	Respuesta   string          `json:"respuesta" binding:"required"`
	Puntaje     float64         `json:"puntaje" binding:"gt=0"`
}

func preguntaWire(p *entity.Pregunta) gin.H {
	return gin.H{
		"idPregunta":   p.IDPregunta,
		"id_categoria": p.IDCategoria,
		"enunciado":    p.Enunciado,
		"opciones":     p.Opciones,
		"respuesta":    p.Respuesta,
		"puntaje":      p.Puntaje,
		"adjunto_url":  p.AdjuntoURL,
	}
}

// CrearCategoria POST /api/categorias
func (h *PreguntaHandler) CrearCategoria(c *gin.Context) {
	var req categoriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, validation.ToErrores(err))
		return
	}
	cat, err := h.Preguntas.CrearCategoria(c.Request.Context(), req.Nombre)
	if err != nil {
		if errors.Is(err, application.ErrCategoriaDuplicada) {
			response.FieldError(c, "nombre", "La categoría ya existe.")
			return
		}
		response.Message(c, http.StatusInternalServerError, "No se pudo crear la categoría.")
		return
	}
	response.OK(c, http.StatusCreated, gin.H{
		"categoria": gin.H{"idCategoria": cat.IDCategoria, "nombre": cat.Nombre},
	})
}

// ListarCategorias GET /api/categorias
func (h *PreguntaHandler) ListarCategorias(c *gin.Context) {
	cats, err := h.Preguntas.ListarCategorias(c.Request.Context())
	if err != nil {
		response.Message(c, http.StatusInternalServerError, "No se pudieron listar las categorías.")
		return
	}
	out := make([]gin.H, 0, len(cats))
	for _, cat := range cats {
		out = append(out, gin.H{"idCategoria": cat.IDCategoria, "nombre": cat.Nombre})
	}
	response.OK(c, http.StatusOK, gin.H{"categorias": out})
}

// Crear POST /api/preguntas
func (h *PreguntaHandler) Crear(c *gin.Context) {
	var req preguntaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, validation.ToErrores(err))
		return
	}
	if msg := validarRespuesta(req.Opciones, req.Respuesta); msg != "" {
		response.FieldError(c, "respuesta", msg)
		return
	}
	u := middleware.UsuarioDe(c)
	p := &entity.Pregunta{
		IDCategoria: req.IDCategoria,
		Enunciado:   req.Enunciado,
		Opciones:    req.Opciones,
		Respuesta:   req.Respuesta,
		Puntaje:     req.Puntaje,
		CreadoPor:   u.IDUsuario,
	}
	if err := h.Preguntas.Crear(c.Request.Context(), p); err != nil {
		response.Message(c, http.StatusInternalServerError, "No se pudo crear la pregunta.")
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"pregunta": preguntaWire(p)})
}

// Listar GET /api/preguntas?categoria=<id>
func (h *PreguntaHandler) Listar(c *gin.Context) {
	preguntas, err := h.Preguntas.Listar(c.Request.Context(), c.Query("categoria"))
	if err != nil {
		response.Message(c, http.StatusInternalServerError, "No se pudieron listar las preguntas.")
		return
	}
	out := make([]gin.H, 0, len(preguntas))
	for i := range preguntas {
		out = append(out, preguntaWire(&preguntas[i]))
	}
	response.OK(c, http.StatusOK, gin.H{"preguntas": out})
}

// Obtener GET /api/preguntas/:id
func (h *PreguntaHandler) Obtener(c *gin.Context) {
	p, err := h.Preguntas.Obtener(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, application.ErrPreguntaNoEncontrada) {
			response.Message(c, http.StatusNotFound, "Pregunta no encontrada.")
			return
		}
		response.Message(c, http.StatusInternalServerError, "No se pudo cargar la pregunta.")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"pregunta": preguntaWire(p)})
}

// Actualizar PUT /api/preguntas/:id
func (h *PreguntaHandler) Actualizar(c *gin.Context) {
	var req preguntaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, validation.ToErrores(err))
		return
	}
	if msg := validarRespuesta(req.Opciones, req.Respuesta); msg != "" {
		response.FieldError(c, "respuesta", msg)
		return
	}
	p, err := h.Preguntas.Obtener(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, application.ErrPreguntaNoEncontrada) {
			response.Message(c, http.StatusNotFound, "Pregunta no encontrada.")
			return
		}
		response.Message(c, http.StatusInternalServerError, "No se pudo cargar la pregunta.")
		return
	}
	p.IDCategoria = req.IDCategoria
	p.Enunciado = req.Enunciado
	p.Opciones = req.Opciones
	p.Respuesta = req.Respuesta
	p.Puntaje = req.Puntaje
	if err := h.Preguntas.Actualizar(c.Request.Context(), p); err != nil {
		response.Message(c, http.StatusInternalServerError, "No se pudo actualizar la pregunta.")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"pregunta": preguntaWire(p)})
}

// Eliminar DELETE /api/preguntas/:id
func (h *PreguntaHandler) Eliminar(c *gin.Context) {
	if err := h.Preguntas.Eliminar(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, application.ErrPreguntaNoEncontrada) {
			response.Message(c, http.StatusNotFound, "Pregunta no encontrada.")
			return
		}
		response.Message(c, http.StatusInternalServerError, "No se pudo eliminar la pregunta.")
		return
	}
	response.Message(c, http.StatusOK, "Pregunta eliminada.")
}

// Buscar GET /api/preguntas/buscar?q=<texto>&size=<n>
func (h *PreguntaHandler) Buscar(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.FieldError(c, "q", "El término de búsqueda es obligatorio.")
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Preguntas.Buscar(c.Request.Context(), q, size)
	if err != nil {
		response.Message(c, http.StatusInternalServerError, "La búsqueda no está disponible.")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"resultados": hits})
}

// SubirAdjunto POST /api/preguntas/:id/adjunto — multipart upload.
func (h *PreguntaHandler) SubirAdjunto(c *gin.Context) {
	fh, err := c.FormFile("adjunto")
	if err != nil {
		response.FieldError(c, "adjunto", "El archivo adjunto es obligatorio.")
		return
	}
	if fh.Size > maxAdjuntoBytes {
		response.FieldError(c, "adjunto", "El archivo supera el tamaño máximo de 5 MB.")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Message(c, http.StatusInternalServerError, "No se pudo leer el archivo.")
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Preguntas.SubirAdjunto(c.Request.Context(), c.Param("id"), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, application.ErrPreguntaNoEncontrada) {
			response.Message(c, http.StatusNotFound, "Pregunta no encontrada.")
			return
		}
		h.Logger.WithError(err).Warn("fallo al subir adjunto")
		response.Message(c, http.StatusInternalServerError, "No se pudo subir el adjunto.")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"adjunto_url": url})
}

func validarRespuesta(opciones []entity.Opcion, respuesta string) string {
	for _, o := range opciones {
		if o.Clave == respuesta {
			return ""
		}
	}
	return "La respuesta debe coincidir con la clave de una opción."
}
