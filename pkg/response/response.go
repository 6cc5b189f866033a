package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Wire shapes of the API. Validation failures carry per-field message lists;
// permission denials carry a machine-readable kind under "error".

// OK writes data as-is with the given status.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

// Message writes a bare {message} payload.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// Validation writes a 422 with field-level errors:
// {"message": ..., "errors": {"campo": ["..."]}}.
func Validation(c *gin.Context, errores map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"message": "Los datos proporcionados no son válidos.",
		"errors":  errores,
	})
}

// FieldError writes a 422 with a single error attached to one field.
func FieldError(c *gin.Context, campo, mensaje string) {
	Validation(c, map[string][]string{campo: {mensaje}})
}

// Denial writes a permission-denial payload:
// {"message": ..., "error": kind, ...contexto}.
func Denial(c *gin.Context, status int, kind, message string, contexto map[string]any) {
	body := gin.H{"message": message, "error": kind}
	for k, v := range contexto {
		body[k] = v
	}
	c.JSON(status, body)
}
