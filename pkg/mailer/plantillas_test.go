package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	data := map[string]any{"Nombre": "Ana", "PortalURL": "https://portal.test"}

	t.Run("cuenta aprobada", func(t *testing.T) {
		subject, text, html, err := Render(PlantillaCuentaAprobada, data)
		require.NoError(t, err)
		assert.Equal(t, "Su cuenta ha sido aprobada", subject)
		assert.Contains(t, text, "Ana")
		assert.Contains(t, text, "https://portal.test")
		assert.Contains(t, html, `<a href="https://portal.test">`)
	})

	t.Run("escapa HTML en los datos", func(t *testing.T) {
		_, _, html, err := Render(PlantillaCuentaPendiente, map[string]any{"Nombre": "<script>x</script>"})
		require.NoError(t, err)
		assert.NotContains(t, html, "<script>")
	})

	t.Run("plantilla desconocida", func(t *testing.T) {
		_, _, _, err := Render("no_existe", nil)
		assert.Error(t, err)
	})
}
