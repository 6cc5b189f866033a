package application

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgexamenes/examenes-api/internal/domain/entity"
)

func docenteActivo() *entity.Usuario {
	return &entity.Usuario{IDUsuario: "u1", Rol: entity.RolDocente, Estado: entity.EstadoActivo}
}

func admin() *entity.Usuario {
	return &entity.Usuario{IDUsuario: "a1", Rol: entity.RolAdministrador, Estado: entity.EstadoActivo}
}

func TestValidarRol(t *testing.T) {
	t.Run("sin usuario", func(t *testing.T) {
		d := ValidarRol(entity.RolDocente, nil)
		require.NotNil(t, d)
		assert.Equal(t, DenegacionNoAutenticado, d.Kind)
		assert.Equal(t, http.StatusUnauthorized, d.Status())
	})

	t.Run("rol equivocado", func(t *testing.T) {
		d := ValidarRol(entity.RolAdministrador, docenteActivo())
		require.NotNil(t, d)
		assert.Equal(t, DenegacionPermisos, d.Kind)
		assert.Equal(t, http.StatusForbidden, d.Status())
		assert.Equal(t, "administrador", d.Contexto["rol_requerido"])
		assert.Equal(t, "docente", d.Contexto["rol_actual"])
	})

	t.Run("rol correcto", func(t *testing.T) {
		assert.Nil(t, ValidarRol(entity.RolDocente, docenteActivo()))
	})
}

func TestValidarActivo(t *testing.T) {
	t.Run("activo pasa", func(t *testing.T) {
		assert.Nil(t, ValidarActivo(docenteActivo()))
	})

	t.Run("pendiente", func(t *testing.T) {
		u := docenteActivo()
		u.Estado = entity.EstadoPendiente
		d := ValidarActivo(u)
		require.NotNil(t, d)
		assert.Equal(t, DenegacionCuentaInactiva, d.Kind)
		assert.Equal(t, "Su cuenta está pendiente de aprobación.", d.Message)
	})

	t.Run("suspendido", func(t *testing.T) {
		u := docenteActivo()
		u.Estado = entity.EstadoSuspendido
		d := ValidarActivo(u)
		require.NotNil(t, d)
		assert.Equal(t, "Su cuenta está suspendido.", d.Message)
	})

	t.Run("admin pasa aunque no esté activo", func(t *testing.T) {
		u := admin()
		u.Estado = entity.EstadoSuspendido
		assert.Nil(t, ValidarActivo(u))
	})
}

func TestValidarPropietario(t *testing.T) {
	t.Run("dueño pasa", func(t *testing.T) {
		assert.Nil(t, ValidarPropietario(docenteActivo(), "u1"))
	})

	t.Run("ajeno denegado", func(t *testing.T) {
		d := ValidarPropietario(docenteActivo(), "otro")
		require.NotNil(t, d)
		assert.Equal(t, DenegacionProhibido, d.Kind)
	})

	t.Run("admin accede a todo", func(t *testing.T) {
		assert.Nil(t, ValidarPropietario(admin(), "otro"))
	})
}

func TestValidarRolActivo(t *testing.T) {
	// el fallo de rol gana al fallo de estado
	u := docenteActivo()
	u.Estado = entity.EstadoPendiente
	d := ValidarRolActivo(entity.RolAdministrador, u)
	require.NotNil(t, d)
	assert.Equal(t, DenegacionPermisos, d.Kind)

	d = ValidarRolActivo(entity.RolDocente, u)
	require.NotNil(t, d)
	assert.Equal(t, DenegacionCuentaInactiva, d.Kind)
}
