package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgexamenes/examenes-api/config"
	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/pkg/helpers"
)

func TestRegistrar(t *testing.T) {
	ctx := context.Background()

	t.Run("crea docente pendiente con hash", func(t *testing.T) {
		repo := newFakeUsuarioRepo()
		s := NewUsuarioService(repo, nil, nil, &config.Config{})
		u, err := s.Registrar(ctx, RegistroInput{
			Nombre: "Ana", Apellidos: "García", Correo: "ana@test.com", Password: "secreta123",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.RolDocente, u.Rol)
		assert.Equal(t, entity.EstadoPendiente, u.Estado)
		assert.NotEqual(t, "secreta123", u.Password)
		assert.True(t, helpers.CompareHashAndPassword(u.Password, "secreta123"))
	})

	t.Run("correo duplicado", func(t *testing.T) {
		repo := newFakeUsuarioRepo(&entity.Usuario{IDUsuario: "u1", Correo: "ana@test.com"})
		s := NewUsuarioService(repo, nil, nil, &config.Config{})
		_, err := s.Registrar(ctx, RegistroInput{
			Nombre: "Ana", Apellidos: "García", Correo: "ana@test.com", Password: "secreta123",
		})
		assert.ErrorIs(t, err, ErrCorreoDuplicado)
	})
}

func TestAprobarYSuspender(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUsuarioRepo(&entity.Usuario{IDUsuario: "u1", Correo: "ana@test.com", Estado: entity.EstadoPendiente})
	s := NewUsuarioService(repo, nil, nil, &config.Config{})

	u, err := s.Aprobar(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoActivo, u.Estado)

	u, err = s.Suspender(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoSuspendido, u.Estado)

	_, err = s.Aprobar(ctx, "nadie")
	assert.ErrorIs(t, err, ErrUsuarioNoEncontrado)
}

func TestListarPorEstado(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUsuarioRepo(
		&entity.Usuario{IDUsuario: "u1", Correo: "a@test.com", Estado: entity.EstadoPendiente},
		&entity.Usuario{IDUsuario: "u2", Correo: "b@test.com", Estado: entity.EstadoActivo},
	)
	s := NewUsuarioService(repo, nil, nil, &config.Config{})

	pendiente := entity.EstadoPendiente
	lista, err := s.Listar(ctx, &pendiente)
	require.NoError(t, err)
	require.Len(t, lista, 1)
	assert.Equal(t, "u1", lista[0].IDUsuario)

	todos, err := s.Listar(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}
