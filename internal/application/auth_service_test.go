package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/internal/domain/repository"
	"github.com/sgexamenes/examenes-api/pkg/helpers"
)

// ---- fakes ----

type fakeUsuarioRepo struct {
	porID        map[string]*entity.Usuario
	ultimoFiltro map[string]string
	consultas    int
}

func newFakeUsuarioRepo(usuarios ...*entity.Usuario) *fakeUsuarioRepo {
	r := &fakeUsuarioRepo{porID: map[string]*entity.Usuario{}}
	for _, u := range usuarios {
		r.porID[u.IDUsuario] = u
	}
	return r
}

func (r *fakeUsuarioRepo) Create(_ context.Context, u *entity.Usuario) error {
	for _, x := range r.porID {
		if x.Correo == u.Correo {
			return repository.ErrDuplicado
		}
	}
	if u.IDUsuario == "" {
		u.IDUsuario = "gen"
	}
	r.porID[u.IDUsuario] = u
	return nil
}

func (r *fakeUsuarioRepo) GetByID(_ context.Context, id string) (*entity.Usuario, error) {
	u, ok := r.porID[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return u, nil
}

func (r *fakeUsuarioRepo) FindOne(_ context.Context, filtros map[string]string) (*entity.Usuario, error) {
	r.consultas++
	r.ultimoFiltro = filtros
	for _, u := range r.porID {
		if correo, ok := filtros["correo"]; ok && u.Correo != correo {
			continue
		}
		return u, nil
	}
	return nil, repository.ErrNoEncontrado
}

func (r *fakeUsuarioRepo) Update(_ context.Context, u *entity.Usuario) error {
	r.porID[u.IDUsuario] = u
	return nil
}

func (r *fakeUsuarioRepo) UpdateEstado(_ context.Context, id string, estado entity.Estado) error {
	u, ok := r.porID[id]
	if !ok {
		return repository.ErrNoEncontrado
	}
	u.Estado = estado
	return nil
}

func (r *fakeUsuarioRepo) List(_ context.Context, estado *entity.Estado) ([]entity.Usuario, error) {
	var out []entity.Usuario
	for _, u := range r.porID {
		if estado != nil && u.Estado != *estado {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUsuarioRepo) Auditar(context.Context, repository.RegistroAuditoria) error { return nil }

var _ repository.UsuarioRepository = (*fakeUsuarioRepo)(nil)

// ---- helpers ----

func nuevoServicio(t *testing.T, usuarios ...*entity.Usuario) (*AuthService, *fakeUsuarioRepo) {
	t.Helper()
	repo := newFakeUsuarioRepo(usuarios...)
	jwt := helpers.NewJWTManager("acc-secret", "ref-secret", time.Hour, 24*time.Hour)
	return NewAuthService(repo, jwt, nil, nil, time.Hour), repo
}

func usuarioConPassword(t *testing.T, correo, password string, estado entity.Estado) *entity.Usuario {
	t.Helper()
	hash, err := helpers.HashPassword(password)
	require.NoError(t, err)
	return &entity.Usuario{
		IDUsuario: "u-" + correo,
		Nombre:    "Ana",
		Apellidos: "García",
		Correo:    correo,
		Password:  hash,
		Rol:       entity.RolDocente,
		Estado:    estado,
	}
}

// ---- tests ----

func TestResolverCredenciales(t *testing.T) {
	ctx := context.Background()

	t.Run("payload vacío no consulta", func(t *testing.T) {
		s, repo := nuevoServicio(t)
		_, err := s.ResolverCredenciales(ctx, map[string]string{})
		assert.ErrorIs(t, err, ErrUsuarioNoEncontrado)
		assert.Zero(t, repo.consultas)
	})

	t.Run("solo secretos no consulta", func(t *testing.T) {
		s, repo := nuevoServicio(t)
		_, err := s.ResolverCredenciales(ctx, map[string]string{
			"password":              "x",
			"password_confirmation": "x",
		})
		assert.ErrorIs(t, err, ErrUsuarioNoEncontrado)
		assert.Zero(t, repo.consultas)
	})

	t.Run("email se traduce a correo y el secreto se descarta", func(t *testing.T) {
		u := usuarioConPassword(t, "ana@test.com", "secreta123", entity.EstadoActivo)
		s, repo := nuevoServicio(t, u)
		got, err := s.ResolverCredenciales(ctx, map[string]string{
			"email":    "ana@test.com",
			"password": "secreta123",
		})
		require.NoError(t, err)
		assert.Equal(t, u.IDUsuario, got.IDUsuario)
		assert.Equal(t, map[string]string{"correo": "ana@test.com"}, repo.ultimoFiltro)
	})
}

func TestAutenticar(t *testing.T) {
	ctx := context.Background()
	u := usuarioConPassword(t, "ana@test.com", "secreta123", entity.EstadoActivo)

	t.Run("password correcto", func(t *testing.T) {
		s, _ := nuevoServicio(t, u)
		got, err := s.Autenticar(ctx, "ana@test.com", "secreta123")
		require.NoError(t, err)
		assert.Equal(t, u.Correo, got.Correo)
	})

	t.Run("password incorrecto", func(t *testing.T) {
		s, _ := nuevoServicio(t, u)
		_, err := s.Autenticar(ctx, "ana@test.com", "otra")
		assert.ErrorIs(t, err, ErrCredencialesInvalidas)
	})

	t.Run("correo desconocido", func(t *testing.T) {
		s, _ := nuevoServicio(t)
		_, err := s.Autenticar(ctx, "nadie@test.com", "secreta123")
		assert.ErrorIs(t, err, ErrCredencialesInvalidas)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("cuenta pendiente devuelve denegación", func(t *testing.T) {
		u := usuarioConPassword(t, "ana@test.com", "secreta123", entity.EstadoPendiente)
		s, _ := nuevoServicio(t, u)
		_, _, err := s.Login(ctx, "ana@test.com", "secreta123")
		var d *Denegacion
		require.ErrorAs(t, err, &d)
		assert.Equal(t, DenegacionCuentaInactiva, d.Kind)
		assert.Equal(t, "Su cuenta está pendiente de aprobación.", d.Message)
	})

	t.Run("cuenta activa recibe par de tokens", func(t *testing.T) {
		u := usuarioConPassword(t, "ana@test.com", "secreta123", entity.EstadoActivo)
		s, _ := nuevoServicio(t, u)
		got, pair, err := s.Login(ctx, "ana@test.com", "secreta123")
		require.NoError(t, err)
		assert.Equal(t, u.IDUsuario, got.IDUsuario)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.True(t, pair.RefreshTokenExpiry.After(pair.AccessTokenExpiry))
	})
}

func TestValidarAccesoYRevocar(t *testing.T) {
	ctx := context.Background()
	u := usuarioConPassword(t, "ana@test.com", "secreta123", entity.EstadoActivo)
	s, _ := nuevoServicio(t, u)

	_, pair, err := s.Login(ctx, "ana@test.com", "secreta123")
	require.NoError(t, err)

	got, err := s.ValidarAcceso(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.IDUsuario, got.IDUsuario)

	_, err = s.ValidarAcceso(ctx, "no-es-un-token")
	assert.ErrorIs(t, err, ErrSesionInvalida)

	// sin redis la revocación es un no-op pero nunca un error
	assert.NoError(t, s.Revocar(ctx, u.IDUsuario))
}

func TestRefrescar(t *testing.T) {
	ctx := context.Background()
	u := usuarioConPassword(t, "ana@test.com", "secreta123", entity.EstadoActivo)
	s, _ := nuevoServicio(t, u)

	_, pair, err := s.Login(ctx, "ana@test.com", "secreta123")
	require.NoError(t, err)

	got, rotado, err := s.Refrescar(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.IDUsuario, got.IDUsuario)
	assert.NotEmpty(t, rotado.AccessToken)

	t.Run("suspendido no puede refrescar", func(t *testing.T) {
		u.Estado = entity.EstadoSuspendido
		_, _, err := s.Refrescar(ctx, pair.RefreshToken)
		var d *Denegacion
		require.ErrorAs(t, err, &d)
		assert.Equal(t, DenegacionCuentaInactiva, d.Kind)
	})
}
