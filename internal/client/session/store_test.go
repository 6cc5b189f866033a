package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgexamenes/examenes-api/internal/client/api"
)

type fakeAPI struct {
	loginToken   string
	loginUsuario *api.Usuario
	loginErr     error

	perfilUsuario *api.Usuario
	perfilErr     error

	logoutErr    error
	logoutLlamas int
}

func (f *fakeAPI) Login(context.Context, string, string) (string, *api.Usuario, error) {
	return f.loginToken, f.loginUsuario, f.loginErr
}

func (f *fakeAPI) Perfil(context.Context, string) (*api.Usuario, error) {
	return f.perfilUsuario, f.perfilErr
}

func (f *fakeAPI) Logout(context.Context, string) error {
	f.logoutLlamas++
	return f.logoutErr
}

func ana() *api.Usuario {
	return &api.Usuario{IDUsuario: "u1", Nombre: "Ana", Apellidos: "García", Correo: "ana@test.com", Rol: "1"}
}

func TestInicializar(t *testing.T) {
	ctx := context.Background()

	t.Run("sin registro previo queda anónimo", func(t *testing.T) {
		s := NewStore(&fakeAPI{}, &MemStorage{}, nil)
		require.NoError(t, s.Inicializar(ctx))
		assert.Equal(t, EstadoAnonimo, s.Snapshot().Estado)
	})

	t.Run("el literal undefined cuenta como sin sesión", func(t *testing.T) {
		st := &MemStorage{}
		require.NoError(t, st.Save(ctx, []byte("undefined")))
		s := NewStore(&fakeAPI{}, st, nil)
		require.NoError(t, s.Inicializar(ctx))
		assert.Equal(t, EstadoAnonimo, s.Snapshot().Estado)
	})

	t.Run("token válido revalida y refresca el perfil", func(t *testing.T) {
		st := &MemStorage{}
		viejo := ana()
		viejo.Nombre = "AnaVieja"
		b, _ := json.Marshal(registro{Usuario: viejo, Token: "tok"})
		require.NoError(t, st.Save(ctx, b))

		s := NewStore(&fakeAPI{perfilUsuario: ana()}, st, nil)
		require.NoError(t, s.Inicializar(ctx))

		snap := s.Snapshot()
		assert.Equal(t, EstadoAutenticado, snap.Estado)
		assert.Equal(t, "Ana", snap.Usuario.Nombre)
		assert.Equal(t, "tok", snap.Token)

		// el registro persistido lleva el perfil fresco
		raw, err := st.Load(ctx)
		require.NoError(t, err)
		var reg registro
		require.NoError(t, json.Unmarshal(raw, &reg))
		assert.Equal(t, "Ana", reg.Usuario.Nombre)
	})

	t.Run("token rechazado limpia todo", func(t *testing.T) {
		st := &MemStorage{}
		b, _ := json.Marshal(registro{Usuario: ana(), Token: "tok"})
		require.NoError(t, st.Save(ctx, b))

		s := NewStore(&fakeAPI{perfilErr: api.ErrNoAutorizado}, st, nil)
		require.NoError(t, s.Inicializar(ctx))

		snap := s.Snapshot()
		assert.Equal(t, EstadoAnonimo, snap.Estado)
		assert.Nil(t, snap.Usuario)
		assert.Empty(t, snap.Token)
		_, err := st.Load(ctx)
		assert.ErrorIs(t, err, ErrSinRegistro)
	})

	t.Run("segunda llamada falla", func(t *testing.T) {
		s := NewStore(&fakeAPI{}, &MemStorage{}, nil)
		require.NoError(t, s.Inicializar(ctx))
		assert.ErrorIs(t, s.Inicializar(ctx), ErrYaIniciado)
	})
}

func TestLoginNotificaYPersiste(t *testing.T) {
	ctx := context.Background()
	st := &MemStorage{}
	s := NewStore(&fakeAPI{loginToken: "tok", loginUsuario: ana()}, st, nil)
	require.NoError(t, s.Inicializar(ctx))

	// los observadores se notifican en orden de suscripción y de forma
	// síncrona: al volver Login ya vieron el estado final
	var orden []string
	s.Subscribe(func(snap Snapshot) { orden = append(orden, "a:"+string(snap.Estado)) })
	s.Subscribe(func(snap Snapshot) { orden = append(orden, "b:"+string(snap.Estado)) })

	require.NoError(t, s.Login(ctx, "ana@test.com", "secreta123"))
	assert.Equal(t, []string{"a:autenticado", "b:autenticado"}, orden)

	raw, err := st.Load(ctx)
	require.NoError(t, err)
	var reg registro
	require.NoError(t, json.Unmarshal(raw, &reg))
	assert.Equal(t, "tok", reg.Token)
	assert.Equal(t, "u1", reg.Usuario.IDUsuario)
}

func TestLoginFallidoNoCambiaEstado(t *testing.T) {
	ctx := context.Background()
	s := NewStore(&fakeAPI{loginErr: api.ErrCredenciales}, &MemStorage{}, nil)
	require.NoError(t, s.Inicializar(ctx))

	err := s.Login(ctx, "ana@test.com", "mala")
	assert.ErrorIs(t, err, api.ErrCredenciales)
	assert.Equal(t, EstadoAnonimo, s.Snapshot().Estado)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	iniciar := func(t *testing.T, f *fakeAPI) (*Store, *MemStorage) {
		t.Helper()
		st := &MemStorage{}
		s := NewStore(f, st, nil)
		require.NoError(t, s.Inicializar(ctx))
		require.NoError(t, s.Login(ctx, "ana@test.com", "secreta123"))
		return s, st
	}

	t.Run("revoca y limpia", func(t *testing.T) {
		f := &fakeAPI{loginToken: "tok", loginUsuario: ana()}
		s, st := iniciar(t, f)
		require.NoError(t, s.Logout(ctx))
		assert.Equal(t, 1, f.logoutLlamas)
		assert.Equal(t, EstadoAnonimo, s.Snapshot().Estado)
		_, err := st.Load(ctx)
		assert.ErrorIs(t, err, ErrSinRegistro)
	})

	t.Run("fallo de revocación se traga y aun así limpia", func(t *testing.T) {
		f := &fakeAPI{loginToken: "tok", loginUsuario: ana(), logoutErr: errors.New("red caída")}
		s, _ := iniciar(t, f)
		require.NoError(t, s.Logout(ctx))
		assert.Equal(t, EstadoAnonimo, s.Snapshot().Estado)
	})

	t.Run("idempotente", func(t *testing.T) {
		f := &fakeAPI{loginToken: "tok", loginUsuario: ana()}
		s, _ := iniciar(t, f)
		require.NoError(t, s.Logout(ctx))
		require.NoError(t, s.Logout(ctx))
		// la segunda llamada no tiene token, no vuelve a revocar
		assert.Equal(t, 1, f.logoutLlamas)
	})
}

func TestFileStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewFileStorage(t.TempDir() + "/sesion.json")

	_, err := st.Load(ctx)
	assert.ErrorIs(t, err, ErrSinRegistro)

	require.NoError(t, st.Save(ctx, []byte(`{"token":"tok"}`)))
	b, err := st.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"tok"}`, string(b))

	require.NoError(t, st.Clear(ctx))
	_, err = st.Load(ctx)
	assert.ErrorIs(t, err, ErrSinRegistro)

	// limpiar dos veces no es error
	require.NoError(t, st.Clear(ctx))
}
