package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgexamenes/examenes-api/config"
	"github.com/sgexamenes/examenes-api/internal/application"
	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/internal/domain/repository"
	"github.com/sgexamenes/examenes-api/internal/interface/middleware"
	"github.com/sgexamenes/examenes-api/pkg/helpers"
	"github.com/sgexamenes/examenes-api/pkg/validation"
)

// ---- fakes ----

type memUsuarioRepo struct {
	porID map[string]*entity.Usuario
}

func newMemUsuarioRepo(usuarios ...*entity.Usuario) *memUsuarioRepo {
	r := &memUsuarioRepo{porID: map[string]*entity.Usuario{}}
	for _, u := range usuarios {
		r.porID[u.IDUsuario] = u
	}
	return r
}

func (r *memUsuarioRepo) Create(_ context.Context, u *entity.Usuario) error {
	for _, x := range r.porID {
		if x.Correo == u.Correo {
			return repository.ErrDuplicado
		}
	}
	if u.IDUsuario == "" {
		u.IDUsuario = "gen"
	}
	u.CreatedAt = time.Now()
	r.porID[u.IDUsuario] = u
	return nil
}

func (r *memUsuarioRepo) GetByID(_ context.Context, id string) (*entity.Usuario, error) {
	u, ok := r.porID[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return u, nil
}

func (r *memUsuarioRepo) FindOne(_ context.Context, filtros map[string]string) (*entity.Usuario, error) {
	for _, u := range r.porID {
		if correo, ok := filtros["correo"]; ok && u.Correo != correo {
			continue
		}
		return u, nil
	}
	return nil, repository.ErrNoEncontrado
}

func (r *memUsuarioRepo) Update(_ context.Context, u *entity.Usuario) error {
	r.porID[u.IDUsuario] = u
	return nil
}

func (r *memUsuarioRepo) UpdateEstado(_ context.Context, id string, estado entity.Estado) error {
	u, ok := r.porID[id]
	if !ok {
		return repository.ErrNoEncontrado
	}
	u.Estado = estado
	return nil
}

func (r *memUsuarioRepo) List(_ context.Context, estado *entity.Estado) ([]entity.Usuario, error) {
	var out []entity.Usuario
	for _, u := range r.porID {
		if estado != nil && u.Estado != *estado {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *memUsuarioRepo) Auditar(context.Context, repository.RegistroAuditoria) error { return nil }

var _ repository.UsuarioRepository = (*memUsuarioRepo)(nil)

// ---- fixture ----

type fixture struct {
	engine *gin.Engine
	repo   *memUsuarioRepo
	auth   *application.AuthService
}

func nuevaFixture(t *testing.T, usuarios ...*entity.Usuario) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	repo := newMemUsuarioRepo(usuarios...)
	jwt := helpers.NewJWTManager("acc", "ref", time.Hour, 24*time.Hour)
	auth := application.NewAuthService(repo, jwt, nil, nil, time.Hour)
	usuarios_ := application.NewUsuarioService(repo, nil, nil, &config.Config{})
	h := NewAuthHandler(auth, usuarios_, helpers.NewCookieManager("localhost", false), nil)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/registro", h.Registro)
	api.POST("/login", h.Login)
	protegido := api.Group("/")
	protegido.Use(middleware.Auth(auth))
	protegido.GET("/perfil", h.Perfil)
	protegido.POST("/logout", h.Logout)

	return &fixture{engine: r, repo: repo, auth: auth}
}

func (f *fixture) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decodificar(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func cuentaActiva(t *testing.T) *entity.Usuario {
	t.Helper()
	hash, err := helpers.HashPassword("secreta123")
	require.NoError(t, err)
	return &entity.Usuario{
		IDUsuario: "u1",
		Nombre:    "Ana",
		Apellidos: "García",
		Correo:    "ana@test.com",
		Password:  hash,
		Rol:       entity.RolDocente,
		Estado:    entity.EstadoActivo,
	}
}

// ---- tests ----

func TestRegistro(t *testing.T) {
	payload := gin.H{
		"nombre":                "Ana",
		"apellidos":             "García",
		"correo":                "ana@test.com",
		"password":              "secreta123",
		"password_confirmation": "secreta123",
	}

	t.Run("éxito con mensaje fijo", func(t *testing.T) {
		f := nuevaFixture(t)
		w := f.do(t, http.MethodPost, "/api/registro", payload, nil)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, MensajeRegistroExitoso, decodificar(t, w)["message"])

		u, err := f.repo.FindOne(context.Background(), map[string]string{"correo": "ana@test.com"})
		require.NoError(t, err)
		assert.Equal(t, entity.RolDocente, u.Rol)
		assert.Equal(t, entity.EstadoPendiente, u.Estado)
		assert.NotEqual(t, "secreta123", u.Password)
	})

	t.Run("correo duplicado", func(t *testing.T) {
		f := nuevaFixture(t, cuentaActiva(t))
		w := f.do(t, http.MethodPost, "/api/registro", payload, nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decodificar(t, w)
		errores := body["errors"].(map[string]any)
		assert.Contains(t, errores, "correo")
	})

	t.Run("confirmación no coincide", func(t *testing.T) {
		f := nuevaFixture(t)
		p := gin.H{}
		for k, v := range payload {
			p[k] = v
		}
		p["password_confirmation"] = "distinta123"
		w := f.do(t, http.MethodPost, "/api/registro", p, nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		errores := decodificar(t, w)["errors"].(map[string]any)
		assert.Contains(t, errores, "password_confirmation")
	})

	t.Run("password corta", func(t *testing.T) {
		f := nuevaFixture(t)
		p := gin.H{}
		for k, v := range payload {
			p[k] = v
		}
		p["password"] = "corta"
		p["password_confirmation"] = "corta"
		w := f.do(t, http.MethodPost, "/api/registro", p, nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		errores := decodificar(t, w)["errors"].(map[string]any)
		assert.Contains(t, errores, "password")
	})
}

func TestLoginHandler(t *testing.T) {
	t.Run("credenciales correctas", func(t *testing.T) {
		f := nuevaFixture(t, cuentaActiva(t))
		w := f.do(t, http.MethodPost, "/api/login", gin.H{"correo": "ana@test.com", "password": "secreta123"}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodificar(t, w)
		assert.NotEmpty(t, body["access_token"])
		assert.Equal(t, "Bearer", body["token_type"])
		usuario := body["usuario"].(map[string]any)
		assert.Equal(t, "u1", usuario["idUsuario"])
		assert.Equal(t, "ana@test.com", usuario["correo"])
		assert.Equal(t, string(entity.RolDocente), usuario["rol"])

		// refresh token llega como cookie HttpOnly
		cookies := w.Result().Cookies()
		var refresh *http.Cookie
		for _, ck := range cookies {
			if ck.Name == "refresh_token" {
				refresh = ck
			}
		}
		require.NotNil(t, refresh)
		assert.True(t, refresh.HttpOnly)
	})

	t.Run("password incorrecta es 422 sobre correo", func(t *testing.T) {
		f := nuevaFixture(t, cuentaActiva(t))
		w := f.do(t, http.MethodPost, "/api/login", gin.H{"correo": "ana@test.com", "password": "equivocada"}, nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		errores := decodificar(t, w)["errors"].(map[string]any)
		assert.Contains(t, errores, "correo")
	})

	t.Run("cuenta pendiente es 403 con mensaje fijo", func(t *testing.T) {
		u := cuentaActiva(t)
		u.Estado = entity.EstadoPendiente
		f := nuevaFixture(t, u)
		w := f.do(t, http.MethodPost, "/api/login", gin.H{"correo": "ana@test.com", "password": "secreta123"}, nil)
		require.Equal(t, http.StatusForbidden, w.Code)
		body := decodificar(t, w)
		assert.Equal(t, "Su cuenta está pendiente de aprobación.", body["message"])
		assert.Equal(t, application.DenegacionCuentaInactiva, body["error"])
	})

	t.Run("cuenta suspendida es 403", func(t *testing.T) {
		u := cuentaActiva(t)
		u.Estado = entity.EstadoSuspendido
		f := nuevaFixture(t, u)
		w := f.do(t, http.MethodPost, "/api/login", gin.H{"correo": "ana@test.com", "password": "secreta123"}, nil)
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Su cuenta está suspendido.", decodificar(t, w)["message"])
	})
}

func TestPerfilProtegido(t *testing.T) {
	f := nuevaFixture(t, cuentaActiva(t))

	t.Run("sin token es 401", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/perfil", nil, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, application.DenegacionNoAutenticado, decodificar(t, w)["error"])
	})

	t.Run("con token devuelve el perfil", func(t *testing.T) {
		login := f.do(t, http.MethodPost, "/api/login", gin.H{"correo": "ana@test.com", "password": "secreta123"}, nil)
		require.Equal(t, http.StatusOK, login.Code)
		token := decodificar(t, login)["access_token"].(string)

		w := f.do(t, http.MethodGet, "/api/perfil", nil, map[string]string{"Authorization": "Bearer " + token})
		require.Equal(t, http.StatusOK, w.Code)
		usuario := decodificar(t, w)["usuario"].(map[string]any)
		assert.Equal(t, "ana@test.com", usuario["correo"])
		assert.Equal(t, string(entity.EstadoActivo), usuario["estado"])
	})

	t.Run("token basura es 401", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/perfil", nil, map[string]string{"Authorization": "Bearer basura"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
