package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/internal/domain/repository"
	"github.com/sgexamenes/examenes-api/pkg/helpers"
)

var (
	ErrCredencialesInvalidas = errors.New("credenciales inválidas")
	ErrUsuarioNoEncontrado   = errors.New("usuario no encontrado")
	ErrSesionInvalida        = errors.New("sesión inválida")
)

// Credential filter keys that must never become account-matching filters.
var camposSecretos = map[string]bool{
	"password":              true,
	"password_confirmation": true,
}

// AuthService authenticates accounts and manages the bearer-token lifecycle.
// The Redis session record is the revocation source of truth: tokens whose
// sid no longer matches a live record are rejected even before expiry.
type AuthService struct {
	Repo       repository.UsuarioRepository
	JWT        *helpers.JWTManager
	Redis      *redis.Client
	Logger     *logrus.Logger
	SessionTTL time.Duration
}

func NewAuthService(repo repository.UsuarioRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{Repo: repo, JWT: jwt, Redis: rdb, Logger: logger, SessionTTL: sessionTTL}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func claveSesion(userID string) string {
	return "usuario:sesion:" + userID
}

// ResolverCredenciales maps a login payload to at most one account.
// The external "email" key is translated to the correo column; the secret and
// its confirmation are stripped and never match against. An empty or
// secret-only payload resolves to no match without touching the database.
func (s *AuthService) ResolverCredenciales(ctx context.Context, filtros map[string]string) (*entity.Usuario, error) {
	columnas := make(map[string]string, len(filtros))
	for campo, valor := range filtros {
		if camposSecretos[campo] {
			continue
		}
		if campo == "email" {
			campo = "correo"
		}
		columnas[campo] = valor
	}
	if len(columnas) == 0 {
		return nil, ErrUsuarioNoEncontrado
	}
	u, err := s.Repo.FindOne(ctx, columnas)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, ErrUsuarioNoEncontrado
		}
		return nil, err
	}
	return u, nil
}

// Autenticar resolves the account by correo and verifies the password.
func (s *AuthService) Autenticar(ctx context.Context, correo, password string) (*entity.Usuario, error) {
	u, err := s.ResolverCredenciales(ctx, map[string]string{"email": correo})
	if err != nil {
		if errors.Is(err, ErrUsuarioNoEncontrado) {
			return nil, ErrCredencialesInvalidas
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrCredencialesInvalidas
	}
	return u, nil
}

// Login authenticates, gates on account status and mints the token pair.
// A blocked account surfaces as a *Denegacion via the error return.
func (s *AuthService) Login(ctx context.Context, correo, password string) (*entity.Usuario, TokenPair, error) {
	u, err := s.Autenticar(ctx, correo, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if d := ValidarActivo(u); d != nil {
		return nil, TokenPair{}, d
	}
	pair, err := s.EmitirTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// EmitirTokens mints an access/refresh pair under a fresh session id and
// records the session in Redis.
func (s *AuthService) EmitirTokens(ctx context.Context, u *entity.Usuario) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.IDUsuario, sid, string(u.Rol))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.IDUsuario, sid, string(u.Rol))
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := claveSesion(u.IDUsuario)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"id_usuario": u.IDUsuario,
			"correo":     u.Correo,
			"rol":        string(u.Rol),
			"sid":        sid,
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
		pipe.Expire(ctx, key, s.SessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("fallo al registrar sesión en redis")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// ValidarAcceso checks an access token against its Redis session and returns
// the fresh account profile. This is the token issuer's validate operation.
func (s *AuthService) ValidarAcceso(ctx context.Context, token string) (*entity.Usuario, error) {
	claims, err := s.JWT.ParseAccessToken(token)
	if err != nil {
		return nil, ErrSesionInvalida
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, claveSesion(claims.UserID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return nil, ErrSesionInvalida
		}
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return nil, ErrSesionInvalida
	}
	return u, nil
}

// Refrescar rotates the token pair and the session id. The presented refresh
// token must match the live session's sid.
func (s *AuthService) Refrescar(ctx context.Context, refreshToken string) (*entity.Usuario, TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, TokenPair{}, ErrSesionInvalida
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return nil, TokenPair{}, ErrSesionInvalida
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, claveSesion(u.IDUsuario)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return nil, TokenPair{}, ErrSesionInvalida
		}
	}
	if d := ValidarActivo(u); d != nil {
		return nil, TokenPair{}, d
	}
	pair, err := s.EmitirTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Revocar deletes the server-side session, invalidating both tokens of the
// pair. Missing sessions are not an error; revocation is idempotent.
func (s *AuthService) Revocar(ctx context.Context, userID string) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Del(ctx, claveSesion(userID)).Err()
}
