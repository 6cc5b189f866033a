// Package session holds the client-resident session: who is logged in and
// with which token. It is a small state machine persisted through a Storage
// and observed by UI code.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sgexamenes/examenes-api/internal/client/api"
)

// Estado is the lifecycle state of the store.
type Estado string

const (
	EstadoSinIniciar  Estado = "sin_iniciar"
	EstadoIniciando   Estado = "iniciando"
	EstadoAutenticado Estado = "autenticado"
	EstadoAnonimo     Estado = "anonimo"
)

// ErrYaIniciado is returned by Inicializar after the first call.
var ErrYaIniciado = errors.New("la sesión ya fue inicializada")

// Snapshot is the full state handed to observers on every mutation.
type Snapshot struct {
	Estado  Estado
	Usuario *api.Usuario
	Token   string
}

// Observer receives every state change, synchronously, in subscription order.
type Observer func(Snapshot)

// API is the server surface the store needs.
type API interface {
	Login(ctx context.Context, correo, password string) (string, *api.Usuario, error)
	Perfil(ctx context.Context, token string) (*api.Usuario, error)
	Logout(ctx context.Context, token string) error
}

// registro is the persisted JSON shape. Invariant: token absent implies
// usuario absent.
type registro struct {
	Usuario *api.Usuario `json:"usuario,omitempty"`
	Token   string       `json:"token,omitempty"`
}

// Store is the client session state machine:
//
//	sin_iniciar → iniciando → autenticado | anonimo
//
// Every mutation persists the {usuario, token} record and notifies all
// observers before the mutating call returns; the notification is the only
// synchronization point callers get.
type Store struct {
	mu        sync.Mutex
	estado    Estado
	usuario   *api.Usuario
	token     string
	observers []Observer

	api     API
	storage Storage
	log     *logrus.Logger
}

func NewStore(apiClient API, storage Storage, log *logrus.Logger) *Store {
	return &Store{estado: EstadoSinIniciar, api: apiClient, storage: storage, log: log}
}

// Subscribe registers an observer. Observers added after initialization see
// only subsequent changes.
func (s *Store) Subscribe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Estado: s.estado, Usuario: s.usuario, Token: s.token}
}

// Inicializar loads the persisted session and settles into autenticado or
// anonimo. A persisted token is revalidated against the server; the stale
// usuario snapshot is replaced by the fresh profile. Callable once.
func (s *Store) Inicializar(ctx context.Context) error {
	s.mu.Lock()
	if s.estado != EstadoSinIniciar {
		s.mu.Unlock()
		return ErrYaIniciado
	}
	s.estado = EstadoIniciando
	s.mu.Unlock()

	reg, err := s.cargar(ctx)
	if err != nil {
		if s.log != nil {
			s.log.WithError(err).Warn("no se pudo leer la sesión persistida")
		}
		return s.setState(ctx, EstadoAnonimo, nil, "")
	}
	if reg.Token == "" {
		return s.setState(ctx, EstadoAnonimo, nil, "")
	}

	usuario, err := s.api.Perfil(ctx, reg.Token)
	if err != nil {
		if s.log != nil {
			s.log.WithError(err).Info("token persistido inválido, sesión descartada")
		}
		return s.setState(ctx, EstadoAnonimo, nil, "")
	}
	return s.setState(ctx, EstadoAutenticado, usuario, reg.Token)
}

// Login authenticates, stores and persists the session, then notifies
// observers.
func (s *Store) Login(ctx context.Context, correo, password string) error {
	token, usuario, err := s.api.Login(ctx, correo, password)
	if err != nil {
		return err
	}
	return s.setState(ctx, EstadoAutenticado, usuario, token)
}

// Logout revokes the server session best-effort and always clears the local
// one. Idempotent: a second call is a no-op that still notifies.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token != "" {
		if err := s.api.Logout(ctx, token); err != nil && s.log != nil {
			s.log.WithError(err).Warn("fallo al revocar la sesión en el servidor")
		}
	}
	return s.setState(ctx, EstadoAnonimo, nil, "")
}

// setState applies the mutation, persists it and notifies observers
// synchronously in subscription order.
func (s *Store) setState(ctx context.Context, estado Estado, usuario *api.Usuario, token string) error {
	s.mu.Lock()
	s.estado = estado
	s.usuario = usuario
	s.token = token
	snap := Snapshot{Estado: estado, Usuario: usuario, Token: token}
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	err := s.persistir(ctx, registro{Usuario: usuario, Token: token})
	for _, fn := range observers {
		fn(snap)
	}
	return err
}

// cargar reads the persisted record. A missing record or the literal string
// "undefined" reads as no prior session.
func (s *Store) cargar(ctx context.Context) (registro, error) {
	b, err := s.storage.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrSinRegistro) {
			return registro{}, nil
		}
		return registro{}, err
	}
	if len(b) == 0 || string(b) == "undefined" {
		return registro{}, nil
	}
	var reg registro
	if err := json.Unmarshal(b, &reg); err != nil {
		return registro{}, err
	}
	if reg.Token == "" {
		reg.Usuario = nil
	}
	return reg, nil
}

func (s *Store) persistir(ctx context.Context, reg registro) error {
	if reg.Token == "" {
		return s.storage.Clear(ctx)
	}
	b, err := json.Marshal(reg)
	if err != nil {
		return err
	}
	return s.storage.Save(ctx, b)
}
