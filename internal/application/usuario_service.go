package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/sgexamenes/examenes-api/config"
	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/internal/domain/repository"
	"github.com/sgexamenes/examenes-api/pkg/helpers"
	"github.com/sgexamenes/examenes-api/pkg/mailer"
)

var ErrCorreoDuplicado = errors.New("el correo ya está registrado")

// UsuarioService covers registration and administrator account management.
// Email notifications are side effects of an otherwise-successful action:
// publish failures are logged and swallowed, never surfaced to the caller.
type UsuarioService struct {
	Repo   repository.UsuarioRepository
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewUsuarioService(repo repository.UsuarioRepository, pub *helpers.RabbitPublisher, logger *logrus.Logger, cfg *config.Config) *UsuarioService {
	return &UsuarioService{Repo: repo, Pub: pub, Logger: logger, Cfg: cfg}
}

type RegistroInput struct {
	Nombre    string
	Apellidos string
	Correo    string
	Password  string
}

// Registrar creates a docente/pendiente account and enqueues the
// "registration received" notification.
func (s *UsuarioService) Registrar(ctx context.Context, in RegistroInput) (*entity.Usuario, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.Usuario{
		Nombre:    in.Nombre,
		Apellidos: in.Apellidos,
		Correo:    in.Correo,
		Password:  hash,
		Rol:       entity.RolDocente,
		Estado:    entity.EstadoPendiente,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, ErrCorreoDuplicado
		}
		return nil, err
	}
	s.enviarPlantilla(ctx, u, mailer.PlantillaCuentaPendiente)
	return u, nil
}

// Aprobar moves a pending account to activo and notifies the owner.
func (s *UsuarioService) Aprobar(ctx context.Context, id string) (*entity.Usuario, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, ErrUsuarioNoEncontrado
		}
		return nil, err
	}
	if err := s.Repo.UpdateEstado(ctx, id, entity.EstadoActivo); err != nil {
		return nil, err
	}
	u.Estado = entity.EstadoActivo
	s.enviarPlantilla(ctx, u, mailer.PlantillaCuentaAprobada)
	return u, nil
}

// Suspender blocks an account and notifies the owner.
func (s *UsuarioService) Suspender(ctx context.Context, id string) (*entity.Usuario, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, ErrUsuarioNoEncontrado
		}
		return nil, err
	}
	if err := s.Repo.UpdateEstado(ctx, id, entity.EstadoSuspendido); err != nil {
		return nil, err
	}
	u.Estado = entity.EstadoSuspendido
	s.enviarPlantilla(ctx, u, mailer.PlantillaCuentaSuspendida)
	return u, nil
}

// Listar returns accounts, optionally filtered by estado.
func (s *UsuarioService) Listar(ctx context.Context, estado *entity.Estado) ([]entity.Usuario, error) {
	return s.Repo.List(ctx, estado)
}

// Perfil returns one account by id.
func (s *UsuarioService) Perfil(ctx context.Context, id string) (*entity.Usuario, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, ErrUsuarioNoEncontrado
		}
		return nil, err
	}
	return u, nil
}

func (s *UsuarioService) enviarPlantilla(ctx context.Context, u *entity.Usuario, plantilla string) {
	if s.Pub == nil || s.Cfg == nil || !s.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       u.Correo,
		Template: plantilla,
		Data: map[string]any{
			"Nombre":    u.Nombre,
			"PortalURL": s.Cfg.PortalURL,
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("plantilla", plantilla).Warn("no se pudo encolar el correo")
	}
}
