package repository

import (
	"context"
	"time"

	"github.com/sgexamenes/examenes-api/internal/domain/entity"
)

// RegistroAuditoria is an append-only trace of security-relevant actions.
type RegistroAuditoria struct {
	IDUsuario string
	Correo    string
	Accion    string
	IP        string
	UserAgent string
	Metadata  map[string]any
	CreatedAt time.Time
}

// UsuarioRepository defines the persistence operations of the accounts domain.
//
// FindOne backs the credential resolver: filtros is a map of column filters
// already translated to schema column names; implementations apply them as
// equality predicates and return the first row in default retrieval order,
// or nil when nothing matches.
type UsuarioRepository interface {
	Create(ctx context.Context, u *entity.Usuario) error
	GetByID(ctx context.Context, id string) (*entity.Usuario, error)
	FindOne(ctx context.Context, filtros map[string]string) (*entity.Usuario, error)
	Update(ctx context.Context, u *entity.Usuario) error
	UpdateEstado(ctx context.Context, id string, estado entity.Estado) error
	List(ctx context.Context, estado *entity.Estado) ([]entity.Usuario, error)
	Auditar(ctx context.Context, r RegistroAuditoria) error
}
