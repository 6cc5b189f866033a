package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/internal/domain/repository"
)

// columnasFiltrables is the whitelist of columns FindOne accepts as equality
// filters. Anything outside it yields no match rather than raw SQL.
var columnasFiltrables = map[string]bool{
	"id_usuario": true,
	"correo":     true,
	"nombre":     true,
	"apellidos":  true,
	"rol":        true,
	"estado":     true,
}

type UsuarioRepository struct {
	pool *pgxpool.Pool
}

func NewUsuarioRepository(pool *pgxpool.Pool) *UsuarioRepository {
	return &UsuarioRepository{pool: pool}
}

const usuarioCols = `id_usuario, nombre, apellidos, correo, password, rol, estado, created_at, updated_at`

func scanUsuario(row pgx.Row) (*entity.Usuario, error) {
	u := &entity.Usuario{}
	if err := row.Scan(&u.IDUsuario, &u.Nombre, &u.Apellidos, &u.Correo, &u.Password,
		&u.Rol, &u.Estado, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNoEncontrado
		}
		return nil, err
	}
	return u, nil
}

func (r *UsuarioRepository) Create(ctx context.Context, u *entity.Usuario) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO usuarios (nombre, apellidos, correo, password, rol, estado)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id_usuario, created_at, updated_at
	`, u.Nombre, u.Apellidos, u.Correo, u.Password, u.Rol, u.Estado)

	if err := row.Scan(&u.IDUsuario, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicado
		}
		return err
	}
	return nil
}

func (r *UsuarioRepository) GetByID(ctx context.Context, id string) (*entity.Usuario, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+usuarioCols+` FROM usuarios WHERE id_usuario = $1`, id)
	return scanUsuario(row)
}

// FindOne applies filtros as equality predicates and returns the first row in
// default retrieval order. Filters on columns outside the whitelist match
// nothing; correo uniqueness is enforced by the schema, not here.
func (r *UsuarioRepository) FindOne(ctx context.Context, filtros map[string]string) (*entity.Usuario, error) {
	if len(filtros) == 0 {
		return nil, repository.ErrNoEncontrado
	}
	conds := make([]string, 0, len(filtros))
	args := make([]any, 0, len(filtros))
	for col, val := range filtros {
		if !columnasFiltrables[col] {
			return nil, repository.ErrNoEncontrado
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	q := `SELECT ` + usuarioCols + ` FROM usuarios WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY created_at LIMIT 1`
	return scanUsuario(r.pool.QueryRow(ctx, q, args...))
}

func (r *UsuarioRepository) Update(ctx context.Context, u *entity.Usuario) error {
	u.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE usuarios
		SET nombre = $1, apellidos = $2, correo = $3, password = $4, rol = $5, estado = $6, updated_at = $7
		WHERE id_usuario = $8
	`, u.Nombre, u.Apellidos, u.Correo, u.Password, u.Rol, u.Estado, u.UpdatedAt, u.IDUsuario)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNoEncontrado
	}
	return nil
}

func (r *UsuarioRepository) UpdateEstado(ctx context.Context, id string, estado entity.Estado) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE usuarios SET estado = $1, updated_at = now() WHERE id_usuario = $2
	`, estado, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNoEncontrado
	}
	return nil
}

func (r *UsuarioRepository) List(ctx context.Context, estado *entity.Estado) ([]entity.Usuario, error) {
	q := `SELECT ` + usuarioCols + ` FROM usuarios`
	args := []any{}
	if estado != nil {
		q += ` WHERE estado = $1`
		args = append(args, *estado)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Usuario
	for rows.Next() {
		u := entity.Usuario{}
		if err := rows.Scan(&u.IDUsuario, &u.Nombre, &u.Apellidos, &u.Correo, &u.Password,
			&u.Rol, &u.Estado, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UsuarioRepository) Auditar(ctx context.Context, reg repository.RegistroAuditoria) error {
	md, _ := json.Marshal(reg.Metadata)
	var uid any
	if reg.IDUsuario != "" {
		uid = reg.IDUsuario
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auditoria (id_usuario, correo, accion, ip, user_agent, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uid, reg.Correo, reg.Accion, reg.IP, reg.UserAgent, md)
	return err
}

var _ repository.UsuarioRepository = (*UsuarioRepository)(nil)
