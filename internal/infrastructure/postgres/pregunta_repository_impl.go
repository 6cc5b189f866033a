package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/internal/domain/repository"
)

type PreguntaRepository struct {
	pool *pgxpool.Pool
}

func NewPreguntaRepository(pool *pgxpool.Pool) *PreguntaRepository {
	return &PreguntaRepository{pool: pool}
}

func (r *PreguntaRepository) CreateCategoria(ctx context.Context, c *entity.Categoria) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categorias (nombre) VALUES ($1)
		RETURNING id_categoria, created_at
	`, c.Nombre)
	if err := row.Scan(&c.IDCategoria, &c.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicado
		}
		return err
	}
	return nil
}

func (r *PreguntaRepository) ListCategorias(ctx context.Context) ([]entity.Categoria, error) {
	rows, err := r.pool.Query(ctx, `SELECT id_categoria, nombre, created_at FROM categorias ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Categoria
	for rows.Next() {
		c := entity.Categoria{}
		if err := rows.Scan(&c.IDCategoria, &c.Nombre, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const preguntaCols = `id_pregunta, id_categoria, enunciado, opciones, respuesta, puntaje, adjunto_url, creado_por, created_at, updated_at`

func scanPregunta(row pgx.Row) (*entity.Pregunta, error) {
	p := &entity.Pregunta{}
	var ops []byte
	if err := row.Scan(&p.IDPregunta, &p.IDCategoria, &p.Enunciado, &ops, &p.Respuesta,
		&p.Puntaje, &p.AdjuntoURL, &p.CreadoPor, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNoEncontrado
		}
		return nil, err
	}
	if len(ops) > 0 {
		if err := json.Unmarshal(ops, &p.Opciones); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (r *PreguntaRepository) CreatePregunta(ctx context.Context, p *entity.Pregunta) error {
	ops, err := json.Marshal(p.Opciones)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO preguntas (id_categoria, enunciado, opciones, respuesta, puntaje, adjunto_url, creado_por)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id_pregunta, created_at, updated_at
	`, p.IDCategoria, p.Enunciado, ops, p.Respuesta, p.Puntaje, p.AdjuntoURL, p.CreadoPor)
	return row.Scan(&p.IDPregunta, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PreguntaRepository) GetPregunta(ctx context.Context, id string) (*entity.Pregunta, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+preguntaCols+` FROM preguntas WHERE id_pregunta = $1`, id)
	return scanPregunta(row)
}

func (r *PreguntaRepository) UpdatePregunta(ctx context.Context, p *entity.Pregunta) error {
	ops, err := json.Marshal(p.Opciones)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE preguntas
		SET id_categoria = $1, enunciado = $2, opciones = $3, respuesta = $4, puntaje = $5, adjunto_url = $6, updated_at = $7
		WHERE id_pregunta = $8
	`, p.IDCategoria, p.Enunciado, ops, p.Respuesta, p.Puntaje, p.AdjuntoURL, p.UpdatedAt, p.IDPregunta)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNoEncontrado
	}
	return nil
}

func (r *PreguntaRepository) DeletePregunta(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM preguntas WHERE id_pregunta = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNoEncontrado
	}
	return nil
}

func (r *PreguntaRepository) ListPreguntas(ctx context.Context, idCategoria string) ([]entity.Pregunta, error) {
	q := `SELECT ` + preguntaCols + ` FROM preguntas`
	args := []any{}
	if idCategoria != "" {
		q += ` WHERE id_categoria = $1`
		args = append(args, idCategoria)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Pregunta
	for rows.Next() {
		p := entity.Pregunta{}
		var ops []byte
		if err := rows.Scan(&p.IDPregunta, &p.IDCategoria, &p.Enunciado, &ops, &p.Respuesta,
			&p.Puntaje, &p.AdjuntoURL, &p.CreadoPor, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if len(ops) > 0 {
			if err := json.Unmarshal(ops, &p.Opciones); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ repository.PreguntaRepository = (*PreguntaRepository)(nil)
