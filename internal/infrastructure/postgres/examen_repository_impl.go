package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/internal/domain/repository"
)

type ExamenRepository struct {
	pool *pgxpool.Pool
}

func NewExamenRepository(pool *pgxpool.Pool) *ExamenRepository {
	return &ExamenRepository{pool: pool}
}

func (r *ExamenRepository) Create(ctx context.Context, e *entity.Examen) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO examenes (titulo, descripcion, estado, duracion_min, fecha, creado_por)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id_examen, created_at, updated_at
	`, e.Titulo, e.Descripcion, e.Estado, e.DuracionMin, e.Fecha, e.CreadoPor)
	return row.Scan(&e.IDExamen, &e.CreatedAt, &e.UpdatedAt)
}

func (r *ExamenRepository) GetByID(ctx context.Context, id string) (*entity.Examen, error) {
	e := &entity.Examen{}
	row := r.pool.QueryRow(ctx, `
		SELECT id_examen, titulo, descripcion, estado, duracion_min, fecha, creado_por, created_at, updated_at
		FROM examenes WHERE id_examen = $1
	`, id)
	if err := row.Scan(&e.IDExamen, &e.Titulo, &e.Descripcion, &e.Estado, &e.DuracionMin,
		&e.Fecha, &e.CreadoPor, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNoEncontrado
		}
		return nil, err
	}

	subs, err := r.subpruebasDe(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Subpruebas = subs

	posts, err := r.postulacionesDe(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Postulaciones = posts
	return e, nil
}

func (r *ExamenRepository) subpruebasDe(ctx context.Context, idExamen string) ([]entity.Subprueba, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id_subprueba, id_examen, nombre, orden, num_preguntas, puntaje_max
		FROM subpruebas WHERE id_examen = $1 ORDER BY orden
	`, idExamen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Subprueba
	for rows.Next() {
		s := entity.Subprueba{}
		if err := rows.Scan(&s.IDSubprueba, &s.IDExamen, &s.Nombre, &s.Orden, &s.NumPreguntas, &s.PuntajeMax); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ExamenRepository) postulacionesDe(ctx context.Context, idExamen string) ([]entity.Postulacion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id_postulacion, id_examen, nombre, nota_minima, min_subprueba, subpruebas
		FROM postulaciones WHERE id_examen = $1 ORDER BY nombre
	`, idExamen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Postulacion
	for rows.Next() {
		p := entity.Postulacion{}
		var subs []byte
		if err := rows.Scan(&p.IDPostulacion, &p.IDExamen, &p.Nombre, &p.Regla.NotaMinima, &p.Regla.MinSubprueba, &subs); err != nil {
			return nil, err
		}
		if len(subs) > 0 {
			if err := json.Unmarshal(subs, &p.Subpruebas); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ExamenRepository) UpdateDatos(ctx context.Context, e *entity.Examen) error {
	e.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE examenes
		SET titulo = $1, descripcion = $2, duracion_min = $3, fecha = $4, updated_at = $5
		WHERE id_examen = $6
	`, e.Titulo, e.Descripcion, e.DuracionMin, e.Fecha, e.UpdatedAt, e.IDExamen)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNoEncontrado
	}
	return nil
}

// ReplaceSubpruebas swaps the full set of subpruebas of an exam inside one
// transaction, keeping wizard step edits atomic.
func (r *ExamenRepository) ReplaceSubpruebas(ctx context.Context, idExamen string, subs []entity.Subprueba) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM subpruebas WHERE id_examen = $1`, idExamen); err != nil {
		return err
	}
	for i := range subs {
		s := &subs[i]
		s.IDExamen = idExamen
		row := tx.QueryRow(ctx, `
			INSERT INTO subpruebas (id_examen, nombre, orden, num_preguntas, puntaje_max)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id_subprueba
		`, s.IDExamen, s.Nombre, s.Orden, s.NumPreguntas, s.PuntajeMax)
		if err := row.Scan(&s.IDSubprueba); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ExamenRepository) ReplacePostulaciones(ctx context.Context, idExamen string, posts []entity.Postulacion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM postulaciones WHERE id_examen = $1`, idExamen); err != nil {
		return err
	}
	for i := range posts {
		p := &posts[i]
		p.IDExamen = idExamen
		subs, err := json.Marshal(p.Subpruebas)
		if err != nil {
			return err
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO postulaciones (id_examen, nombre, nota_minima, min_subprueba, subpruebas)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id_postulacion
		`, p.IDExamen, p.Nombre, p.Regla.NotaMinima, p.Regla.MinSubprueba, subs)
		if err := row.Scan(&p.IDPostulacion); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ExamenRepository) UpdateEstado(ctx context.Context, id string, estado entity.EstadoExamen) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE examenes SET estado = $1, updated_at = now() WHERE id_examen = $2
	`, estado, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNoEncontrado
	}
	return nil
}

// List returns exams without their aggregates. creadoPor filters by owner;
// empty means all exams (administrator view).
func (r *ExamenRepository) List(ctx context.Context, creadoPor string) ([]entity.Examen, error) {
	q := `SELECT id_examen, titulo, descripcion, estado, duracion_min, fecha, creado_por, created_at, updated_at FROM examenes`
	args := []any{}
	if creadoPor != "" {
		q += ` WHERE creado_por = $1`
		args = append(args, creadoPor)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Examen
	for rows.Next() {
		e := entity.Examen{}
		if err := rows.Scan(&e.IDExamen, &e.Titulo, &e.Descripcion, &e.Estado, &e.DuracionMin,
			&e.Fecha, &e.CreadoPor, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ repository.ExamenRepository = (*ExamenRepository)(nil)
