package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/internal/domain/repository"
)

type IntentoRepository struct {
	pool *pgxpool.Pool
}

func NewIntentoRepository(pool *pgxpool.Pool) *IntentoRepository {
	return &IntentoRepository{pool: pool}
}

func (r *IntentoRepository) Create(ctx context.Context, i *entity.Intento) error {
	puntajes, err := json.Marshal(i.Puntajes)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO intentos (id_usuario, id_examen, id_postulacion, puntajes, nota_final, aprobado)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id_intento, created_at
	`, i.IDUsuario, i.IDExamen, i.IDPostulacion, puntajes, i.NotaFinal, i.Aprobado)
	return row.Scan(&i.IDIntento, &i.CreatedAt)
}

const intentoCols = `id_intento, id_usuario, id_examen, id_postulacion, puntajes, nota_final, aprobado, created_at`

func (r *IntentoRepository) queryIntentos(ctx context.Context, q string, args ...any) ([]entity.Intento, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Intento
	for rows.Next() {
		i := entity.Intento{}
		var puntajes []byte
		if err := rows.Scan(&i.IDIntento, &i.IDUsuario, &i.IDExamen, &i.IDPostulacion,
			&puntajes, &i.NotaFinal, &i.Aprobado, &i.CreatedAt); err != nil {
			return nil, err
		}
		if len(puntajes) > 0 {
			if err := json.Unmarshal(puntajes, &i.Puntajes); err != nil {
				return nil, err
			}
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *IntentoRepository) ListByExamen(ctx context.Context, idExamen string) ([]entity.Intento, error) {
	return r.queryIntentos(ctx, `SELECT `+intentoCols+` FROM intentos WHERE id_examen = $1 ORDER BY created_at DESC`, idExamen)
}

func (r *IntentoRepository) Recientes(ctx context.Context, limit int) ([]entity.Intento, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return r.queryIntentos(ctx, `SELECT `+intentoCols+` FROM intentos ORDER BY created_at DESC LIMIT $1`, limit)
}

func (r *IntentoRepository) ResumenPorExamen(ctx context.Context) ([]entity.ResumenExamen, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.id_examen, e.titulo,
		       COUNT(i.id_intento),
		       COUNT(i.id_intento) FILTER (WHERE i.aprobado),
		       COALESCE(AVG(i.nota_final), 0)
		FROM examenes e
		LEFT JOIN intentos i ON i.id_examen = e.id_examen
		GROUP BY e.id_examen, e.titulo
		ORDER BY e.titulo
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.ResumenExamen
	for rows.Next() {
		res := entity.ResumenExamen{}
		if err := rows.Scan(&res.IDExamen, &res.Titulo, &res.TotalIntentos, &res.Aprobados, &res.NotaPromedio); err != nil {
			return nil, err
		}
		if res.TotalIntentos > 0 {
			res.TasaAprobacion = float64(res.Aprobados) / float64(res.TotalIntentos) * 100
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

var _ repository.IntentoRepository = (*IntentoRepository)(nil)
