package repository

import (
	"context"

	"github.com/sgexamenes/examenes-api/internal/domain/entity"
)

// ExamenRepository persists exams assembled by the wizard. GetByID loads the
// full aggregate (subpruebas and postulaciones included).
type ExamenRepository interface {
	Create(ctx context.Context, e *entity.Examen) error
	GetByID(ctx context.Context, id string) (*entity.Examen, error)
	UpdateDatos(ctx context.Context, e *entity.Examen) error
	ReplaceSubpruebas(ctx context.Context, idExamen string, subs []entity.Subprueba) error
	ReplacePostulaciones(ctx context.Context, idExamen string, posts []entity.Postulacion) error
	UpdateEstado(ctx context.Context, id string, estado entity.EstadoExamen) error
	List(ctx context.Context, creadoPor string) ([]entity.Examen, error)
}

// PreguntaRepository persists the question bank and its categories.
type PreguntaRepository interface {
	CreateCategoria(ctx context.Context, c *entity.Categoria) error
	ListCategorias(ctx context.Context) ([]entity.Categoria, error)
	CreatePregunta(ctx context.Context, p *entity.Pregunta) error
	GetPregunta(ctx context.Context, id string) (*entity.Pregunta, error)
	UpdatePregunta(ctx context.Context, p *entity.Pregunta) error
	DeletePregunta(ctx context.Context, id string) error
	ListPreguntas(ctx context.Context, idCategoria string) ([]entity.Pregunta, error)
}

// IntentoRepository persists scored attempts and serves dashboard aggregates.
type IntentoRepository interface {
	Create(ctx context.Context, i *entity.Intento) error
	ListByExamen(ctx context.Context, idExamen string) ([]entity.Intento, error)
	Recientes(ctx context.Context, limit int) ([]entity.Intento, error)
	ResumenPorExamen(ctx context.Context) ([]entity.ResumenExamen, error)
}
