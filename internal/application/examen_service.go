package application

import (
	"context"
	"errors"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/internal/domain/repository"
)

var (
	ErrExamenNoEncontrado      = errors.New("examen no encontrado")
	ErrExamenIncompleto        = errors.New("el examen no tiene subpruebas o postulaciones")
	ErrExamenNoPublicado       = errors.New("el examen no está publicado")
	ErrPostulacionNoEncontrada = errors.New("postulación no encontrada")
	ErrPuntajeInvalido         = errors.New("puntaje fuera de rango")
)

// ExamenService drives the exam wizard and scores attempts against the
// postulación approval rules.
type ExamenService struct {
	Examenes repository.ExamenRepository
	Intentos repository.IntentoRepository
	Logger   *logrus.Logger
}

func NewExamenService(examenes repository.ExamenRepository, intentos repository.IntentoRepository, logger *logrus.Logger) *ExamenService {
	return &ExamenService{Examenes: examenes, Intentos: intentos, Logger: logger}
}

// CrearBorrador starts the wizard: a draft exam owned by creadoPor.
func (s *ExamenService) CrearBorrador(ctx context.Context, e *entity.Examen, creadoPor string) error {
	e.Estado = entity.ExamenBorrador
	e.CreadoPor = creadoPor
	return s.Examenes.Create(ctx, e)
}

// Obtener loads the full aggregate.
func (s *ExamenService) Obtener(ctx context.Context, id string) (*entity.Examen, error) {
	e, err := s.Examenes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, ErrExamenNoEncontrado
		}
		return nil, err
	}
	return e, nil
}

// Listar returns exams; administrators see everything, docentes their own.
func (s *ExamenService) Listar(ctx context.Context, solicitante *entity.Usuario) ([]entity.Examen, error) {
	creador := ""
	if !solicitante.EsAdministrador() {
		creador = solicitante.IDUsuario
	}
	return s.Examenes.List(ctx, creador)
}

// ActualizarDatos is the wizard's general-data step.
func (s *ExamenService) ActualizarDatos(ctx context.Context, e *entity.Examen) error {
	if err := s.Examenes.UpdateDatos(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return ErrExamenNoEncontrado
		}
		return err
	}
	return nil
}

// ReemplazarSubpruebas is the wizard's sub-test step.
func (s *ExamenService) ReemplazarSubpruebas(ctx context.Context, idExamen string, subs []entity.Subprueba) error {
	return s.Examenes.ReplaceSubpruebas(ctx, idExamen, subs)
}

// ReemplazarPostulaciones is the wizard's tracks step.
func (s *ExamenService) ReemplazarPostulaciones(ctx context.Context, idExamen string, posts []entity.Postulacion) error {
	return s.Examenes.ReplacePostulaciones(ctx, idExamen, posts)
}

// Publicar closes the wizard. A publishable exam needs at least one subprueba
// and one postulación.
func (s *ExamenService) Publicar(ctx context.Context, idExamen string) (*entity.Examen, error) {
	e, err := s.Obtener(ctx, idExamen)
	if err != nil {
		return nil, err
	}
	if len(e.Subpruebas) == 0 || len(e.Postulaciones) == 0 {
		return nil, ErrExamenIncompleto
	}
	if err := s.Examenes.UpdateEstado(ctx, idExamen, entity.ExamenPublicado); err != nil {
		return nil, err
	}
	e.Estado = entity.ExamenPublicado
	return e, nil
}

// RegistrarIntento scores an attempt of a postulación and persists it.
// Scores for subpruebas the postulación does not cover are ignored; covered
// subpruebas with no score count as zero.
func (s *ExamenService) RegistrarIntento(ctx context.Context, idUsuario, idExamen, idPostulacion string, puntajes []entity.PuntajeSubprueba) (*entity.Intento, error) {
	e, err := s.Obtener(ctx, idExamen)
	if err != nil {
		return nil, err
	}
	if e.Estado != entity.ExamenPublicado {
		return nil, ErrExamenNoPublicado
	}

	var post *entity.Postulacion
	for i := range e.Postulaciones {
		if e.Postulaciones[i].IDPostulacion == idPostulacion {
			post = &e.Postulaciones[i]
			break
		}
	}
	if post == nil {
		return nil, ErrPostulacionNoEncontrada
	}

	nota, aprobado, valorados, err := calificar(e.Subpruebas, post, puntajes)
	if err != nil {
		return nil, err
	}

	intento := &entity.Intento{
		IDUsuario:     idUsuario,
		IDExamen:      idExamen,
		IDPostulacion: idPostulacion,
		Puntajes:      valorados,
		NotaFinal:     nota,
		Aprobado:      aprobado,
	}
	if err := s.Intentos.Create(ctx, intento); err != nil {
		return nil, err
	}
	return intento, nil
}

// calificar applies the approval rule: the overall percentage must reach
// NotaMinima and, when MinSubprueba is set, every scored subprueba must reach
// that percentage on its own.
func calificar(subs []entity.Subprueba, post *entity.Postulacion, puntajes []entity.PuntajeSubprueba) (float64, bool, []entity.PuntajeSubprueba, error) {
	obtenidos := make(map[string]float64, len(puntajes))
	for _, p := range puntajes {
		if p.Obtenido < 0 {
			return 0, false, nil, ErrPuntajeInvalido
		}
		obtenidos[p.IDSubprueba] = p.Obtenido
	}

	var totalMax, totalObtenido float64
	aprobado := true
	var valorados []entity.PuntajeSubprueba

	for _, sub := range subs {
		if !post.PuntuaSubprueba(sub.IDSubprueba) {
			continue
		}
		obtenido := obtenidos[sub.IDSubprueba]
		if obtenido > sub.PuntajeMax {
			return 0, false, nil, ErrPuntajeInvalido
		}
		totalMax += sub.PuntajeMax
		totalObtenido += obtenido
		valorados = append(valorados, entity.PuntajeSubprueba{IDSubprueba: sub.IDSubprueba, Obtenido: obtenido})

		if post.Regla.MinSubprueba > 0 && sub.PuntajeMax > 0 {
			if obtenido/sub.PuntajeMax*100 < post.Regla.MinSubprueba {
				aprobado = false
			}
		}
	}

	if totalMax == 0 {
		return 0, false, nil, ErrExamenIncompleto
	}
	nota := math.Round(totalObtenido/totalMax*10000) / 100
	if nota < post.Regla.NotaMinima {
		aprobado = false
	}
	return nota, aprobado, valorados, nil
}
