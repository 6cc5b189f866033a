package entity

import "time"

// EstadoExamen tracks the wizard lifecycle of an exam draft.
type EstadoExamen string

const (
	ExamenBorrador  EstadoExamen = "borrador"
	ExamenPublicado EstadoExamen = "publicado"
)

// Examen is an exam assembled through the multi-step wizard. A draft can be
// edited freely; publishing validates that at least one subprueba and one
// postulación exist.
type Examen struct {
	IDExamen    string
	Titulo      string
	Descripcion string
	Estado      EstadoExamen
	DuracionMin int
	Fecha       *time.Time
	CreadoPor   string // owning user id
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Subpruebas    []Subprueba
	Postulaciones []Postulacion
}

// Subprueba is a scored sub-section of an exam.
type Subprueba struct {
	IDSubprueba  string
	IDExamen     string
	Nombre       string
	Orden        int
	NumPreguntas int
	PuntajeMax   float64
}

// ReglaAprobacion is the configurable scoring rule of a postulación.
// NotaMinima is a percentage of the total achievable score; MinSubprueba,
// when positive, is the minimum percentage required on every subprueba the
// postulación scores.
type ReglaAprobacion struct {
	NotaMinima   float64 `json:"nota_minima"`
	MinSubprueba float64 `json:"min_subprueba"`
}

// Postulacion is an application track within an exam with its own approval
// rule. Subpruebas optionally restricts which sub-tests it scores; empty
// means the whole exam.
type Postulacion struct {
	IDPostulacion string
	IDExamen      string
	Nombre        string
	Regla         ReglaAprobacion
	Subpruebas    []string // subprueba ids; empty = all
}

// PuntuaSubprueba reports whether the postulación scores the given subprueba.
func (p *Postulacion) PuntuaSubprueba(idSubprueba string) bool {
	if len(p.Subpruebas) == 0 {
		return true
	}
	for _, id := range p.Subpruebas {
		if id == idSubprueba {
			return true
		}
	}
	return false
}
