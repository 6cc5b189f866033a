package entity

import "time"

// PuntajeSubprueba is the score obtained on one subprueba within an attempt.
type PuntajeSubprueba struct {
	IDSubprueba string  `json:"id_subprueba"`
	Obtenido    float64 `json:"obtenido"`
}

// Intento is one scored attempt of a postulación by a user. NotaFinal is the
// percentage achieved over the subpruebas the postulación scores; Aprobado is
// the verdict of the postulación's approval rule.
type Intento struct {
	IDIntento     string
	IDUsuario     string
	IDExamen      string
	IDPostulacion string
	Puntajes      []PuntajeSubprueba
	NotaFinal     float64
	Aprobado      bool
	CreatedAt     time.Time
}

// ResumenExamen aggregates attempts of one exam for the dashboard.
type ResumenExamen struct {
	IDExamen       string  `json:"id_examen"`
	Titulo         string  `json:"titulo"`
	TotalIntentos  int     `json:"total_intentos"`
	Aprobados      int     `json:"aprobados"`
	TasaAprobacion float64 `json:"tasa_aprobacion"`
	NotaPromedio   float64 `json:"nota_promedio"`
}
