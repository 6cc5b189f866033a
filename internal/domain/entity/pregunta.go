package entity

import "time"

// Categoria groups questions in the bank.
type Categoria struct {
	IDCategoria string
	Nombre      string
	CreatedAt   time.Time
}

// Opcion is one selectable answer of a question.
type Opcion struct {
	Clave string `json:"clave"`
	Texto string `json:"texto"`
}

// Pregunta is a question-bank entry. Opciones are stored as JSONB;
// AdjuntoURL points at an uploaded attachment (image) when present.
type Pregunta struct {
	IDPregunta  string
	IDCategoria string
	Enunciado   string
	Opciones    []Opcion
	Respuesta   string // clave of the correct opción
	Puntaje     float64
	AdjuntoURL  string
	CreadoPor   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
