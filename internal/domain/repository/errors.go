package repository

import "errors"

// Sentinel errors shared by all repository implementations. Callers check
// them with errors.Is; expected misses are never panics.
var (
	ErrNoEncontrado = errors.New("registro no encontrado")
	ErrDuplicado    = errors.New("registro duplicado")
)
