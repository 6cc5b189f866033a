package entity

import "time"

// Rol is the closed set of account roles. The one-character wire values are
// what the relational schema and the public API carry; code must only ever
// compare against the named variants.
type Rol string

const (
	RolAdministrador Rol = "0"
	RolDocente       Rol = "1"
)

// Valido reports whether r is one of the named roles.
func (r Rol) Valido() bool {
	return r == RolAdministrador || r == RolDocente
}

// Nombre returns a human-readable label for diagnostics and denial payloads.
func (r Rol) Nombre() string {
	switch r {
	case RolAdministrador:
		return "administrador"
	case RolDocente:
		return "docente"
	default:
		return "desconocido"
	}
}

// Estado is the account lifecycle status. Non-administrators must be
// EstadoActivo to use the system; administrators bypass the status gate.
type Estado string

const (
	EstadoPendiente  Estado = "0"
	EstadoActivo     Estado = "1"
	EstadoSuspendido Estado = "2"
)

// Etiqueta returns the label surfaced to users for a blocked account.
func (e Estado) Etiqueta() string {
	switch e {
	case EstadoPendiente:
		return "pendiente de aprobación"
	case EstadoSuspendido:
		return "suspendido"
	default:
		return "inactivo"
	}
}

// Usuario is the aggregate root for the accounts domain.
// Password holds a bcrypt hash, never plaintext. Accounts are created as
// docente/pendiente at registration and are never hard-deleted.
type Usuario struct {
	IDUsuario string
	Nombre    string
	Apellidos string
	Correo    string
	Password  string
	Rol       Rol
	Estado    Estado
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EsAdministrador reports whether the account carries the administrator role.
func (u *Usuario) EsAdministrador() bool {
	return u != nil && u.Rol == RolAdministrador
}
