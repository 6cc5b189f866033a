package application

import (
	"net/http"

	"github.com/sgexamenes/examenes-api/internal/domain/entity"
)

// Denial kinds surfaced under the "error" key of a 401/403 payload.
const (
	DenegacionNoAutenticado  = "unauthenticated"
	DenegacionPermisos       = "insufficient_permissions"
	DenegacionCuentaInactiva = "account_inactive"
	DenegacionProhibido      = "forbidden"
)

// Denegacion is a structured permission denial. It is a terminal result: the
// caller stops processing and surfaces it as-is, there is no retry path.
// A nil *Denegacion means the check passed.
type Denegacion struct {
	Kind     string
	Message  string
	Contexto map[string]any
}

func (d *Denegacion) Error() string { return d.Message }

// Status maps the denial kind to its HTTP status code.
func (d *Denegacion) Status() int {
	if d.Kind == DenegacionNoAutenticado {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

// ValidarRol checks that the caller is authenticated and carries the required
// role. Mismatches report both roles for diagnostics.
func ValidarRol(requerido entity.Rol, u *entity.Usuario) *Denegacion {
	if u == nil {
		return &Denegacion{
			Kind:    DenegacionNoAutenticado,
			Message: "No autenticado.",
		}
	}
	if u.Rol != requerido {
		return &Denegacion{
			Kind:    DenegacionPermisos,
			Message: "No tiene permisos para realizar esta acción.",
			Contexto: map[string]any{
				"rol_requerido": requerido.Nombre(),
				"rol_actual":    u.Rol.Nombre(),
			},
		}
	}
	return nil
}

// ValidarActivo checks the account status gate. Administrators always pass
// regardless of status; everyone else must be activo.
func ValidarActivo(u *entity.Usuario) *Denegacion {
	if u == nil {
		return &Denegacion{
			Kind:    DenegacionNoAutenticado,
			Message: "No autenticado.",
		}
	}
	if u.EsAdministrador() || u.Estado == entity.EstadoActivo {
		return nil
	}
	etiqueta := u.Estado.Etiqueta()
	return &Denegacion{
		Kind:     DenegacionCuentaInactiva,
		Message:  "Su cuenta está " + etiqueta + ".",
		Contexto: map[string]any{"estado": etiqueta},
	}
}

// ValidarPropietario checks resource ownership. Administrators may access any
// resource; everyone else must own it.
func ValidarPropietario(u *entity.Usuario, propietarioID string) *Denegacion {
	if u == nil {
		return &Denegacion{
			Kind:    DenegacionNoAutenticado,
			Message: "No autenticado.",
		}
	}
	if u.EsAdministrador() || u.IDUsuario == propietarioID {
		return nil
	}
	return &Denegacion{
		Kind:    DenegacionProhibido,
		Message: "No puede acceder a un recurso de otro usuario.",
	}
}

// ValidarRolActivo runs the role check and then the status check,
// short-circuiting on the first failure.
func ValidarRolActivo(requerido entity.Rol, u *entity.Usuario) *Denegacion {
	if d := ValidarRol(requerido, u); d != nil {
		return d
	}
	return ValidarActivo(u)
}
