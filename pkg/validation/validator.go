package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for common validations.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterAlias("pwd", "min=8") // password minimum length
	}
}

// ToErrores converts binding errors into the API's field->messages map.
func ToErrores(err error) map[string][]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string][]string{"payload": {"el cuerpo de la petición no es JSON válido"}}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			field := fe.Field()
			out[field] = append(out[field], mensajeCampo(fe))
		}
		return out
	}

	return map[string][]string{"payload": {"petición inválida"}}
}

func mensajeCampo(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "debe ser un correo válido"
	case "uuid":
		return "debe ser un UUID válido"
	case "min":
		return "debe tener al menos " + param + " caracteres"
	case "max":
		return "debe tener como máximo " + param + " caracteres"
	case "eqfield":
		return "debe coincidir con " + strings.ToLower(param)
	case "oneof":
		return "debe ser uno de: " + strings.ReplaceAll(param, " ", ", ")
	case "gte":
		return "debe ser mayor o igual que " + param
	case "lte":
		return "debe ser menor o igual que " + param
	case "gt":
		return "debe ser mayor que " + param
	case "pwd":
		return "debe tener al menos 8 caracteres"
	default:
		return "no supera la validación '" + fe.Tag() + "'"
	}
}
