package mailer

import (
	"bytes"
	"fmt"
	htmpl "html/template"
)

type plantilla struct {
	Asunto string
	Texto  string
	HTML   string
}

// Data keys: Nombre, PortalURL, Motivo (suspensión).
var plantillas = map[string]plantilla{
	PlantillaCuentaPendiente: {
		Asunto: "Registro recibido",
		Texto:  "Hola {{.Nombre}}, hemos recibido su registro. Un administrador revisará su cuenta; recibirá un correo cuando sea aprobada.",
		HTML:   `<p>Hola <strong>{{.Nombre}}</strong>,</p><p>Hemos recibido su registro. Un administrador revisará su cuenta; recibirá un correo cuando sea aprobada.</p>`,
	},
	PlantillaCuentaAprobada: {
		Asunto: "Su cuenta ha sido aprobada",
		Texto:  "Hola {{.Nombre}}, su cuenta ha sido aprobada. Ya puede acceder en {{.PortalURL}}.",
		HTML:   `<p>Hola <strong>{{.Nombre}}</strong>,</p><p>Su cuenta ha sido aprobada. Ya puede acceder en <a href="{{.PortalURL}}">{{.PortalURL}}</a>.</p>`,
	},
	PlantillaCuentaSuspendida: {
		Asunto: "Su cuenta ha sido suspendida",
		Texto:  "Hola {{.Nombre}}, su cuenta ha sido suspendida. Contacte con un administrador si cree que se trata de un error.",
		HTML:   `<p>Hola <strong>{{.Nombre}}</strong>,</p><p>Su cuenta ha sido suspendida. Contacte con un administrador si cree que se trata de un error.</p>`,
	},
}

// Render resolves a template name against data and returns subject, text and
// HTML bodies ready for sending.
func Render(nombre string, data map[string]any) (subject, text, html string, err error) {
	p, ok := plantillas[nombre]
	if !ok {
		return "", "", "", fmt.Errorf("plantilla desconocida: %s", nombre)
	}
	text, err = renderOne(nombre+"_text", p.Texto, data)
	if err != nil {
		return "", "", "", err
	}
	html, err = renderOne(nombre+"_html", p.HTML, data)
	if err != nil {
		return "", "", "", err
	}
	return p.Asunto, text, html, nil
}

func renderOne(name, tpl string, data map[string]any) (string, error) {
	t, err := htmpl.New(name).Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
