package portal

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/funtimes-candela/internal/diagnostics"
)

var formTmpl = template.Must(template.New("form").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>Candela</title></head>
<body>
<h1>Candela</h1>
{{if .Message}}<p><b>{{.Message}}</b></p>{{end}}
<form method="post" action="/config">
<label><input type="checkbox" name="darkness" {{if .S.Darkness}}checked{{end}}> Darkness</label><br>
<label><input type="checkbox" name="flicker" {{if .S.Flicker}}checked{{end}}> Flicker</label><br>
<label><input type="checkbox" name="rotation" {{if .S.Rotation}}checked{{end}}> Rotation</label><br>
<label>Brightness <input type="number" name="brightness" min="0" max="255" value="{{.S.Brightness}}"></label><br>
<label>Flicker FPS <input type="number" name="flickerFPS" min="1" max="255" value="{{.S.FlickerFPS}}"></label>
<small>{{.S.FlickerIntervalMs}} ms</small><br>
<label>Hue FPS <input type="number" name="hueFPS" min="1" max="255" value="{{.S.HueFPS}}"></label>
<small>{{.S.HueIntervalMs}} ms</small><br>
<label>Hue repeat <input type="number" name="hueRepeat" min="3" max="255" step="3" value="{{.S.HueRepeat}}"></label>
<small>{{.S.HueModulus}}&deg; apart</small><br>
<button type="submit">Apply</button>
</form>
<p><small>config v{{.S.Version}} &middot; {{.S.Elements}} elements &middot; {{.S.Frames}} frames</small></p>
</body></html>
`))

type formData struct {
	S       diag.Status
	Message string
}

func (s *Server) renderForm(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := formTmpl.Execute(w, formData{S: s.Status(), Message: msg}); err != nil {
		log.Debug().Err(err).Msg("render form")
	}
}
