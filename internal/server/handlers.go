package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/leapstack-labs/sqltree/internal/pipeline"
	"github.com/leapstack-labs/sqltree/pkg/render"
)

var contentTypes = map[render.Format]string{
	render.FormatJSON:     "application/json; charset=utf-8",
	render.FormatYAML:     "application/yaml; charset=utf-8",
	render.FormatHTML:     "text/html; charset=utf-8",
	render.FormatMarkdown: "text/markdown; charset=utf-8",
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>sqltree</title></head>
<body>
<h1>sqltree</h1>
<p>Dialect: {{.Dialect}}</p>
<form method="post" action="/render">
<textarea name="sql" rows="12" cols="100" placeholder="SELECT 1"></textarea><br>
<select name="format">
{{- range .Formats}}
<option value="{{.}}">{{.}}</option>
{{- end}}
</select>
<button type="submit">Render</button>
</form>
</body>
</html>
`))

type indexPage struct {
	Dialect string
	Formats []render.Format
}

// positionedError is one parse error in an error response.
type positionedError struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Errors []positionedError `json:"errors,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", contentTypes[render.FormatHTML])
	page := indexPage{Dialect: s.pipeline.Dialect().Name, Formats: render.Formats()}
	if err := indexTemplate.Execute(w, page); err != nil {
		s.logger.Error("render index", slog.Any("error", err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, pipeline.Catalog())
}

// handleRender renders the SQL in the request body. The body is either raw
// SQL or a form with a "sql" field; the format comes from the "format" query
// or form value and defaults to JSON.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	sql, err := s.readSQL(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if strings.TrimSpace(sql) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "empty SQL"})
		return
	}

	format := render.FormatJSON
	if name := r.FormValue("format"); name != "" {
		if format, err = render.ParseFormat(name); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}

	tree, err := s.pipeline.Capture(sql)
	if err != nil {
		if list := pipeline.ParseErrors(err); list != nil {
			resp := errorResponse{Error: "SQL does not parse"}
			for _, e := range list {
				resp.Errors = append(resp.Errors, positionedError{
					Line: e.Pos.Line, Column: e.Pos.Column, Message: e.Message,
				})
			}
			writeJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
		s.logger.Error("capture failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	data, err := s.pipeline.Render(tree, format)
	if err != nil {
		s.logger.Error("render failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) readSQL(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return "", err
		}
		return r.PostForm.Get("sql"), nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypes[render.FormatJSON])
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
