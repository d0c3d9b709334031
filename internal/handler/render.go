package handler

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/justloook-provider-portal/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageAuth      = "auth"
	pageDashboard = "dashboard"
	pageError     = "error"
)

// Renderer executes full pages. Each page is parsed once together with
// the base layout and the shared partials.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"money": service.FormatMoney,
		"lower": func(v any) string { return strings.ToLower(fmt.Sprint(v)) },
	}
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{pageAuth, pageDashboard, pageError} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/base.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "base", data)
}
