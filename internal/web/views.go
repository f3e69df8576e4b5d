package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
)

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS

// views renders the embedded pages. Each page is parsed together with the
// layout and partials and executed through the "layout" template. It
// implements fiber.Views.
type views struct {
	fsys  fs.FS
	funcs template.FuncMap

	once  sync.Once
	err   error
	pages map[string]*template.Template
}

func newViews() *views {
	return &views{
		fsys: templateFS,
		funcs: template.FuncMap{
			"lower": strings.ToLower,
			"title": func(s string) string {
				if s == "" {
					return s
				}
				return strings.ToUpper(s[:1]) + s[1:]
			},
			"add":   func(a, b int) int { return a + b },
		},
	}
}

func (v *views) Load() error {
	v.once.Do(func() {
		base, err := template.New("").Funcs(v.funcs).ParseFS(v.fsys, "templates/partials/*.html")
		if err != nil {
			v.err = fmt.Errorf("parse partials: %w", err)
			return
		}
		files, err := fs.Glob(v.fsys, "templates/*.html")
		if err != nil {
			v.err = err
			return
		}
		v.pages = make(map[string]*template.Template, len(files))
		for _, file := range files {
			name := strings.TrimSuffix(path.Base(file), ".html")
			t, err := base.Clone()
			if err != nil {
				v.err = err
				return
			}
			if _, err := t.ParseFS(v.fsys, file); err != nil {
				v.err = fmt.Errorf("parse %s: %w", file, err)
				return
			}
			v.pages[name] = t
		}
	})
	return v.err
}

func (v *views) Render(w io.Writer, name string, data any, _ ...string) error {
	if err := v.Load(); err != nil {
		return err
	}
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
