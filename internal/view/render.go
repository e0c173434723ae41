// internal/view/render.go
//
// Page layout engine: template lookup, override chain, and an LRU of parsed
// layout sets.
//
// Public helpers
// --------------
//   - Engine.Page     – write a full HTML page to an http.ResponseWriter.
//   - Engine.Render   – return the page as template.HTML.
//
// Lookup precedence (first hit wins):
//  1. <dir>/<name>.html, when the engine has an override directory.
//  2. The built-in layout of the same name.
//
// All templates in the override directory are parsed as one set so
// sub-templates ({{ template "footer" . }}) work.
//
// execName() chooses the template to execute: "<name>.html" when the set
// has that file, else "<name>" (a root template made with {{ define }}).

package view

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/yanizio/formguard/internal/cache"
	"github.com/yanizio/formguard/internal/head"
)

//go:embed layouts/*.html
var builtin embed.FS

// PageData is what every layout receives.
type PageData struct {
	Head *head.Builder
	Body template.HTML
	Data map[string]any // Extra values for custom layouts.
}

// Engine renders layouts.  Safe for concurrent use.
type Engine struct {
	dir  string
	sets *cache.LRU[string, *template.Template]
}

// New returns an Engine.  dir may be empty to use only built-in layouts.
func New(dir string) *Engine {
	return &Engine{dir: dir, sets: cache.New[string, *template.Template](64)}
}

// Page writes layout name with status to w.
func (e *Engine) Page(w http.ResponseWriter, status int, name string, data PageData) error {
	out, err := e.Render(name, data)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = w.Write([]byte(out))
	return err
}

// Render executes layout name and returns the HTML.
func (e *Engine) Render(name string, data PageData) (template.HTML, error) {
	if data.Head == nil {
		data.Head = head.New()
	}
	t, err := e.load(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, execName(t, name), data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

//
// internal: load
//

// load finds and parses the layout set for name.  Parsed sets are cached;
// edit-and-reload requires a restart.
func (e *Engine) load(name string) (*template.Template, error) {
	return e.sets.GetOrAdd(name, func() (*template.Template, error) {
		if e.dir != "" {
			p := filepath.Join(e.dir, name+".html")
			if _, err := os.Stat(p); err == nil {
				return template.New(name).Funcs(funcMap()).ParseGlob(filepath.Join(e.dir, "*.html"))
			}
		}
		p := "layouts/" + name + ".html"
		if _, err := fs.Stat(builtin, p); err != nil {
			return nil, errors.Join(os.ErrNotExist, err)
		}
		return template.New(name).Funcs(funcMap()).ParseFS(builtin, p)
	})
}

//
// helpers
//

func funcMap() template.FuncMap {
	return template.FuncMap{"dict": dict}
}

// execName picks the template name to execute.
//
// Priority:
//  1. If the set has "<name>.html" (file-based template), run that.
//  2. Otherwise, fall back to "<name>" (root template defined in code).
func execName(t *template.Template, name string) string {
	if tmpl := t.Lookup(name + ".html"); tmpl != nil {
		return name + ".html"
	}
	return name
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}
