// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  cmd/web invokes Init(deps)
// on every component that implements Initializer, runs its Migrations when
// a database is configured, and mounts its Routes() at “/<name>”.

package component

import (
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/formguard/internal/form"
	"github.com/yanizio/formguard/internal/view"
)

// Deps carries the shared services a component may wire against.  Any
// field except Forms and Log may be nil.
type Deps struct {
	Forms   *form.Registry
	Actions form.Handler
	Tokens  *form.Tokens
	Pages   *view.Engine
	Log     *zap.SugaredLogger
}

// Initializer is optional.  If a Component implements it, cmd/web calls
// Init(deps) once before mounting Routes().
type Initializer interface {
	Init(Deps) error
}

// Component contract.
//
// Migrations() may return nil if the component has no schema changes.
// Routes() is mounted under “/<Name()>”, e.g.:
//
//	r := chi.NewRouter()
//	r.Get("/", list)
//	r.Post("/{id}", submit)
//	return r
type Component interface {
	Name() string
	Routes() chi.Router
	Migrations() []string
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.  A later call with
// the same name replaces the earlier one.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component ordered by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// InitAll calls Init on every registered Initializer and returns the first
// error.
func InitAll(deps Deps) error {
	for _, c := range All() {
		if in, ok := c.(Initializer); ok {
			if err := in.Init(deps); err != nil {
				return err
			}
		}
	}
	return nil
}
