package component

import (
	"errors"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type stub struct {
	name    string
	initErr error
	inited  *Deps
}

func (s *stub) Name() string         { return s.name }
func (s *stub) Routes() chi.Router   { return chi.NewRouter() }
func (s *stub) Migrations() []string { return nil }
func (s *stub) Init(d Deps) error    { s.inited = &d; return s.initErr }

func reset(t *testing.T) {
	mu.Lock()
	saved := registry
	registry = map[string]Component{}
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		registry = saved
		mu.Unlock()
	})
}

func TestAll_SortedByName(t *testing.T) {
	reset(t)
	Register(&stub{name: "zeta"})
	Register(&stub{name: "alpha"})
	Register(&stub{name: "alpha"})

	all := All()
	assert.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Name())
	assert.Equal(t, "zeta", all[1].Name())
}

func TestInitAll(t *testing.T) {
	reset(t)
	a := &stub{name: "a"}
	b := &stub{name: "b", initErr: errors.New("nope")}
	Register(a)
	Register(b)

	err := InitAll(Deps{})
	assert.EqualError(t, err, "nope")
	assert.NotNil(t, a.inited)
	assert.NotNil(t, b.inited)
}
