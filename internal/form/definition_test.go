package form_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/formguard/internal/form"
)

func TestRegistry_LoadsSamples(t *testing.T) {
	reg := sampleRegistry(t)

	ids := make([]string, 0, reg.Len())
	for _, fd := range reg.All() {
		ids = append(ids, fd.ID)
	}
	assert.Equal(t, []string{"checkout", "contact", "login", "signup", "survey"}, ids)

	_, err := reg.Lookup("missing")
	assert.True(t, errors.Is(err, form.ErrUnknownForm))
}

func TestRegistry_LaterDefinitionOverrides(t *testing.T) {
	reg := sampleRegistry(t)
	fsys := fstest.MapFS{
		"login.yaml": {Data: []byte(`
id: login
fields:
  - name: username
    kind: text
    rules:
      - type: required
        message: Who are you?
`)},
	}
	n, err := reg.LoadFS(fsys, ".")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 5, reg.Len())

	fd, _ := reg.Get("login")
	res := form.Evaluate(fd.CompiledRules(), form.Values{})
	assert.Equal(t, "Who are you?", res.Message)
}

func TestRegistry_LoadDirMissingIsEmpty(t *testing.T) {
	n, err := form.NewRegistry().LoadDir(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRegistry_LoadDirIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# forms"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "poll.yml"), []byte(`
id: poll
fields:
  - name: choice
    kind: text
    rules:
      - type: oneof
        options: [red, blue]
`), 0o644))

	reg := form.NewRegistry()
	n, err := reg.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	fd, _ := reg.Get("poll")
	assert.True(t, form.Evaluate(fd.CompiledRules(), form.Values{"choice": "red"}).OK())
	assert.False(t, form.Evaluate(fd.CompiledRules(), form.Values{"choice": "green"}).OK())
}

func TestParseFormDef_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "id: x\nfields: [{name: a, kind: text}]\ncolour: red\n", "colour"},
		{"missing id", "fields: [{name: a, kind: text}]\n", "ID"},
		{"id not a slug", "id: Log In\nfields: [{name: a, kind: text}]\n", "slug"},
		{"bad kind", "id: x\nfields: [{name: a, kind: radio}]\n", "Kind"},
		{"duplicate field", "id: x\nfields: [{name: a, kind: text}, {name: a, kind: text}]\n", "duplicate field"},
		{"unknown reference", "id: x\nfields: [{name: a, kind: text}]\nrules: [{type: required, fields: [b]}]\n", "unknown field 'b'"},
		{"bad regex", "id: x\nfields: [{name: a, kind: text, rules: [{type: pattern, pattern: '('}]}]\n", "invalid regex"},
		{"min without value", "id: x\nfields: [{name: a, kind: number, rules: [{type: min}]}]\n", "needs 'value'"},
		{"equals without other", "id: x\nfields: [{name: a, kind: text, rules: [{type: equals}]}]\n", "needs 'other'"},
		{"checked on text", "id: x\nfields: [{name: a, kind: text, rules: [{type: checked}]}]\n", "non-checkbox"},
		{"unknown action", "id: x\nfields: [{name: a, kind: text}]\nactions: [{type: email}]\n", "unrecognized action"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := form.ParseFormDef([]byte(tt.yaml), "test.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFormDef_Public(t *testing.T) {
	fd := sample(t, "signup")
	pub := fd.Public(form.Values{"username": "sam", "password": "Secret1xx", "confirm": "Secret1xx"})
	assert.Equal(t, map[string]any{"username": "sam"}, pub)
}

func TestFormDef_RequiredField(t *testing.T) {
	login := sample(t, "login")
	assert.True(t, login.RequiredField("username"))
	assert.True(t, login.RequiredField("password"))

	survey := sample(t, "survey")
	assert.True(t, survey.RequiredField("name"))
	assert.True(t, survey.RequiredField("terms"))
	assert.False(t, survey.RequiredField("email"))
}

func TestRule_Constructors(t *testing.T) {
	v := form.Values{"s": "héllo", "n": "5", "a": "x", "b": "x", "c": "y"}

	assert.True(t, form.MinLength("s", 5, "").Holds(v))
	assert.False(t, form.MinLength("s", 6, "").Holds(v))
	assert.True(t, form.MaxLength("s", 5, "").Holds(v))
	assert.True(t, form.Max("n", 5, "").Holds(v))
	assert.False(t, form.Max("n", 4, "").Holds(v))
	assert.False(t, form.Min("missing", 0, "").Holds(v))
	assert.True(t, form.Equals("a", "b", "").Holds(v))
	assert.False(t, form.Equals("a", "c", "").Holds(v))
	assert.False(t, form.Checked("a", "").Holds(v))
	assert.True(t, form.OneOf("c", []string{"x", "y"}, "").Holds(v))
}
