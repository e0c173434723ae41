package form_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yanizio/formguard/internal/event"
	"github.com/yanizio/formguard/internal/form"
)

func TestSnapshot_NormalizesByKind(t *testing.T) {
	fd := sample(t, "survey")
	src := event.MapSource{
		"name":  "  Sam ",
		"age":   " 21 ",
		"email": "a@b.com",
		"terms": "on",
	}

	v := form.Snapshot(fd, src)

	assert.Equal(t, "Sam", v["name"])
	assert.Equal(t, "21", v["age"])
	assert.Equal(t, true, v["terms"])
}

func TestSnapshot_PasswordKeptRaw(t *testing.T) {
	fd := sample(t, "signup")
	v := form.Snapshot(fd, event.MapSource{"password": " Pass word1 "})
	assert.Equal(t, " Pass word1 ", v["password"])
	assert.Equal(t, "", v["confirm"])
}

func TestSnapshot_Checkbox(t *testing.T) {
	fd := sample(t, "survey")
	for raw, want := range map[string]bool{"on": true, "true": true, "1": true, "off": false, "false": false, "": false} {
		v := form.Snapshot(fd, event.MapSource{"terms": raw})
		assert.Equal(t, want, v["terms"], "raw %q", raw)
	}
	assert.Equal(t, false, form.Snapshot(fd, event.MapSource{})["terms"])
}

func TestSnapshot_NilSource(t *testing.T) {
	fd := sample(t, "login")
	v := form.Snapshot(fd, nil)
	assert.Equal(t, form.Values{"username": "", "password": ""}, v)
}

func TestValues_Number(t *testing.T) {
	v := form.Values{
		"s": "18.5", "neg": " -4 ", "i": 3, "f": 2.5,
		"bad": "18abc", "inf": "Inf", "b": true,
		"hex": "0x1p5", "under": "1_8", "exp": "1e2", "dot": ".5", "trail": "5.",
	}

	n, ok := v.Number("s")
	assert.True(t, ok)
	assert.Equal(t, 18.5, n)

	n, ok = v.Number("i")
	assert.True(t, ok)
	assert.Equal(t, 3.0, n)

	n, ok = v.Number("neg")
	assert.True(t, ok)
	assert.Equal(t, -4.0, n)

	_, ok = v.Number("f")
	assert.True(t, ok)

	for _, name := range []string{"bad", "inf", "b", "missing", "hex", "under", "exp", "dot", "trail"} {
		_, ok = v.Number(name)
		assert.False(t, ok, name)
	}
}

func TestValues_Text(t *testing.T) {
	v := form.Values{"s": "x", "t": true, "f": false, "n": 7}
	assert.Equal(t, "x", v.Text("s"))
	assert.Equal(t, "true", v.Text("t"))
	assert.Equal(t, "", v.Text("f"))
	assert.Equal(t, "7", v.Text("n"))
	assert.Equal(t, "", v.Text("missing"))
}
