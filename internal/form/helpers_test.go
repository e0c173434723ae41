package form_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanizio/formguard/components/forms/defs"
	"github.com/yanizio/formguard/internal/form"
)

// sampleRegistry loads the shipped definitions.
func sampleRegistry(t *testing.T) *form.Registry {
	t.Helper()
	reg := form.NewRegistry()
	n, err := reg.LoadFS(defs.FS, ".")
	require.NoError(t, err)
	require.Equal(t, 5, n)
	return reg
}

func sample(t *testing.T, id string) *form.FormDef {
	t.Helper()
	fd, err := sampleRegistry(t).Lookup(id)
	require.NoError(t, err)
	return fd
}
