package state

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOsFullReader(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "a.hcl"), []byte("node {}"), 0644))
	r := NewOsFullReader()
	require.NoError(t, r.SetBase(dir))

	assert.Equal(t, filepath.Join(dir, "a.hcl"), r.Normalize("sub/../a.hcl"))
	assert.Equal(t, "/etc/x.hcl", r.Normalize("/etc//x.hcl"))

	b, err := r.ReadAll(r.Normalize("a.hcl"))
	require.NoError(t, err)
	assert.Equal(t, "node {}", string(b))

	b, err = r.ReadAll(r.Normalize("missing.hcl"))
	assert.NoError(t, err)
	assert.Nil(t, b)

	_, err = r.ReadAll(dir)
	assert.Error(t, err)
}

func TestMockFullReader(t *testing.T) {
	t.Parallel()
	r := NewMockFullReader(map[string]string{"a": "x"})
	assert.Equal(t, "a", r.Normalize("./a"))
	b, err := r.ReadAll("a")
	require.NoError(t, err)
	assert.Equal(t, "x", string(b))
	b, err = r.ReadAll("b")
	assert.NoError(t, err)
	assert.Nil(t, b)
}
