package mappings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	for _, name := range Tables {
		keys, err := c.Keys(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, keys, name)
		assert.IsIncreasing(t, keys, name)
	}

	label, ok := c.Label("civst", "G")
	assert.True(t, ok)
	assert.Equal(t, "Gift", label)

	_, ok = c.Label("civst", "X")
	assert.False(t, ok)

	_, err = c.Keys("nope")
	assert.True(t, errors.Is(err, ErrUnknownTable))
}

func TestLoad_Override(t *testing.T) {
	t.Run("replaces one table", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "reg.json"), []byte(`{"99":"Testregion"}`), 0o644))

		c, err := Load(dir)
		require.NoError(t, err)

		keys, err := c.Keys("reg")
		require.NoError(t, err)
		assert.Equal(t, []string{"99"}, keys)

		civst, err := c.Keys("civst")
		require.NoError(t, err)
		assert.Contains(t, civst, "U")
	})

	t.Run("invalid table", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "scd.json"), []byte(`[1,2]`), 0o644))

		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scd")
	})

	t.Run("empty table", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "jobkat.json"), []byte(`{}`), 0o644))

		_, err := Load(dir)
		assert.Error(t, err)
	})
}
