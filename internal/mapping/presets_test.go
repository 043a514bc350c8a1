package mapping

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	preset := Resolve(map[string]string{"vendor": "Vendor", "amount": "Amount"})

	require.NoError(t, store.Save("default", preset))

	loaded, ok, err := store.Load("default")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, preset, loaded)

	// Mutating the loaded copy must not touch the stored preset.
	loaded[FieldSupplier] = "Tampered"
	again, _, err := store.Load("default")
	require.NoError(t, err)
	assert.Equal(t, "Vendor", again.Column(FieldSupplier))

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, names)

	require.NoError(t, store.Delete("default"))
	_, ok, err = store.Load("default")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreRejectsEmptyName(t *testing.T) {
	store := NewMemoryStore()
	assert.Error(t, store.Save("", FieldMapping{}))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	store := NewFileStore(path)

	preset := Resolve(map[string]string{
		"vendor":   "Vendor Name",
		"amount":   "Amount",
		"category": "Cat",
	})
	require.NoError(t, store.Save("acme-export", preset))

	// A fresh store instance reads the same file.
	reloaded := NewFileStore(path)
	loaded, ok, err := reloaded.Load("acme-export")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, preset, loaded)

	names, err := reloaded.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"acme-export"}, names)

	require.NoError(t, reloaded.Delete("acme-export"))
	_, ok, err = reloaded.Load("acme-export")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.yaml"))

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	_, ok, err := store.Load("anything")
	require.NoError(t, err)
	assert.False(t, ok)
}
