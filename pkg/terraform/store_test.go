package terraform

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(afero.NewMemMapFs(), "configs")
}

func TestStoreWriteRead(t *testing.T) {
	store := newTestStore()

	cfg := &VMConfig{Name: "web01", NumCPUs: 2, MemoryMB: 4096, DiskSizeGB: 40}
	path, err := store.Write(cfg)
	require.NoError(t, err)
	assert.Equal(t, "configs/web01.tfvars.json", path)

	got, err := store.Read("web01")
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestStoreReadMissing(t *testing.T) {
	store := newTestStore()

	_, err := store.Read("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreList(t *testing.T) {
	store := newTestStore()

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, name := range []string{"web02", "web01", "db01"} {
		_, err := store.Write(&VMConfig{Name: name})
		require.NoError(t, err)
	}

	names, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"db01", "web01", "web02"}, names)
}

func TestStoreCopy(t *testing.T) {
	store := newTestStore()

	orig := &VMConfig{Name: "web01", NumCPUs: 8, MemoryMB: 16384, NetworkID: "network-5"}
	_, err := store.Write(orig)
	require.NoError(t, err)

	require.NoError(t, store.Copy("web01", "web02"))

	copied, err := store.Read("web02")
	require.NoError(t, err)
	assert.Equal(t, "web02", copied.Name)
	assert.Equal(t, orig.NumCPUs, copied.NumCPUs)
	assert.Equal(t, orig.NetworkID, copied.NetworkID)

	// Source is untouched.
	src, err := store.Read("web01")
	require.NoError(t, err)
	assert.Equal(t, "web01", src.Name)
}

func TestStoreCopyMissingSource(t *testing.T) {
	store := newTestStore()
	assert.ErrorIs(t, store.Copy("nope", "web02"), ErrNotFound)
}
