package storage_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adjelloud/stockbook/internal/storage"
)

func TestMemory(t *testing.T) {
	kv := storage.NewMemory()

	_, ok, err := kv.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set("k", []byte("v1")))

	v, ok, err := kv.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), v)

	require.NoError(t, kv.Delete("k"))

	_, ok, err = kv.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	kv, err := storage.OpenBolt(path)
	require.NoError(t, err)

	require.NoError(t, kv.Set("k", []byte("v")))
	require.NoError(t, kv.Close())

	reopened, err := storage.OpenBolt(path)
	require.NoError(t, err)

	defer reopened.Close()

	v, ok, err := reopened.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, reopened.Delete("k"))

	_, ok, err = reopened.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

// failingKV rejects all writes, simulating a full disk.
type failingKV struct {
	*storage.Memory
}

func (f failingKV) Set(string, []byte) error { return errors.New("disk full") }
func (f failingKV) Delete(string) error      { return errors.New("disk full") }

func TestResilient_DegradesToMemory(t *testing.T) {
	inner := storage.NewMemory()
	require.NoError(t, inner.Set("old", []byte("durable")))

	r := storage.NewResilient(failingKV{inner}, nil)

	// Failed writes are absorbed, not surfaced.
	require.NoError(t, r.Set("k", []byte("v")))

	v, ok, err := r.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	// Failed deletes hide the key for the rest of the session.
	require.NoError(t, r.Delete("old"))

	_, ok, err = r.Get("old")
	require.NoError(t, err)
	assert.False(t, ok)

	// The durable layer never saw any of it.
	_, ok, err = inner.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResilient_PassThroughOnSuccess(t *testing.T) {
	inner := storage.NewMemory()
	r := storage.NewResilient(inner, nil)

	require.NoError(t, r.Set("k", []byte("v")))

	v, ok, err := inner.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}
