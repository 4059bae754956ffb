package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string    `msgpack:"name"`
	Values []float64 `msgpack:"values"`
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.msgpack")
	in := sample{Name: "a", Values: []float64{0.1, 0.2}}

	require.NoError(t, Save(path, in))
	assert.True(t, Exists(path))

	var out sample
	require.NoError(t, Load(path, &out))
	assert.Equal(t, in, out)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestLoad_Missing(t *testing.T) {
	var out sample
	err := Load(filepath.Join(t.TempDir(), "nope"), &out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(a, []byte("one"), 0o644))

	k1, err := Fingerprint([]string{a}, 56, "fail")
	require.NoError(t, err)
	k2, err := Fingerprint([]string{a}, 56, "fail")
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	k3, err := Fingerprint([]string{a}, 57, "fail")
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)

	require.NoError(t, os.WriteFile(a, []byte("two"), 0o644))
	k4, err := Fingerprint([]string{a}, 56, "fail")
	require.NoError(t, err)
	assert.NotEqual(t, k1, k4)

	_, err = Fingerprint([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestFileRegistry(t *testing.T) {
	ctx := context.Background()
	reg := NewFileRegistry(t.TempDir())

	_, ok, err := reg.Lookup(ctx, "load")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, reg.Record(ctx, "load", "abc"))
	key, ok, err := reg.Lookup(ctx, "load")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", key)
}

type memStore struct {
	values map[string]string
	err    error
}

func (m *memStore) GetString(_ context.Context, key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) SetString(_ context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func TestSharedRegistry_NamespacesByWorkDir(t *testing.T) {
	ctx := context.Background()
	store := &memStore{values: map[string]string{}}

	a := NewSharedRegistry(store, "/data/a")
	b := NewSharedRegistry(store, "/data/b")
	require.NoError(t, a.Record(ctx, "align", "k1"))

	key, ok, err := a.Lookup(ctx, "align")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "k1", key)

	_, ok, err = b.Lookup(ctx, "align")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Fresh(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	artifact := filepath.Join(dir, CorpusFile)
	reg := NewFileRegistry(dir)
	cache := NewCache(reg)

	assert.False(t, cache.Fresh(ctx, "load", "k", artifact), "no artifact yet")

	require.NoError(t, Save(artifact, sample{Name: "x"}))
	assert.False(t, cache.Fresh(ctx, "load", "k", artifact), "no key recorded")

	require.NoError(t, cache.Commit(ctx, "load", "k"))
	assert.True(t, cache.Fresh(ctx, "load", "k", artifact))
	assert.False(t, cache.Fresh(ctx, "load", "other", artifact), "key changed")

	forced := NewCache(reg, WithForce(true))
	assert.False(t, forced.Fresh(ctx, "load", "k", artifact))
}

func TestCache_RegistryErrorMeansRebuild(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	artifact := filepath.Join(dir, CorpusFile)
	require.NoError(t, Save(artifact, sample{}))

	store := &memStore{values: map[string]string{}, err: errors.New("connection refused")}
	cache := NewCache(NewSharedRegistry(store, dir))

	assert.False(t, cache.Fresh(ctx, "load", "k", artifact))
}
