package kv

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	raw, err := m.Get(ctx, "absent")
	require.NoError(t, err)
	require.Nil(t, raw)

	require.NoError(t, m.Set(ctx, "k", []byte("v")))
	raw, err = m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), raw)

	// The store hands out copies, not aliases.
	raw[0] = 'x'
	raw, err = m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), raw)

	require.NoError(t, m.Delete(ctx, "k"))
	raw, err = m.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, raw)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok := Load[snapshot](ctx, m, "missing")
	require.False(t, ok)

	Save(ctx, m, "s", &snapshot{Name: "wheat", Count: 3})
	loaded, ok := Load[snapshot](ctx, m, "s")
	require.True(t, ok)
	require.Equal(t, "wheat", loaded.Name)
	require.Equal(t, 3, loaded.Count)

	Clear(ctx, m, "s")
	_, ok = Load[snapshot](ctx, m, "s")
	require.False(t, ok)
}

func TestLoadTreatsMalformedAsAbsent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "s", []byte("{not json")))

	loaded, ok := Load[snapshot](ctx, m, "s")
	require.False(t, ok)
	require.Nil(t, loaded)
}

// failingStore errors on every operation.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("backend down")
}
func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("backend down")
}
func (failingStore) Delete(context.Context, string) error {
	return errors.New("backend down")
}

func TestBackendFailuresAreSwallowed(t *testing.T) {
	// Persistence problems degrade durability, never the caller.
	ctx := context.Background()
	s := failingStore{}

	loaded, ok := Load[snapshot](ctx, s, "s")
	require.False(t, ok)
	require.Nil(t, loaded)

	Save(ctx, s, "s", &snapshot{Name: "rice"}) // must not panic
	Clear(ctx, s, "s")                         // must not panic
}
