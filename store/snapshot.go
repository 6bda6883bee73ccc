package store

import (
	"context"

	"github.com/cropify/cropify/store/kv"
)

// snapshotStore adapts the driver's kv table to the kv.Store contract.
type snapshotStore struct {
	driver Driver
}

func (s snapshotStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.driver.GetKV(ctx, key)
}

func (s snapshotStore) Set(ctx context.Context, key string, value []byte) error {
	return s.driver.SetKV(ctx, key, value)
}

func (s snapshotStore) Delete(ctx context.Context, key string) error {
	return s.driver.DeleteKV(ctx, key)
}

// Snapshots returns the database-backed snapshot store.
func (s *Store) Snapshots() kv.Store {
	return snapshotStore{driver: s.driver}
}
