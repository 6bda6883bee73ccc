// Package kv implements the snapshot key-value store used for per-subsystem
// state ("disease-detector", "farm-suggestions", ...). Each logical store maps
// one string key to a JSON snapshot of that subsystem's state.
//
// The contract is deliberately forgiving: a malformed snapshot loads as absent
// and a failed save is logged and swallowed. Durability degrades, the
// application keeps working. A crash between mutation and save can lose the
// most recent update; that is a documented limitation, not a bug.
package kv

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Store is durable load/save/clear of raw snapshots keyed by a namespace
// string. Implementations: Memory, Redis, and the database-backed store in
// the parent package. Get returns (nil, nil) when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Load unmarshals the snapshot under key into T. Absent keys, backend errors
// and malformed payloads all yield (nil, false); the latter two are logged.
func Load[T any](ctx context.Context, s Store, key string) (*T, bool) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		slog.Warn("kv: load failed, treating as absent", "key", key, "error", err)
		return nil, false
	}
	if raw == nil {
		return nil, false
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		slog.Warn("kv: malformed snapshot, treating as absent", "key", key, "error", err)
		return nil, false
	}
	return &value, true
}

// Save marshals value and stores it under key. Best effort: failures are
// logged and otherwise ignored so a persistence problem never blocks the
// in-memory flow.
func Save[T any](ctx context.Context, s Store, key string, value *T) {
	raw, err := json.Marshal(value)
	if err != nil {
		slog.Warn("kv: snapshot marshal failed, skipping save", "key", key, "error", err)
		return
	}
	if err := s.Set(ctx, key, raw); err != nil {
		slog.Warn("kv: snapshot save failed", "key", key, "error", err)
	}
}

// Clear removes the snapshot under key, logging failures.
func Clear(ctx context.Context, s Store, key string) {
	if err := s.Delete(ctx, key); err != nil {
		slog.Warn("kv: snapshot clear failed", "key", key, "error", err)
	}
}
