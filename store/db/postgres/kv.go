package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

func (db *DB) GetKV(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := db.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = $1", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv %q: %w", key, err)
	}
	return []byte(value), nil
}

func (db *DB) SetKV(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv (key, value, updated_ts)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_ts = EXCLUDED.updated_ts
	`
	if _, err := db.db.ExecContext(ctx, query, key, string(value), time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to set kv %q: %w", key, err)
	}
	return nil
}

func (db *DB) DeleteKV(ctx context.Context, key string) error {
	if _, err := db.db.ExecContext(ctx, "DELETE FROM kv WHERE key = $1", key); err != nil {
		return fmt.Errorf("failed to delete kv %q: %w", key, err)
	}
	return nil
}
