package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

func (d *DB) GetKV(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get kv %q", key)
	}
	return []byte(value), nil
}

func (d *DB) SetKV(ctx context.Context, key string, value []byte) error {
	stmt := `
		INSERT INTO kv (key, value, updated_ts)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_ts = excluded.updated_ts
	`
	if _, err := d.db.ExecContext(ctx, stmt, key, string(value), time.Now().Unix()); err != nil {
		return errors.Wrapf(err, "failed to set kv %q", key)
	}
	return nil
}

func (d *DB) DeleteKV(ctx context.Context, key string) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return errors.Wrapf(err, "failed to delete kv %q", key)
	}
	return nil
}
