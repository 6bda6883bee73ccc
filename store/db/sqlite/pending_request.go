package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/cropify/cropify/store"
)

func (d *DB) UpsertPendingRequest(ctx context.Context, upsert *store.PendingRequest) (*store.PendingRequest, error) {
	// Single-slot policy: a second enqueue for the same slot overwrites the
	// first, so at most one pending request exists per slot.
	stmt := `
		INSERT INTO pending_request (slot, payload, created_ts)
		VALUES (?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
			payload = excluded.payload,
			created_ts = excluded.created_ts
		RETURNING slot, payload, created_ts
	`
	pending := store.PendingRequest{}
	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.Slot,
		string(upsert.Payload),
		time.Now().Unix(),
	).Scan(
		&pending.Slot,
		&pending.Payload,
		&pending.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to upsert pending request")
	}
	return &pending, nil
}

func (d *DB) GetPendingRequest(ctx context.Context, slot string) (*store.PendingRequest, error) {
	pending := store.PendingRequest{}
	err := d.db.QueryRowContext(ctx,
		"SELECT slot, payload, created_ts FROM pending_request WHERE slot = ?",
		slot,
	).Scan(&pending.Slot, &pending.Payload, &pending.CreatedTs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pending request")
	}
	return &pending, nil
}

func (d *DB) DeletePendingRequest(ctx context.Context, slot string) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM pending_request WHERE slot = ?", slot); err != nil {
		return errors.Wrap(err, "failed to delete pending request")
	}
	return nil
}
