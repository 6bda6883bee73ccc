package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cropify/cropify/store"
)

func (db *DB) UpsertPendingRequest(ctx context.Context, upsert *store.PendingRequest) (*store.PendingRequest, error) {
	query := `
		INSERT INTO pending_request (slot, payload, created_ts)
		VALUES ($1, $2, $3)
		ON CONFLICT (slot) DO UPDATE SET
			payload = EXCLUDED.payload,
			created_ts = EXCLUDED.created_ts
		RETURNING slot, payload, created_ts
	`
	var pending store.PendingRequest
	err := db.db.QueryRowContext(ctx, query,
		upsert.Slot,
		string(upsert.Payload),
		time.Now().Unix(),
	).Scan(&pending.Slot, &pending.Payload, &pending.CreatedTs)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert pending request: %w", err)
	}
	return &pending, nil
}

func (db *DB) GetPendingRequest(ctx context.Context, slot string) (*store.PendingRequest, error) {
	var pending store.PendingRequest
	err := db.db.QueryRowContext(ctx,
		"SELECT slot, payload, created_ts FROM pending_request WHERE slot = $1",
		slot,
	).Scan(&pending.Slot, &pending.Payload, &pending.CreatedTs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending request: %w", err)
	}
	return &pending, nil
}

func (db *DB) DeletePendingRequest(ctx context.Context, slot string) error {
	if _, err := db.db.ExecContext(ctx, "DELETE FROM pending_request WHERE slot = $1", slot); err != nil {
		return fmt.Errorf("failed to delete pending request: %w", err)
	}
	return nil
}
