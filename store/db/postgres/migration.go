package postgres

import (
	"context"
	"fmt"

	"github.com/cropify/cropify/internal/version"
)

const schemaVersionKey = "schema/version"

const latestSchema = `
CREATE TABLE IF NOT EXISTS conversation (
	id SERIAL PRIMARY KEY,
	uid TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL DEFAULT '',
	title_source TEXT NOT NULL DEFAULT 'default',
	row_status TEXT NOT NULL DEFAULT 'NORMAL',
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS message (
	id BIGSERIAL PRIMARY KEY,
	conversation_id INTEGER NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_message_conversation ON message (conversation_id, created_ts, id);

CREATE TABLE IF NOT EXISTS pending_request (
	slot TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	created_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS farm (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	soil_type TEXT NOT NULL DEFAULT '',
	ph DOUBLE PRECISION NOT NULL DEFAULT 7.0,
	moisture DOUBLE PRECISION NOT NULL DEFAULT 0,
	nitrogen DOUBLE PRECISION NOT NULL DEFAULT 0,
	phosphorus DOUBLE PRECISION NOT NULL DEFAULT 0,
	potassium DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS txn (
	id BIGSERIAL PRIMARY KEY,
	kind TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	amount BIGINT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	occurred_ts BIGINT NOT NULL,
	created_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_txn_occurred ON txn (occurred_ts);

CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_ts BIGINT NOT NULL
);
`

// Migrate brings the schema up to the current binary's version.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.db.ExecContext(ctx, latestSchema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	current := version.GetCurrentVersion(db.profile.Mode)
	stored, err := db.GetKV(ctx, schemaVersionKey)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if stored != nil && version.IsVersionGreaterOrEqualThan(string(stored), current) {
		return nil
	}
	if err := db.SetKV(ctx, schemaVersionKey, []byte(current)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}
