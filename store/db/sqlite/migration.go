package sqlite

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cropify/cropify/internal/version"
)

const schemaVersionKey = "schema/version"

// latestSchema is idempotent: every statement tolerates re-execution, so a
// partial migration can simply be re-run.
const latestSchema = `
CREATE TABLE IF NOT EXISTS conversation (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL DEFAULT '',
	title_source TEXT NOT NULL DEFAULT 'default',
	row_status TEXT NOT NULL DEFAULT 'NORMAL',
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS message (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
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
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	soil_type TEXT NOT NULL DEFAULT '',
	ph REAL NOT NULL DEFAULT 7.0,
	moisture REAL NOT NULL DEFAULT 0,
	nitrogen REAL NOT NULL DEFAULT 0,
	phosphorus REAL NOT NULL DEFAULT 0,
	potassium REAL NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS txn (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
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
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, latestSchema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}

	current := version.GetCurrentVersion(d.profile.Mode)
	stored, err := d.GetKV(ctx, schemaVersionKey)
	if err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}
	if stored != nil && version.IsVersionGreaterOrEqualThan(string(stored), current) {
		return nil
	}
	if err := d.SetKV(ctx, schemaVersionKey, []byte(current)); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}
	return nil
}
