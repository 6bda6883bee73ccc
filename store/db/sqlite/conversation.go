package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cropify/cropify/store"
)

func (d *DB) CreateConversation(ctx context.Context, create *store.Conversation) (*store.Conversation, error) {
	now := time.Now().Unix()
	stmt := `
		INSERT INTO conversation (uid, title, title_source, row_status, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, uid, title, title_source, row_status, created_ts, updated_ts
	`
	conversation := store.Conversation{}
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.Title,
		create.TitleSource,
		store.Normal,
		now,
		now,
	).Scan(
		&conversation.ID,
		&conversation.UID,
		&conversation.Title,
		&conversation.TitleSource,
		&conversation.RowStatus,
		&conversation.CreatedTs,
		&conversation.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create conversation")
	}
	return &conversation, nil
}

func (d *DB) ListConversations(ctx context.Context, find *store.FindConversation) ([]*store.Conversation, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "c.id = ?"), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "c.uid = ?"), append(args, *find.UID)
	}
	if find.RowStatus != nil {
		where, args = append(where, "c.row_status = ?"), append(args, *find.RowStatus)
	}

	query := `
		SELECT c.id, c.uid, c.title, c.title_source, c.row_status, c.created_ts, c.updated_ts,
			COUNT(m.id) AS message_count
		FROM conversation c
		LEFT JOIN message m ON m.conversation_id = c.id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY c.id
		ORDER BY c.created_ts DESC, c.id DESC
	`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conversations")
	}
	defer rows.Close()

	list := []*store.Conversation{}
	for rows.Next() {
		var conversation store.Conversation
		if err := rows.Scan(
			&conversation.ID,
			&conversation.UID,
			&conversation.Title,
			&conversation.TitleSource,
			&conversation.RowStatus,
			&conversation.CreatedTs,
			&conversation.UpdatedTs,
			&conversation.MessageCount,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan conversation")
		}
		list = append(list, &conversation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpdateConversation(ctx context.Context, update *store.UpdateConversation) (*store.Conversation, error) {
	set, args := []string{}, []any{}
	if update.Title != nil {
		set, args = append(set, "title = ?"), append(args, *update.Title)
	}
	if update.TitleSource != nil {
		set, args = append(set, "title_source = ?"), append(args, *update.TitleSource)
	}
	if update.RowStatus != nil {
		set, args = append(set, "row_status = ?"), append(args, *update.RowStatus)
	}
	updatedTs := time.Now().Unix()
	if update.UpdatedTs != nil {
		updatedTs = *update.UpdatedTs
	}
	set, args = append(set, "updated_ts = ?"), append(args, updatedTs)
	args = append(args, update.ID)

	stmt := `
		UPDATE conversation SET ` + strings.Join(set, ", ") + `
		WHERE id = ?
		RETURNING id, uid, title, title_source, row_status, created_ts, updated_ts
	`
	conversation := store.Conversation{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&conversation.ID,
		&conversation.UID,
		&conversation.Title,
		&conversation.TitleSource,
		&conversation.RowStatus,
		&conversation.CreatedTs,
		&conversation.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to update conversation")
	}
	return &conversation, nil
}

func (d *DB) DeleteConversation(ctx context.Context, delete *store.DeleteConversation) error {
	// Messages are owned exclusively by their conversation; remove them in the
	// same transaction so no orphans survive.
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM message WHERE conversation_id = ?", delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete conversation messages")
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM conversation WHERE id = ?", delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete conversation")
	}
	return tx.Commit()
}
