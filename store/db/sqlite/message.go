package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cropify/cropify/store"
)

func (d *DB) CreateMessage(ctx context.Context, create *store.Message) (*store.Message, error) {
	createdTs := create.CreatedTs
	if createdTs == 0 {
		createdTs = time.Now().Unix()
	}
	stmt := `
		INSERT INTO message (conversation_id, role, content, created_ts)
		VALUES (?, ?, ?, ?)
		RETURNING id, conversation_id, role, content, created_ts
	`
	message := store.Message{}
	var rawRole string
	if err := d.db.QueryRowContext(ctx, stmt,
		create.ConversationID,
		create.Role,
		create.Content,
		createdTs,
	).Scan(
		&message.ID,
		&message.ConversationID,
		&rawRole,
		&message.Content,
		&message.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create message")
	}
	role, err := store.ParseRole(rawRole)
	if err != nil {
		return nil, err
	}
	message.Role = role
	return &message, nil
}

func (d *DB) ListMessages(ctx context.Context, find *store.FindMessage) ([]*store.Message, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ConversationID != nil {
		where, args = append(where, "conversation_id = ?"), append(args, *find.ConversationID)
	}
	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}

	query := `
		SELECT id, conversation_id, role, content, created_ts
		FROM message
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts ASC, id ASC
	`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages")
	}
	defer rows.Close()

	list := []*store.Message{}
	for rows.Next() {
		var message store.Message
		var rawRole string
		if err := rows.Scan(
			&message.ID,
			&message.ConversationID,
			&rawRole,
			&message.Content,
			&message.CreatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan message")
		}
		role, err := store.ParseRole(rawRole)
		if err != nil {
			return nil, err
		}
		message.Role = role
		list = append(list, &message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) DeleteMessage(ctx context.Context, delete *store.DeleteMessage) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM message WHERE id = ?", delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete message")
	}
	return nil
}
