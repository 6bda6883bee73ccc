package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cropify/cropify/store"
)

func (db *DB) CreateMessage(ctx context.Context, create *store.Message) (*store.Message, error) {
	createdTs := create.CreatedTs
	if createdTs == 0 {
		createdTs = time.Now().Unix()
	}
	query := `
		INSERT INTO message (conversation_id, role, content, created_ts)
		VALUES ($1, $2, $3, $4)
		RETURNING id, conversation_id, role, content, created_ts
	`
	var message store.Message
	var rawRole string
	err := db.db.QueryRowContext(ctx, query,
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
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	role, err := store.ParseRole(rawRole)
	if err != nil {
		return nil, err
	}
	message.Role = role
	return &message, nil
}

func (db *DB) ListMessages(ctx context.Context, find *store.FindMessage) ([]*store.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, created_ts
		FROM message
		WHERE 1=1
	`
	var args []interface{}
	argIndex := 1

	if find.ConversationID != nil {
		query += fmt.Sprintf(" AND conversation_id = $%d", argIndex)
		args = append(args, *find.ConversationID)
		argIndex++
	}
	if find.ID != nil {
		query += fmt.Sprintf(" AND id = $%d", argIndex)
		args = append(args, *find.ID)
	}

	query += " ORDER BY created_ts ASC, id ASC"

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
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
			return nil, fmt.Errorf("failed to scan message: %w", err)
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

func (db *DB) DeleteMessage(ctx context.Context, delete *store.DeleteMessage) error {
	if _, err := db.db.ExecContext(ctx, "DELETE FROM message WHERE id = $1", delete.ID); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
