package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cropify/cropify/store"
)

func (db *DB) CreateConversation(ctx context.Context, create *store.Conversation) (*store.Conversation, error) {
	now := time.Now().Unix()
	query := `
		INSERT INTO conversation (uid, title, title_source, row_status, created_ts, updated_ts)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, uid, title, title_source, row_status, created_ts, updated_ts
	`
	var conversation store.Conversation
	err := db.db.QueryRowContext(ctx, query,
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
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &conversation, nil
}

func (db *DB) ListConversations(ctx context.Context, find *store.FindConversation) ([]*store.Conversation, error) {
	query := `
		SELECT c.id, c.uid, c.title, c.title_source, c.row_status, c.created_ts, c.updated_ts,
			COUNT(m.id) AS message_count
		FROM conversation c
		LEFT JOIN message m ON m.conversation_id = c.id
		WHERE 1=1
	`
	var args []interface{}
	argIndex := 1

	if find.ID != nil {
		query += fmt.Sprintf(" AND c.id = $%d", argIndex)
		args = append(args, *find.ID)
		argIndex++
	}
	if find.UID != nil {
		query += fmt.Sprintf(" AND c.uid = $%d", argIndex)
		args = append(args, *find.UID)
		argIndex++
	}
	if find.RowStatus != nil {
		query += fmt.Sprintf(" AND c.row_status = $%d", argIndex)
		args = append(args, *find.RowStatus)
	}

	query += " GROUP BY c.id ORDER BY c.created_ts DESC, c.id DESC"

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
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
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		list = append(list, &conversation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (db *DB) UpdateConversation(ctx context.Context, update *store.UpdateConversation) (*store.Conversation, error) {
	set := "updated_ts = $1"
	updatedTs := time.Now().Unix()
	if update.UpdatedTs != nil {
		updatedTs = *update.UpdatedTs
	}
	args := []interface{}{updatedTs}
	argIndex := 2

	if update.Title != nil {
		set += fmt.Sprintf(", title = $%d", argIndex)
		args = append(args, *update.Title)
		argIndex++
	}
	if update.TitleSource != nil {
		set += fmt.Sprintf(", title_source = $%d", argIndex)
		args = append(args, *update.TitleSource)
		argIndex++
	}
	if update.RowStatus != nil {
		set += fmt.Sprintf(", row_status = $%d", argIndex)
		args = append(args, *update.RowStatus)
		argIndex++
	}
	args = append(args, update.ID)

	query := fmt.Sprintf(`
		UPDATE conversation SET %s
		WHERE id = $%d
		RETURNING id, uid, title, title_source, row_status, created_ts, updated_ts
	`, set, argIndex)

	var conversation store.Conversation
	err := db.db.QueryRowContext(ctx, query, args...).Scan(
		&conversation.ID,
		&conversation.UID,
		&conversation.Title,
		&conversation.TitleSource,
		&conversation.RowStatus,
		&conversation.CreatedTs,
		&conversation.UpdatedTs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}
	return &conversation, nil
}

func (db *DB) DeleteConversation(ctx context.Context, delete *store.DeleteConversation) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM message WHERE conversation_id = $1", delete.ID); err != nil {
		return fmt.Errorf("failed to delete conversation messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM conversation WHERE id = $1", delete.ID); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return tx.Commit()
}
