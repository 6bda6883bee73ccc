package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cropify/cropify/store"
)

func (db *DB) CreateTransaction(ctx context.Context, create *store.Transaction) (*store.Transaction, error) {
	query := `
		INSERT INTO txn (kind, category, amount, note, occurred_ts, created_ts)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, kind, category, amount, note, occurred_ts, created_ts
	`
	var txn store.Transaction
	err := db.db.QueryRowContext(ctx, query,
		create.Kind,
		create.Category,
		create.Amount,
		create.Note,
		create.OccurredTs,
		time.Now().Unix(),
	).Scan(
		&txn.ID,
		&txn.Kind,
		&txn.Category,
		&txn.Amount,
		&txn.Note,
		&txn.OccurredTs,
		&txn.CreatedTs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return &txn, nil
}

func transactionFilter(find *store.FindTransaction, args *[]interface{}) string {
	query := ""
	argIndex := len(*args) + 1
	appendCond := func(cond string, value interface{}) {
		query += fmt.Sprintf(" AND %s $%d", cond, argIndex)
		*args = append(*args, value)
		argIndex++
	}
	if find.ID != nil {
		appendCond("id =", *find.ID)
	}
	if find.Kind != nil {
		appendCond("kind =", *find.Kind)
	}
	if find.Category != nil {
		appendCond("category =", *find.Category)
	}
	if find.OccurredGe != nil {
		appendCond("occurred_ts >=", *find.OccurredGe)
	}
	if find.OccurredLt != nil {
		appendCond("occurred_ts <", *find.OccurredLt)
	}
	return query
}

func (db *DB) ListTransactions(ctx context.Context, find *store.FindTransaction) ([]*store.Transaction, error) {
	var args []interface{}
	query := `
		SELECT id, kind, category, amount, note, occurred_ts, created_ts
		FROM txn
		WHERE 1=1
	` + transactionFilter(find, &args)
	query += " ORDER BY occurred_ts DESC, id DESC"

	argIndex := len(args) + 1
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, *find.Limit)
		argIndex++
		if find.Offset != nil {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, *find.Offset)
		}
	}

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	list := []*store.Transaction{}
	for rows.Next() {
		var txn store.Transaction
		if err := rows.Scan(
			&txn.ID,
			&txn.Kind,
			&txn.Category,
			&txn.Amount,
			&txn.Note,
			&txn.OccurredTs,
			&txn.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		list = append(list, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (db *DB) DeleteTransaction(ctx context.Context, delete *store.DeleteTransaction) error {
	if _, err := db.db.ExecContext(ctx, "DELETE FROM txn WHERE id = $1", delete.ID); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

func (db *DB) SummarizeTransactions(ctx context.Context, find *store.FindTransaction) (*store.TransactionSummary, error) {
	var args []interface{}
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'income' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount ELSE 0 END), 0)
		FROM txn
		WHERE 1=1
	` + transactionFilter(find, &args)

	var summary store.TransactionSummary
	if err := db.db.QueryRowContext(ctx, query, args...).Scan(&summary.Income, &summary.Expense); err != nil {
		return nil, fmt.Errorf("failed to summarize transactions: %w", err)
	}
	return &summary, nil
}
