package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cropify/cropify/store"
)

func (d *DB) CreateTransaction(ctx context.Context, create *store.Transaction) (*store.Transaction, error) {
	stmt := `
		INSERT INTO txn (kind, category, amount, note, occurred_ts, created_ts)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, kind, category, amount, note, occurred_ts, created_ts
	`
	txn := store.Transaction{}
	if err := d.db.QueryRowContext(ctx, stmt,
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
	); err != nil {
		return nil, errors.Wrap(err, "failed to create transaction")
	}
	return &txn, nil
}

func transactionFilter(find *store.FindTransaction) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.Kind != nil {
		where, args = append(where, "kind = ?"), append(args, *find.Kind)
	}
	if find.Category != nil {
		where, args = append(where, "category = ?"), append(args, *find.Category)
	}
	if find.OccurredGe != nil {
		where, args = append(where, "occurred_ts >= ?"), append(args, *find.OccurredGe)
	}
	if find.OccurredLt != nil {
		where, args = append(where, "occurred_ts < ?"), append(args, *find.OccurredLt)
	}
	return where, args
}

func (d *DB) ListTransactions(ctx context.Context, find *store.FindTransaction) ([]*store.Transaction, error) {
	where, args := transactionFilter(find)

	query := `
		SELECT id, kind, category, amount, note, occurred_ts, created_ts
		FROM txn
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY occurred_ts DESC, id DESC
	`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
		if find.Offset != nil {
			query += " OFFSET ?"
			args = append(args, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list transactions")
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
			return nil, errors.Wrap(err, "failed to scan transaction")
		}
		list = append(list, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) DeleteTransaction(ctx context.Context, delete *store.DeleteTransaction) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM txn WHERE id = ?", delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete transaction")
	}
	return nil
}

func (d *DB) SummarizeTransactions(ctx context.Context, find *store.FindTransaction) (*store.TransactionSummary, error) {
	where, args := transactionFilter(find)

	query := `
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'income' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount ELSE 0 END), 0)
		FROM txn
		WHERE ` + strings.Join(where, " AND ")

	summary := store.TransactionSummary{}
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&summary.Income, &summary.Expense); err != nil {
		return nil, errors.Wrap(err, "failed to summarize transactions")
	}
	return &summary, nil
}
