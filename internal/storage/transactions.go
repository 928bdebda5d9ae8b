package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"duit/internal/core"
)

// TransactionFilter narrows ListTransactions. Zero values mean "no
// constraint".
type TransactionFilter struct {
	Type       core.TransactionType
	CategoryID *int64
	From       *time.Time
	To         *time.Time
	Limit      int
}

const txColumns = `t.id, t.user_id, t.category_id, t.type, t.amount, t.description, t.date,
	t.created_at, t.updated_at,
	c.id, c.name, c.type, c.icon, c.color, c.is_default`

const txSelect = `SELECT ` + txColumns + `
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id`

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, category_id, type, amount, description, date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.CategoryID, tx.Type, tx.Amount.Amount, tx.Description, tx.Date.UTC(), now, now)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	return r.GetTransaction(ctx, tx.UserID, id)
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, txSelect+` WHERE t.id = ? AND t.user_id = ?`, id, userID)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// ListTransactions returns the user's transactions newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, error) {
	where := []string{"t.user_id = ?"}
	args := []any{userID}

	if f.Type != "" {
		where = append(where, "t.type = ?")
		args = append(args, f.Type)
	}
	if f.CategoryID != nil {
		where = append(where, "t.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.From != nil {
		where = append(where, "t.date >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		where = append(where, "t.date <= ?")
		args = append(args, f.To.UTC())
	}

	query := txSelect + ` WHERE ` + strings.Join(where, " AND ") + ` ORDER BY t.date DESC, t.id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET category_id = ?, type = ?, amount = ?, description = ?, date = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		tx.CategoryID, tx.Type, tx.Amount.Amount, tx.Description, tx.Date.UTC(), time.Now().UTC(), tx.ID, tx.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx        core.Transaction
		catID     sql.NullInt64
		catName   sql.NullString
		catType   sql.NullString
		catIcon   sql.NullString
		catColor  sql.NullString
		isDefault sql.NullBool
	)
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.CategoryID, &tx.Type, &tx.Amount.Amount, &tx.Description, &tx.Date,
		&tx.CreatedAt, &tx.UpdatedAt,
		&catID, &catName, &catType, &catIcon, &catColor, &isDefault)
	if err != nil {
		return core.Transaction{}, err
	}
	if catID.Valid {
		tx.Category = &core.Category{
			ID:        catID.Int64,
			UserID:    tx.UserID,
			Name:      catName.String,
			Type:      core.TransactionType(catType.String),
			Icon:      core.IconTag(catIcon.String),
			Color:     catColor.String,
			IsDefault: isDefault.Bool,
		}
	}
	return tx, nil
}
