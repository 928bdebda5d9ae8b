package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"duit/internal/core"
)

// defaultCategories are seeded for every new profile. Default rows can
// be renamed but never deleted.
var defaultCategories = []core.Category{
	{Name: "Salary", Type: core.Income, Icon: core.IconSalary},
	{Name: "Gift", Type: core.Income, Icon: core.IconGift},
	{Name: "Investment", Type: core.Income, Icon: core.IconInvest},
	{Name: "Food & Drinks", Type: core.Expense, Icon: core.IconFood},
	{Name: "Transportation", Type: core.Expense, Icon: core.IconTransport},
	{Name: "Shopping", Type: core.Expense, Icon: core.IconShopping},
	{Name: "Bills & Utilities", Type: core.Expense, Icon: core.IconBills},
	{Name: "Healthcare", Type: core.Expense, Icon: core.IconHealth},
	{Name: "Education", Type: core.Expense, Icon: core.IconEducation},
	{Name: "Entertainment", Type: core.Expense, Icon: core.IconFun},
	{Name: "Other", Type: core.Expense, Icon: core.IconOther},
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, type, icon, color, is_default, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		c.UserID, c.Name, c.Type, c.Icon, c.Color, now)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	c.ID = id
	c.CreatedAt = now
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, icon, color, is_default, created_at
		 FROM categories WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.IsDefault, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, icon, color, is_default, created_at
		 FROM categories WHERE user_id = ? ORDER BY type, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.IsDefault, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, icon = ?, color = ? WHERE id = ? AND user_id = ?`,
		c.Name, c.Icon, c.Color, c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res)
}

// DeleteCategory removes a user-created category. Transactions keep
// their rows with category_id set to NULL by the schema. Default
// categories are protected.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id int64) error {
	var isDefault bool
	err := r.db.QueryRowContext(ctx,
		`SELECT is_default FROM categories WHERE id = ? AND user_id = ?`, id, userID).Scan(&isDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if isDefault {
		return core.ErrDefaultCategory
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res)
}
