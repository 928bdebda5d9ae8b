package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"duit/internal/core"
)

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	now := time.Now().UTC()
	g.Recompute()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (user_id, name, target_amount, current_amount, deadline, color, is_completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.TargetAmount.Amount, g.CurrentAmount.Amount, g.Deadline, g.Color, g.IsCompleted, now, now)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("insert goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("goal id: %w", err)
	}
	g.ID = id
	g.CreatedAt = now
	g.UpdatedAt = now
	return g, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, userID, id int64) (core.SavingsGoal, error) {
	var g core.SavingsGoal
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, target_amount, current_amount, deadline, color, is_completed, created_at, updated_at
		 FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount.Amount, &g.CurrentAmount.Amount,
			&g.Deadline, &g.Color, &g.IsCompleted, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsGoal{}, ErrNotFound
	}
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID int64) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, target_amount, current_amount, deadline, color, is_completed, created_at, updated_at
		 FROM savings_goals WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		var g core.SavingsGoal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount.Amount, &g.CurrentAmount.Amount,
			&g.Deadline, &g.Color, &g.IsCompleted, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpdateGoal persists current amount, target and the derived completion
// flag together so they never drift.
func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.SavingsGoal) error {
	g.Recompute()
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals
		 SET name = ?, target_amount = ?, current_amount = ?, deadline = ?, color = ?, is_completed = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		g.Name, g.TargetAmount.Amount, g.CurrentAmount.Amount, g.Deadline, g.Color, g.IsCompleted,
		time.Now().UTC(), g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res)
}

// MarkGoalCompleted flips the completion flag, used by the rule engine
// when a goal reached its target outside the AddFunds path.
func (r *SQLiteRepository) MarkGoalCompleted(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals SET is_completed = 1, updated_at = ? WHERE id = ? AND user_id = ?`,
		time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("mark goal completed: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res)
}
