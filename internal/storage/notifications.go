package storage

import (
	"context"
	"fmt"
	"time"

	"duit/internal/core"
)

// CreateNotificationIfAbsent inserts a notification unless an unread
// one of the same type already exists for the user. At most one unread
// notification per type is kept; re-running the rule engine is
// therefore idempotent. Returns whether a row was inserted.
func (r *SQLiteRepository) CreateNotificationIfAbsent(ctx context.Context, n core.Notification) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, type, title, message, priority, is_read, created_at)
		 SELECT ?, ?, ?, ?, ?, 0, ?
		 WHERE NOT EXISTS (
		     SELECT 1 FROM notifications WHERE user_id = ? AND type = ? AND is_read = 0
		 )`,
		n.UserID, n.Type, n.Title, n.Message, n.Priority, time.Now().UTC(),
		n.UserID, n.Type)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return inserted > 0, nil
}

func (r *SQLiteRepository) ListNotifications(ctx context.Context, userID int64, limit int) ([]core.Notification, error) {
	query := `SELECT id, user_id, type, title, message, priority, is_read, created_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []core.Notification
	for rows.Next() {
		var n core.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Priority, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *SQLiteRepository) CountUnreadNotifications(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (r *SQLiteRepository) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}
