package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BackupLog summarizes one run of the daily backup sweep.
type BackupLog struct {
	ID           int64
	Status       string
	TotalUsers   int
	SuccessCount int
	ErrorCount   int
	Details      string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// SaveUserBackup stores one user's JSON snapshot.
func (r *SQLiteRepository) SaveUserBackup(ctx context.Context, userID int64, payload string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_data_backups (user_id, payload, created_at) VALUES (?, ?, ?)`,
		userID, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save user backup: %w", err)
	}
	return nil
}

// LatestUserBackup returns the newest stored snapshot payload for a user.
func (r *SQLiteRepository) LatestUserBackup(ctx context.Context, userID int64) (string, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM user_data_backups WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("latest user backup: %w", err)
	}
	return payload, nil
}

func (r *SQLiteRepository) SaveBackupLog(ctx context.Context, l BackupLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO backup_logs (status, total_users, success_count, error_count, details, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.Status, l.TotalUsers, l.SuccessCount, l.ErrorCount, l.Details, l.StartedAt.UTC(), l.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("save backup log: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListBackupLogs(ctx context.Context, limit int) ([]BackupLog, error) {
	query := `SELECT id, status, total_users, success_count, error_count, details, started_at, finished_at
		 FROM backup_logs ORDER BY started_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list backup logs: %w", err)
	}
	defer rows.Close()

	var logs []BackupLog
	for rows.Next() {
		var l BackupLog
		if err := rows.Scan(&l.ID, &l.Status, &l.TotalUsers, &l.SuccessCount, &l.ErrorCount, &l.Details, &l.StartedAt, &l.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan backup log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
