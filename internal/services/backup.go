package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"duit/internal/core"
	"duit/internal/log"
	"duit/internal/storage"
)

// Backupper snapshots user data into the backup tables. The daily
// sweep continues past per-user failures and records a summary row.
type Backupper struct {
	storage *storage.SQLiteRepository
	logger  *log.Logger
}

func NewBackupper(repo *storage.SQLiteRepository, logger *log.Logger) *Backupper {
	return &Backupper{
		storage: repo,
		logger:  logger.WithComponent(log.ComponentBackup),
	}
}

// backupPayload is the JSON snapshot stored per user.
type backupPayload struct {
	Profile      core.Profile       `json:"profile"`
	Transactions []core.Transaction `json:"transactions"`
	Categories   []core.Category    `json:"categories"`
	Goals        []core.SavingsGoal `json:"goals"`
	Budgets      []core.Budget      `json:"budgets"`
	CreatedAt    time.Time          `json:"created_at"`
}

// BackupUser snapshots one user's data.
func (b *Backupper) BackupUser(ctx context.Context, userID int64) error {
	profile, err := b.storage.GetProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	txs, err := b.storage.ListTransactions(ctx, userID, storage.TransactionFilter{})
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	cats, err := b.storage.ListCategories(ctx, userID)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	goals, err := b.storage.ListGoals(ctx, userID)
	if err != nil {
		return fmt.Errorf("load goals: %w", err)
	}
	budgets, err := b.storage.ListBudgets(ctx, userID)
	if err != nil {
		return fmt.Errorf("load budgets: %w", err)
	}

	payload, err := json.Marshal(backupPayload{
		Profile:      profile,
		Transactions: txs,
		Categories:   cats,
		Goals:        goals,
		Budgets:      budgets,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}

	if err := b.storage.SaveUserBackup(ctx, userID, string(payload)); err != nil {
		return err
	}

	b.logger.InfoContext(ctx, "User backup saved",
		log.FieldUserID, userID,
		"transactions", len(txs),
		"goals", len(goals))
	return nil
}

// RestoreResult reports what the restored snapshot held.
type RestoreResult struct {
	SnapshotAt   time.Time `json:"snapshot_at"`
	Transactions int       `json:"transactions"`
	Categories   int       `json:"categories"`
	Goals        int       `json:"goals"`
	Budgets      int       `json:"budgets"`
}

// Restore reapplies the user's newest snapshot. Transactional records
// are never overwritten from a snapshot; only the profile fields are
// written back, with the record counts reported so the caller can see
// what the snapshot covers.
func (b *Backupper) Restore(ctx context.Context, userID int64) (RestoreResult, error) {
	raw, err := b.storage.LatestUserBackup(ctx, userID)
	if err != nil {
		return RestoreResult{}, err
	}

	var payload backupPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return RestoreResult{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if payload.Profile.ID != userID {
		return RestoreResult{}, fmt.Errorf("snapshot belongs to user %d, not %d", payload.Profile.ID, userID)
	}

	if err := b.storage.UpdateProfile(ctx, payload.Profile); err != nil {
		return RestoreResult{}, fmt.Errorf("restore profile: %w", err)
	}

	b.logger.InfoContext(ctx, "User data restored from snapshot",
		log.FieldUserID, userID,
		"snapshot_at", payload.CreatedAt)

	return RestoreResult{
		SnapshotAt:   payload.CreatedAt,
		Transactions: len(payload.Transactions),
		Categories:   len(payload.Categories),
		Goals:        len(payload.Goals),
		Budgets:      len(payload.Budgets),
	}, nil
}

// History lists recent backup sweep summaries, newest first.
func (b *Backupper) History(ctx context.Context, limit int) ([]storage.BackupLog, error) {
	if limit <= 0 {
		limit = 30
	}
	return b.storage.ListBackupLogs(ctx, limit)
}

// RunDaily backs up every profile. One failing user does not stop the
// sweep; failures are collected into the summary log.
func (b *Backupper) RunDaily(ctx context.Context) (storage.BackupLog, error) {
	started := time.Now().UTC()

	profiles, err := b.storage.ListProfiles(ctx)
	if err != nil {
		return storage.BackupLog{}, fmt.Errorf("list profiles: %w", err)
	}

	summary := storage.BackupLog{
		TotalUsers: len(profiles),
		StartedAt:  started,
	}
	var failures []string

	for _, p := range profiles {
		if err := b.BackupUser(ctx, p.ID); err != nil {
			summary.ErrorCount++
			failures = append(failures, fmt.Sprintf("user %d: %v", p.ID, err))
			b.logger.ErrorContext(ctx, "User backup failed",
				log.FieldUserID, p.ID, log.FieldError, err)
			continue
		}
		summary.SuccessCount++
	}

	summary.FinishedAt = time.Now().UTC()
	summary.Details = strings.Join(failures, "; ")
	switch {
	case summary.ErrorCount == 0:
		summary.Status = "completed"
	case summary.SuccessCount > 0:
		summary.Status = "partial"
	default:
		summary.Status = "failed"
	}

	if err := b.storage.SaveBackupLog(ctx, summary); err != nil {
		b.logger.ErrorContext(ctx, "Failed to save backup log", log.FieldError, err)
	}

	b.logger.InfoContext(ctx, "Daily backup finished",
		"status", summary.Status,
		"total", summary.TotalUsers,
		"succeeded", summary.SuccessCount,
		"failed", summary.ErrorCount,
		"duration", summary.FinishedAt.Sub(summary.StartedAt).String())

	return summary, nil
}
