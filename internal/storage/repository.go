// Package storage is the SQLite persistence layer. One repository owns
// the connection; entity methods live in per-entity files.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"duit/internal/core"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateProfile inserts a profile and seeds its default categories in
// the same transaction.
func (r *SQLiteRepository) CreateProfile(ctx context.Context, p core.Profile) (core.Profile, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Profile{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (email, full_name, language, theme, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Email, p.FullName, orDefault(p.Language, "en"), orDefault(p.Theme, "light"), now, now)
	if err != nil {
		return core.Profile{}, fmt.Errorf("insert profile: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Profile{}, fmt.Errorf("profile id: %w", err)
	}

	for _, c := range defaultCategories {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (user_id, name, type, icon, is_default, created_at)
			 VALUES (?, ?, ?, ?, 1, ?)`,
			id, c.Name, c.Type, c.Icon, now)
		if err != nil {
			return core.Profile{}, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Profile{}, fmt.Errorf("commit: %w", err)
	}

	p.ID = id
	p.Language = orDefault(p.Language, "en")
	p.Theme = orDefault(p.Theme, "light")
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (r *SQLiteRepository) GetProfile(ctx context.Context, id int64) (core.Profile, error) {
	var p core.Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, language, theme, created_at, updated_at
		 FROM profiles WHERE id = ?`, id).
		Scan(&p.ID, &p.Email, &p.FullName, &p.Language, &p.Theme, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Profile{}, ErrNotFound
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) GetProfileByEmail(ctx context.Context, email string) (core.Profile, error) {
	var p core.Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, language, theme, created_at, updated_at
		 FROM profiles WHERE email = ?`, email).
		Scan(&p.ID, &p.Email, &p.FullName, &p.Language, &p.Theme, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Profile{}, ErrNotFound
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile by email: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) UpdateProfile(ctx context.Context, p core.Profile) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET full_name = ?, language = ?, theme = ?, updated_at = ? WHERE id = ?`,
		p.FullName, p.Language, p.Theme, time.Now().UTC(), p.ID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireRow(res)
}

// ListProfiles returns every profile, used by the daily backup sweep.
func (r *SQLiteRepository) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, full_name, language, theme, created_at, updated_at
		 FROM profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []core.Profile
	for rows.Next() {
		var p core.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.Language, &p.Theme, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// GetBalance reports the stored balance and whether a row exists; a
// missing row is not an error, rules treat it as "cannot evaluate".
func (r *SQLiteRepository) GetBalance(ctx context.Context, userID int64) (int64, bool, error) {
	var amount int64
	err := r.db.QueryRowContext(ctx,
		`SELECT amount FROM balances WHERE user_id = ?`, userID).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get balance: %w", err)
	}
	return amount, true, nil
}

func (r *SQLiteRepository) SetBalance(ctx context.Context, userID, amount int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO balances (user_id, amount, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at`,
		userID, amount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
