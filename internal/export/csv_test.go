package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duit/internal/core"
	"duit/internal/storage"
)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestWriteCSV(t *testing.T) {
	cat := core.Category{Name: "Food & Drinks"}
	txs := []core.Transaction{
		{
			Type:        core.Expense,
			Amount:      core.Money{Amount: 75_000},
			Description: "lunch, with drinks",
			Date:        time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC),
			Category:    &cat,
		},
		{
			Type:   core.Income,
			Amount: core.Money{Amount: 1_000_000},
			Date:   time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txs))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Date", "Type", "Category", "Description", "Amount"}, records[0])
	assert.Equal(t, []string{"2026-08-10", "expense", "Food & Drinks", "lunch, with drinks", "75000"}, records[1])
	assert.Equal(t, []string{"2026-08-01", "income", "", "", "1000000"}, records[2])
}

func TestCSVExporterWrite(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p, err := repo.CreateProfile(ctx, core.Profile{Email: "user@example.com"})
	require.NoError(t, err)

	_, err = repo.CreateTransaction(ctx, core.Transaction{
		UserID: p.ID, Type: core.Expense, Amount: core.Money{Amount: 25_000}, Date: time.Now(),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	e := NewCSVExporter(repo)
	require.NoError(t, e.Write(ctx, &buf, p.ID, storage.TransactionFilter{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "25000", records[1][4])
}

func TestCSVExporterEmpty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p, err := repo.CreateProfile(ctx, core.Profile{Email: "user@example.com"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewCSVExporter(repo).Write(ctx, &buf, p.ID, storage.TransactionFilter{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
}
