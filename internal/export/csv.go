package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"duit/internal/core"
	"duit/internal/storage"
)

// CSVExporter streams a user's transactions as CSV.
type CSVExporter struct {
	storage *storage.SQLiteRepository
}

func NewCSVExporter(repo *storage.SQLiteRepository) *CSVExporter {
	return &CSVExporter{storage: repo}
}

// Write writes the header and every matching transaction to w.
func (e *CSVExporter) Write(ctx context.Context, w io.Writer, userID int64, filter storage.TransactionFilter) error {
	txs, err := e.storage.ListTransactions(ctx, userID, filter)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	return WriteCSV(w, txs)
}

// WriteCSV renders transactions as CSV, header first.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range txs {
		if err := cw.Write(row(tx)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
