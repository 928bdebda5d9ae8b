package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"duit/internal/config"
	"duit/internal/log"
	"duit/internal/storage"
)

// SheetsExporter appends a user's transactions to a Google Sheets
// spreadsheet using OAuth user credentials.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	storage       *storage.SQLiteRepository
	logger        *log.Logger
}

// NewSheetsExporter builds the exporter from config. Returns nil when
// no spreadsheet is configured; callers treat a nil exporter as the
// feature being disabled.
func NewSheetsExporter(ctx context.Context, cfg *config.Config, repo *storage.SQLiteRepository, logger *log.Logger) (*SheetsExporter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, nil
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
		storage:       repo,
		logger:        logger.WithComponent(log.ComponentExport),
	}, nil
}

// newSheetsService initializes a Sheets service from OAuth client
// credentials plus a previously issued user token.
func newSheetsService(ctx context.Context, cfg *config.Config) (*gsheet.Service, error) {
	clientJSON, err := resolveCredential(cfg.GoogleOAuthClientJSON, cfg.GoogleOAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client: %w", err)
	}
	if clientJSON == nil {
		return nil, errors.New("missing oauth client (set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE)")
	}

	tokenJSON, err := resolveCredential(cfg.GoogleOAuthTokenJSON, cfg.GoogleOAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token: %w", err)
	}
	if tokenJSON == nil {
		return nil, errors.New("missing oauth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE)")
	}

	oauthCfg, err := google.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	svc, err := gsheet.NewService(ctx, goption.WithTokenSource(oauthCfg.TokenSource(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// resolveCredential prefers inline JSON and falls back to reading a
// file path. Both empty means the credential is absent, not an error.
func resolveCredential(inline, file string) ([]byte, error) {
	if v := strings.TrimSpace(inline); v != "" {
		return []byte(v), nil
	}
	if file = strings.TrimSpace(file); file != "" {
		return os.ReadFile(file)
	}
	return nil, nil
}

// Export appends every matching transaction to the configured sheet and
// returns the number of rows written.
func (e *SheetsExporter) Export(ctx context.Context, userID int64, filter storage.TransactionFilter) (int, error) {
	if e.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}

	txs, err := e.storage.ListTransactions(ctx, userID, filter)
	if err != nil {
		return 0, fmt.Errorf("load transactions: %w", err)
	}
	if len(txs) == 0 {
		return 0, nil
	}

	values := make([][]any, 0, len(txs))
	for _, tx := range txs {
		values = append(values, sheetRow(tx))
	}

	rng := fmt.Sprintf("%s!A:E", e.sheetName)
	vr := &gsheet.ValueRange{Values: values}
	_, err = e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("append to sheet %s: %w", e.sheetName, err)
	}

	e.logger.InfoContext(ctx, "Transactions exported to sheet",
		log.FieldUserID, userID,
		"rows", len(txs),
		"sheet", e.sheetName)
	return len(txs), nil
}

// EnsureHeader writes the header row when the sheet is empty.
func (e *SheetsExporter) EnsureHeader(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:E1", e.sheetName)
	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read sheet header: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}

	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	vr := &gsheet.ValueRange{Values: [][]any{cells}}
	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write sheet header: %w", err)
	}
	return nil
}
