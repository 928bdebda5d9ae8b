// Package export renders a user's transactions for download as CSV or
// for appending to a Google Sheets spreadsheet.
package export

import (
	"strconv"

	"duit/internal/core"
)

var header = []string{"Date", "Type", "Category", "Description", "Amount"}

// row renders one transaction in the column order of header.
func row(tx core.Transaction) []string {
	category := ""
	if tx.Category != nil {
		category = tx.Category.Name
	}
	return []string{
		tx.Date.Format("2006-01-02"),
		string(tx.Type),
		category,
		tx.Description,
		strconv.FormatInt(tx.Amount.Amount, 10),
	}
}

// sheetRow renders one transaction as a Sheets values row. Amounts are
// numeric so spreadsheet formulas can sum them.
func sheetRow(tx core.Transaction) []any {
	category := ""
	if tx.Category != nil {
		category = tx.Category.Name
	}
	return []any{
		tx.Date.Format("2006-01-02"),
		string(tx.Type),
		category,
		tx.Description,
		tx.Amount.Amount,
	}
}
