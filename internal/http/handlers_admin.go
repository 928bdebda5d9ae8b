package http

import (
	"fmt"
	"net/http"
	"time"
)

type backupResponse struct {
	Success       bool   `json:"success"`
	TotalBackedUp int    `json:"totalBackedUp"`
	Details       string `json:"details,omitempty"`
}

// handleBackupDaily runs the full backup sweep. Authenticated with the
// cron shared secret by middleware.
func (s *Server) handleBackupDaily(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Backupper.RunDaily(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	NewResponse().JSON(backupResponse{
		Success:       summary.ErrorCount == 0,
		TotalBackedUp: summary.SuccessCount,
		Details:       summary.Details,
	}).Write(w)
}

// handleBackupRestore reapplies the caller's newest snapshot.
func (s *Server) handleBackupRestore(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Backupper.Restore(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(result).Write(w)
}

type backupLogJSON struct {
	ID           int64     `json:"id"`
	Status       string    `json:"status"`
	TotalUsers   int       `json:"total_users"`
	SuccessCount int       `json:"success_count"`
	ErrorCount   int       `json:"error_count"`
	Details      string    `json:"details,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// handleBackupHistory lists recent sweep summaries for the cron caller.
func (s *Server) handleBackupHistory(w http.ResponseWriter, r *http.Request) {
	logs, err := s.deps.Backupper.History(r.Context(), queryInt(r, "limit", 30))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]backupLogJSON, 0, len(logs))
	for _, l := range logs {
		out = append(out, backupLogJSON{
			ID:           l.ID,
			Status:       l.Status,
			TotalUsers:   l.TotalUsers,
			SuccessCount: l.SuccessCount,
			ErrorCount:   l.ErrorCount,
			Details:      l.Details,
			StartedAt:    l.StartedAt,
			FinishedAt:   l.FinishedAt,
		})
	}
	NewResponse().JSON(out).Write(w)
}

// handleExportTransactions streams the caller's transactions as a CSV
// download, honoring the list endpoint's filters. With ?target=sheets
// the rows are appended to the configured spreadsheet instead.
func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if r.URL.Query().Get("target") == "sheets" {
		if s.deps.Sheets == nil {
			BadRequestError("sheets export is not configured").Write(w)
			return
		}
		rows, err := s.deps.Sheets.Export(r.Context(), userID(r), filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		NewResponse().JSON(struct {
			Exported int `json:"exported"`
		}{Exported: rows}).Write(w)
		return
	}

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := s.deps.CSV.Write(r.Context(), w, userID(r), filter); err != nil {
		// Headers are already out; log and cut the stream.
		writeError(w, r, err)
	}
}
