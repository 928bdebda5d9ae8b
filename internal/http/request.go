package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"duit/internal/core"
	"duit/internal/storage"
)

const maxRequestBody = 1 << 20 // 1 MiB

// decodeJSON parses the request body into dst, rejecting oversized or
// malformed payloads.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// pathID extracts a positive int64 path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// amountJSON accepts a whole-rupiah JSON number or a formatted string
// such as "50.000" or "10000,50".
type amountJSON struct {
	Value int64
}

func (a *amountJSON) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := core.ParseAmount(s)
		if err != nil {
			return err
		}
		a.Value = v
		return nil
	}
	return json.Unmarshal(b, &a.Value)
}

func (a amountJSON) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Value)
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseTransactionFilter reads list-endpoint query parameters. Dates
// are "2006-01-02"; To is widened to the end of its day so the range
// is inclusive.
func parseTransactionFilter(r *http.Request) (storage.TransactionFilter, error) {
	q := r.URL.Query()
	var f storage.TransactionFilter

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		t := core.TransactionType(v)
		if !t.Valid() {
			return f, fmt.Errorf("invalid type %q", v)
		}
		f.Type = t
	}
	if v := strings.TrimSpace(q.Get("category_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, fmt.Errorf("invalid category_id %q", v)
		}
		f.CategoryID = &id
	}
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, fmt.Errorf("invalid from date %q", v)
		}
		f.From = &t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, fmt.Errorf("invalid to date %q", v)
		}
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		f.To = &end
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, fmt.Errorf("invalid limit %q", v)
		}
		f.Limit = n
	}

	return f, nil
}

// queryInt reads an integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	if v := strings.TrimSpace(r.URL.Query().Get(name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
