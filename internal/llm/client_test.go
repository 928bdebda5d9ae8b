package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Errorf("got %d messages", len(req.Messages))
		}

		json.NewEncoder(w).Encode(ChatResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: "Spend less on coffee."}}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "test-model")
	got, err := c.Complete(context.Background(), []Message{
		{Role: "system", Content: "You are a financial advisor."},
		{Role: "user", Content: "How can I save more?"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "Spend less on coffee." {
		t.Errorf("got %q", got)
	}
}

func TestCompleteErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "k", "m")
		if _, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("empty choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(ChatResponse{})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "k", "m")
		if _, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}); err == nil {
			t.Fatal("expected error for empty choices")
		}
	})
}
