package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duit/internal/core"
	"duit/internal/llm"
)

// fakeLLM returns a canned reply and records the last request body.
func fakeLLM(t *testing.T, reply string, lastReq *llm.ChatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lastReq != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(lastReq))
		}
		json.NewEncoder(w).Encode(llm.ChatResponse{
			Choices: []llm.Choice{{Message: llm.Message{Role: "assistant", Content: reply}}},
		})
	}))
}

func TestAdvisorChat(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	addTx(t, repo, user.ID, core.Income, 3_000_000, time.Now())
	addTx(t, repo, user.ID, core.Expense, 750_000, time.Now())

	var req llm.ChatRequest
	srv := fakeLLM(t, "Spend less on snacks.", &req)
	defer srv.Close()

	adv := NewAdvisor(repo, llm.NewClient(srv.URL, "test-key", "test-model"), testLogger())

	reply, err := adv.Chat(ctx, user.ID, "How am I doing this month?")
	require.NoError(t, err)
	assert.Equal(t, "Spend less on snacks.", reply)

	// First two messages carry the persona and the financial snapshot.
	require.GreaterOrEqual(t, len(req.Messages), 3)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "system", req.Messages[1].Role)
	assert.Contains(t, req.Messages[1].Content, core.FormatRupiah(3_000_000))
	assert.Equal(t, "user", req.Messages[len(req.Messages)-1].Role)

	// Both turns were persisted in order.
	history, err := repo.ListChatMessages(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "assistant", history[1].Role)
}

func TestAdvisorChatReplaysHistory(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	var req llm.ChatRequest
	srv := fakeLLM(t, "Noted.", &req)
	defer srv.Close()
	adv := NewAdvisor(repo, llm.NewClient(srv.URL, "test-key", "test-model"), testLogger())

	_, err := adv.Chat(ctx, user.ID, "first question")
	require.NoError(t, err)
	_, err = adv.Chat(ctx, user.ID, "second question")
	require.NoError(t, err)

	var replayed []string
	for _, m := range req.Messages {
		if m.Role != "system" {
			replayed = append(replayed, m.Content)
		}
	}
	assert.Equal(t, []string{"first question", "Noted.", "second question"}, replayed)
}

func TestAdvisorChatRejectsEmpty(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	adv := NewAdvisor(repo, llm.NewClient("http://localhost:0", "k", "m"), testLogger())

	_, err := adv.Chat(context.Background(), user.ID, "   ")
	assert.Error(t, err)
}

func TestAdvisorNotConfigured(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	adv := NewAdvisor(repo, nil, testLogger())

	_, err := adv.Chat(context.Background(), user.ID, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
