package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"duit/internal/core"
	"duit/internal/llm"
	"duit/internal/log"
	"duit/internal/storage"
)

const advisorContextLimit = 50

const advisorSystemPrompt = `You are a personal finance advisor for an Indonesian budgeting app.
Amounts are Indonesian rupiah. Be concrete and concise, base advice on
the user's actual data, and never invent transactions they did not make.`

// Advisor answers financial questions with the user's own data as
// context. Conversations are persisted per user.
type Advisor struct {
	storage *storage.SQLiteRepository
	llm     *llm.Client
	logger  *log.Logger
}

func NewAdvisor(repo *storage.SQLiteRepository, llmClient *llm.Client, logger *log.Logger) *Advisor {
	return &Advisor{
		storage: repo,
		llm:     llmClient,
		logger:  logger.WithComponent(log.ComponentAdvisor),
	}
}

// Chat sends one user message through the LLM and stores both sides of
// the exchange.
func (a *Advisor) Chat(ctx context.Context, userID int64, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("empty message")
	}
	if a.llm == nil {
		return "", fmt.Errorf("advisor not configured")
	}

	summary, err := a.buildContext(ctx, userID)
	if err != nil {
		return "", err
	}

	history, err := a.storage.ListChatMessages(ctx, userID, 10)
	if err != nil {
		return "", fmt.Errorf("load chat history: %w", err)
	}

	messages := make([]llm.Message, 0, len(history)+3)
	messages = append(messages,
		llm.Message{Role: "system", Content: advisorSystemPrompt},
		llm.Message{Role: "system", Content: summary})
	for _, h := range history {
		messages = append(messages, llm.Message{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: message})

	reply, err := a.llm.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("advisor completion: %w", err)
	}

	// Persist both turns; a failed save must not eat the reply.
	if _, err := a.storage.SaveChatMessage(ctx, storage.ChatMessage{UserID: userID, Role: "user", Content: message}); err != nil {
		a.logger.ErrorContext(ctx, "Failed to save user chat message", log.FieldError, err)
	}
	if _, err := a.storage.SaveChatMessage(ctx, storage.ChatMessage{UserID: userID, Role: "assistant", Content: reply}); err != nil {
		a.logger.ErrorContext(ctx, "Failed to save assistant chat message", log.FieldError, err)
	}

	return reply, nil
}

// buildContext fetches the user's recent data in parallel and renders
// it as a prompt section.
func (a *Advisor) buildContext(ctx context.Context, userID int64) (string, error) {
	var (
		txs   []core.Transaction
		goals []core.SavingsGoal
		cats  []core.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = a.storage.ListTransactions(gctx, userID, storage.TransactionFilter{Limit: advisorContextLimit})
		return err
	})
	g.Go(func() error {
		var err error
		goals, err = a.storage.ListGoals(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = a.storage.ListCategories(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("load advisor context: %w", err)
	}

	now := time.Now()
	monthStart, monthEnd := core.MonthBounds(now)
	month := core.TotalsByType(txs, monthStart, monthEnd)

	var b strings.Builder
	fmt.Fprintf(&b, "User's financial snapshot (%s):\n", now.Format("January 2006"))
	fmt.Fprintf(&b, "- This month: income %s, expenses %s\n",
		core.FormatRupiah(month.Income), core.FormatRupiah(month.Expense))

	if buckets := core.GroupByCategory(txs, core.Expense); len(buckets) > 0 {
		b.WriteString("- Top spending categories: ")
		for i, bucket := range buckets {
			if i == 3 {
				break
			}
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s (%s)", bucket.Name, core.FormatRupiah(bucket.Value))
		}
		b.WriteString("\n")
	}

	if len(goals) > 0 {
		b.WriteString("- Savings goals:\n")
		for _, goal := range goals {
			status := "in progress"
			if goal.IsCompleted {
				status = "completed"
			}
			fmt.Fprintf(&b, "  - %s: %s of %s (%s)\n",
				goal.Name,
				core.FormatRupiah(goal.CurrentAmount.Amount),
				core.FormatRupiah(goal.TargetAmount.Amount),
				status)
		}
	}

	fmt.Fprintf(&b, "- Categories in use: %d, recent transactions: %d\n", len(cats), len(txs))
	return b.String(), nil
}
