package http

import (
	"time"

	"duit/internal/core"
	"duit/internal/services"
)

// JSON shapes for the API. Core types carry no tags, so the wire
// format is pinned down here.

type categoryJSON struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Icon      string `json:"icon,omitempty"`
	Color     string `json:"color,omitempty"`
	IsDefault bool   `json:"is_default"`
}

type transactionJSON struct {
	ID          int64         `json:"id"`
	CategoryID  *int64        `json:"category_id,omitempty"`
	Category    *categoryJSON `json:"category,omitempty"`
	Type        string        `json:"type"`
	Amount      int64         `json:"amount"`
	Description string        `json:"description,omitempty"`
	Date        string        `json:"date"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type goalJSON struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	TargetAmount  int64   `json:"target_amount"`
	CurrentAmount int64   `json:"current_amount"`
	Deadline      *string `json:"deadline,omitempty"`
	Color         string  `json:"color,omitempty"`
	IsCompleted   bool    `json:"is_completed"`
}

type budgetJSON struct {
	ID         int64  `json:"id"`
	CategoryID *int64 `json:"category_id,omitempty"`
	Amount     int64  `json:"amount"`
	Period     string `json:"period"`
}

type notificationJSON struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type budgetAlertJSON struct {
	BudgetID   int64   `json:"budget_id"`
	Month      string  `json:"month"`
	Tier       string  `json:"tier"`
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	Spent      int64   `json:"spent"`
	Limit      int64   `json:"limit"`
	Percentage float64 `json:"percentage"`
	DaysLeft   int     `json:"days_left"`
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		Icon:      string(c.Icon),
		Color:     c.Color,
		IsDefault: c.IsDefault,
	}
}

func toTransactionJSON(tx core.Transaction) transactionJSON {
	out := transactionJSON{
		ID:          tx.ID,
		CategoryID:  tx.CategoryID,
		Type:        string(tx.Type),
		Amount:      tx.Amount.Amount,
		Description: tx.Description,
		Date:        tx.Date.Format("2006-01-02"),
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
	if tx.Category != nil {
		c := toCategoryJSON(*tx.Category)
		out.Category = &c
	}
	return out
}

func toTransactionListJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionJSON(tx))
	}
	return out
}

func toGoalJSON(g core.SavingsGoal) goalJSON {
	out := goalJSON{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount.Amount,
		CurrentAmount: g.CurrentAmount.Amount,
		Color:         g.Color,
		IsCompleted:   g.IsCompleted,
	}
	if g.Deadline != nil {
		d := g.Deadline.Format("2006-01-02")
		out.Deadline = &d
	}
	return out
}

func toBudgetJSON(b core.Budget) budgetJSON {
	return budgetJSON{
		ID:         b.ID,
		CategoryID: b.CategoryID,
		Amount:     b.Amount.Amount,
		Period:     b.Period,
	}
}

func toNotificationJSON(n core.Notification) notificationJSON {
	return notificationJSON{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Priority:  string(n.Priority),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func toBudgetAlertJSON(a core.BudgetAlert) budgetAlertJSON {
	return budgetAlertJSON{
		BudgetID:   a.BudgetID,
		Month:      a.Month,
		Tier:       string(a.Tier),
		Title:      a.Title,
		Message:    a.Message,
		Spent:      a.Spent,
		Limit:      a.Limit,
		Percentage: a.Percentage,
		DaysLeft:   a.DaysLeft,
	}
}

type checkResultJSON struct {
	Evaluated      int `json:"evaluated"`
	Created        int `json:"created"`
	GoalsCompleted int `json:"goals_completed"`
}

func toCheckResultJSON(res services.CheckResult) checkResultJSON {
	return checkResultJSON{
		Evaluated:      res.Evaluated,
		Created:        res.Created,
		GoalsCompleted: res.GoalsCompleted,
	}
}
