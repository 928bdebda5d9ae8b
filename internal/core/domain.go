package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const (
	NotifOverspending NotificationType = "overspending"
	NotifGoalAchieved NotificationType = "goal_achieved"
	NotifLowBalance   NotificationType = "low_balance"
	NotifExpenseSpike NotificationType = "expense_spike"
	NotifInsight      NotificationType = "insight"
)

// PeriodMonthly is the only budget period currently supported.
const PeriodMonthly = "monthly"

type (
	TransactionType  string
	NotificationType string
	Priority         string

	// Money is a whole-rupiah amount. IDR carries no minor unit in this
	// application, so amounts are plain int64 rupiah.
	Money struct {
		Amount int64
	}

	Transaction struct {
		ID          int64
		UserID      int64
		CategoryID  *int64
		Type        TransactionType
		Amount      Money
		Description string
		Date        time.Time
		CreatedAt   time.Time
		UpdatedAt   time.Time

		// Category is populated by the storage layer when joined.
		Category *Category
	}

	Category struct {
		ID        int64
		UserID    int64
		Name      string
		Type      TransactionType
		Icon      IconTag
		Color     string
		IsDefault bool
		CreatedAt time.Time
	}

	SavingsGoal struct {
		ID            int64
		UserID        int64
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		Deadline      *time.Time
		Color         string
		IsCompleted   bool
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}

	Budget struct {
		ID         int64
		UserID     int64
		CategoryID *int64 // nil means the budget covers total expenses
		Amount     Money
		Period     string
		CreatedAt  time.Time
	}

	Profile struct {
		ID        int64
		Email     string
		FullName  string
		Language  string
		Theme     string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Notification struct {
		ID        int64
		UserID    int64
		Type      NotificationType
		Title     string
		Message   string
		Priority  Priority
		IsRead    bool
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidType          = errors.New("invalid transaction type")
	ErrInvalidDate          = errors.New("invalid date")
	ErrEmptyName            = errors.New("empty name")
	ErrCategoryTypeMismatch = errors.New("category type does not match transaction type")
	ErrInvalidTarget        = errors.New("target amount must be positive")
	ErrInvalidPeriod        = errors.New("invalid budget period")
	ErrDefaultCategory      = errors.New("default categories cannot be deleted")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (m Money) Validate() error {
	if m.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if tx.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(tx.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	// A categorized transaction must carry a category of the same type.
	if tx.Category != nil && tx.Category.Type != tx.Type {
		return ErrCategoryTypeMismatch
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	if c.Icon != "" && !c.Icon.Valid() {
		return ErrUnknownIcon
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount.Amount <= 0 {
		return ErrInvalidTarget
	}
	if g.CurrentAmount.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Recompute refreshes the derived is_completed flag. Called on every
// mutation of current or target amount.
func (g *SavingsGoal) Recompute() {
	g.IsCompleted = g.CurrentAmount.Amount >= g.TargetAmount.Amount
}

// AddFunds increases the goal's saved amount and reports whether the goal
// crossed its target with this addition. Funds only ever increase; there
// is no withdraw operation.
func (g *SavingsGoal) AddFunds(amount Money) (justCompleted bool, err error) {
	if err := amount.Validate(); err != nil {
		return false, err
	}
	wasCompleted := g.IsCompleted
	g.CurrentAmount.Amount += amount.Amount
	g.Recompute()
	return g.IsCompleted && !wasCompleted, nil
}

func (b Budget) Validate() error {
	if b.Amount.Amount <= 0 {
		return ErrInvalidAmount
	}
	if b.Period != PeriodMonthly {
		return ErrInvalidPeriod
	}
	return nil
}
