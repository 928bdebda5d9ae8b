package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"duit/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestProfile(t *testing.T, repo *SQLiteRepository, email string) core.Profile {
	t.Helper()
	p, err := repo.CreateProfile(context.Background(), core.Profile{Email: email, FullName: "Test User"})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

func TestCreateProfileSeedsDefaults(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := newTestProfile(t, repo, "a@example.com")
	if p.ID == 0 {
		t.Fatal("profile id not assigned")
	}
	if p.Language != "en" || p.Theme != "light" {
		t.Errorf("defaults not applied: %+v", p)
	}

	cats, err := repo.ListCategories(ctx, p.ID)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != len(defaultCategories) {
		t.Fatalf("expected %d seeded categories, got %d", len(defaultCategories), len(cats))
	}
	for _, c := range cats {
		if !c.IsDefault {
			t.Errorf("seeded category %q not marked default", c.Name)
		}
	}

	// Defaults belong to the profile, not globally.
	p2 := newTestProfile(t, repo, "b@example.com")
	cats2, err := repo.ListCategories(ctx, p2.ID)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats2) != len(defaultCategories) {
		t.Errorf("second profile got %d categories", len(cats2))
	}
}

func TestDefaultCategoryCannotBeDeleted(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := newTestProfile(t, repo, "a@example.com")

	cats, err := repo.ListCategories(ctx, p.ID)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if err := repo.DeleteCategory(ctx, p.ID, cats[0].ID); err != core.ErrDefaultCategory {
		t.Fatalf("expected ErrDefaultCategory, got %v", err)
	}

	custom, err := repo.CreateCategory(ctx, core.Category{UserID: p.ID, Name: "Coffee", Type: core.Expense, Icon: core.IconFood})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if err := repo.DeleteCategory(ctx, p.ID, custom.ID); err != nil {
		t.Fatalf("delete custom category: %v", err)
	}
}

func TestTransactionCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := newTestProfile(t, repo, "a@example.com")

	cats, _ := repo.ListCategories(ctx, p.ID)
	var food core.Category
	for _, c := range cats {
		if c.Name == "Food & Drinks" {
			food = c
		}
	}

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID:      p.ID,
		CategoryID:  &food.ID,
		Type:        core.Expense,
		Amount:      core.Money{Amount: 45_000},
		Description: "lunch",
		Date:        time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if created.Category == nil || created.Category.Name != "Food & Drinks" {
		t.Errorf("category not joined: %+v", created.Category)
	}

	created.Amount.Amount = 50_000
	if err := repo.UpdateTransaction(ctx, created); err != nil {
		t.Fatalf("update transaction: %v", err)
	}
	got, err := repo.GetTransaction(ctx, p.ID, created.ID)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if got.Amount.Amount != 50_000 {
		t.Errorf("amount = %d after update", got.Amount.Amount)
	}

	// Deleting the category keeps the transaction, uncategorized.
	custom, _ := repo.CreateCategory(ctx, core.Category{UserID: p.ID, Name: "Snacks", Type: core.Expense})
	tx2, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: p.ID, CategoryID: &custom.ID, Type: core.Expense,
		Amount: core.Money{Amount: 10_000}, Date: time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if err := repo.DeleteCategory(ctx, p.ID, custom.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	got2, err := repo.GetTransaction(ctx, p.ID, tx2.ID)
	if err != nil {
		t.Fatalf("transaction should survive category deletion: %v", err)
	}
	if got2.CategoryID != nil || got2.Category != nil {
		t.Errorf("category reference not cleared: %+v", got2)
	}

	if err := repo.DeleteTransaction(ctx, p.ID, created.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, p.ID, created.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTransactionsFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := newTestProfile(t, repo, "a@example.com")

	dates := []time.Time{
		time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		if _, err := repo.CreateTransaction(ctx, core.Transaction{
			UserID: p.ID, Type: core.Expense, Amount: core.Money{Amount: 1_000}, Date: d,
		}); err != nil {
			t.Fatalf("create transaction: %v", err)
		}
	}
	if _, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: p.ID, Type: core.Income, Amount: core.Money{Amount: 5_000}, Date: dates[1],
	}); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	txs, err := repo.ListTransactions(ctx, p.ID, TransactionFilter{Type: core.Expense, From: &from, To: &to})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 august expenses, got %d", len(txs))
	}
	// Newest first.
	if !txs[0].Date.After(txs[1].Date) {
		t.Errorf("not ordered newest first: %v, %v", txs[0].Date, txs[1].Date)
	}

	txs, err = repo.ListTransactions(ctx, p.ID, TransactionFilter{Limit: 1})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("limit ignored, got %d rows", len(txs))
	}
}

func TestNotificationDedup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := newTestProfile(t, repo, "a@example.com")

	n := core.Notification{
		UserID:   p.ID,
		Type:     core.NotifLowBalance,
		Title:    "Low Balance",
		Priority: core.PriorityHigh,
	}
	created, err := repo.CreateNotificationIfAbsent(ctx, n)
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}
	if !created {
		t.Fatal("first notification not created")
	}

	// Same type while unread: suppressed.
	created, err = repo.CreateNotificationIfAbsent(ctx, n)
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}
	if created {
		t.Fatal("duplicate unread notification created")
	}

	// A different type is independent.
	created, err = repo.CreateNotificationIfAbsent(ctx, core.Notification{
		UserID: p.ID, Type: core.NotifOverspending, Title: "High Spending", Priority: core.PriorityMedium,
	})
	if err != nil || !created {
		t.Fatalf("different type should insert: %v created=%v", err, created)
	}

	// After reading, the same type may fire again.
	list, err := repo.ListNotifications(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	for _, item := range list {
		if item.Type == core.NotifLowBalance {
			if err := repo.MarkNotificationRead(ctx, p.ID, item.ID); err != nil {
				t.Fatalf("mark read: %v", err)
			}
		}
	}
	created, err = repo.CreateNotificationIfAbsent(ctx, n)
	if err != nil || !created {
		t.Fatalf("read notification should not suppress: %v created=%v", err, created)
	}

	unread, err := repo.CountUnreadNotifications(ctx, p.ID)
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if unread != 2 {
		t.Errorf("unread = %d, want 2", unread)
	}
}

func TestBudgetAlertIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := newTestProfile(t, repo, "a@example.com")

	b, err := repo.CreateBudget(ctx, core.Budget{UserID: p.ID, Amount: core.Money{Amount: 1_000_000}, Period: core.PeriodMonthly})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}

	fired, err := repo.MarkBudgetAlertFired(ctx, b.ID, "2026-08", core.TierWarning)
	if err != nil || !fired {
		t.Fatalf("first mark: %v fired=%v", err, fired)
	}
	fired, err = repo.MarkBudgetAlertFired(ctx, b.ID, "2026-08", core.TierWarning)
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if fired {
		t.Fatal("same tier fired twice in one month")
	}

	// New month resets the dedup.
	fired, err = repo.MarkBudgetAlertFired(ctx, b.ID, "2026-09", core.TierWarning)
	if err != nil || !fired {
		t.Fatalf("new month should fire: %v fired=%v", err, fired)
	}
}

func TestGoalLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := newTestProfile(t, repo, "a@example.com")

	g, err := repo.CreateGoal(ctx, core.SavingsGoal{
		UserID:        p.ID,
		Name:          "Laptop",
		TargetAmount:  core.Money{Amount: 1_000_000},
		CurrentAmount: core.Money{Amount: 900_000},
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if g.IsCompleted {
		t.Fatal("goal completed too early")
	}

	if _, err := g.AddFunds(core.Money{Amount: 150_000}); err != nil {
		t.Fatalf("add funds: %v", err)
	}
	if err := repo.UpdateGoal(ctx, g); err != nil {
		t.Fatalf("update goal: %v", err)
	}

	got, err := repo.GetGoal(ctx, p.ID, g.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if !got.IsCompleted || got.CurrentAmount.Amount != 1_050_000 {
		t.Errorf("goal state = %+v", got)
	}
}

func TestBalance(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := newTestProfile(t, repo, "a@example.com")

	_, ok, err := repo.GetBalance(ctx, p.ID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if ok {
		t.Fatal("balance should be absent")
	}

	if err := repo.SetBalance(ctx, p.ID, 450_000); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	amount, ok, err := repo.GetBalance(ctx, p.ID)
	if err != nil || !ok || amount != 450_000 {
		t.Fatalf("balance = %d ok=%v err=%v", amount, ok, err)
	}

	// Upsert overwrites.
	if err := repo.SetBalance(ctx, p.ID, 700_000); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	amount, _, _ = repo.GetBalance(ctx, p.ID)
	if amount != 700_000 {
		t.Errorf("balance = %d after upsert", amount)
	}
}

func TestChatMessagesChronological(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := newTestProfile(t, repo, "a@example.com")

	for _, m := range []ChatMessage{
		{UserID: p.ID, Role: "user", Content: "How am I doing?"},
		{UserID: p.ID, Role: "assistant", Content: "Spending is under control."},
	} {
		if _, err := repo.SaveChatMessage(ctx, m); err != nil {
			t.Fatalf("save chat message: %v", err)
		}
	}

	msgs, err := repo.ListChatMessages(ctx, p.ID, 10)
	if err != nil {
		t.Fatalf("list chat messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("not chronological: %+v", msgs)
	}
}

func TestBackupLogs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := newTestProfile(t, repo, "a@example.com")

	if err := repo.SaveUserBackup(ctx, p.ID, `{"transactions":[]}`); err != nil {
		t.Fatalf("save user backup: %v", err)
	}

	now := time.Now().UTC()
	if err := repo.SaveBackupLog(ctx, BackupLog{
		Status: "completed", TotalUsers: 1, SuccessCount: 1,
		StartedAt: now.Add(-time.Minute), FinishedAt: now,
	}); err != nil {
		t.Fatalf("save backup log: %v", err)
	}

	logs, err := repo.ListBackupLogs(ctx, 5)
	if err != nil {
		t.Fatalf("list backup logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != "completed" || logs[0].SuccessCount != 1 {
		t.Errorf("logs = %+v", logs)
	}
}

func TestLatestUserBackup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := newTestProfile(t, repo, "a@example.com")

	if _, err := repo.LatestUserBackup(ctx, p.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.SaveUserBackup(ctx, p.ID, `{"version":1}`); err != nil {
		t.Fatalf("save user backup: %v", err)
	}
	if err := repo.SaveUserBackup(ctx, p.ID, `{"version":2}`); err != nil {
		t.Fatalf("save user backup: %v", err)
	}

	payload, err := repo.LatestUserBackup(ctx, p.ID)
	if err != nil {
		t.Fatalf("latest user backup: %v", err)
	}
	if payload != `{"version":2}` {
		t.Errorf("payload = %q, want newest snapshot", payload)
	}
}
