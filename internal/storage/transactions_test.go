package storage

import (
	"context"
	"testing"
	"time"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/service"
)

func TestSQLiteStorage_TransactionDeduplication(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	baseTime := time.Date(2025, 4, 10, 9, 30, 0, 0, time.UTC)

	// Create base transaction
	baseTxn := model.Transaction{
		ID:        "original",
		Date:      baseTime,
		Title:     "Duplicate Test",
		RawName:   "DUPLICATE TEST POS",
		Amount:    99.99,
		AccountID: "acc1",
		Type:      model.TransactionTypeExpense,
	}
	baseTxn.Hash = baseTxn.GenerateHash()

	// First save
	if err := store.SaveTransactions(ctx, []model.Transaction{baseTxn}); err != nil {
		t.Fatalf("Failed to save initial transaction: %v", err)
	}

	// Try to save duplicate with different ID (should be skipped via hash)
	dupTxn := baseTxn
	dupTxn.ID = "duplicate"

	if err := store.SaveTransactions(ctx, []model.Transaction{dupTxn}); err != nil {
		t.Fatalf("Failed to save duplicate transaction: %v", err)
	}

	txns, err := store.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		t.Fatalf("Failed to get transactions: %v", err)
	}
	if len(txns) != 1 {
		t.Errorf("Expected 1 transaction after duplicate save, got %d", len(txns))
	}

	// Save a slightly different transaction (should be saved)
	diffTxn := baseTxn
	diffTxn.ID = "different"
	diffTxn.Amount = 100.00
	diffTxn.Hash = diffTxn.GenerateHash()

	if err := store.SaveTransactions(ctx, []model.Transaction{diffTxn}); err != nil {
		t.Fatalf("Failed to save different transaction: %v", err)
	}

	txns, err = store.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		t.Fatalf("Failed to get transactions: %v", err)
	}
	if len(txns) != 2 {
		t.Errorf("Expected 2 transactions after different save, got %d", len(txns))
	}
}

func TestSQLiteStorage_GetTransactions_Filtering(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	transactions := []model.Transaction{
		{ID: "t1", Date: base, Title: "Grocery Run", Category: "Groceries", AccountID: "acc1", Amount: 42.00, Type: model.TransactionTypeExpense},
		{ID: "t2", Date: base.AddDate(0, 0, 5), Title: "Cinema", Category: "Entertainment", AccountID: "acc1", Amount: 18.50, Type: model.TransactionTypeExpense},
		{ID: "t3", Date: base.AddDate(0, 0, 10), Title: "Grocery Run", Category: "Groceries", AccountID: "acc1", Amount: 55.25, Type: model.TransactionTypeExpense},
		{ID: "t4", Date: base.AddDate(0, 0, 15), Title: "Paycheck", Category: "", AccountID: "acc1", Amount: 2500.00, Type: model.TransactionTypeIncome},
	}
	for i := range transactions {
		transactions[i].Hash = transactions[i].GenerateHash()
	}
	if err := store.SaveTransactions(ctx, transactions); err != nil {
		t.Fatalf("Failed to save transactions: %v", err)
	}

	midStart := base.AddDate(0, 0, 3)
	midEnd := base.AddDate(0, 0, 12)

	tests := []struct {
		name    string
		filter  service.TransactionFilter
		wantIDs []string
	}{
		{
			name:    "no filter returns all in date order",
			filter:  service.TransactionFilter{},
			wantIDs: []string{"t1", "t2", "t3", "t4"},
		},
		{
			name:    "date range",
			filter:  service.TransactionFilter{StartDate: &midStart, EndDate: &midEnd},
			wantIDs: []string{"t2", "t3"},
		},
		{
			name:    "category filter",
			filter:  service.TransactionFilter{Category: "Groceries"},
			wantIDs: []string{"t1", "t3"},
		},
		{
			name:    "limit and offset",
			filter:  service.TransactionFilter{Limit: 2, Offset: 1},
			wantIDs: []string{"t2", "t3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.GetTransactions(ctx, tt.filter)
			if err != nil {
				t.Fatalf("GetTransactions() error = %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Expected %d transactions, got %d", len(tt.wantIDs), len(got))
			}
			for i, want := range tt.wantIDs {
				if got[i].ID != want {
					t.Errorf("transaction[%d].ID = %q, want %q", i, got[i].ID, want)
				}
			}
		})
	}
}

func TestSQLiteStorage_GetTransactions_InvalidRange(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	_, err := store.GetTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
	if err == nil {
		t.Fatal("Expected error for inverted date range")
	}
}

func TestSQLiteStorage_GetTransactionByID_RoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	want := model.Transaction{
		ID:        "roundtrip-1",
		Date:      time.Date(2025, 5, 2, 8, 15, 0, 0, time.UTC),
		Title:     "Coffee Corner",
		RawName:   "COFFEE CORNER 0042",
		Category:  "Dining",
		AccountID: "acc-7",
		Source:    "ofx",
		Amount:    4.75,
		Type:      model.TransactionTypeExpense,
	}
	want.Hash = want.GenerateHash()

	if err := store.SaveTransactions(ctx, []model.Transaction{want}); err != nil {
		t.Fatalf("Failed to save transaction: %v", err)
	}

	got, err := store.GetTransactionByID(ctx, want.ID)
	if err != nil {
		t.Fatalf("GetTransactionByID() error = %v", err)
	}

	if got.Title != want.Title {
		t.Errorf("Title = %q, want %q", got.Title, want.Title)
	}
	if got.RawName != want.RawName {
		t.Errorf("RawName = %q, want %q", got.RawName, want.RawName)
	}
	if got.Category != want.Category {
		t.Errorf("Category = %q, want %q", got.Category, want.Category)
	}
	if got.Source != want.Source {
		t.Errorf("Source = %q, want %q", got.Source, want.Source)
	}
	if got.Amount != want.Amount {
		t.Errorf("Amount = %v, want %v", got.Amount, want.Amount)
	}
	if got.Type != want.Type {
		t.Errorf("Type = %q, want %q", got.Type, want.Type)
	}
	if !got.Date.Equal(want.Date) {
		t.Errorf("Date = %v, want %v", got.Date, want.Date)
	}
}

func TestSQLiteStorage_GetTransactionHashes(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	hashes, err := store.GetTransactionHashes(ctx)
	if err != nil {
		t.Fatalf("GetTransactionHashes() error = %v", err)
	}
	if len(hashes) != 0 {
		t.Errorf("Expected empty hash set, got %d entries", len(hashes))
	}

	txns := createTestTransactions(3)
	if err := store.SaveTransactions(ctx, txns); err != nil {
		t.Fatalf("Failed to save transactions: %v", err)
	}

	hashes, err = store.GetTransactionHashes(ctx)
	if err != nil {
		t.Fatalf("GetTransactionHashes() error = %v", err)
	}
	if len(hashes) != 3 {
		t.Fatalf("Expected 3 hashes, got %d", len(hashes))
	}
	for _, txn := range txns {
		if !hashes[txn.Hash] {
			t.Errorf("Hash for %s missing from set", txn.ID)
		}
	}
}

func TestSQLiteStorage_UpdateTransactionCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := createTestTransactions(1)
	if err := store.SaveTransactions(ctx, txns); err != nil {
		t.Fatalf("Failed to save transactions: %v", err)
	}

	if err := store.UpdateTransactionCategory(ctx, txns[0].ID, "Dining"); err != nil {
		t.Fatalf("UpdateTransactionCategory() error = %v", err)
	}

	got, err := store.GetTransactionByID(ctx, txns[0].ID)
	if err != nil {
		t.Fatalf("GetTransactionByID() error = %v", err)
	}
	if got.Category != "Dining" {
		t.Errorf("Category = %q, want %q", got.Category, "Dining")
	}
}

func TestSQLiteStorage_GetExpensesByPeriod(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	transactions := []model.Transaction{
		{ID: "e1", Date: base, Title: "Lunch", Amount: 12.00, AccountID: "acc1", Type: model.TransactionTypeExpense},
		{ID: "i1", Date: base.AddDate(0, 0, 1), Title: "Salary", Amount: 3000.00, AccountID: "acc1", Type: model.TransactionTypeIncome},
		{ID: "e2", Date: base.AddDate(0, 0, 2), Title: "Dinner", Amount: 34.00, AccountID: "acc1", Type: model.TransactionTypeExpense},
		{ID: "e3", Date: base.AddDate(0, 1, 0), Title: "Outside Range", Amount: 20.00, AccountID: "acc1", Type: model.TransactionTypeExpense},
	}
	for i := range transactions {
		transactions[i].Hash = transactions[i].GenerateHash()
	}
	if err := store.SaveTransactions(ctx, transactions); err != nil {
		t.Fatalf("Failed to save transactions: %v", err)
	}

	expenses, err := store.GetExpensesByPeriod(ctx, base, base.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("GetExpensesByPeriod() error = %v", err)
	}

	if len(expenses) != 2 {
		t.Fatalf("Expected 2 expenses, got %d", len(expenses))
	}
	if expenses[0].ID != "e1" || expenses[1].ID != "e2" {
		t.Errorf("Got IDs %s, %s; want e1, e2", expenses[0].ID, expenses[1].ID)
	}
}

func TestSQLiteStorage_GetCategorySummaries(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	transactions := []model.Transaction{
		{ID: "s1", Date: base, Title: "Groceries A", Category: "Groceries", Amount: 40.00, AccountID: "acc1", Type: model.TransactionTypeExpense},
		{ID: "s2", Date: base.AddDate(0, 0, 1), Title: "Groceries B", Category: "Groceries", Amount: 60.00, AccountID: "acc1", Type: model.TransactionTypeExpense},
		{ID: "s3", Date: base.AddDate(0, 0, 2), Title: "Mystery Charge", Category: "", Amount: 25.00, AccountID: "acc1", Type: model.TransactionTypeExpense},
		{ID: "s4", Date: base.AddDate(0, 0, 3), Title: "Salary", Category: "", Amount: 1000.00, AccountID: "acc1", Type: model.TransactionTypeIncome},
	}
	for i := range transactions {
		transactions[i].Hash = transactions[i].GenerateHash()
	}
	if err := store.SaveTransactions(ctx, transactions); err != nil {
		t.Fatalf("Failed to save transactions: %v", err)
	}

	summaries, err := store.GetCategorySummaries(ctx, base, base.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("GetCategorySummaries() error = %v", err)
	}

	if len(summaries) != 2 {
		t.Fatalf("Expected 2 summaries, got %d: %v", len(summaries), summaries)
	}

	groceries := summaries["Groceries"]
	if groceries.Count != 2 {
		t.Errorf("Groceries count = %d, want 2", groceries.Count)
	}
	if groceries.Amount != 100.00 {
		t.Errorf("Groceries amount = %v, want 100.00", groceries.Amount)
	}

	general := summaries[model.DefaultBudgetCategory]
	if general.Count != 1 {
		t.Errorf("General count = %d, want 1", general.Count)
	}
	if general.Amount != 25.00 {
		t.Errorf("General amount = %v, want 25.00", general.Amount)
	}
}
