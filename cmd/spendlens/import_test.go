package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/plaid"
	"github.com/spendlens/spendlens/internal/service"
	"github.com/spendlens/spendlens/internal/testutil"
	"github.com/spendlens/spendlens/internal/testutil/categories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestTransaction(id, title string, amount float64, day int) model.Transaction {
	txn := model.Transaction{
		ID:        id,
		Title:     title,
		RawName:   title,
		Amount:    amount,
		Date:      time.Date(2024, 1, day, 12, 0, 0, 0, time.UTC),
		Type:      model.TransactionTypeExpense,
		AccountID: "acct-1",
		Source:    "ofx",
	}
	txn.Hash = txn.GenerateHash()
	return txn
}

func TestImportTransactions_SkipsExisting(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	ctx := context.Background()

	first := makeTestTransaction("tx-1", "Coffee Shop", 4.50, 2)
	require.NoError(t, db.Storage.SaveTransactions(ctx, []model.Transaction{first}))

	// Re-import the same transaction plus a new one
	batch := []model.Transaction{
		makeTestTransaction("tx-1b", "Coffee Shop", 4.50, 2), // same hash, different source ID
		makeTestTransaction("tx-2", "Grocery Store", 62.10, 3),
	}
	require.NoError(t, importTransactions(ctx, db.Storage, batch, false))

	saved, err := db.Storage.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestImportTransactions_DryRunSavesNothing(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	ctx := context.Background()

	batch := []model.Transaction{
		makeTestTransaction("tx-1", "Coffee Shop", 4.50, 2),
	}
	require.NoError(t, importTransactions(ctx, db.Storage, batch, true))

	saved, err := db.Storage.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestImportTransactions_FillsMissingHash(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	ctx := context.Background()

	txn := makeTestTransaction("tx-1", "Coffee Shop", 4.50, 2)
	txn.Hash = ""
	require.NoError(t, importTransactions(ctx, db.Storage, []model.Transaction{txn}, false))

	saved, err := db.Storage.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.NotEmpty(t, saved[0].Hash)
}

func TestApplyCategoryRules(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithCategories(categories.CategoryDining, categories.CategoryGroceries)
	})
	ctx := context.Background()

	require.NoError(t, db.Storage.CreateCategoryRule(ctx, &model.CategoryRule{
		Name:            "coffee",
		TitlePattern:    "coffee",
		AmountCondition: "any",
		Category:        "Dining",
		IsActive:        true,
	}))

	transactions := []model.Transaction{
		makeTestTransaction("tx-1", "Blue Bottle Coffee", 6.25, 2),
		makeTestTransaction("tx-2", "Grocery Store", 48.00, 3),
	}
	// Already-categorized transactions are left alone
	transactions = append(transactions, makeTestTransaction("tx-3", "Corner Coffee Cart", 3.00, 4))
	transactions[2].Category = "Groceries"

	categorized, err := applyCategoryRules(ctx, db.Storage, transactions)
	require.NoError(t, err)

	assert.Equal(t, 1, categorized)
	assert.Equal(t, "Dining", transactions[0].Category)
	assert.Empty(t, transactions[1].Category)
	assert.Equal(t, "Groceries", transactions[2].Category)

	// Rule usage is recorded
	rules, err := db.Storage.GetActiveCategoryRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, 1, rules[0].UseCount)
}

func TestApplyCategoryRules_NoRules(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	ctx := context.Background()

	transactions := []model.Transaction{
		makeTestTransaction("tx-1", "Coffee Shop", 4.50, 2),
	}
	categorized, err := applyCategoryRules(ctx, db.Storage, transactions)
	require.NoError(t, err)

	assert.Zero(t, categorized)
	assert.Empty(t, transactions[0].Category)
}

func TestImportFromFetcher_SavesFetchedTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	ctx := context.Background()

	fetcher := plaid.NewMockClient()
	fetcher.GetTransactionsFn = func(_ context.Context, _, _ time.Time) ([]model.Transaction, error) {
		return []model.Transaction{
			makeTestTransaction("tx-1", "Coffee Shop", 4.50, 2),
			makeTestTransaction("tx-2", "Grocery Store", 62.10, 3),
		}, nil
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, importFromFetcher(ctx, db.Storage, fetcher, "Plaid", start, end, nil, false))

	// The fetcher saw the requested date range
	require.Len(t, fetcher.GetTransactionsCalls, 1)
	assert.Equal(t, start, fetcher.GetTransactionsCalls[0].StartDate)
	assert.Equal(t, end, fetcher.GetTransactionsCalls[0].EndDate)

	saved, err := db.Storage.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, saved, 2)

	// A second run fetches again but dedupes everything
	require.NoError(t, importFromFetcher(ctx, db.Storage, fetcher, "Plaid", start, end, nil, false))
	saved, err = db.Storage.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestImportFromFetcher_AppliesAccountFilterAndRules(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithCategories(categories.CategoryDining)
	})
	ctx := context.Background()

	require.NoError(t, db.Storage.CreateCategoryRule(ctx, &model.CategoryRule{
		Name:            "coffee",
		TitlePattern:    "coffee",
		AmountCondition: "any",
		Category:        "Dining",
		IsActive:        true,
	}))

	other := makeTestTransaction("tx-2", "Hardware Store", 30.00, 3)
	other.AccountID = "acct-2"

	fetcher := plaid.NewMockClient()
	fetcher.GetTransactionsFn = func(_ context.Context, _, _ time.Time) ([]model.Transaction, error) {
		return []model.Transaction{
			makeTestTransaction("tx-1", "Blue Bottle Coffee", 6.25, 2),
			other,
		}, nil
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, importFromFetcher(ctx, db.Storage, fetcher, "Plaid", start, end, []string{"acct-1"}, false))

	saved, err := db.Storage.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Blue Bottle Coffee", saved[0].Title)
	assert.Equal(t, "Dining", saved[0].Category)
}

func TestImportFromFetcher_FetchErrorPropagates(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	ctx := context.Background()

	fetcher := plaid.NewMockClient()
	fetcher.GetTransactionsFn = func(_ context.Context, _, _ time.Time) ([]model.Transaction, error) {
		return nil, errors.New("aggregator unavailable")
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	err := importFromFetcher(ctx, db.Storage, fetcher, "Plaid", start, end, nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregator unavailable")

	saved, err := db.Storage.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestFilterTransactionsByAccount(t *testing.T) {
	transactions := []model.Transaction{
		makeTestTransaction("tx-1", "Coffee Shop", 4.50, 2),
		makeTestTransaction("tx-2", "Grocery Store", 62.10, 3),
	}
	transactions[1].AccountID = "acct-2"

	filtered := filterTransactionsByAccount(transactions, []string{"acct-2"})
	require.Len(t, filtered, 1)
	assert.Equal(t, "tx-2", filtered[0].ID)

	assert.Empty(t, filterTransactionsByAccount(transactions, []string{"acct-3"}))
}

func TestGetTopCategories(t *testing.T) {
	counts := map[string]int{
		"Dining":        7,
		"Groceries":     12,
		"Subscriptions": 2,
		"Transport":     5,
	}

	top := getTopCategories(counts, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "Groceries", top[0].name)
	assert.Equal(t, 12, top[0].count)
	assert.Equal(t, "Dining", top[1].name)

	all := getTopCategories(counts, 10)
	assert.Len(t, all, 4)

	assert.Empty(t, getTopCategories(nil, 5))
}
