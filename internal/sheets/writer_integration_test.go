//go:build integration
// +build integration

package sheets

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/service"
	"github.com/stretchr/testify/require"
)

func TestWriter_Integration_OAuth2(t *testing.T) {
	// Skip if OAuth2 credentials are not available
	clientID := os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	refreshToken := os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")

	if clientID == "" || clientSecret == "" || refreshToken == "" {
		t.Skip("OAuth2 credentials not available")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	config := Config{
		ClientID:         clientID,
		ClientSecret:     clientSecret,
		RefreshToken:     refreshToken,
		SpreadsheetName:  "Test SpendLens Report - Integration",
		EnableFormatting: true,
		TimeZone:         "America/New_York",
		BatchSize:        100,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}

	writer, err := NewWriter(ctx, config, logger)
	require.NoError(t, err)

	// Create test data
	transactions := generateTestTransactions()
	report := generateTestReport(transactions)
	summary := generateTestSummary(transactions)

	// Write the report
	err = writer.Write(ctx, report, summary, transactions)
	require.NoError(t, err)
}

func TestWriter_Integration_ServiceAccount(t *testing.T) {
	// Skip if service account path is not available
	serviceAccountPath := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")
	if serviceAccountPath == "" {
		t.Skip("Service account path not available")
	}

	// Verify the file exists
	if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
		t.Skipf("Service account file does not exist: %s", serviceAccountPath)
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	config := Config{
		ServiceAccountPath: serviceAccountPath,
		SpreadsheetName:    "Test SpendLens Report - Service Account",
		EnableFormatting:   true,
		TimeZone:           "America/New_York",
		BatchSize:          100,
		RetryAttempts:      3,
		RetryDelay:         time.Second,
	}

	writer, err := NewWriter(ctx, config, logger)
	require.NoError(t, err)

	// Create test data
	transactions := generateTestTransactions()
	report := generateTestReport(transactions)
	summary := generateTestSummary(transactions)

	// Write the report
	err = writer.Write(ctx, report, summary, transactions)
	require.NoError(t, err)
}

// Helper functions for generating test data
func generateTestTransactions() []model.Transaction {
	baseDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return []model.Transaction{
		{
			ID:       "test-1",
			Date:     baseDate,
			Title:    "Whole Foods Market",
			Amount:   125.50,
			Category: "Groceries",
			Type:     model.TransactionTypeExpense,
		},
		{
			ID:       "test-2",
			Date:     baseDate.Add(2 * 24 * time.Hour),
			Title:    "Shell Gas Station",
			Amount:   45.00,
			Category: "Transportation",
			Type:     model.TransactionTypeExpense,
		},
		{
			ID:       "test-3",
			Date:     baseDate.Add(5 * 24 * time.Hour),
			Title:    "Acme Payroll",
			Amount:   2500.00,
			Category: "Salary",
			Type:     model.TransactionTypeIncome,
		},
		{
			ID:       "test-4",
			Date:     baseDate.Add(10 * 24 * time.Hour),
			Title:    "Netflix",
			Amount:   15.99,
			Category: "Entertainment",
			Type:     model.TransactionTypeExpense,
		},
	}
}

func generateTestReport(transactions []model.Transaction) *service.InsightReport {
	return &service.InsightReport{
		ID:          "integration-test-report",
		GeneratedAt: time.Now(),
		PeriodStart: transactions[0].Date,
		PeriodEnd:   transactions[len(transactions)-1].Date,
		Insights: model.Insights{
			{
				ID:          "integration-insight-1",
				Type:        model.InsightBudgetRecommendation,
				Priority:    model.PriorityHigh,
				Title:       "Consider setting a budget for Groceries",
				Description: "You spent $125.50 on Groceries with no budget in place.",
			},
		},
		Transactions: len(transactions),
	}
}

func generateTestSummary(transactions []model.Transaction) *service.ReportSummary {
	summary := &service.ReportSummary{
		DateRange: service.DateRange{
			Start: transactions[0].Date,
			End:   transactions[len(transactions)-1].Date,
		},
		ByCategory: make(map[string]service.CategorySummary),
	}

	// Calculate totals
	for _, txn := range transactions {
		if txn.Type == model.TransactionTypeIncome {
			summary.TotalIncome += txn.Amount
		} else {
			summary.TotalExpenses += txn.Amount
		}

		// Update category summary
		catSum := summary.ByCategory[txn.Category]
		catSum.Count++
		catSum.Amount += txn.Amount
		summary.ByCategory[txn.Category] = catSum
	}

	return summary
}
