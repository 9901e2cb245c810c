// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/spendlens/spendlens/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  string
	Limit     int
	Offset    int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactionHashes(ctx context.Context) (map[string]bool, error)
	UpdateTransactionCategory(ctx context.Context, transactionID, category string) error
	GetExpensesByPeriod(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	GetCategorySummaries(ctx context.Context, start, end time.Time) (map[string]CategorySummary, error)

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name, description string, categoryType model.CategoryType) (*model.Category, error)

	// Budget operations
	GetBudgets(ctx context.Context) ([]model.Budget, error)
	GetBudgetByCategory(ctx context.Context, category string) (*model.Budget, error)
	SetBudget(ctx context.Context, category string, limitAmount float64) (*model.Budget, error)
	DeleteBudget(ctx context.Context, category string) error

	// Category rule operations
	GetActiveCategoryRules(ctx context.Context) ([]model.CategoryRule, error)
	CreateCategoryRule(ctx context.Context, rule *model.CategoryRule) error
	DeactivateCategoryRule(ctx context.Context, id int) error
	IncrementRuleUseCount(ctx context.Context, id int) error

	// Insight report operations
	SaveReport(ctx context.Context, report *InsightReport) error
	GetLatestReport(ctx context.Context) (*InsightReport, error)
	ListReports(ctx context.Context, limit int) ([]InsightReport, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// TransactionFetcher retrieves transactions from a remote source.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
	GetAccounts(ctx context.Context) ([]string, error)
}

// InsightReport is a stored snapshot of one analysis run. The engine
// itself never persists anything; reports exist so past runs can be
// reviewed from the CLI.
type InsightReport struct {
	GeneratedAt  time.Time      `json:"generated_at"`
	ID           string         `json:"id"`
	Insights     model.Insights `json:"insights"`
	PeriodStart  time.Time      `json:"period_start"`
	PeriodEnd    time.Time      `json:"period_end"`
	Transactions int            `json:"transactions"`
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// CategorySummary contains aggregated statistics for a category.
type CategorySummary struct {
	Count  int
	Amount float64
}

// ReportSummary aggregates the numbers behind an exported report.
type ReportSummary struct {
	ByCategory    map[string]CategorySummary
	DateRange     DateRange
	TotalIncome   float64
	TotalExpenses float64
}

// ReportWriter exports a generated report to an external destination.
type ReportWriter interface {
	Write(ctx context.Context, report *InsightReport, summary *ReportSummary, transactions []model.Transaction) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
