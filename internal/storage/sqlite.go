package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods delegate to the main storage with the transaction.
func (t *sqliteTransaction) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}
	return t.storage.saveTransactionsTx(ctx, t.tx, transactions)
}

func (t *sqliteTransaction) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getTransactionsTx(ctx, t.tx, filter)
}

func (t *sqliteTransaction) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getTransactionByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetTransactionHashes(ctx context.Context) (map[string]bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getTransactionHashesTx(ctx, t.tx)
}

func (t *sqliteTransaction) UpdateTransactionCategory(ctx context.Context, transactionID, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}
	return t.storage.updateTransactionCategoryTx(ctx, t.tx, transactionID, category)
}

func (t *sqliteTransaction) GetExpensesByPeriod(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}
	return t.storage.getExpensesByPeriodTx(ctx, t.tx, start, end)
}

func (t *sqliteTransaction) GetCategorySummaries(ctx context.Context, start, end time.Time) (map[string]service.CategorySummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCategorySummariesTx(ctx, t.tx, start, end)
}

func (t *sqliteTransaction) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCategoriesTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return t.storage.getCategoryByNameTx(ctx, t.tx, name)
}

func (t *sqliteTransaction) CreateCategory(ctx context.Context, name, description string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return t.storage.createCategoryTx(ctx, t.tx, name, description, categoryType)
}

func (t *sqliteTransaction) GetBudgets(ctx context.Context) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getBudgetsTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetBudgetByCategory(ctx context.Context, category string) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(category, "category"); err != nil {
		return nil, err
	}
	return t.storage.getBudgetByCategoryTx(ctx, t.tx, category)
}

func (t *sqliteTransaction) SetBudget(ctx context.Context, category string, limitAmount float64) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateBudget(category, limitAmount); err != nil {
		return nil, err
	}
	return t.storage.setBudgetTx(ctx, t.tx, category, limitAmount)
}

func (t *sqliteTransaction) DeleteBudget(ctx context.Context, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}
	return t.storage.deleteBudgetTx(ctx, t.tx, category)
}

func (t *sqliteTransaction) GetActiveCategoryRules(ctx context.Context) ([]model.CategoryRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getActiveCategoryRulesTx(ctx, t.tx)
}

func (t *sqliteTransaction) CreateCategoryRule(ctx context.Context, rule *model.CategoryRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}
	return t.storage.createCategoryRuleTx(ctx, t.tx, rule)
}

func (t *sqliteTransaction) DeactivateCategoryRule(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.deactivateCategoryRuleTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) IncrementRuleUseCount(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.incrementRuleUseCountTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) SaveReport(ctx context.Context, report *service.InsightReport) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReport(report); err != nil {
		return err
	}
	return t.storage.saveReportTx(ctx, t.tx, report)
}

func (t *sqliteTransaction) GetLatestReport(ctx context.Context) (*service.InsightReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getLatestReportTx(ctx, t.tx)
}

func (t *sqliteTransaction) ListReports(ctx context.Context, limit int) ([]service.InsightReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listReportsTx(ctx, t.tx, limit)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}

// Ensure both implementations satisfy the interfaces.
var (
	_ service.Storage     = (*SQLiteStorage)(nil)
	_ service.Transaction = (*sqliteTransaction)(nil)
)
