package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spendlens/spendlens/internal/common"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/service"
)

// SaveTransactions saves multiple transactions to the database.
// Transactions whose hash already exists are silently skipped.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	// Validate inputs
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveTransactionsTx(ctx, tx, transactions); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, hash, date, title, raw_name, category,
			account_id, source, amount, transaction_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		// Generate hash if not already set
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		_, err = stmt.ExecContext(ctx,
			txn.ID,
			txn.Hash,
			txn.Date,
			txn.Title,
			txn.RawName,
			txn.Category,
			txn.AccountID,
			txn.Source,
			txn.Amount,
			string(txn.Type),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	return nil
}

// GetTransactions retrieves transactions matching the given filter.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *filter.EndDate, *filter.StartDate)
	}
	return s.getTransactionsTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) getTransactionsTx(ctx context.Context, q queryable, filter service.TransactionFilter) ([]model.Transaction, error) {
	query := `
		SELECT id, hash, date, title, raw_name, category,
		       account_id, source, amount, transaction_type
		FROM transactions`

	var conditions []string
	args := []any{}

	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, *filter.EndDate)
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY date ASC, id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// GetTransactionByID retrieves a single transaction by ID.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getTransactionByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getTransactionByIDTx(ctx context.Context, q queryable, id string) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, hash, date, title, raw_name, category,
		       account_id, source, amount, transaction_type
		FROM transactions
		WHERE id = ?
	`, id)

	txn, err := scanTransaction(row.Scan)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// GetTransactionHashes returns the set of all stored transaction hashes.
// Importers use it to skip transactions that were already ingested.
func (s *SQLiteStorage) GetTransactionHashes(ctx context.Context) (map[string]bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getTransactionHashesTx(ctx, s.db)
}

func (s *SQLiteStorage) getTransactionHashesTx(ctx context.Context, q queryable) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, `SELECT hash FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction hashes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	hashes := make(map[string]bool)
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("failed to scan hash: %w", err)
		}
		hashes[hash] = true
	}

	return hashes, rows.Err()
}

// UpdateTransactionCategory sets the category of a single transaction.
func (s *SQLiteStorage) UpdateTransactionCategory(ctx context.Context, transactionID, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}
	return s.updateTransactionCategoryTx(ctx, s.db, transactionID, category)
}

func (s *SQLiteStorage) updateTransactionCategoryTx(ctx context.Context, q queryable, transactionID, category string) error {
	result, err := q.ExecContext(ctx, `
		UPDATE transactions SET category = ? WHERE id = ?
	`, category, transactionID)
	if err != nil {
		return fmt.Errorf("failed to update transaction category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", transactionID, common.ErrNotFound)
	}

	return nil
}

// GetExpensesByPeriod retrieves all expense transactions within a date range.
func (s *SQLiteStorage) GetExpensesByPeriod(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}
	return s.getExpensesByPeriodTx(ctx, s.db, start, end)
}

func (s *SQLiteStorage) getExpensesByPeriodTx(ctx context.Context, q queryable, start, end time.Time) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, hash, date, title, raw_name, category,
		       account_id, source, amount, transaction_type
		FROM transactions
		WHERE transaction_type = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, string(model.TransactionTypeExpense), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// GetCategorySummaries aggregates expense totals and counts per category
// within a date range. Uncategorized transactions are grouped under the
// default budget category.
func (s *SQLiteStorage) GetCategorySummaries(ctx context.Context, start, end time.Time) (map[string]service.CategorySummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}
	return s.getCategorySummariesTx(ctx, s.db, start, end)
}

func (s *SQLiteStorage) getCategorySummariesTx(ctx context.Context, q queryable, start, end time.Time) (map[string]service.CategorySummary, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT COALESCE(NULLIF(category, ''), ?) AS category_name,
		       COUNT(*) AS txn_count,
		       SUM(ABS(amount)) AS total_amount
		FROM transactions
		WHERE transaction_type = ? AND date >= ? AND date <= ?
		GROUP BY category_name
	`, model.DefaultBudgetCategory, string(model.TransactionTypeExpense), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query category summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := make(map[string]service.CategorySummary)
	for rows.Next() {
		var name string
		var summary service.CategorySummary
		if err := rows.Scan(&name, &summary.Count, &summary.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan category summary: %w", err)
		}
		summaries[name] = summary
	}

	return summaries, rows.Err()
}

// scanTransaction scans a single transaction row. The scan argument is
// either (*sql.Row).Scan or bound to a (*sql.Rows).Scan.
func scanTransaction(scan func(dest ...any) error) (*model.Transaction, error) {
	var txn model.Transaction
	var rawName, category, accountID, source sql.NullString
	var txType string

	err := scan(
		&txn.ID,
		&txn.Hash,
		&txn.Date,
		&txn.Title,
		&rawName,
		&category,
		&accountID,
		&source,
		&txn.Amount,
		&txType,
	)
	if err != nil {
		return nil, err
	}

	if rawName.Valid {
		txn.RawName = rawName.String
	}
	if category.Valid {
		txn.Category = category.String
	}
	if accountID.Valid {
		txn.AccountID = accountID.String
	}
	if source.Valid {
		txn.Source = source.String
	}
	txn.Type = model.TransactionType(txType)

	return &txn, nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}

	return transactions, rows.Err()
}

// queryable is an interface satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
