package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spendlens/spendlens/internal/common"
	"github.com/spendlens/spendlens/internal/model"
)

// GetBudgets returns all budgets ordered by category name.
func (s *SQLiteStorage) GetBudgets(ctx context.Context) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getBudgetsTx(ctx, s.db)
}

func (s *SQLiteStorage) getBudgetsTx(ctx context.Context, q queryable) ([]model.Budget, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, category, limit_amount, created_at, updated_at
		FROM budgets
		ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		var budget model.Budget
		if err := rows.Scan(&budget.ID, &budget.Category, &budget.LimitAmount, &budget.CreatedAt, &budget.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, budget)
	}

	return budgets, rows.Err()
}

// GetBudgetByCategory returns the budget for a category, or nil if none is set.
func (s *SQLiteStorage) GetBudgetByCategory(ctx context.Context, category string) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(category, "category"); err != nil {
		return nil, err
	}
	return s.getBudgetByCategoryTx(ctx, s.db, category)
}

func (s *SQLiteStorage) getBudgetByCategoryTx(ctx context.Context, q queryable, category string) (*model.Budget, error) {
	var budget model.Budget
	err := q.QueryRowContext(ctx, `
		SELECT id, category, limit_amount, created_at, updated_at
		FROM budgets
		WHERE category = ?
	`, category).Scan(&budget.ID, &budget.Category, &budget.LimitAmount, &budget.CreatedAt, &budget.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil // No budget set for this category
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}

	return &budget, nil
}

// SetBudget creates or updates the monthly budget for a category.
func (s *SQLiteStorage) SetBudget(ctx context.Context, category string, limitAmount float64) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateBudget(category, limitAmount); err != nil {
		return nil, err
	}
	return s.setBudgetTx(ctx, s.db, category, limitAmount)
}

func (s *SQLiteStorage) setBudgetTx(ctx context.Context, q queryable, category string, limitAmount float64) (*model.Budget, error) {
	_, err := q.ExecContext(ctx, `
		INSERT INTO budgets (category, limit_amount)
		VALUES (?, ?)
		ON CONFLICT(category) DO UPDATE SET limit_amount = excluded.limit_amount
	`, category, limitAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to set budget: %w", err)
	}

	budget, err := s.getBudgetByCategoryTx(ctx, q, category)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, fmt.Errorf("budget for %s vanished after upsert: %w", category, common.ErrDatabaseCorrupted)
	}

	slog.Info("budget set", "category", category, "limit", limitAmount)
	return budget, nil
}

// DeleteBudget removes the budget for a category.
func (s *SQLiteStorage) DeleteBudget(ctx context.Context, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}
	return s.deleteBudgetTx(ctx, s.db, category)
}

func (s *SQLiteStorage) deleteBudgetTx(ctx context.Context, q queryable, category string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM budgets WHERE category = ?`, category)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("budget for %s: %w", category, common.ErrNotFound)
	}

	slog.Info("budget deleted", "category", category)
	return nil
}
