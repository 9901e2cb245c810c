package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spendlens/spendlens/internal/common"
	"github.com/spendlens/spendlens/internal/model"
)

// CreateCategoryRule creates a new category rule. The rule's target
// category must already exist and be active.
func (s *SQLiteStorage) CreateCategoryRule(ctx context.Context, rule *model.CategoryRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}
	return s.createCategoryRuleTx(ctx, s.db, rule)
}

func (s *SQLiteStorage) createCategoryRuleTx(ctx context.Context, q queryable, rule *model.CategoryRule) error {
	// Verify category exists
	var categoryCount int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE name = ? AND is_active = 1",
		rule.Category).Scan(&categoryCount)
	if err != nil {
		return fmt.Errorf("failed to verify category: %w", err)
	}
	if categoryCount == 0 {
		return fmt.Errorf("category %q does not exist or is inactive", rule.Category)
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO category_rules (
			name, title_pattern, is_regex,
			amount_condition, amount_value, amount_min, amount_max,
			transaction_type, category, priority, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rule.Name, rule.TitlePattern, rule.IsRegex,
		rule.AmountCondition, rule.AmountValue, rule.AmountMin, rule.AmountMax,
		typeToNullString(rule.Type), rule.Category, rule.Priority, rule.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create category rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category rule ID: %w", err)
	}

	rule.ID = int(id)
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()

	return nil
}

// GetActiveCategoryRules retrieves all active category rules ordered by priority.
func (s *SQLiteStorage) GetActiveCategoryRules(ctx context.Context) ([]model.CategoryRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getActiveCategoryRulesTx(ctx, s.db)
}

func (s *SQLiteStorage) getActiveCategoryRulesTx(ctx context.Context, q queryable) ([]model.CategoryRule, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, title_pattern, is_regex,
			amount_condition, amount_value, amount_min, amount_max,
			transaction_type, category, priority, is_active,
			created_at, updated_at, use_count
		FROM category_rules
		WHERE is_active = 1
		ORDER BY priority DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get active category rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.CategoryRule
	for rows.Next() {
		var rule model.CategoryRule
		var txType sql.NullString
		err := rows.Scan(
			&rule.ID, &rule.Name, &rule.TitlePattern, &rule.IsRegex,
			&rule.AmountCondition, &rule.AmountValue, &rule.AmountMin, &rule.AmountMax,
			&txType, &rule.Category, &rule.Priority, &rule.IsActive,
			&rule.CreatedAt, &rule.UpdatedAt, &rule.UseCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category rule: %w", err)
		}
		rule.Type = nullStringToType(txType)
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rules: %w", err)
	}

	return rules, nil
}

// DeactivateCategoryRule marks a rule inactive so it no longer applies
// during imports. The rule itself is kept for history.
func (s *SQLiteStorage) DeactivateCategoryRule(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.deactivateCategoryRuleTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deactivateCategoryRuleTx(ctx context.Context, q queryable, id int) error {
	result, err := q.ExecContext(ctx, `UPDATE category_rules SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate category rule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("category rule %d: %w", id, common.ErrNotFound)
	}

	return nil
}

// IncrementRuleUseCount increments the use count for a category rule.
func (s *SQLiteStorage) IncrementRuleUseCount(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.incrementRuleUseCountTx(ctx, s.db, id)
}

func (s *SQLiteStorage) incrementRuleUseCountTx(ctx context.Context, q queryable, id int) error {
	result, err := q.ExecContext(ctx, `UPDATE category_rules SET use_count = use_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment rule use count: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("category rule %d: %w", id, common.ErrNotFound)
	}

	return nil
}

func typeToNullString(t *model.TransactionType) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*t), Valid: true}
}

func nullStringToType(s sql.NullString) *model.TransactionType {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := model.TransactionType(s.String)
	return &t
}
