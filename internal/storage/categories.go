package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/spendlens/spendlens/internal/model"
)

// GetCategories returns all active categories.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoriesTx(ctx, s.db)
}

func (s *SQLiteStorage) getCategoriesTx(ctx context.Context, q queryable) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, description, type, created_at, is_active
		FROM categories
		WHERE is_active = 1
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, scanErr := scanCategory(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan category: %w", scanErr)
		}
		categories = append(categories, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoryByName returns a category by its name, or nil if no active
// category with that name exists.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.getCategoryByNameTx(ctx, s.db, name)
}

func (s *SQLiteStorage) getCategoryByNameTx(ctx context.Context, q queryable, name string) (*model.Category, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, description, type, created_at, is_active
		FROM categories
		WHERE name = ? AND is_active = 1
	`, name)

	cat, err := scanCategory(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil // Category not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return cat, nil
}

// CreateCategory creates a new category. Creating a category that already
// exists is a no-op that returns the existing row; inactive categories are
// reactivated.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name, description string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if !categoryType.Valid() {
		return nil, fmt.Errorf("invalid category type: %q", categoryType)
	}
	return s.createCategoryTx(ctx, s.db, name, description, categoryType)
}

func (s *SQLiteStorage) createCategoryTx(ctx context.Context, q queryable, name, description string, categoryType model.CategoryType) (*model.Category, error) {
	// Check if category already exists (including inactive ones)
	row := q.QueryRowContext(ctx, `
		SELECT id, name, description, type, created_at, is_active
		FROM categories
		WHERE name = ?
	`, name)

	existing, err := scanCategory(row.Scan)
	if err == nil {
		if !existing.IsActive {
			// Reactivate it
			if _, execErr := q.ExecContext(ctx, `UPDATE categories SET is_active = 1 WHERE id = ?`, existing.ID); execErr != nil {
				return nil, fmt.Errorf("failed to reactivate category: %w", execErr)
			}
			existing.IsActive = true
			slog.Info("reactivated existing category", "name", name)
		}
		return existing, nil
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check existing category: %w", err)
	}

	// Create new category
	now := time.Now()
	result, err := q.ExecContext(ctx, `
		INSERT INTO categories (name, description, type, created_at, is_active)
		VALUES (?, ?, ?, ?, 1)
	`, name, description, string(categoryType), now)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	category := &model.Category{
		ID:          int(id),
		Name:        name,
		Description: description,
		Type:        categoryType,
		CreatedAt:   now,
		IsActive:    true,
	}

	slog.Info("created new category", "name", name, "id", id)
	return category, nil
}

func scanCategory(scan func(dest ...any) error) (*model.Category, error) {
	var cat model.Category
	var description sql.NullString
	var catType string

	err := scan(
		&cat.ID,
		&cat.Name,
		&description,
		&catType,
		&cat.CreatedAt,
		&cat.IsActive,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		cat.Description = description.String
	}
	cat.Type = model.CategoryType(catType)

	return &cat, nil
}
