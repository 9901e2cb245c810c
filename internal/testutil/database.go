// Package testutil provides test utilities shared across packages.
// It offers isolated in-memory databases and type-safe test data seeding.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/spendlens/spendlens/internal/service"
	"github.com/spendlens/spendlens/internal/storage"
	"github.com/spendlens/spendlens/internal/testutil/categories"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage    service.Storage
	t          *testing.T
	Categories categories.Categories
}

// SetupTestDB creates a new in-memory test database with the specified categories.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, nil)
func SetupTestDB(t *testing.T, cats categories.Categories) *TestDB {
	t.Helper()

	// Create in-memory SQLite storage
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Seed categories if provided
	for _, cat := range cats {
		if _, err := store.CreateCategory(ctx, cat.Name, cat.Description, cat.Type); err != nil {
			t.Fatalf("failed to seed category %q: %v", cat.Name, err)
		}
	}

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage:    store,
		Categories: cats,
		t:          t,
	}
}

// SetupTestDBWithBuilder creates a test database using a category builder.
// This is a convenience method that combines building and setup.
//
// Example:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.WithBasicCategories().WithCategory("Custom Category")
//	})
func SetupTestDBWithBuilder(t *testing.T, configure func(categories.Builder) categories.Builder) *TestDB {
	t.Helper()

	builder := categories.NewBuilder(t)
	if configure != nil {
		builder = configure(builder)
	}

	// Create in-memory SQLite storage
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Build categories
	cats, err := builder.Build(ctx, store)
	if err != nil {
		t.Fatalf("failed to build categories: %v", err)
	}

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage:    store,
		Categories: cats,
		t:          t,
	}
}

// MustGetCategory returns the category with the given name or fails the test.
func (db *TestDB) MustGetCategory(name categories.CategoryName) string {
	db.t.Helper()
	cat := db.Categories.MustFind(db.t, name)
	return cat.Name
}

// WithTransaction executes the given function within a database transaction.
// The transaction is automatically rolled back after the function completes.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	return nil
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Categories     categories.Categories
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	// Create in-memory SQLite storage
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	ctx := context.Background()

	// Run migrations unless skipped
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Seed categories
	for _, cat := range opts.Categories {
		if _, err := store.CreateCategory(ctx, cat.Name, cat.Description, cat.Type); err != nil {
			t.Fatalf("failed to seed category %q: %v", cat.Name, err)
		}
	}

	// Run custom setup
	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage:    store,
		Categories: opts.Categories,
		t:          t,
	}
}
