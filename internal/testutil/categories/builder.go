package categories

import (
	"context"
	"fmt"
	"testing"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/service"
)

// Builder provides a fluent interface for constructing test categories.
type Builder interface {
	// WithCategory adds a single category to the builder.
	WithCategory(name CategoryName) Builder

	// WithCategories adds multiple categories to the builder.
	WithCategories(names ...CategoryName) Builder

	// WithBasicCategories adds the minimal set of categories commonly used in tests.
	WithBasicCategories() Builder

	// WithFixture adds categories from a predefined fixture.
	WithFixture(fixture Fixture) Builder

	// Build creates the categories in the provided storage and returns them.
	Build(ctx context.Context, storage service.Storage) (Categories, error)

	// BuildMap creates categories and returns them as a map for easy lookup.
	BuildMap(ctx context.Context, storage service.Storage) (CategoryMap, error)
}

// CategoryName represents a strongly-typed category name.
type CategoryName string

// String returns the string representation of the category name.
func (c CategoryName) String() string {
	return string(c)
}

// Common category names used across tests.
const (
	CategoryDining        CategoryName = "Dining"
	CategoryGroceries     CategoryName = "Groceries"
	CategoryShopping      CategoryName = "Shopping"
	CategoryElectronics   CategoryName = "Electronics"
	CategoryEntertainment CategoryName = "Entertainment"
	CategoryTransport     CategoryName = "Transport"
	CategoryUtilities     CategoryName = "Utilities"
	CategorySubscriptions CategoryName = "Subscriptions"
	CategoryTravel        CategoryName = "Travel"
	CategoryHealth        CategoryName = "Health"
)

// Test-specific category names.
const (
	CategoryTest1      CategoryName = "Test Category 1"
	CategoryTest2      CategoryName = "Test Category 2"
	CategoryInitial    CategoryName = "Initial Category"
	CategoryReassigned CategoryName = "Reassigned Category"
)

// Categories represents a collection of created test categories.
type Categories []model.Category

// Find returns the category with the given name, or nil if not found.
func (c Categories) Find(name CategoryName) *model.Category {
	for i := range c {
		if c[i].Name == name.String() {
			return &c[i]
		}
	}
	return nil
}

// MustFind returns the category with the given name, or fails the test if not found.
func (c Categories) MustFind(t *testing.T, name CategoryName) model.Category {
	t.Helper()
	cat := c.Find(name)
	if cat == nil {
		t.Fatalf("category %q not found in test data", name)
	}
	return *cat
}

// Names returns all category names as a slice of strings.
func (c Categories) Names() []string {
	names := make([]string, len(c))
	for i, cat := range c {
		names[i] = cat.Name
	}
	return names
}

// CategoryMap provides O(1) lookup for categories by name.
type CategoryMap map[CategoryName]model.Category

// Get returns the category for the given name and whether it was found.
func (m CategoryMap) Get(name CategoryName) (model.Category, bool) {
	cat, ok := m[name]
	return cat, ok
}

// MustGet returns the category for the given name or fails the test.
func (m CategoryMap) MustGet(t *testing.T, name CategoryName) model.Category {
	t.Helper()
	cat, ok := m.Get(name)
	if !ok {
		t.Fatalf("category %q not found in test data", name)
	}
	return cat
}

// categoryBuilder implements the Builder interface.
type categoryBuilder struct {
	t          *testing.T
	categories map[CategoryName]struct{}
}

// NewBuilder creates a new category builder for the given test.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &categoryBuilder{
		t:          t,
		categories: make(map[CategoryName]struct{}),
	}
}

func (b *categoryBuilder) WithCategory(name CategoryName) Builder {
	b.categories[name] = struct{}{}
	return b
}

func (b *categoryBuilder) WithCategories(names ...CategoryName) Builder {
	for _, name := range names {
		b.categories[name] = struct{}{}
	}
	return b
}

func (b *categoryBuilder) WithBasicCategories() Builder {
	basic := []CategoryName{
		CategoryDining,
		CategoryGroceries,
		CategoryShopping,
		CategoryTransport,
		CategorySubscriptions,
		CategoryUtilities,
	}
	return b.WithCategories(basic...)
}

func (b *categoryBuilder) WithFixture(fixture Fixture) Builder {
	return b.WithCategories(fixture.Categories()...)
}

func (b *categoryBuilder) Build(ctx context.Context, storage service.Storage) (Categories, error) {
	b.t.Helper()

	if len(b.categories) == 0 {
		return Categories{}, nil
	}

	names := make([]CategoryName, 0, len(b.categories))
	for name := range b.categories {
		names = append(names, name)
	}

	result := make(Categories, 0, len(names))
	for _, name := range names {
		createdCat, err := storage.CreateCategory(ctx, name.String(), "Test description for "+name.String(), model.CategoryTypeExpense)
		if err != nil {
			return nil, fmt.Errorf("failed to create category %q: %w", name, err)
		}
		result = append(result, *createdCat)
	}

	// Categories use soft deletes via is_active, so no cleanup is needed
	// for in-memory test databases.

	return result, nil
}

func (b *categoryBuilder) BuildMap(ctx context.Context, storage service.Storage) (CategoryMap, error) {
	categories, err := b.Build(ctx, storage)
	if err != nil {
		return nil, err
	}

	m := make(CategoryMap, len(categories))
	for _, cat := range categories {
		m[CategoryName(cat.Name)] = cat
	}
	return m, nil
}
