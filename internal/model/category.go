package model

import "time"

// CategoryType indicates whether a category is for income, expense, or system use.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
	// CategoryTypeSystem represents system-managed categories (e.g., transfers).
	CategoryTypeSystem CategoryType = "system"
)

// Valid reports whether the category type is one of the known values.
func (t CategoryType) Valid() bool {
	switch t {
	case CategoryTypeIncome, CategoryTypeExpense, CategoryTypeSystem:
		return true
	default:
		return false
	}
}

// Category represents a spending category known to the store. Analysis
// treats category identity as name-based; the numeric ID exists only for
// storage bookkeeping.
type Category struct {
	CreatedAt   time.Time
	Name        string
	Description string
	Type        CategoryType
	ID          int
	IsActive    bool
}

// Default category labels applied when a transaction carries no category.
const (
	// DefaultBudgetCategory is the fallback label used during budget analysis.
	DefaultBudgetCategory = "General"
	// DefaultSpendingCategory is the fallback label used during anomaly and
	// frequency analysis.
	DefaultSpendingCategory = "Spending"
)
