package pattern

import (
	"context"
	"fmt"

	"github.com/spendlens/spendlens/internal/model"
)

// Validator implements TransactionValidator for type consistency checks.
type Validator struct{}

// NewValidator creates a new transaction validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateType ensures the transaction's type is consistent with the category type.
func (v *Validator) ValidateType(_ context.Context, txn model.Transaction, category model.Category) error {
	// System categories (transfers) can be used with any transaction type
	if category.Type == model.CategoryTypeSystem {
		return nil
	}

	// Untyped transactions are treated as expenses
	txnType := txn.Type
	if txnType == "" {
		txnType = model.TransactionTypeExpense
	}

	// Map transaction type to expected category type
	var expectedType model.CategoryType
	switch txnType {
	case model.TransactionTypeIncome:
		expectedType = model.CategoryTypeIncome
	case model.TransactionTypeTransfer:
		expectedType = model.CategoryTypeSystem
	default:
		expectedType = model.CategoryTypeExpense
	}

	// Validate category type matches expected type
	if category.Type != expectedType {
		return fmt.Errorf("category %q has type %s but transaction is %s",
			category.Name, category.Type, txnType)
	}

	return nil
}

// ValidateSuggestions ensures all suggestions have valid categories for the transaction type.
func (v *Validator) ValidateSuggestions(ctx context.Context, txn model.Transaction, suggestions []Suggestion, categories []model.Category) error {
	// Create category map for quick lookup
	categoryMap := make(map[string]model.Category)
	for _, cat := range categories {
		categoryMap[cat.Name] = cat
	}

	// Validate each suggestion
	for _, suggestion := range suggestions {
		cat, exists := categoryMap[suggestion.Category]
		if !exists {
			return fmt.Errorf("suggestion references unknown category %q", suggestion.Category)
		}

		if err := v.ValidateType(ctx, txn, cat); err != nil {
			return fmt.Errorf("invalid suggestion: %w", err)
		}
	}

	return nil
}
