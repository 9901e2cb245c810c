// Package pattern provides rule-based transaction matching and category suggestions.
package pattern

import (
	"context"

	"github.com/spendlens/spendlens/internal/model"
)

// TransactionValidator validates that transactions have types consistent with their categories.
type TransactionValidator interface {
	// ValidateType ensures the transaction's type is consistent with the category type.
	ValidateType(ctx context.Context, txn model.Transaction, category model.Category) error
}

// CategorySuggester provides category suggestions based on rules and transaction attributes.
type CategorySuggester interface {
	// Suggest returns category suggestions with confidence scores and reasons.
	Suggest(ctx context.Context, txn model.Transaction) ([]Suggestion, error)
	// SuggestWithValidation returns only suggestions that pass type validation.
	SuggestWithValidation(ctx context.Context, txn model.Transaction, categories []model.Category) ([]Suggestion, error)
}

// Matcher evaluates transactions against category rules.
type Matcher interface {
	// Match evaluates a transaction against all configured rules and returns matching rules.
	Match(ctx context.Context, txn model.Transaction) ([]Rule, error)
}

// Suggestion represents a category suggestion with confidence and reasoning.
type Suggestion struct {
	RuleID     *int
	Category   string
	Reason     string
	Confidence float64
}

// Rule is an alias to the model.CategoryRule type for convenience.
type Rule = model.CategoryRule
