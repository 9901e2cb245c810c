package pattern

import (
	"context"
	"fmt"

	"github.com/spendlens/spendlens/internal/model"
)

// Ensure Suggester implements CategorySuggester interface.
var _ CategorySuggester = (*Suggester)(nil)

// Suggester implements CategorySuggester using category rules.
type Suggester struct {
	matcher   Matcher
	validator TransactionValidator
}

// NewSuggester creates a new category suggester.
func NewSuggester(matcher Matcher, validator TransactionValidator) *Suggester {
	return &Suggester{
		matcher:   matcher,
		validator: validator,
	}
}

// Suggest returns category suggestions with confidence scores and reasons.
func (s *Suggester) Suggest(ctx context.Context, txn model.Transaction) ([]Suggestion, error) {
	// Get matching rules
	rules, err := s.matcher.Match(ctx, txn)
	if err != nil {
		return nil, fmt.Errorf("failed to match rules: %w", err)
	}

	// Convert rules to suggestions
	suggestions := make([]Suggestion, 0, len(rules))
	seen := make(map[string]bool) // Avoid duplicate categories

	for _, rule := range rules {
		if seen[rule.Category] {
			continue
		}
		seen[rule.Category] = true

		suggestion := Suggestion{
			Category:   rule.Category,
			Confidence: ruleConfidence(rule),
			Reason:     s.generateReason(txn, rule),
			RuleID:     &rule.ID,
		}
		suggestions = append(suggestions, suggestion)
	}

	return suggestions, nil
}

// ruleConfidence scores how specific a rule is. A bare title pattern scores
// 0.8; amount and type constraints each add 0.1.
func ruleConfidence(rule Rule) float64 {
	confidence := 0.8
	if rule.AmountCondition != "" && rule.AmountCondition != "any" {
		confidence += 0.1
	}
	if rule.Type != nil {
		confidence += 0.1
	}
	return confidence
}

// generateReason creates a human-readable explanation for why a category was suggested.
func (s *Suggester) generateReason(txn model.Transaction, rule Rule) string {
	title := txn.Title
	if title == "" {
		title = txn.RawName
	}

	// Build reason based on rule conditions
	reason := fmt.Sprintf("Transactions from %s", title)

	// Add amount condition if present
	switch rule.AmountCondition {
	case "lt":
		if rule.AmountValue != nil {
			reason += fmt.Sprintf(" under $%.2f", *rule.AmountValue)
		}
	case "gt":
		if rule.AmountValue != nil {
			reason += fmt.Sprintf(" over $%.2f", *rule.AmountValue)
		}
	case "range":
		if rule.AmountMin != nil && rule.AmountMax != nil {
			reason += fmt.Sprintf(" between $%.2f and $%.2f", *rule.AmountMin, *rule.AmountMax)
		}
	}

	// Add transaction type if specified
	if rule.Type != nil {
		switch *rule.Type {
		case model.TransactionTypeIncome:
			reason += " (income)"
		case model.TransactionTypeExpense:
			reason += " (expense)"
		}
	}

	reason += fmt.Sprintf(" are usually categorized as %s", rule.Category)

	return reason
}

// SuggestWithValidation returns only suggestions that pass type validation.
func (s *Suggester) SuggestWithValidation(ctx context.Context, txn model.Transaction, categories []model.Category) ([]Suggestion, error) {
	// Get all suggestions
	suggestions, err := s.Suggest(ctx, txn)
	if err != nil {
		return nil, err
	}

	// Create category map for validation
	categoryMap := make(map[string]model.Category)
	for _, cat := range categories {
		categoryMap[cat.Name] = cat
	}

	// Filter suggestions that pass validation
	var validSuggestions []Suggestion
	for _, suggestion := range suggestions {
		cat, exists := categoryMap[suggestion.Category]
		if !exists {
			continue // Skip unknown categories
		}

		// Check if the category is valid for this transaction's type
		if err := s.validator.ValidateType(ctx, txn, cat); err == nil {
			validSuggestions = append(validSuggestions, suggestion)
		}
	}

	return validSuggestions, nil
}
