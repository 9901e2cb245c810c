// Package storage provides the data persistence layer for the spendlens application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/service"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("end date must not be before start date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidBudget      = errors.New("invalid budget")
	ErrInvalidRule        = errors.New("invalid category rule")
	ErrInvalidReport      = errors.New("invalid insight report")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if err := txn.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	return nil
}

// validateBudget validates budget parameters.
func validateBudget(category string, limitAmount float64) error {
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidBudget)
	}
	if limitAmount < 0 {
		return fmt.Errorf("%w: limit cannot be negative", ErrInvalidBudget)
	}
	return nil
}

// validateRule validates a category rule.
func validateRule(rule *model.CategoryRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if strings.TrimSpace(rule.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidRule)
	}
	if strings.TrimSpace(rule.TitlePattern) == "" {
		return fmt.Errorf("%w: missing title pattern", ErrInvalidRule)
	}
	if strings.TrimSpace(rule.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidRule)
	}
	return nil
}

// validateReport validates an insight report.
func validateReport(report *service.InsightReport) error {
	if report == nil {
		return fmt.Errorf("%w: report", ErrNilParameter)
	}
	if report.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidReport)
	}
	if report.GeneratedAt.IsZero() {
		return fmt.Errorf("%w: missing generation time", ErrInvalidReport)
	}
	if err := report.Insights.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	return nil
}
