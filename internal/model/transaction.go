// Package model defines the core data structures for the spendlens application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionType describes the direction of money movement for a transaction.
type TransactionType string

const (
	// TransactionTypeExpense is money leaving an account.
	TransactionTypeExpense TransactionType = "expense"
	// TransactionTypeIncome is money entering an account.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeTransfer is money moving between the user's own accounts.
	TransactionTypeTransfer TransactionType = "transfer"
)

// Valid reports whether the type is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeExpense, TransactionTypeIncome, TransactionTypeTransfer:
		return true
	default:
		return false
	}
}

// Transaction represents a single financial transaction from any source.
// Amount is the absolute magnitude; Type carries the direction.
type Transaction struct {
	Date      time.Time
	ID        string
	Title     string // Cleaned display title, used for grouping and duplicate checks
	RawName   string // Original description from the source
	Category  string // Display name of the assigned category; empty if uncategorized
	AccountID string
	Hash      string
	Source    string // Import source (ofx, simplefin, plaid, manual)
	Amount    float64
	Type      TransactionType
}

// GenerateHash creates a unique hash for duplicate detection across imports.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Title,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// IsExpense reports whether the transaction moves money out of an account.
func (t *Transaction) IsExpense() bool {
	return t.Type == TransactionTypeExpense
}

// Validate checks that the transaction has the fields storage requires.
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transaction ID cannot be empty")
	}
	if t.Title == "" {
		return fmt.Errorf("transaction title cannot be empty")
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}
	if t.Amount < 0 {
		return fmt.Errorf("transaction amount cannot be negative: %f", t.Amount)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("invalid transaction type: %q", t.Type)
	}
	return nil
}
