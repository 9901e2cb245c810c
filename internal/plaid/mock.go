package plaid

import (
	"context"
	"time"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/service"
)

// MockClient is a mock implementation of TransactionFetcher for testing.
type MockClient struct {
	// Functions that can be set by tests to control behavior
	GetTransactionsFn func(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
	GetAccountsFn     func(ctx context.Context) ([]string, error)

	// Call tracking
	GetTransactionsCalls []GetTransactionsCall
	GetAccountsCalls     int
}

// GetTransactionsCall records the parameters of a GetTransactions call.
type GetTransactionsCall struct {
	StartDate time.Time
	EndDate   time.Time
}

// NewMockClient creates a new mock Plaid client.
func NewMockClient() *MockClient {
	return &MockClient{
		GetTransactionsCalls: []GetTransactionsCall{},
	}
}

// GetTransactions implements TransactionFetcher.GetTransactions.
func (m *MockClient) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	m.GetTransactionsCalls = append(m.GetTransactionsCalls, GetTransactionsCall{
		StartDate: startDate,
		EndDate:   endDate,
	})

	if m.GetTransactionsFn != nil {
		return m.GetTransactionsFn(ctx, startDate, endDate)
	}

	// Default behavior: return empty slice
	return []model.Transaction{}, nil
}

// GetAccounts implements TransactionFetcher.GetAccounts.
func (m *MockClient) GetAccounts(ctx context.Context) ([]string, error) {
	m.GetAccountsCalls++

	if m.GetAccountsFn != nil {
		return m.GetAccountsFn(ctx)
	}

	// Default behavior: return empty slice
	return []string{}, nil
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.GetTransactionsCalls = []GetTransactionsCall{}
	m.GetAccountsCalls = 0
}

// Ensure MockClient implements TransactionFetcher interface.
var _ service.TransactionFetcher = (*MockClient)(nil)
