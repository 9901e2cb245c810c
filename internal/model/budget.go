package model

import (
	"fmt"
	"time"
)

// Budget is a monthly spending limit for a single category. Category
// identity is name-based, matching the analysis layer.
type Budget struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Category    string
	LimitAmount float64
	ID          int
}

// Validate checks that the budget is well formed.
func (b *Budget) Validate() error {
	if b.Category == "" {
		return fmt.Errorf("budget category cannot be empty")
	}
	if b.LimitAmount < 0 {
		return fmt.Errorf("budget limit cannot be negative: %f", b.LimitAmount)
	}
	return nil
}
