package model

import (
	"time"
)

// CategoryRule represents a rule for matching transactions and assigning categories.
type CategoryRule struct {
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	AmountValue     *float64         `json:"amount_value,omitempty"`
	AmountMin       *float64         `json:"amount_min,omitempty"`
	AmountMax       *float64         `json:"amount_max,omitempty"`
	Type            *TransactionType `json:"type,omitempty"`
	Name            string           `json:"name"`
	TitlePattern    string           `json:"title_pattern"`
	AmountCondition string           `json:"amount_condition"`
	Category        string           `json:"category"`
	Priority        int              `json:"priority"`
	ID              int              `json:"id"`
	UseCount        int              `json:"use_count"`
	IsActive        bool             `json:"is_active"`
	IsRegex         bool             `json:"is_regex"`
}

// AmountConditionType represents the type of amount comparison.
type AmountConditionType string

// Amount condition constants.
const (
	AmountLessThan     AmountConditionType = "lt"
	AmountLessEqual    AmountConditionType = "le"
	AmountEqual        AmountConditionType = "eq"
	AmountGreaterEqual AmountConditionType = "ge"
	AmountGreaterThan  AmountConditionType = "gt"
	AmountRange        AmountConditionType = "range"
	AmountAny          AmountConditionType = "any"
)
