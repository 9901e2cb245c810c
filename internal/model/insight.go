package model

import (
	"fmt"
	"sort"
)

// InsightType categorizes the kind of observation an insight makes.
type InsightType string

const (
	// InsightBudgetRecommendation suggests creating or adjusting a budget.
	InsightBudgetRecommendation InsightType = "budgetRecommendation"
	// InsightAnomaly flags unusual spending behavior.
	InsightAnomaly InsightType = "anomaly"
	// InsightSpendingAlert warns about spending approaching a limit.
	InsightSpendingAlert InsightType = "spendingAlert"
	// InsightSavingsOpportunity points out potential savings.
	InsightSavingsOpportunity InsightType = "savingsOpportunity"
	// InsightPrediction forecasts future spending behavior.
	InsightPrediction InsightType = "prediction"
	// InsightInformational carries a neutral observation.
	InsightInformational InsightType = "informational"
)

// Valid reports whether the insight type is one of the known values.
func (t InsightType) Valid() bool {
	switch t {
	case InsightBudgetRecommendation, InsightAnomaly, InsightSpendingAlert,
		InsightSavingsOpportunity, InsightPrediction, InsightInformational:
		return true
	default:
		return false
	}
}

// Priority indicates how urgently an insight deserves attention.
type Priority string

const (
	// PriorityCritical indicates an insight requiring immediate attention.
	PriorityCritical Priority = "critical"
	// PriorityHigh indicates a significant finding that should be reviewed soon.
	PriorityHigh Priority = "high"
	// PriorityMedium indicates a moderate finding worth a look.
	PriorityMedium Priority = "medium"
	// PriorityLow indicates a minor observation.
	PriorityLow Priority = "low"
)

// Order returns the numeric rank of a priority (lower is more urgent).
func (p Priority) Order() int {
	switch p {
	case PriorityCritical:
		return 1
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 3
	case PriorityLow:
		return 4
	default:
		return 5
	}
}

// Valid reports whether the priority is one of the known values.
func (p Priority) Valid() bool {
	return p.Order() < 5
}

// Insight is a single human-readable observation about spending behavior.
// Insights are immutable value records created fresh on each analysis run;
// they carry no identity across runs.
type Insight struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        InsightType `json:"type"`
	Priority    Priority    `json:"priority"`
}

// Validate ensures the insight has valid data.
func (i *Insight) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("insight ID is required")
	}
	if i.Title == "" {
		return fmt.Errorf("insight title is required")
	}
	if i.Description == "" {
		return fmt.Errorf("insight description is required")
	}
	if !i.Type.Valid() {
		return fmt.Errorf("invalid insight type: %q", i.Type)
	}
	if !i.Priority.Valid() {
		return fmt.Errorf("invalid insight priority: %q", i.Priority)
	}
	return nil
}

// Insights is a slice of Insight that supports sorting and utility methods.
type Insights []Insight

// Len implements sort.Interface.
func (in Insights) Len() int {
	return len(in)
}

// Less implements sort.Interface - more urgent priorities come first.
func (in Insights) Less(i, j int) bool {
	if in[i].Priority.Order() != in[j].Priority.Order() {
		return in[i].Priority.Order() < in[j].Priority.Order()
	}
	// Equal priorities sort by title for consistency
	return in[i].Title < in[j].Title
}

// Swap implements sort.Interface.
func (in Insights) Swap(i, j int) {
	in[i], in[j] = in[j], in[i]
}

// Sort orders the insights by descending urgency. Detectors never call
// this; combining and ranking outputs is the caller's choice.
func (in Insights) Sort() {
	sort.Stable(in)
}

// ByPriority returns the insights at the given priority.
func (in Insights) ByPriority(p Priority) Insights {
	var result Insights
	for _, insight := range in {
		if insight.Priority == p {
			result = append(result, insight)
		}
	}
	return result
}

// ByType returns the insights of the given type.
func (in Insights) ByType(t InsightType) Insights {
	var result Insights
	for _, insight := range in {
		if insight.Type == t {
			result = append(result, insight)
		}
	}
	return result
}

// Validate ensures all insights in the slice are valid.
func (in Insights) Validate() error {
	seen := make(map[string]bool)

	for i, insight := range in {
		if err := insight.Validate(); err != nil {
			return fmt.Errorf("invalid insight at index %d: %w", i, err)
		}

		if seen[insight.ID] {
			return fmt.Errorf("duplicate insight ID %q", insight.ID)
		}
		seen[insight.ID] = true
	}

	return nil
}
