// Package insight turns transaction and budget history into ranked,
// human-readable financial insights. Every detector is a pure function
// over caller-owned collections: no I/O, no shared state, and every
// precondition failure degrades to an empty result instead of an error.
package insight

import (
	"fmt"
)

// Thresholds holds the tunable constants shared by the detectors.
// Zero-value fields are not defaulted here; construct via
// DefaultThresholds and override what you need.
type Thresholds struct {
	// OverBudgetRatio is the multiple of a budget limit the monthly
	// average must exceed before an over-budget recommendation fires.
	OverBudgetRatio float64
	// FrequencySpikeRatio is the multiple of the typical daily
	// transaction count that marks a day as a spike.
	FrequencySpikeRatio float64
	// MinAnomalyFloor is the absolute amount an expense must reach to
	// count as an outlier when there is no baseline to compare against.
	MinAnomalyFloor float64
	// HighPriorityFloor is the monthly average above which a new-budget
	// recommendation is raised to high priority.
	HighPriorityFloor float64
	// AmountTolerance is the maximum difference between two amounts
	// still considered equal by the duplicate detector.
	AmountTolerance float64
	// DuplicateWindowDays is the number of days within which two
	// equal-amount charges are treated as a suspected duplicate.
	DuplicateWindowDays int
}

// DefaultThresholds returns the standard detector tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		OverBudgetRatio:     1.25,
		FrequencySpikeRatio: 1.8,
		MinAnomalyFloor:     150,
		HighPriorityFloor:   250,
		AmountTolerance:     0.01,
		DuplicateWindowDays: 3,
	}
}

// Validate ensures the thresholds are usable by the detectors.
func (t Thresholds) Validate() error {
	if t.OverBudgetRatio <= 0 {
		return fmt.Errorf("over budget ratio must be positive, got %f", t.OverBudgetRatio)
	}
	if t.FrequencySpikeRatio <= 0 {
		return fmt.Errorf("frequency spike ratio must be positive, got %f", t.FrequencySpikeRatio)
	}
	if t.MinAnomalyFloor < 0 {
		return fmt.Errorf("anomaly floor cannot be negative, got %f", t.MinAnomalyFloor)
	}
	if t.HighPriorityFloor < 0 {
		return fmt.Errorf("high priority floor cannot be negative, got %f", t.HighPriorityFloor)
	}
	if t.AmountTolerance <= 0 {
		return fmt.Errorf("amount tolerance must be positive, got %f", t.AmountTolerance)
	}
	if t.DuplicateWindowDays <= 0 {
		return fmt.Errorf("duplicate window must be positive, got %d", t.DuplicateWindowDays)
	}
	return nil
}

// Structural constants that are part of the detector contracts rather
// than tuning knobs.
const (
	// minRecommendMonths is the number of distinct calendar months of
	// expense activity a category needs before budget analysis considers it.
	minRecommendMonths = 3
	// outlierRatio is the multiple of the baseline the largest expense
	// must reach to be flagged.
	outlierRatio = 2.0
	// minSpikeCount is the floor on the frequency spike threshold so a
	// quiet history cannot make two transactions look like a spike.
	minSpikeCount = 4
)
