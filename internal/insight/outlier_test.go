package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/spendlens/internal/model"
)

func TestLargestOutlier(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("flags expense at twice the baseline", func(t *testing.T) {
		engine := newTestEngine(t, now)
		txns := []model.Transaction{
			expense("Electronics Depot", 1000, day, "Shopping"),
			expense("Cafe", 50, day, "Dining"),
			expense("Cafe", 60, day, "Dining"),
			expense("Cafe", 55, day, "Dining"),
		}

		insights := engine.LargestOutlier(txns)
		require.Len(t, insights, 1)

		got := insights[0]
		assert.Equal(t, model.InsightAnomaly, got.Type)
		assert.Equal(t, model.PriorityHigh, got.Priority)
		assert.Contains(t, got.Description, "Electronics Depot")
		assert.Contains(t, got.Description, "Shopping")
		assert.Contains(t, got.Description, "$1,000.00")
		assert.Contains(t, got.Description, "$55.00", "baseline is the mean of the remaining three")
	})

	t.Run("empty input yields nothing", func(t *testing.T) {
		engine := newTestEngine(t, now)
		assert.Empty(t, engine.LargestOutlier(nil))
	})

	t.Run("single expense yields nothing", func(t *testing.T) {
		engine := newTestEngine(t, now)
		txns := []model.Transaction{expense("Cafe", 5000, day, "Dining")}
		assert.Empty(t, engine.LargestOutlier(txns))
	})

	t.Run("equal amounts never trigger", func(t *testing.T) {
		engine := newTestEngine(t, now)
		txns := []model.Transaction{
			expense("Cafe", 400, day, "Dining"),
			expense("Cafe", 400, day, "Dining"),
			expense("Cafe", 400, day, "Dining"),
		}
		assert.Empty(t, engine.LargestOutlier(txns))
	})

	t.Run("zero baseline uses absolute floor", func(t *testing.T) {
		engine := newTestEngine(t, now)

		under := []model.Transaction{
			expense("Adjustment", 0, day, ""),
			expense("Small Charge", 140, day, ""),
		}
		assert.Empty(t, engine.LargestOutlier(under),
			"below the floor with zero baseline, nothing fires")

		over := []model.Transaction{
			expense("Adjustment", 0, day, ""),
			expense("Big Charge", 150, day, ""),
		}
		insights := engine.LargestOutlier(over)
		require.Len(t, insights, 1)
		assert.Contains(t, insights[0].Description, "Big Charge")
	})

	t.Run("only expenses are considered", func(t *testing.T) {
		engine := newTestEngine(t, now)
		txns := []model.Transaction{
			income("Salary", 10000, day),
			expense("Cafe", 50, day, "Dining"),
		}
		assert.Empty(t, engine.LargestOutlier(txns),
			"income is excluded, leaving a single expense")
	})

	t.Run("at most one insight per invocation", func(t *testing.T) {
		engine := newTestEngine(t, now)
		txns := []model.Transaction{
			expense("Big One", 900, day, ""),
			expense("Also Big", 850, day, ""),
			expense("Cafe", 10, day, ""),
			expense("Cafe", 12, day, ""),
		}

		insights := engine.LargestOutlier(txns)
		assert.LessOrEqual(t, len(insights), 1)
	})

	t.Run("does not reorder the caller's slice", func(t *testing.T) {
		engine := newTestEngine(t, now)
		txns := []model.Transaction{
			expense("Cafe", 50, day, "Dining"),
			expense("Electronics Depot", 1000, day, "Shopping"),
			expense("Cafe", 60, day, "Dining"),
		}

		engine.LargestOutlier(txns)
		assert.Equal(t, "Cafe", txns[0].Title)
		assert.Equal(t, "Electronics Depot", txns[1].Title)
		assert.Equal(t, "Cafe", txns[2].Title)
	})

	t.Run("uncategorized outlier uses Spending label", func(t *testing.T) {
		engine := newTestEngine(t, now)
		txns := []model.Transaction{
			expense("Mystery", 1000, day, ""),
			expense("Cafe", 50, day, "Dining"),
		}

		insights := engine.LargestOutlier(txns)
		require.Len(t, insights, 1)
		assert.Contains(t, insights[0].Description, model.DefaultSpendingCategory)
	})
}
