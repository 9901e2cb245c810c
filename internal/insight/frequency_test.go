package insight

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/spendlens/internal/model"
)

// dailyExpenses produces count transactions on the given day, spaced an
// hour apart.
func dailyExpenses(day time.Time, count int, category string) []model.Transaction {
	txns := make([]model.Transaction, 0, count)
	for i := 0; i < count; i++ {
		ts := day.Add(time.Duration(8+i) * time.Hour)
		txns = append(txns, expense(fmt.Sprintf("Charge %d", i), 9.50, ts, category))
	}
	return txns
}

func TestFrequencySpike(t *testing.T) {
	now := time.Date(2024, 3, 20, 18, 0, 0, 0, time.UTC)

	quietWeek := func() []model.Transaction {
		// One transaction per day on the 16th through 18th
		var txns []model.Transaction
		for day := 16; day <= 18; day++ {
			txns = append(txns, dailyExpenses(
				time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC), 1, "Dining")...)
		}
		return txns
	}

	t.Run("six against average of one triggers", func(t *testing.T) {
		engine := newTestEngine(t, now)
		txns := append(quietWeek(), dailyExpenses(
			time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC), 6, "Dining")...)

		insights := engine.FrequencySpike(txns, 7)
		require.Len(t, insights, 1)

		got := insights[0]
		assert.Equal(t, model.InsightAnomaly, got.Type)
		assert.Equal(t, model.PriorityMedium, got.Priority)
		assert.Contains(t, got.Title, "Dining")
		assert.Contains(t, got.Description, "6 transactions")
	})

	t.Run("three against average of one does not trigger", func(t *testing.T) {
		engine := newTestEngine(t, now)
		txns := append(quietWeek(), dailyExpenses(
			time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC), 3, "Dining")...)

		assert.Empty(t, engine.FrequencySpike(txns, 7))
	})

	t.Run("non-positive window yields nothing", func(t *testing.T) {
		engine := newTestEngine(t, now)
		txns := dailyExpenses(time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC), 6, "Dining")

		assert.Empty(t, engine.FrequencySpike(txns, 0))
		assert.Empty(t, engine.FrequencySpike(txns, -3))
	})

	t.Run("empty window yields nothing", func(t *testing.T) {
		engine := newTestEngine(t, now)
		old := dailyExpenses(time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), 6, "Dining")

		assert.Empty(t, engine.FrequencySpike(old, 7))
	})

	t.Run("latest active day is evaluated even when not today", func(t *testing.T) {
		engine := newTestEngine(t, now)
		// No activity on the 19th or 20th; the 15th is the latest active day
		txns := append(
			dailyExpenses(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), 1, "Dining"),
			dailyExpenses(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 6, "Dining")...)

		insights := engine.FrequencySpike(txns, 7)
		require.Len(t, insights, 1)
		assert.Contains(t, insights[0].Description, "Mar 15")
	})

	t.Run("single active day needs the floor count", func(t *testing.T) {
		engine := newTestEngine(t, now)
		day := time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC)

		assert.Empty(t, engine.FrequencySpike(dailyExpenses(day, 3, "Dining"), 7),
			"three transactions stay under the spike floor")

		insights := engine.FrequencySpike(dailyExpenses(day, 4, "Dining"), 7)
		assert.Len(t, insights, 1, "the floor count on a lone day is a spike")
	})

	t.Run("transactions after now are excluded", func(t *testing.T) {
		engine := newTestEngine(t, now)
		future := dailyExpenses(time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC), 6, "Dining")

		assert.Empty(t, engine.FrequencySpike(future, 7))
	})

	t.Run("uncategorized spike uses Spending label", func(t *testing.T) {
		engine := newTestEngine(t, now)
		txns := dailyExpenses(time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC), 6, "")

		insights := engine.FrequencySpike(txns, 7)
		require.Len(t, insights, 1)
		assert.Contains(t, insights[0].Title, model.DefaultSpendingCategory)
	})
}
