package insight

import (
	"fmt"
	"math"
	"sort"

	"github.com/spendlens/spendlens/internal/model"
)

// LargestOutlier flags the single most anomalous expense relative to
// the rest of the expense population. The largest expense is compared
// against the mean of all others; it is flagged when it reaches twice
// that baseline, or an absolute floor when the baseline is zero. At
// most one insight is produced per invocation. Fewer than two expenses
// yield an empty result.
func (e *Engine) LargestOutlier(txns []model.Transaction) model.Insights {
	expenses := filterExpenses(txns)
	if len(expenses) < 2 {
		return nil
	}

	sort.Slice(expenses, func(i, j int) bool {
		return math.Abs(expenses[i].Amount) > math.Abs(expenses[j].Amount)
	})

	largest := expenses[0]
	remaining := expenses[1:]

	var baseline float64
	for _, tx := range remaining {
		baseline += math.Abs(tx.Amount)
	}
	baseline /= float64(len(remaining))

	magnitude := math.Abs(largest.Amount)
	if baseline == 0 {
		if magnitude < e.thresholds.MinAnomalyFloor {
			return nil
		}
	} else if magnitude < outlierRatio*baseline {
		return nil
	}

	label := categoryLabel(largest, model.DefaultSpendingCategory)
	return model.Insights{{
		ID:    e.newID(),
		Title: "Unusually large expense",
		Description: fmt.Sprintf(
			"You spent %s on %s (%s), well above your typical expense of %s.",
			e.formatAmount(magnitude), largest.Title, label, e.formatAmount(baseline)),
		Type:     model.InsightAnomaly,
		Priority: model.PriorityHigh,
	}}
}
