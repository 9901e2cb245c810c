package insight

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/spendlens/spendlens/internal/model"
)

// DuplicateCharges flags near-identical charges suggestive of
// accidental double billing: same title, amounts within tolerance,
// dates within the duplicate window. Within each title group every
// pair inside the window is considered, so a duplicate bracketed by a
// differently-priced charge of the same title is still caught. At most
// one insight is produced per title group, for the earliest matching
// pair. Fewer than two transactions yield an empty result.
func (e *Engine) DuplicateCharges(txns []model.Transaction) model.Insights {
	if len(txns) < 2 {
		return nil
	}

	groups := make(map[string][]model.Transaction)
	for _, tx := range txns {
		groups[tx.Title] = append(groups[tx.Title], tx)
	}

	window := time.Duration(e.thresholds.DuplicateWindowDays) * 24 * time.Hour

	var insights model.Insights
	for title, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Date.Before(group[j].Date)
		})

		first, second, found := findDuplicatePair(group, window, e.thresholds.AmountTolerance)
		if !found {
			continue
		}

		gap := second.Date.Sub(first.Date)
		when := fmt.Sprintf("%d days apart", int(math.Round(gap.Hours()/24)))
		if gap < 24*time.Hour {
			when = "on the same day"
		}

		insights = append(insights, model.Insight{
			ID:    e.newID(),
			Title: fmt.Sprintf("Possible duplicate charge: %s", title),
			Description: fmt.Sprintf(
				"You were charged %s for %s twice %s. This may be a duplicate payment.",
				e.formatAmount(first.Amount), title, when),
			Type:     model.InsightAnomaly,
			Priority: model.PriorityMedium,
		})
	}

	return insights
}

// findDuplicatePair scans a date-sorted title group for the earliest
// pair of charges within the window whose amounts differ by less than
// the tolerance.
func findDuplicatePair(group []model.Transaction, window time.Duration, tolerance float64) (first, second model.Transaction, found bool) {
	for i := 0; i < len(group)-1; i++ {
		for j := i + 1; j < len(group); j++ {
			if group[j].Date.Sub(group[i].Date) > window {
				break
			}
			if math.Abs(group[j].Amount-group[i].Amount) < tolerance {
				return group[i], group[j], true
			}
		}
	}
	return model.Transaction{}, model.Transaction{}, false
}
