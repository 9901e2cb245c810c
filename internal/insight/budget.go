package insight

import (
	"fmt"
	"math"
	"time"

	"github.com/spendlens/spendlens/internal/model"
)

// BudgetRecommendations compares historical average spend per category
// against existing budget limits, or proposes a new budget where none
// exists. Only expense transactions count, and a category needs
// expense activity in at least three distinct calendar months before
// it is considered; single-month noise never drives a recommendation.
// The average is per unique month present, not per transaction.
// Output order is unspecified.
func (e *Engine) BudgetRecommendations(txns []model.Transaction, budgets []model.Budget) model.Insights {
	expenses := filterExpenses(txns)
	if len(expenses) == 0 {
		return nil
	}

	groups, table := e.groupByCategory(expenses, model.DefaultBudgetCategory)

	limits := make(map[categoryKey]float64, len(budgets))
	for _, budget := range budgets {
		label := budget.Category
		if label == "" {
			label = model.DefaultBudgetCategory
		}
		if key, ok := table.lookup(label); ok {
			limits[key] = budget.LimitAmount
		}
	}

	var insights model.Insights
	for key, bucket := range groups {
		months := make(map[time.Time]struct{})
		var totalSpent float64
		for _, tx := range bucket {
			months[e.monthStart(tx.Date)] = struct{}{}
			totalSpent += math.Abs(tx.Amount)
		}

		uniqueMonths := len(months)
		if uniqueMonths < minRecommendMonths {
			continue
		}
		averageSpent := totalSpent / float64(uniqueMonths)
		label := table.label(key)

		if limit, hasBudget := limits[key]; hasBudget {
			if averageSpent > limit*e.thresholds.OverBudgetRatio {
				insights = append(insights, model.Insight{
					ID:    e.newID(),
					Title: fmt.Sprintf("Consider increasing your %s budget", label),
					Description: fmt.Sprintf(
						"You spend an average of %s per month on %s, but your budget is %s.",
						e.formatAmount(averageSpent), label, e.formatAmount(limit)),
					Type:     model.InsightBudgetRecommendation,
					Priority: model.PriorityMedium,
				})
			}
			continue
		}

		priority := model.PriorityMedium
		if averageSpent > e.thresholds.HighPriorityFloor {
			priority = model.PriorityHigh
		}
		insights = append(insights, model.Insight{
			ID:    e.newID(),
			Title: fmt.Sprintf("Consider setting a budget for %s", label),
			Description: fmt.Sprintf(
				"You spend an average of %s per month on %s. A budget near that amount would help you track it.",
				e.formatAmount(averageSpent), label),
			Type:     model.InsightBudgetRecommendation,
			Priority: priority,
		})
	}

	return insights
}
