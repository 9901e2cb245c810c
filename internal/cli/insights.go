package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/service"
)

// RenderReport renders an insight report for terminal display.
func RenderReport(report *service.InsightReport) string {
	var b strings.Builder

	b.WriteString(FormatTitle("SpendLens Insights"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s to %s, %d transactions analyzed",
		report.PeriodStart.Format("Jan 2, 2006"),
		report.PeriodEnd.Format("Jan 2, 2006"),
		report.Transactions)))
	b.WriteString("\n\n")

	if len(report.Insights) == 0 {
		b.WriteString(FormatInfo("Nothing stands out for this period. Keep it up!"))
		b.WriteString("\n")
		return b.String()
	}

	report.Insights.Sort()
	for _, insight := range report.Insights {
		b.WriteString(renderInsight(insight))
		b.WriteString("\n")
	}

	return b.String()
}

// renderInsight renders a single insight as an icon, a styled title and an
// indented description.
func renderInsight(insight model.Insight) string {
	style := priorityStyle(insight.Priority)

	title := fmt.Sprintf("%s %s", PriorityIcon(insight.Priority), style.Render(insight.Title))
	description := SubtleStyle.Render("  " + insight.Description)

	return title + "\n" + description + "\n"
}

// PriorityIcon returns the icon shown next to an insight of the given priority.
func PriorityIcon(priority model.Priority) string {
	switch priority {
	case model.PriorityCritical:
		return AlertIcon
	case model.PriorityHigh:
		return WarningIcon
	case model.PriorityMedium:
		return ChartIcon
	default:
		return BulbIcon
	}
}

// priorityStyle maps a priority to a text style.
func priorityStyle(priority model.Priority) lipgloss.Style {
	switch priority {
	case model.PriorityCritical:
		return ErrorStyle
	case model.PriorityHigh:
		return WarningStyle
	case model.PriorityMedium:
		return InfoStyle
	default:
		return SubtleStyle
	}
}

// RenderReportList renders stored reports as a compact list, newest first.
func RenderReportList(reports []service.InsightReport) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Past Reports"))
	b.WriteString("\n")

	if len(reports) == 0 {
		b.WriteString(FormatInfo("No reports yet. Run 'spendlens insights' to generate one."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-38s %-17s %-25s %s", "ID", "Generated", "Period", "Insights")))
	b.WriteString("\n")

	for _, report := range reports {
		period := fmt.Sprintf("%s to %s",
			report.PeriodStart.Format("2006-01-02"),
			report.PeriodEnd.Format("2006-01-02"))
		b.WriteString(fmt.Sprintf("%-38s %-17s %-25s %d\n",
			report.ID,
			report.GeneratedAt.Format("2006-01-02 15:04"),
			period,
			len(report.Insights)))
	}

	return b.String()
}

// RenderBudgets renders budgets with current spending against each limit.
func RenderBudgets(budgets []model.Budget, spending map[string]service.CategorySummary) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Budgets"))
	b.WriteString("\n")

	if len(budgets) == 0 {
		b.WriteString(FormatInfo("No budgets configured. Set one with 'spendlens budgets set <category> <amount>'."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-24s %12s %12s %12s", "Category", "Limit", "Spent", "Remaining")))
	b.WriteString("\n")

	for _, budget := range budgets {
		spent := spending[budget.Category].Amount
		remaining := budget.LimitAmount - spent

		line := fmt.Sprintf("%-24s %12s %12s %12s",
			budget.Category,
			fmt.Sprintf("$%.2f", budget.LimitAmount),
			fmt.Sprintf("$%.2f", spent),
			fmt.Sprintf("$%.2f", remaining))

		if remaining < 0 {
			line = ErrorStyle.Render(line)
		} else if budget.LimitAmount > 0 && spent >= budget.LimitAmount*0.8 {
			line = WarningStyle.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

// RenderCategories renders categories grouped by type. When spending is
// non-nil, each category line includes its total for the current month.
func RenderCategories(categories []model.Category, spending map[string]service.CategorySummary) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Categories"))
	b.WriteString("\n")

	if len(categories) == 0 {
		b.WriteString(FormatInfo("No categories defined yet."))
		b.WriteString("\n")
		return b.String()
	}

	grouped := make(map[model.CategoryType][]model.Category)
	for _, category := range categories {
		grouped[category.Type] = append(grouped[category.Type], category)
	}

	for _, categoryType := range []model.CategoryType{model.CategoryTypeExpense, model.CategoryTypeIncome, model.CategoryTypeSystem} {
		group := grouped[categoryType]
		if len(group) == 0 {
			continue
		}

		sort.Slice(group, func(i, j int) bool {
			return group[i].Name < group[j].Name
		})

		b.WriteString(BoldStyle.Render(strings.ToUpper(string(categoryType))))
		b.WriteString("\n")
		for _, category := range group {
			line := "  • " + category.Name
			if summary, ok := spending[category.Name]; ok && summary.Count > 0 {
				line += fmt.Sprintf("  $%.2f this month (%d)", summary.Amount, summary.Count)
			}
			if category.Description != "" {
				line += SubtleStyle.Render(" - " + category.Description)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return b.String()
}
