package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spendlens/spendlens/internal/cli"
	"github.com/spendlens/spendlens/internal/config"
	"github.com/spendlens/spendlens/internal/insight"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/service"
	"github.com/spendlens/spendlens/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func insightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Generate spending insights",
		Long: `Analyze your transactions and budgets to produce ranked insights:
budget recommendations, unusual charges, spending spikes, and suspected
duplicate charges.

The analysis runs over a date window and never modifies your data. Use
--save to keep the report for later review with 'spendlens insights list'.`,
		RunE: runInsights,
	}

	addDateRangeFlags(cmd)
	cmd.Flags().StringSlice("only", []string{}, "Run only the named detectors (budget, outlier, frequency, duplicate)")
	cmd.Flags().StringP("output", "o", "text", "Output format (text, json)")
	cmd.Flags().Bool("save", false, "Save the report for later review")
	cmd.Flags().Bool("export-sheets", false, "Export the report to Google Sheets")

	cmd.AddCommand(insightsListCmd())
	cmd.AddCommand(insightsLatestCmd())

	return cmd
}

func runInsights(cmd *cobra.Command, _ []string) error {
	interruptHandler := cli.NewInterruptHandler(nil)
	ctx := interruptHandler.HandleInterrupts(cmd.Context(), false)

	startDate, endDate, days, err := parseDateRange(cmd)
	if err != nil {
		return err
	}

	only, _ := cmd.Flags().GetStringSlice("only")
	output, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")
	exportSheets, _ := cmd.Flags().GetBool("export-sheets")

	if output != "text" && output != "json" {
		return fmt.Errorf("invalid output format: %s (valid: text, json)", output)
	}

	// Initialize storage with auto-migration
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Load the analysis window
	filter := service.TransactionFilter{
		StartDate: &startDate,
		EndDate:   &endDate,
	}
	transactions, err := store.GetTransactions(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	budgets, err := store.GetBudgets(ctx)
	if err != nil {
		return fmt.Errorf("failed to load budgets: %w", err)
	}

	slog.Debug("analysis window loaded",
		"start", startDate.Format("2006-01-02"),
		"end", endDate.Format("2006-01-02"),
		"transactions", len(transactions),
		"budgets", len(budgets))

	engine, err := insight.New(insight.Config{Thresholds: loadThresholds()})
	if err != nil {
		return fmt.Errorf("failed to build insight engine: %w", err)
	}

	insights, err := runDetectors(ctx, engine, transactions, budgets, days, only)
	if err != nil {
		return err
	}

	report := &service.InsightReport{
		ID:           uuid.New().String(),
		GeneratedAt:  time.Now(),
		Insights:     insights,
		PeriodStart:  startDate,
		PeriodEnd:    endDate,
		Transactions: len(transactions),
	}

	if save {
		if err := store.SaveReport(ctx, report); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		slog.Info("Report saved", "id", report.ID, "insights", len(report.Insights))
	}

	switch output {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Println(string(data))
	default:
		fmt.Println(cli.RenderReport(report))
	}

	if exportSheets {
		if err := exportReportToSheets(ctx, report, transactions); err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
	}

	return nil
}

// runDetectors runs either the full detector set or just the ones named
// by --only, preserving the engine's fixed ordering.
func runDetectors(ctx context.Context, engine *insight.Engine, transactions []model.Transaction, budgets []model.Budget, days int, only []string) (model.Insights, error) {
	if len(only) == 0 {
		insights, err := engine.Run(ctx, transactions, budgets, days)
		if err != nil {
			return nil, fmt.Errorf("analysis failed: %w", err)
		}
		return insights, nil
	}

	selected := make(map[string]bool, len(only))
	for _, name := range only {
		switch name {
		case "budget", "outlier", "frequency", "duplicate":
			selected[name] = true
		default:
			return nil, fmt.Errorf("unknown detector: %s (valid: budget, outlier, frequency, duplicate)", name)
		}
	}

	var insights model.Insights
	if selected["budget"] {
		insights = append(insights, engine.BudgetRecommendations(transactions, budgets)...)
	}
	if selected["outlier"] {
		insights = append(insights, engine.LargestOutlier(transactions)...)
	}
	if selected["frequency"] {
		insights = append(insights, engine.FrequencySpike(transactions, days)...)
	}
	if selected["duplicate"] {
		insights = append(insights, engine.DuplicateCharges(transactions)...)
	}

	return insights, nil
}

// loadThresholds reads optional detector tuning from the config file,
// falling back to the standard values for anything unset.
func loadThresholds() insight.Thresholds {
	thresholds := insight.DefaultThresholds()

	if v := viper.GetFloat64("insights.over_budget_ratio"); v > 0 {
		thresholds.OverBudgetRatio = v
	}
	if v := viper.GetFloat64("insights.frequency_spike_ratio"); v > 0 {
		thresholds.FrequencySpikeRatio = v
	}
	if v := viper.GetFloat64("insights.min_anomaly_floor"); v > 0 {
		thresholds.MinAnomalyFloor = v
	}
	if v := viper.GetFloat64("insights.high_priority_floor"); v > 0 {
		thresholds.HighPriorityFloor = v
	}
	if v := viper.GetFloat64("insights.amount_tolerance"); v > 0 {
		thresholds.AmountTolerance = v
	}
	if v := viper.GetInt("insights.duplicate_window_days"); v > 0 {
		thresholds.DuplicateWindowDays = v
	}

	return thresholds
}

// buildReportSummary aggregates the transactions behind a report into
// the totals the sheets export shows alongside the insights.
func buildReportSummary(transactions []model.Transaction, start, end time.Time) *service.ReportSummary {
	summary := &service.ReportSummary{
		ByCategory: make(map[string]service.CategorySummary),
		DateRange:  service.DateRange{Start: start, End: end},
	}

	for _, txn := range transactions {
		switch txn.Type {
		case model.TransactionTypeIncome:
			summary.TotalIncome += txn.Amount
		case model.TransactionTypeExpense:
			summary.TotalExpenses += txn.Amount

			category := txn.Category
			if category == "" {
				category = model.DefaultSpendingCategory
			}
			entry := summary.ByCategory[category]
			entry.Count++
			entry.Amount += txn.Amount
			summary.ByCategory[category] = entry
		}
	}

	return summary
}

func exportReportToSheets(ctx context.Context, report *service.InsightReport, transactions []model.Transaction) error {
	sheetsConfig, err := config.LoadSheetsConfig()
	if err != nil {
		return fmt.Errorf("sheets configuration error: %w", err)
	}

	writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	summary := buildReportSummary(transactions, report.PeriodStart, report.PeriodEnd)

	slog.Info("📊 Exporting report to Google Sheets...")
	if err := writer.Write(ctx, report, summary, transactions); err != nil {
		return err
	}

	slog.Info(cli.FormatSuccess("✓ Report exported to Google Sheets"))
	return nil
}

func insightsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved insight reports",
		Long:  `Display previously saved insight reports, newest first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			limit, _ := cmd.Flags().GetInt("limit")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			reports, err := store.ListReports(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list reports: %w", err)
			}

			fmt.Fprint(os.Stdout, cli.RenderReportList(reports))
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum number of reports to show")

	return cmd
}

func insightsLatestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent saved report",
		Long:  `Display the most recently saved insight report in full.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			return showLatestReport(ctx, store, os.Stdout)
		},
	}
}

// showLatestReport renders the newest saved report, or a hint when no
// report has been saved yet.
func showLatestReport(ctx context.Context, store service.Storage, out io.Writer) error {
	report, err := store.GetLatestReport(ctx)
	if err != nil {
		return fmt.Errorf("failed to load latest report: %w", err)
	}
	if report == nil {
		fmt.Fprintln(out, cli.FormatInfo("No saved reports yet. Run 'spendlens insights --save' first."))
		return nil
	}

	fmt.Fprintln(out, cli.RenderReport(report))
	return nil
}
