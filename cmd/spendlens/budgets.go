package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spendlens/spendlens/internal/cli"
	"github.com/spf13/cobra"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Manage monthly budgets",
		Long: `Set, list, and remove monthly spending limits per category.

Budgets feed the insight engine: categories that consistently exceed
their limit produce budget recommendations in 'spendlens insights'.`,
	}

	cmd.AddCommand(budgetsListCmd())
	cmd.AddCommand(budgetsSetCmd())
	cmd.AddCommand(budgetsRemoveCmd())

	return cmd
}

func budgetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List budgets with current month spending",
		Long:  `Display all budgets alongside what has been spent against them this month.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budgets, err := store.GetBudgets(ctx)
			if err != nil {
				return fmt.Errorf("failed to get budgets: %w", err)
			}

			monthStart, now := monthWindow()
			spending, err := store.GetCategorySummaries(ctx, monthStart, now)
			if err != nil {
				return fmt.Errorf("failed to get spending summaries: %w", err)
			}

			fmt.Fprint(os.Stdout, cli.RenderBudgets(budgets, spending))
			return nil
		},
	}
}

func budgetsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <amount>",
		Short: "Set a monthly budget",
		Long:  `Create or update the monthly spending limit for a category.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			category := args[0]

			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			if amount < 0 {
				return fmt.Errorf("budget amount cannot be negative: %.2f", amount)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			// Warn when the category is unknown; the budget still applies
			// once transactions carry that category name.
			known, err := store.GetCategoryByName(ctx, category)
			if err != nil {
				return fmt.Errorf("failed to check category: %w", err)
			}
			if known == nil {
				slog.Warn("Category does not exist yet", "category", category)
			}

			budget, err := store.SetBudget(ctx, category, amount)
			if err != nil {
				return fmt.Errorf("failed to set budget: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("✓ Budget for %q set to $%.2f/month", budget.Category, budget.LimitAmount)))
			return nil
		},
	}
}

func budgetsRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <category>",
		Short: "Remove a budget",
		Long:  `Delete the monthly spending limit for a category.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			category := args[0]

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budget, err := store.GetBudgetByCategory(ctx, category)
			if err != nil {
				return fmt.Errorf("failed to check budget: %w", err)
			}
			if budget == nil {
				return fmt.Errorf("no budget set for category %q", category)
			}

			// Get confirmation unless --force flag is set
			if force, _ := cmd.Flags().GetBool("force"); !force {
				reader := cli.NewNonBlockingReader(os.Stdin)
				question := fmt.Sprintf("Remove the $%.2f/month budget for %q?", budget.LimitAmount, category)
				confirmed, err := cli.Confirm(ctx, reader, os.Stdout, question)
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Println("Removal cancelled.")
					return nil
				}
			}

			if err := store.DeleteBudget(ctx, category); err != nil {
				return fmt.Errorf("failed to remove budget: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("✓ Removed budget for %q", category)))
			return nil
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")

	return cmd
}
