package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spendlens/spendlens/internal/cli"
	"github.com/spendlens/spendlens/internal/common"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/service"
	"github.com/spf13/cobra"
)

func recategorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recategorize [transaction-id] [category]",
		Short: "Move a transaction to a different category",
		Long: `Assign an existing transaction to a different category, or list the
expenses that still have no category.

Examples:
  # Move a transaction into Dining
  spendlens recategorize tx-42 Dining

  # Show recent expenses that need a category
  spendlens recategorize --uncategorized --days 30`,
		Args: func(cmd *cobra.Command, args []string) error {
			if uncategorized, _ := cmd.Flags().GetBool("uncategorized"); uncategorized {
				if len(args) != 0 {
					return fmt.Errorf("--uncategorized takes no arguments")
				}
				return nil
			}
			if len(args) != 2 {
				return fmt.Errorf("expected <transaction-id> <category>, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if uncategorized, _ := cmd.Flags().GetBool("uncategorized"); uncategorized {
				startDate, endDate, _, err := parseDateRange(cmd)
				if err != nil {
					return err
				}
				return listUncategorizedExpenses(ctx, store, startDate, endDate, os.Stdout)
			}

			if err := recategorizeTransaction(ctx, store, args[0], args[1]); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("✓ Transaction %s moved to %s", args[0], args[1])))
			return nil
		},
	}

	addDateRangeFlags(cmd)
	cmd.Flags().Bool("uncategorized", false, "List expenses without a category instead of updating one")

	return cmd
}

// recategorizeTransaction moves one transaction to the named category,
// verifying both exist first.
func recategorizeTransaction(ctx context.Context, store service.Storage, transactionID, categoryName string) error {
	txn, err := store.GetTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("transaction %s not found", transactionID)
		}
		return fmt.Errorf("failed to load transaction: %w", err)
	}

	category, err := store.GetCategoryByName(ctx, categoryName)
	if err != nil {
		return fmt.Errorf("failed to look up category: %w", err)
	}
	if category == nil {
		return fmt.Errorf("unknown category %q (see 'spendlens categories list')", categoryName)
	}

	if txn.Category == category.Name {
		return nil
	}

	if err := store.UpdateTransactionCategory(ctx, transactionID, category.Name); err != nil {
		return fmt.Errorf("failed to update transaction category: %w", err)
	}

	return nil
}

// listUncategorizedExpenses shows the expenses in the window that have
// no category yet so they can be recategorized by hand.
func listUncategorizedExpenses(ctx context.Context, store service.Storage, start, end time.Time, out io.Writer) error {
	expenses, err := store.GetExpensesByPeriod(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to load expenses: %w", err)
	}

	var uncategorized []model.Transaction
	for _, txn := range expenses {
		if txn.Category == "" {
			uncategorized = append(uncategorized, txn)
		}
	}

	if len(uncategorized) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No uncategorized expenses in this window."))
		return nil
	}

	content := fmt.Sprintf("%d uncategorized expenses:\n\n", len(uncategorized))
	for _, txn := range uncategorized {
		content += fmt.Sprintf("%s  %-10s  $%8.2f  %s\n",
			txn.Date.Format("2006-01-02"), txn.ID, txn.Amount, txn.Title)
	}

	fmt.Fprint(out, cli.RenderBox("Needs a Category", content))
	return nil
}
