package main

import (
	"fmt"
	"os"

	"github.com/spendlens/spendlens/internal/cli"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage spending categories",
		Long:  `List and create the categories used to group transactions for analysis.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Long:  `Display all categories grouped by type, with this month's spending per category.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			monthStart, now := monthWindow()
			spending, err := store.GetCategorySummaries(ctx, monthStart, now)
			if err != nil {
				return fmt.Errorf("failed to get spending summaries: %w", err)
			}

			fmt.Fprint(os.Stdout, cli.RenderCategories(categories, spending))
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var (
		categoryType        string
		categoryDescription string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long:  `Create a new category for grouping transactions.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			categoryName := args[0]

			ctype := model.CategoryType(categoryType)
			if !ctype.Valid() {
				return fmt.Errorf("invalid category type: %s (valid: expense, income, system)", categoryType)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			// Check if category already exists
			existing, err := store.GetCategoryByName(ctx, categoryName)
			if err != nil {
				return fmt.Errorf("failed to check existing category: %w", err)
			}
			if existing != nil {
				return fmt.Errorf("category %q already exists", categoryName)
			}

			category, err := store.CreateCategory(ctx, categoryName, categoryDescription, ctype)
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("✓ Created %s category %q (ID: %d)", category.Type, category.Name, category.ID)))
			if category.Description != "" {
				fmt.Printf("  Description: %s\n", category.Description)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&categoryType, "type", "expense", "Category type (expense, income, system)")
	cmd.Flags().StringVar(&categoryDescription, "description", "", "Category description")

	return cmd
}
