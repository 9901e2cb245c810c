package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spendlens/spendlens/internal/cli"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/pattern"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rules",
		Aliases: []string{"rule"},
		Short:   "Manage categorization rules",
		Long: `Manage the rules that assign categories to imported transactions.

A rule matches on the transaction title (substring or regex), optionally
constrained by amount and type. Higher priority rules win when several
match the same transaction.`,
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesDisableCmd())
	cmd.AddCommand(rulesTestCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active rules",
		Long:  `List all active categorization rules with their conditions and usage.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.GetActiveCategoryRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get rules: %w", err)
			}

			if len(rules) == 0 {
				slog.Info("No rules found. Create one with 'spendlens rules add'.")
				return nil
			}

			// Display rules in a table
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tPATTERN\tAMOUNT\tTYPE\tCATEGORY\tPRIORITY\tUSES")
			_, _ = fmt.Fprintln(w, "──\t────\t───────\t──────\t────\t────────\t────────\t────")

			for _, rule := range rules {
				titlePattern := rule.TitlePattern
				if titlePattern == "" {
					titlePattern = "any"
				} else if rule.IsRegex {
					titlePattern = "/" + titlePattern + "/"
				}

				ruleType := "any"
				if rule.Type != nil {
					ruleType = string(*rule.Type)
				}

				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
					rule.ID,
					truncateString(rule.Name, 20),
					truncateString(titlePattern, 24),
					formatAmountCondition(rule),
					ruleType,
					rule.Category,
					rule.Priority,
					rule.UseCount)
			}

			return w.Flush()
		},
	}
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a categorization rule",
		Long: `Create a new categorization rule.

Examples:
  # Everything containing "starbucks" is Dining
  spendlens rules add --pattern starbucks --category Dining

  # Small coffee-shop charges only
  spendlens rules add --pattern coffee --category Dining --amount-condition lt --amount-value 15

  # Regex match for payroll deposits
  spendlens rules add --pattern '^ACME CORP' --regex --type income --category Salary`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			titlePattern, _ := cmd.Flags().GetString("pattern")
			category, _ := cmd.Flags().GetString("category")
			if category == "" {
				return fmt.Errorf("category is required")
			}

			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				name = titlePattern
			}
			if name == "" {
				return fmt.Errorf("a rule with no pattern needs --name")
			}

			isRegex, _ := cmd.Flags().GetBool("regex")
			amountCond, _ := cmd.Flags().GetString("amount-condition")
			amountValue, _ := cmd.Flags().GetFloat64("amount-value")
			amountMin, _ := cmd.Flags().GetFloat64("amount-min")
			amountMax, _ := cmd.Flags().GetFloat64("amount-max")
			ruleType, _ := cmd.Flags().GetString("type")
			priority, _ := cmd.Flags().GetInt("priority")

			// Validate amount condition
			if amountCond != "" && amountCond != "any" {
				validConditions := []string{"lt", "le", "eq", "ge", "gt", "range"}
				valid := false
				for _, vc := range validConditions {
					if amountCond == vc {
						valid = true
						break
					}
				}
				if !valid {
					return fmt.Errorf("invalid amount condition: %s (valid: lt, le, eq, ge, gt, range, any)", amountCond)
				}

				if amountCond == "range" {
					if amountMin == 0 && amountMax == 0 {
						return fmt.Errorf("range condition requires --amount-min and/or --amount-max")
					}
				} else if amountValue == 0 {
					return fmt.Errorf("%s condition requires --amount-value", amountCond)
				}
			}

			// Validate transaction type
			var typePtr *model.TransactionType
			if ruleType != "" {
				t := model.TransactionType(ruleType)
				if !t.Valid() {
					return fmt.Errorf("invalid type: %s (valid: income, expense, transfer)", ruleType)
				}
				typePtr = &t
			}

			rule := &model.CategoryRule{
				Name:            name,
				TitlePattern:    titlePattern,
				IsRegex:         isRegex,
				AmountCondition: amountCond,
				Type:            typePtr,
				Category:        category,
				Priority:        priority,
				IsActive:        true,
			}

			// Set amount values
			if amountCond == "range" {
				if amountMin > 0 {
					rule.AmountMin = &amountMin
				}
				if amountMax > 0 {
					rule.AmountMax = &amountMax
				}
			} else if amountCond != "any" && amountCond != "" {
				rule.AmountValue = &amountValue
			}

			if amountCond == "" {
				rule.AmountCondition = "any"
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.CreateCategoryRule(ctx, rule); err != nil {
				return fmt.Errorf("failed to create rule: %w", err)
			}

			slog.Info("✓ Rule created successfully",
				"id", rule.ID,
				"name", rule.Name,
				"category", rule.Category)

			return nil
		},
	}

	cmd.Flags().StringP("pattern", "m", "", "Title pattern to match (substring, or regex with --regex)")
	cmd.Flags().StringP("category", "c", "", "Category for matching transactions (required)")
	cmd.Flags().StringP("name", "n", "", "Name for the rule (defaults to the pattern)")
	cmd.Flags().BoolP("regex", "r", false, "Treat the pattern as a regular expression")
	cmd.Flags().String("amount-condition", "", "Amount condition (lt, le, eq, ge, gt, range)")
	cmd.Flags().Float64("amount-value", 0, "Amount value for comparison")
	cmd.Flags().Float64("amount-min", 0, "Minimum amount for range condition")
	cmd.Flags().Float64("amount-max", 0, "Maximum amount for range condition")
	cmd.Flags().String("type", "", "Transaction type to match (income, expense, transfer)")
	cmd.Flags().IntP("priority", "p", 0, "Priority (higher values override lower)")

	if err := cmd.MarkFlagRequired("category"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}

	return cmd
}

func rulesDisableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disable <id>",
		Short: "Disable a rule",
		Long:  `Deactivate a categorization rule. Disabled rules no longer match during import.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule ID: %s", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			// Show rule info before asking
			rules, err := store.GetActiveCategoryRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get rules: %w", err)
			}
			var target *model.CategoryRule
			for i := range rules {
				if rules[i].ID == id {
					target = &rules[i]
					break
				}
			}
			if target == nil {
				return fmt.Errorf("active rule %d not found", id)
			}

			if force, _ := cmd.Flags().GetBool("force"); !force {
				reader := cli.NewNonBlockingReader(os.Stdin)
				question := fmt.Sprintf("Disable rule %d (%s → %s)?", target.ID, target.Name, target.Category)
				confirmed, err := cli.Confirm(ctx, reader, os.Stdout, question)
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Println("Cancelled.")
					return nil
				}
			}

			if err := store.DeactivateCategoryRule(ctx, id); err != nil {
				return fmt.Errorf("failed to disable rule: %w", err)
			}

			slog.Info("Rule disabled", "id", id)
			return nil
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")

	return cmd
}

func rulesTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test rules against a transaction",
		Long:  `Show which rules would match a transaction with the given attributes, and the resulting suggestion.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			title, _ := cmd.Flags().GetString("title")
			amount, _ := cmd.Flags().GetFloat64("amount")
			txnType, _ := cmd.Flags().GetString("type")

			txn := model.Transaction{
				Title:  title,
				Amount: amount,
			}
			if txnType != "" {
				t := model.TransactionType(txnType)
				if !t.Valid() {
					return fmt.Errorf("invalid type: %s (valid: income, expense, transfer)", txnType)
				}
				txn.Type = t
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.GetActiveCategoryRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get rules: %w", err)
			}
			if len(rules) == 0 {
				slog.Info("No active rules to test against")
				return nil
			}

			suggester := pattern.NewSuggester(pattern.NewMatcher(rules), pattern.NewValidator())
			suggestions, err := suggester.Suggest(ctx, txn)
			if err != nil {
				return fmt.Errorf("failed to evaluate rules: %w", err)
			}

			if len(suggestions) == 0 {
				slog.Info("No rules match this transaction",
					"title", title,
					"amount", fmt.Sprintf("%.2f", amount))
				return nil
			}

			slog.Info("Matching suggestions:", "count", len(suggestions))
			for _, s := range suggestions {
				line := fmt.Sprintf("  %s (%.0f%% confidence)", s.Category, s.Confidence*100)
				fmt.Println(cli.FormatSuccess(line))
				fmt.Println(cli.StyleInfo("    " + s.Reason))
			}

			return nil
		},
	}

	cmd.Flags().StringP("title", "t", "", "Transaction title to test (required)")
	cmd.Flags().Float64P("amount", "a", 0, "Transaction amount")
	cmd.Flags().String("type", "", "Transaction type (income, expense, transfer)")

	if err := cmd.MarkFlagRequired("title"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}

	return cmd
}

// Helper functions

func formatAmountCondition(rule model.CategoryRule) string {
	switch rule.AmountCondition {
	case "", "any":
		return "any"
	case "lt":
		if rule.AmountValue != nil {
			return fmt.Sprintf("< %.2f", *rule.AmountValue)
		}
	case "le":
		if rule.AmountValue != nil {
			return fmt.Sprintf("≤ %.2f", *rule.AmountValue)
		}
	case "eq":
		if rule.AmountValue != nil {
			return fmt.Sprintf("= %.2f", *rule.AmountValue)
		}
	case "ge":
		if rule.AmountValue != nil {
			return fmt.Sprintf("≥ %.2f", *rule.AmountValue)
		}
	case "gt":
		if rule.AmountValue != nil {
			return fmt.Sprintf("> %.2f", *rule.AmountValue)
		}
	case "range":
		parts := make([]string, 0, 3)
		if rule.AmountMin != nil {
			parts = append(parts, fmt.Sprintf("%.2f", *rule.AmountMin))
		} else {
			parts = append(parts, "0")
		}
		parts = append(parts, "-")
		if rule.AmountMax != nil {
			parts = append(parts, fmt.Sprintf("%.2f", *rule.AmountMax))
		} else {
			parts = append(parts, "∞")
		}
		return strings.Join(parts, "")
	}
	return "?"
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
