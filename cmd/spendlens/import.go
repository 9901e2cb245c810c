package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spendlens/spendlens/internal/cli"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/pattern"
	"github.com/spendlens/spendlens/internal/service"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions",
		Long: `Import financial transactions into the local database.

Transactions can come from OFX/QFX files exported from your bank, a
SimpleFIN bridge, or connected Plaid accounts. Imports are deduplicated
automatically, and uncategorized transactions are matched against your
category rules.`,
	}

	cmd.AddCommand(importOFXCmd())
	cmd.AddCommand(importSimpleFINCmd())
	cmd.AddCommand(importPlaidCmd())

	return cmd
}

// displayAccounts lists the accounts a remote source exposes without
// importing anything.
func displayAccounts(ctx context.Context, fetcher service.TransactionFetcher, source string) error {
	slog.Info(cli.FormatTitle(fmt.Sprintf("Fetching accounts from %s", source)))

	accounts, err := fetcher.GetAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}

	if len(accounts) == 0 {
		slog.Info(cli.FormatWarning("No accounts found"))
		return nil
	}

	content := fmt.Sprintf("Found %d accounts:\n\n", len(accounts))
	for i, accountID := range accounts {
		content += fmt.Sprintf("%d. %s\n", i+1, accountID)
	}

	slog.Info(cli.RenderBox("Available Accounts", content))
	return nil
}

// importFromFetcher runs the full remote import pipeline: fetch from the
// source, optionally filter by account, then hand off to the shared
// dedupe/categorize/save tail.
func importFromFetcher(ctx context.Context, store service.Storage, fetcher service.TransactionFetcher, source string, startDate, endDate time.Time, accountFilter []string, dryRun bool) error {
	slog.Info(cli.FormatTitle(fmt.Sprintf("Importing transactions from %s", source)))
	slog.Info("Date range", "start", startDate.Format("2006-01-02"), "end", endDate.Format("2006-01-02"))

	slog.Info("🔄 Fetching transactions...")
	transactions, err := fetcher.GetTransactions(ctx, startDate, endDate)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("✓ Fetched %d transactions", len(transactions))))

	if len(accountFilter) > 0 {
		filtered := filterTransactionsByAccount(transactions, accountFilter)
		slog.Info(fmt.Sprintf("Filtered to %d transactions from specified accounts", len(filtered)))
		transactions = filtered
	}

	return importTransactions(ctx, store, transactions, dryRun)
}

func filterTransactionsByAccount(transactions []model.Transaction, accountIDs []string) []model.Transaction {
	accountSet := make(map[string]bool)
	for _, id := range accountIDs {
		accountSet[id] = true
	}

	filtered := make([]model.Transaction, 0)
	for _, tx := range transactions {
		if accountSet[tx.AccountID] {
			filtered = append(filtered, tx)
		}
	}

	return filtered
}

// importTransactions is the shared tail of every import path: dedupe
// against the database, apply category rules, save, and summarize.
func importTransactions(ctx context.Context, store service.Storage, transactions []model.Transaction, dryRun bool) error {
	if len(transactions) == 0 {
		slog.Warn("No transactions to import")
		return nil
	}

	// Drop anything already in the database
	existing, err := store.GetTransactionHashes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load existing transaction hashes: %w", err)
	}

	fresh := make([]model.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.Hash == "" {
			tx.Hash = tx.GenerateHash()
		}
		if existing[tx.Hash] {
			continue
		}
		existing[tx.Hash] = true
		fresh = append(fresh, tx)
	}

	duplicates := len(transactions) - len(fresh)
	if duplicates > 0 {
		slog.Info("Skipping transactions already imported", "duplicates", duplicates)
	}

	if len(fresh) == 0 {
		slog.Info(cli.FormatInfo("All transactions were already imported"))
		return nil
	}

	// Apply category rules to anything uncategorized
	categorized, err := applyCategoryRules(ctx, store, fresh)
	if err != nil {
		return fmt.Errorf("failed to apply category rules: %w", err)
	}
	if categorized > 0 {
		slog.Info(fmt.Sprintf("Categorized %d of %d transactions via rules", categorized, len(fresh)))
	}

	if dryRun {
		slog.Info(cli.FormatWarning("Dry run mode - not saving to database"))
		displayImportSummary(fresh)
		return nil
	}

	slog.Info("💾 Saving transactions to database...")
	if err := store.SaveTransactions(ctx, fresh); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	slog.Info(cli.FormatSuccess("✓ Import complete!"))
	displayImportSummary(fresh)

	return nil
}

// applyCategoryRules fills in the category of uncategorized transactions
// from the active rules, keeping the highest-priority valid suggestion.
// It returns the number of transactions that were categorized.
func applyCategoryRules(ctx context.Context, store service.Storage, transactions []model.Transaction) (int, error) {
	rules, err := store.GetActiveCategoryRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load category rules: %w", err)
	}
	if len(rules) == 0 {
		return 0, nil
	}

	categories, err := store.GetCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load categories: %w", err)
	}

	suggester := pattern.NewSuggester(pattern.NewMatcher(rules), pattern.NewValidator())

	bar := newImportProgressBar(len(transactions))

	categorized := 0
	ruleUses := make(map[int]int)
	for i := range transactions {
		if barErr := bar.Add(1); barErr != nil {
			slog.Warn("Failed to update progress bar", "error", barErr)
		}

		if transactions[i].Category != "" {
			continue
		}

		suggestions, err := suggester.SuggestWithValidation(ctx, transactions[i], categories)
		if err != nil {
			return categorized, err
		}
		if len(suggestions) == 0 {
			continue
		}

		transactions[i].Category = suggestions[0].Category
		categorized++
		if suggestions[0].RuleID != nil {
			ruleUses[*suggestions[0].RuleID]++
		}
	}

	// Record rule usage so 'rules list' reflects what actually fires
	for ruleID, uses := range ruleUses {
		for i := 0; i < uses; i++ {
			if err := store.IncrementRuleUseCount(ctx, ruleID); err != nil {
				slog.Warn("Failed to record rule use", "rule_id", ruleID, "error", err)
				break
			}
		}
	}

	return categorized, nil
}

func newImportProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Categorizing transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(os.Stderr); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func displayImportSummary(transactions []model.Transaction) {
	if len(transactions) == 0 {
		return
	}

	// Calculate summary statistics
	var totalExpenses, totalIncome float64
	categories := make(map[string]int)
	accounts := make(map[string]int)
	uncategorized := 0

	for _, tx := range transactions {
		switch tx.Type {
		case model.TransactionTypeIncome:
			totalIncome += tx.Amount
		case model.TransactionTypeExpense:
			totalExpenses += tx.Amount
		}
		accounts[tx.AccountID]++
		if tx.Category == "" {
			uncategorized++
		} else {
			categories[tx.Category]++
		}
	}

	content := fmt.Sprintf(`Transactions: %d
Expenses: $%.2f
Income: $%.2f
Accounts: %d
Uncategorized: %d

Top categories:
`, len(transactions), totalExpenses, totalIncome, len(accounts), uncategorized)

	// Show top 5 categories
	topCategories := getTopCategories(categories, 5)
	for i, c := range topCategories {
		content += fmt.Sprintf("%d. %s (%d transactions)\n", i+1, c.name, c.count)
	}

	slog.Info(cli.RenderBox("Import Summary", content))
}

type categoryCount struct {
	name  string
	count int
}

func getTopCategories(categories map[string]int, limit int) []categoryCount {
	// Convert map to slice for sorting
	counts := make([]categoryCount, 0, len(categories))
	for name, count := range categories {
		counts = append(counts, categoryCount{name: name, count: count})
	}

	// Simple selection sort for top N (efficient for small N)
	for i := 0; i < len(counts) && i < limit; i++ {
		for j := i + 1; j < len(counts); j++ {
			if counts[j].count > counts[i].count {
				counts[i], counts[j] = counts[j], counts[i]
			}
		}
	}

	if len(counts) > limit {
		counts = counts[:limit]
	}

	return counts
}
