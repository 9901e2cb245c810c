package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spendlens/spendlens/internal/cli"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/ofx"
	"github.com/spf13/cobra"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import financial transactions from OFX or QFX (Quicken) files exported from your bank.

Examples:
  # Import single file
  spendlens import ofx ~/Downloads/chase_jan_2024.qfx

  # Import multiple files
  spendlens import ofx ~/Downloads/chase_*.qfx

  # Import from multiple directories
  spendlens import ofx ~/Downloads/Chase/*.qfx ~/Downloads/Ally/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().Bool("dry-run", false, "Preview import without saving")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	interruptHandler := cli.NewInterruptHandler(nil)
	ctx := interruptHandler.HandleInterrupts(cmd.Context(), true)
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info("🔍 Importing OFX files...",
		"file_count", len(allFiles),
		"dry_run", dryRun)

	// Track all transactions across files
	var allTransactions []model.Transaction
	seen := make(map[string]bool) // For deduplication across files

	parser := ofx.NewParser()

	// Process each file
	for _, filePath := range allFiles {
		slog.Info("Processing file", "file", filepath.Base(filePath))

		f, err := os.Open(filePath)
		if err != nil {
			slog.Error("Failed to open file",
				"file", filePath,
				"error", err)
			continue
		}

		transactions, err := parser.ParseFile(ctx, f)
		_ = f.Close()

		if err != nil {
			slog.Error("Failed to parse OFX file",
				"file", filePath,
				"error", err)
			continue
		}

		if len(transactions) == 0 {
			slog.Warn("No transactions found in file",
				"file", filepath.Base(filePath))
			continue
		}

		// Add transactions, skipping hashes already seen in earlier files
		added := 0
		for _, tx := range transactions {
			if seen[tx.Hash] {
				continue
			}
			seen[tx.Hash] = true
			allTransactions = append(allTransactions, tx)
			added++
		}

		slog.Info("Processed file",
			"file", filepath.Base(filePath),
			"transactions_found", len(transactions),
			"added", added,
			"duplicates", len(transactions)-added)
	}

	if len(allTransactions) == 0 {
		slog.Warn("No transactions found in any file")
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return importTransactions(ctx, store, allTransactions, dryRun)
}
