package main

import (
	"fmt"
	"os"

	"github.com/spendlens/spendlens/internal/cli"
	"github.com/spendlens/spendlens/internal/simplefin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importSimpleFINCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simplefin",
		Short: "Import transactions from SimpleFIN",
		Long: `Import financial transactions from a SimpleFIN bridge.

Requires a SimpleFIN setup token in the config file (simplefin.token) or
the SIMPLEFIN_TOKEN environment variable. The token is claimed on first
use and the resulting access URL is cached locally.`,
		RunE: runImportSimpleFIN,
	}

	addDateRangeFlags(cmd)
	cmd.Flags().Bool("list-accounts", false, "List available accounts without importing")
	cmd.Flags().Bool("dry-run", false, "Preview import without saving")

	return cmd
}

func runImportSimpleFIN(cmd *cobra.Command, _ []string) error {
	interruptHandler := cli.NewInterruptHandler(nil)
	ctx := interruptHandler.HandleInterrupts(cmd.Context(), true)

	// Get SimpleFIN token from config or environment
	token := viper.GetString("simplefin.token")
	if token == "" {
		token = os.Getenv("SIMPLEFIN_TOKEN")
	}
	if token == "" {
		return fmt.Errorf("SimpleFIN token not found in config or SIMPLEFIN_TOKEN environment variable")
	}

	client, err := simplefin.NewClient(token)
	if err != nil {
		return fmt.Errorf("failed to create SimpleFIN client: %w", err)
	}

	if listAccounts, _ := cmd.Flags().GetBool("list-accounts"); listAccounts {
		return displayAccounts(ctx, client, "SimpleFIN")
	}

	startDate, endDate, _, err := parseDateRange(cmd)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return importFromFetcher(ctx, store, client, "SimpleFIN", startDate, endDate, nil, dryRun)
}
