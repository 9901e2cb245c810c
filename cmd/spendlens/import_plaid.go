package main

import (
	"fmt"

	"github.com/spendlens/spendlens/internal/cli"
	"github.com/spendlens/spendlens/internal/plaid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importPlaidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plaid",
		Short: "Import transactions from Plaid",
		Long: `Import financial transactions from your connected Plaid accounts.

Requires Plaid credentials in the config file (plaid.client_id,
plaid.secret, plaid.access_token) or the matching SPENDLENS_ environment
variables. The environment defaults to sandbox.`,
		RunE: runImportPlaid,
	}

	addDateRangeFlags(cmd)
	cmd.Flags().StringSlice("accounts", []string{}, "Filter by specific account IDs (comma-separated)")
	cmd.Flags().Bool("list-accounts", false, "List available accounts without importing")
	cmd.Flags().Bool("dry-run", false, "Preview import without saving")

	return cmd
}

func runImportPlaid(cmd *cobra.Command, _ []string) error {
	interruptHandler := cli.NewInterruptHandler(nil)
	ctx := interruptHandler.HandleInterrupts(cmd.Context(), true)

	plaidConfig := plaid.Config{
		ClientID:    viper.GetString("plaid.client_id"),
		Secret:      viper.GetString("plaid.secret"),
		Environment: viper.GetString("plaid.environment"),
		AccessToken: viper.GetString("plaid.access_token"),
	}

	// Set defaults if not provided
	if plaidConfig.Environment == "" {
		plaidConfig.Environment = "sandbox"
	}

	client, err := plaid.NewClient(plaidConfig)
	if err != nil {
		return fmt.Errorf("failed to create Plaid client: %w", err)
	}

	if listAccounts, _ := cmd.Flags().GetBool("list-accounts"); listAccounts {
		return displayAccounts(ctx, client, "Plaid")
	}

	startDate, endDate, _, err := parseDateRange(cmd)
	if err != nil {
		return err
	}

	accountFilter, _ := cmd.Flags().GetStringSlice("accounts")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return importFromFetcher(ctx, store, client, "Plaid", startDate, endDate, accountFilter, dryRun)
}
