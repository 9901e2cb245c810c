package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spendlens/spendlens/internal/config"
	"github.com/spendlens/spendlens/internal/service"
	"github.com/spendlens/spendlens/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := config.ExpandPath(viper.GetString("database.path"))
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// addDateRangeFlags registers the shared date range flags used by the
// insights and import commands.
func addDateRangeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("start-date", "s", "", "Start date (format: 2006-01-02)")
	cmd.Flags().StringP("end-date", "e", "", "End date (format: 2006-01-02)")
	cmd.Flags().IntP("days", "d", 30, "Number of days to cover (used if start/end dates not specified)")
}

// parseDateRange resolves the start-date/end-date/days flags into a
// concrete window. Explicit dates win; otherwise the window ends now and
// reaches back the requested number of days.
func parseDateRange(cmd *cobra.Command) (startDate, endDate time.Time, days int, err error) {
	startStr, _ := cmd.Flags().GetString("start-date")
	endStr, _ := cmd.Flags().GetString("end-date")

	if startStr != "" && endStr != "" {
		startDate, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, 0, fmt.Errorf("invalid start date format: %w", err)
		}

		endDate, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, 0, fmt.Errorf("invalid end date format: %w", err)
		}

		if endDate.Before(startDate) {
			return time.Time{}, time.Time{}, 0, fmt.Errorf("end date %s is before start date %s", endStr, startStr)
		}

		days = int(endDate.Sub(startDate).Hours() / 24)
		if days < 1 {
			days = 1
		}

		return startDate, endDate, days, nil
	}

	// Use days flag
	days, _ = cmd.Flags().GetInt("days")
	if days <= 0 {
		days = 30
	}

	endDate = time.Now()
	startDate = endDate.AddDate(0, 0, -days)

	return startDate, endDate, days, nil
}

// monthWindow returns the start of the current month and now, the window
// used for "this month" spending summaries.
func monthWindow() (time.Time, time.Time) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, now
}
