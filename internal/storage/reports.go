package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spendlens/spendlens/internal/service"
)

// SaveReport persists a generated insight report.
func (s *SQLiteStorage) SaveReport(ctx context.Context, report *service.InsightReport) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReport(report); err != nil {
		return err
	}
	return s.saveReportTx(ctx, s.db, report)
}

func (s *SQLiteStorage) saveReportTx(ctx context.Context, q queryable, report *service.InsightReport) error {
	insightsJSON, err := json.Marshal(report.Insights)
	if err != nil {
		return fmt.Errorf("failed to marshal insights: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO insight_reports (
			id, generated_at, period_start, period_end, transaction_count, insights
		) VALUES (?, ?, ?, ?, ?, ?)
	`,
		report.ID,
		report.GeneratedAt,
		report.PeriodStart,
		report.PeriodEnd,
		report.Transactions,
		string(insightsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	slog.Info("saved insight report", "id", report.ID, "insights", len(report.Insights))
	return nil
}

// GetLatestReport returns the most recently generated report, or nil if
// no report has been saved yet.
func (s *SQLiteStorage) GetLatestReport(ctx context.Context) (*service.InsightReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getLatestReportTx(ctx, s.db)
}

func (s *SQLiteStorage) getLatestReportTx(ctx context.Context, q queryable) (*service.InsightReport, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, generated_at, period_start, period_end, transaction_count, insights
		FROM insight_reports
		ORDER BY generated_at DESC, id DESC
		LIMIT 1
	`)

	report, err := scanReport(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil // No reports yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}

	return report, nil
}

// ListReports returns the most recent reports, newest first. A limit of
// zero or less returns all reports.
func (s *SQLiteStorage) ListReports(ctx context.Context, limit int) ([]service.InsightReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listReportsTx(ctx, s.db, limit)
}

func (s *SQLiteStorage) listReportsTx(ctx context.Context, q queryable, limit int) ([]service.InsightReport, error) {
	query := `
		SELECT id, generated_at, period_start, period_end, transaction_count, insights
		FROM insight_reports
		ORDER BY generated_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reports []service.InsightReport
	for rows.Next() {
		report, scanErr := scanReport(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan report: %w", scanErr)
		}
		reports = append(reports, *report)
	}

	return reports, rows.Err()
}

func scanReport(scan func(dest ...any) error) (*service.InsightReport, error) {
	var report service.InsightReport
	var insightsJSON string

	err := scan(
		&report.ID,
		&report.GeneratedAt,
		&report.PeriodStart,
		&report.PeriodEnd,
		&report.Transactions,
		&insightsJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(insightsJSON), &report.Insights); err != nil {
		return nil, fmt.Errorf("failed to parse insights: %w", err)
	}

	return &report, nil
}
