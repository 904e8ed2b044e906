package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const reportsTable = "reports"

// InsertReport inserts a single ReportRow into the reports table.
func InsertReport(ctx context.Context, row *ReportRow) error {
	client, err := bigquery.NewClient(ctx, resolveProjectID())
	if err != nil {
		return fmt.Errorf("InsertReport: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertReportWithClient(ctx, client, row)
}

// InsertReportWithClient inserts a single ReportRow into the reports table
// using the provided BigQuery client.
func InsertReportWithClient(ctx context.Context, client *bigquery.Client, row *ReportRow) error {
	inserter := client.Dataset(resolveDatasetID()).Table(reportsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertReport: inserting row: %w", err)
	}

	return nil
}

// LatestReport returns the most recent report row, or nil when no report has
// been persisted yet.
func LatestReport(ctx context.Context) (*ReportRow, error) {
	client, err := bigquery.NewClient(ctx, resolveProjectID())
	if err != nil {
		return nil, fmt.Errorf("LatestReport: bigquery client: %w", err)
	}
	defer client.Close()

	return LatestReportWithClient(ctx, client)
}

// LatestReportWithClient returns the most recent report row using the
// provided BigQuery client.
func LatestReportWithClient(ctx context.Context, client *bigquery.Client) (*ReportRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			report_id,
			run_id,
			report_date,
			window_start,
			window_end,
			transaction_count,
			dropped_rows,
			total_spent,
			total_income,
			net_flow,
			spending_score,
			score_label,
			risk_level,
			top_category,
			alert_count,
			payload,
			report_text,
			gcs_uri,
			created_ts
		FROM %s.%s
		ORDER BY report_date DESC, created_ts DESC
		LIMIT 1
	`, resolveDatasetID(), reportsTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("LatestReport: query read: %w", err)
	}

	var row ReportRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LatestReport: iter next: %w", err)
	}

	return &row, nil
}

// ListAllReports retrieves every persisted report row ordered by report date
// and creation time, oldest first. Re-runs of the same date produce multiple
// rows; callers wanting one row per date keep the last one seen.
func ListAllReports(ctx context.Context) ([]*ReportRow, error) {
	client, err := bigquery.NewClient(ctx, resolveProjectID())
	if err != nil {
		return nil, fmt.Errorf("ListAllReports: bigquery client: %w", err)
	}
	defer client.Close()

	return ListAllReportsWithClient(ctx, client)
}

// ListAllReportsWithClient retrieves every persisted report row using the
// provided BigQuery client.
func ListAllReportsWithClient(ctx context.Context, client *bigquery.Client) ([]*ReportRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			report_id,
			run_id,
			report_date,
			window_start,
			window_end,
			transaction_count,
			dropped_rows,
			total_spent,
			total_income,
			net_flow,
			spending_score,
			score_label,
			risk_level,
			top_category,
			alert_count,
			payload,
			report_text,
			gcs_uri,
			created_ts
		FROM %s.%s
		ORDER BY report_date, created_ts
	`, resolveDatasetID(), reportsTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAllReports: query read: %w", err)
	}

	var reports []*ReportRow
	for {
		var row ReportRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAllReports: iterating: %w", err)
		}
		reports = append(reports, &row)
	}

	return reports, nil
}
