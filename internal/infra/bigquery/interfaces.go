package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// ReportRepository provides the persistence operations the analysis pipeline
// and the API need. This interface enables mocking in tests.
type ReportRepository interface {
	// InsertTransactions inserts a batch of TransactionRow.
	InsertTransactions(ctx context.Context, rows []*TransactionRow) error

	// QueryTransactionsByDateRange returns transactions within the date range,
	// restricted to successful analysis runs.
	QueryTransactionsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*TransactionRow, error)

	// StartAnalysisRun inserts a new run with status=RUNNING and returns the run_id.
	StartAnalysisRun(ctx context.Context, reportDate civil.Date, trigger string) (string, error)

	// MarkAnalysisRunFailed sets status=FAILED, finished_ts and error_message.
	MarkAnalysisRunFailed(ctx context.Context, runID string, runErr error)

	// MarkAnalysisRunSucceeded sets status=SUCCESS, finished_ts and row counts.
	MarkAnalysisRunSucceeded(ctx context.Context, runID string, rowsFetched, rowsDropped int) error

	// InsertReport inserts a single ReportRow.
	InsertReport(ctx context.Context, row *ReportRow) error

	// LatestReport returns the most recent report row, or nil when none exists.
	LatestReport(ctx context.Context) (*ReportRow, error)

	// ListAllReports returns every persisted report row, oldest first.
	ListAllReports(ctx context.Context) ([]*ReportRow, error)
}

// BigQueryReportRepository is the concrete implementation of ReportRepository.
// It holds a shared BigQuery client to avoid creating a new connection for
// each operation.
type BigQueryReportRepository struct {
	client *bigquery.Client
}

// NewBigQueryReportRepository creates a new instance of
// BigQueryReportRepository with a shared BigQuery client.
func NewBigQueryReportRepository(ctx context.Context) (*BigQueryReportRepository, error) {
	client, err := bigquery.NewClient(ctx, resolveProjectID())
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryReportRepository: creating client: %w", err)
	}
	return &BigQueryReportRepository{
		client: client,
	}, nil
}

// Close closes the BigQuery client connection. This should be called when
// the repository is no longer needed to release resources.
func (r *BigQueryReportRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertTransactions delegates to InsertTransactionsWithClient with the shared client.
func (r *BigQueryReportRepository) InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	return InsertTransactionsWithClient(ctx, r.client, rows)
}

// QueryTransactionsByDateRange delegates to QueryTransactionsByDateRangeWithClient with the shared client.
func (r *BigQueryReportRepository) QueryTransactionsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*TransactionRow, error) {
	return QueryTransactionsByDateRangeWithClient(ctx, r.client, startDate, endDate)
}

// StartAnalysisRun delegates to StartAnalysisRunWithClient with the shared client.
func (r *BigQueryReportRepository) StartAnalysisRun(ctx context.Context, reportDate civil.Date, trigger string) (string, error) {
	return StartAnalysisRunWithClient(ctx, r.client, reportDate, trigger)
}

// MarkAnalysisRunFailed delegates to MarkAnalysisRunFailedWithClient with the shared client.
func (r *BigQueryReportRepository) MarkAnalysisRunFailed(ctx context.Context, runID string, runErr error) {
	MarkAnalysisRunFailedWithClient(ctx, r.client, runID, runErr)
}

// MarkAnalysisRunSucceeded delegates to MarkAnalysisRunSucceededWithClient with the shared client.
func (r *BigQueryReportRepository) MarkAnalysisRunSucceeded(ctx context.Context, runID string, rowsFetched, rowsDropped int) error {
	return MarkAnalysisRunSucceededWithClient(ctx, r.client, runID, rowsFetched, rowsDropped)
}

// InsertReport delegates to InsertReportWithClient with the shared client.
func (r *BigQueryReportRepository) InsertReport(ctx context.Context, row *ReportRow) error {
	return InsertReportWithClient(ctx, r.client, row)
}

// LatestReport delegates to LatestReportWithClient with the shared client.
func (r *BigQueryReportRepository) LatestReport(ctx context.Context) (*ReportRow, error) {
	return LatestReportWithClient(ctx, r.client)
}

// ListAllReports delegates to ListAllReportsWithClient with the shared client.
func (r *BigQueryReportRepository) ListAllReports(ctx context.Context) ([]*ReportRow, error) {
	return ListAllReportsWithClient(ctx, r.client)
}
