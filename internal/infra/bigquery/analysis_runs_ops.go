package bigquery

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/dvloznov/budget-insight/internal/logger"
)

const (
	analysisRunsTable = "analysis_runs"
	engineVersion     = "v1"

	projectEnv     = "GOOGLE_PROJECT_ID"
	datasetEnv     = "BIGQUERY_DATASET"
	defaultDataset = "budget_insight"
)

// resolveProjectID returns the configured GCP project, falling back to
// client-side detection from application default credentials.
func resolveProjectID() string {
	if p := os.Getenv(projectEnv); p != "" {
		return p
	}
	return bigquery.DetectProjectID
}

func resolveDatasetID() string {
	if d := os.Getenv(datasetEnv); d != "" {
		return d
	}
	return defaultDataset
}

// StartAnalysisRun inserts a new row into analysis_runs with status=RUNNING
// and returns the generated run_id.
func StartAnalysisRun(ctx context.Context, reportDate civil.Date, trigger string) (string, error) {
	client, err := bigquery.NewClient(ctx, resolveProjectID())
	if err != nil {
		return "", fmt.Errorf("StartAnalysisRun: bigquery client: %w", err)
	}
	defer client.Close()

	return StartAnalysisRunWithClient(ctx, client, reportDate, trigger)
}

// StartAnalysisRunWithClient inserts a new row into analysis_runs with
// status=RUNNING and returns the generated run_id using the provided
// BigQuery client.
func StartAnalysisRunWithClient(ctx context.Context, client *bigquery.Client, reportDate civil.Date, trigger string) (string, error) {
	runID := uuid.NewString()
	started := time.Now()

	q := client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			run_id,
			report_date,
			started_ts,
			engine_version,
			trigger,
			status
		)
		VALUES (
			@run_id,
			@report_date,
			@started_ts,
			@engine_version,
			@trigger,
			@status
		)
	`, resolveDatasetID(), analysisRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "report_date", Value: reportDate.String()},
		{Name: "started_ts", Value: started},
		{Name: "engine_version", Value: engineVersion},
		{Name: "trigger", Value: trigger},
		{Name: "status", Value: "RUNNING"},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return "", fmt.Errorf("StartAnalysisRun: running insert query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("StartAnalysisRun: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return "", fmt.Errorf("StartAnalysisRun: job error: %w", err)
	}

	return runID, nil
}

// MarkAnalysisRunFailed sets status=FAILED, finished_ts and error_message.
// Failures here are logged, not returned: the caller is already handling the
// pipeline error this run is being failed for.
func MarkAnalysisRunFailed(ctx context.Context, runID string, runErr error) {
	log := logger.FromContext(ctx)

	client, err := bigquery.NewClient(ctx, resolveProjectID())
	if err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkAnalysisRunFailed: bigquery client error")
		return
	}
	defer client.Close()

	MarkAnalysisRunFailedWithClient(ctx, client, runID, runErr)
}

// MarkAnalysisRunFailedWithClient sets status=FAILED, finished_ts and
// error_message using the provided BigQuery client.
func MarkAnalysisRunFailedWithClient(ctx context.Context, client *bigquery.Client, runID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, resolveDatasetID(), analysisRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "run_id", Value: runID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkAnalysisRunFailed: running update query")
		return
	}

	status, err := job.Wait(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkAnalysisRunFailed: waiting for job")
		return
	}
	if err := status.Err(); err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkAnalysisRunFailed: job completed with error")
	}
}

// MarkAnalysisRunSucceeded sets status=SUCCESS, finished_ts and the row
// counts, clearing error_message.
func MarkAnalysisRunSucceeded(ctx context.Context, runID string, rowsFetched, rowsDropped int) error {
	client, err := bigquery.NewClient(ctx, resolveProjectID())
	if err != nil {
		return fmt.Errorf("MarkAnalysisRunSucceeded: bigquery client: %w", err)
	}
	defer client.Close()

	return MarkAnalysisRunSucceededWithClient(ctx, client, runID, rowsFetched, rowsDropped)
}

// MarkAnalysisRunSucceededWithClient sets status=SUCCESS, finished_ts and the
// row counts, clearing error_message, using the provided BigQuery client.
func MarkAnalysisRunSucceededWithClient(ctx context.Context, client *bigquery.Client, runID string, rowsFetched, rowsDropped int) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    rows_fetched = @rows_fetched,
		    rows_dropped = @rows_dropped,
		    error_message = ""
		WHERE run_id = @run_id
	`, resolveDatasetID(), analysisRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "rows_fetched", Value: rowsFetched},
		{Name: "rows_dropped", Value: rowsDropped},
		{Name: "run_id", Value: runID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkAnalysisRunSucceeded: running update query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkAnalysisRunSucceeded: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("MarkAnalysisRunSucceeded: job error: %w", err)
	}

	return nil
}
