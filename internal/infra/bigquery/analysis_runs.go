package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

type AnalysisRunRow struct {
	RunID      string     `bigquery:"run_id"`      // REQUIRED
	ReportDate civil.Date `bigquery:"report_date"` // REQUIRED

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	EngineVersion string `bigquery:"engine_version"` // NULLABLE
	Trigger       string `bigquery:"trigger"`        // NULLABLE: CLI, API, WORKER

	Status       string `bigquery:"status"`        // NULLABLE: RUNNING, SUCCESS, FAILED
	ErrorMessage string `bigquery:"error_message"` // NULLABLE

	RowsFetched bigquery.NullInt64 `bigquery:"rows_fetched"` // NULLABLE
	RowsDropped bigquery.NullInt64 `bigquery:"rows_dropped"` // NULLABLE
}
