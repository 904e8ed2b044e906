package pipeline

import (
	"context"
	"time"

	"github.com/dvloznov/budget-insight/internal/advisor"
	infra "github.com/dvloznov/budget-insight/internal/infra/bigquery"
	"github.com/dvloznov/budget-insight/internal/normalize"
)

// RowSource is an interface for fetching raw transaction rows for a window.
// This interface enables mocking and swapping the spreadsheet backend.
type RowSource interface {
	// FetchRows returns raw rows dated within [start, end]. Rows with
	// unparseable dates are included; the normalizer counts them as dropped.
	FetchRows(ctx context.Context, start, end time.Time) ([]normalize.RawRow, error)
}

// Uploader is an interface for storing rendered reports.
type Uploader interface {
	// UploadReport writes the report text and returns its storage URI.
	UploadReport(ctx context.Context, bucketName string, reportDate time.Time, text string) (string, error)
}

// Exporter is an interface for mirroring a persisted report into an
// external tracker.
type Exporter interface {
	// ExportReport creates or updates the external page for one report.
	ExportReport(ctx context.Context, row *infra.ReportRow) error
}

// Advisor is an interface for generating a model-written narrative from the
// rendered report.
type Advisor interface {
	// Advise returns structured advice grounded in the report text.
	Advise(ctx context.Context, reportText string) (*advisor.Advice, error)
}
