package pipeline

import (
	"context"
	"fmt"
	"time"

	bigquerylib "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/budget-insight/internal/analysis"
	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
	infra "github.com/dvloznov/budget-insight/internal/infra/bigquery"
	"github.com/dvloznov/budget-insight/internal/logger"
	"github.com/dvloznov/budget-insight/internal/normalize"
	"github.com/dvloznov/budget-insight/internal/report"
)

// PipelineStep represents a single step in the daily analysis pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	ReportDate   civil.Date
	Trigger      string
	WindowStart  time.Time
	WindowEnd    time.Time
	RunID        string
	Raw          []normalize.RawRow
	Transactions []domain.Transaction
	Dropped      int
	Report       *analysis.Report
	Rendered     string
	GCSURI       string
	ReportRow    *infra.ReportRow
}

// Step 1: StartRunStep records a new analysis run (status=RUNNING).
type StartRunStep struct {
	Repo infra.ReportRepository
}

func (s *StartRunStep) Execute(ctx context.Context, state *PipelineState) error {
	runID, err := s.Repo.StartAnalysisRun(ctx, state.ReportDate, state.Trigger)
	if err != nil {
		return err
	}
	state.RunID = runID
	return nil
}

// Step 2: FetchRowsStep pulls raw rows for the analysis window from the source.
type FetchRowsStep struct {
	Repo   infra.ReportRepository
	Source RowSource
}

func (s *FetchRowsStep) Execute(ctx context.Context, state *PipelineState) error {
	raw, err := s.Source.FetchRows(ctx, state.WindowStart, state.WindowEnd)
	if err != nil {
		s.Repo.MarkAnalysisRunFailed(ctx, state.RunID, err)
		return err
	}
	state.Raw = raw
	return nil
}

// Step 3: NormalizeRowsStep parses, categorizes, and orders the raw rows.
// Rows that cannot be parsed are counted, not fatal.
type NormalizeRowsStep struct {
	Budget budget.Config
}

func (s *NormalizeRowsStep) Execute(ctx context.Context, state *PipelineState) error {
	result := normalize.Normalize(state.Raw, s.Budget)
	state.Transactions = result.Transactions
	state.Dropped = result.Dropped
	return nil
}

// Step 4: AnalyzeStep computes the full report over the window. The queried
// window is stamped onto the report, which otherwise only knows the span the
// data happened to cover.
type AnalyzeStep struct {
	Budget budget.Config
}

func (s *AnalyzeStep) Execute(ctx context.Context, state *PipelineState) error {
	rep := analysis.BuildReport(state.Transactions, state.Dropped, s.Budget)
	if !state.WindowStart.IsZero() {
		rep.WindowStart = state.WindowStart
		rep.WindowEnd = state.WindowEnd
	}
	state.Report = &rep
	return nil
}

// Step 5: PersistTransactionsStep writes the window's transactions, stamped
// with any unusual activity flags, into the transactions table.
type PersistTransactionsStep struct {
	Repo infra.ReportRepository
}

func (s *PersistTransactionsStep) Execute(ctx context.Context, state *PipelineState) error {
	rows := buildTransactionRows(state.Transactions, state.RunID, state.Report)
	if err := s.Repo.InsertTransactions(ctx, rows); err != nil {
		s.Repo.MarkAnalysisRunFailed(ctx, state.RunID, err)
		return err
	}
	return nil
}

// Step 6: RenderReportStep renders the plain text daily report.
type RenderReportStep struct{}

func (s *RenderReportStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Rendered = report.Render(state.Report)
	return nil
}

// Step 7: AdviseStep appends a model-written narrative to the rendered
// report. Skipped when no advisor is configured; a failing advisor logs a
// warning and the pipeline continues with the numeric report alone.
type AdviseStep struct {
	Advisor Advisor
}

func (s *AdviseStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Advisor == nil {
		return nil
	}

	advice, err := s.Advisor.Advise(ctx, state.Rendered)
	if err != nil {
		logger.FromContext(ctx).Warn().
			Err(err).
			Str("run_id", state.RunID).
			Msg("Advisor narrative failed, continuing without it")
		return nil
	}

	state.Rendered = appendAdvice(state.Rendered, advice)
	return nil
}

// Step 8: UploadReportStep stores the rendered report in Cloud Storage.
// Skipped when no bucket is configured.
type UploadReportStep struct {
	Repo     infra.ReportRepository
	Uploader Uploader
	Bucket   string
}

func (s *UploadReportStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Uploader == nil || s.Bucket == "" {
		return nil
	}

	uri, err := s.Uploader.UploadReport(ctx, s.Bucket, state.ReportDate.In(time.UTC), state.Rendered)
	if err != nil {
		s.Repo.MarkAnalysisRunFailed(ctx, state.RunID, err)
		return err
	}
	state.GCSURI = uri
	return nil
}

// Step 9: PersistReportStep flattens the report into a row and stores it.
type PersistReportStep struct {
	Repo infra.ReportRepository
}

func (s *PersistReportStep) Execute(ctx context.Context, state *PipelineState) error {
	row := infra.NewReportRow(state.Report, state.RunID, state.ReportDate, state.Rendered)
	if state.GCSURI != "" {
		row.GCSURI = bigquerylib.NullString{StringVal: state.GCSURI, Valid: true}
	}

	if err := s.Repo.InsertReport(ctx, row); err != nil {
		s.Repo.MarkAnalysisRunFailed(ctx, state.RunID, err)
		return err
	}
	state.ReportRow = row
	return nil
}

// Step 10: ExportNotionStep mirrors the persisted report into Notion.
// Skipped when no exporter is configured; export failures log a warning
// because the mirror can always be rebuilt from BigQuery.
type ExportNotionStep struct {
	Exporter Exporter
}

func (s *ExportNotionStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Exporter == nil {
		return nil
	}

	if err := s.Exporter.ExportReport(ctx, state.ReportRow); err != nil {
		logger.FromContext(ctx).Warn().
			Err(err).
			Str("run_id", state.RunID).
			Msg("Notion export failed, continuing")
	}
	return nil
}

// Step 11: MarkSuccessStep marks the analysis run as SUCCESS with row counts.
type MarkSuccessStep struct {
	Repo infra.ReportRepository
}

func (s *MarkSuccessStep) Execute(ctx context.Context, state *PipelineState) error {
	if err := s.Repo.MarkAnalysisRunSucceeded(ctx, state.RunID, len(state.Raw), state.Dropped); err != nil {
		return err
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// Deps bundles the dependencies of the daily analysis pipeline. Repo,
// Source, and Budget are required; the rest are optional and disable their
// step when unset.
type Deps struct {
	Repo     infra.ReportRepository
	Source   RowSource
	Budget   budget.Config
	Uploader Uploader
	Bucket   string
	Exporter Exporter
	Advisor  Advisor
}

// NewDailyAnalysisPipeline creates the standard pipeline for one day's
// budget analysis.
func NewDailyAnalysisPipeline(deps Deps) *Pipeline {
	return NewPipeline(
		&StartRunStep{Repo: deps.Repo},
		&FetchRowsStep{Repo: deps.Repo, Source: deps.Source},
		&NormalizeRowsStep{Budget: deps.Budget},
		&AnalyzeStep{Budget: deps.Budget},
		&PersistTransactionsStep{Repo: deps.Repo},
		&RenderReportStep{},
		&AdviseStep{Advisor: deps.Advisor},
		&UploadReportStep{Repo: deps.Repo, Uploader: deps.Uploader, Bucket: deps.Bucket},
		&PersistReportStep{Repo: deps.Repo},
		&ExportNotionStep{Exporter: deps.Exporter},
		&MarkSuccessStep{Repo: deps.Repo},
	)
}
