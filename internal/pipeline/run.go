package pipeline

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/budget-insight/internal/advisor"
	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/config"
	"github.com/dvloznov/budget-insight/internal/gcs"
	infra "github.com/dvloznov/budget-insight/internal/infra/bigquery"
	"github.com/dvloznov/budget-insight/internal/logger"
	"github.com/dvloznov/budget-insight/internal/notionsync"
	"github.com/dvloznov/budget-insight/internal/sheets"
)

// analysisLookbackDays is how many days of history each report covers,
// counting the report date itself.
const analysisLookbackDays = 30

// AnalysisWindow returns the time range analyzed for a report date: the
// lookback window ending on the report date. Both ends are inclusive, so
// the end sits on the last second of the report date.
func AnalysisWindow(reportDate civil.Date) (start, end time.Time) {
	startDate := reportDate.AddDays(-(analysisLookbackDays - 1))
	start = time.Date(startDate.Year, startDate.Month, startDate.Day, 0, 0, 0, 0, time.UTC)
	end = time.Date(reportDate.Year, reportDate.Month, reportDate.Day, 23, 59, 59, 0, time.UTC)
	return start, end
}

// RunDailyAnalysisWithDeps executes the daily analysis pipeline with
// injected dependencies. The returned state is non-nil even on error so
// callers can read the run ID of a failed run.
func RunDailyAnalysisWithDeps(ctx context.Context, reportDate civil.Date, trigger string, deps Deps) (*PipelineState, error) {
	start, end := AnalysisWindow(reportDate)
	state := &PipelineState{
		ReportDate:  reportDate,
		Trigger:     trigger,
		WindowStart: start,
		WindowEnd:   end,
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("report_date", reportDate.String()).
		Str("trigger", trigger).
		Str("window_start", start.Format("2006-01-02")).
		Str("window_end", end.Format("2006-01-02")).
		Msg("Starting daily budget analysis")

	if err := NewDailyAnalysisPipeline(deps).Execute(ctx, state); err != nil {
		return state, err
	}

	log.Info().
		Str("report_date", reportDate.String()).
		Str("run_id", state.RunID).
		Int("transactions", len(state.Transactions)).
		Int("dropped_rows", state.Dropped).
		Int("spending_score", state.Report.Overspending.SpendingScore).
		Str("score_label", state.Report.Overspending.RiskLabel).
		Msg("Daily budget analysis completed")

	return state, nil
}

// RunDailyAnalysis wires the production dependencies from configuration and
// executes the daily analysis pipeline. Sheets and BigQuery are required;
// Cloud Storage, Notion, and the advisor are attached only when configured.
func RunDailyAnalysis(ctx context.Context, cfg config.Config, reportDate civil.Date, trigger string) (*PipelineState, error) {
	if !cfg.Google.SheetsConfigured() {
		return nil, fmt.Errorf("SHEETS_SPREADSHEET_ID is required to run an analysis")
	}

	budgetCfg, err := budget.Load(cfg.BudgetFile)
	if err != nil {
		return nil, fmt.Errorf("loading budget config: %w", err)
	}

	repo, err := infra.NewBigQueryReportRepository(ctx)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	deps := Deps{
		Repo:   repo,
		Source: sheets.NewSheetsRowSource(cfg.Google),
		Budget: budgetCfg,
	}

	if cfg.Google.Bucket != "" {
		deps.Uploader = gcs.NewGCSStorageService()
		deps.Bucket = cfg.Google.Bucket
	}

	if cfg.Notion.NotionConfigured() {
		client := notionsync.NewNotionClient(cfg.Notion.APIKey)
		deps.Exporter = notionsync.NewNotionExporter(client, cfg.Notion.DatabaseID, false)
	}

	if cfg.Advisor.AdvisorConfigured() {
		deps.Advisor = advisor.NewGeminiAdvisor(cfg.Advisor)
	}

	return RunDailyAnalysisWithDeps(ctx, reportDate, trigger, deps)
}
