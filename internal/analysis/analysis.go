// Package analysis implements the budget analysis engine: overspending
// classification, trend and forecast computation, cash flow, risk assessment,
// growth opportunities, and the supporting report sections.
//
// Every analyzer is a pure function of its inputs; given the same transaction
// batch and configuration it returns identical output. Degenerate inputs
// (empty batches, single data points, zero denominators) are modeled as data
// through DataStatus fields, never as errors.
package analysis

import (
	"time"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

// DataStatus marks how much signal an analyzer had to work with.
type DataStatus string

const (
	// DataOK means the analyzer computed a full result.
	DataOK DataStatus = "ok"
	// DataNoData means the input batch was empty; the result is canonical
	// zeroes, not an error.
	DataNoData DataStatus = "no_data"
	// DataInsufficient means the batch was non-empty but too small for the
	// statistic (e.g. a single day where a series is needed).
	DataInsufficient DataStatus = "insufficient_data"
)

// Budget adherence statuses for a category.
const (
	StatusWithinBudget = "WITHIN_BUDGET"
	StatusWarning      = "WARNING"
	StatusOverspending = "OVERSPENDING"
)

// Severity buckets for an overspending condition.
const (
	SeverityLow      = "Low"
	SeverityMedium   = "Medium"
	SeverityHigh     = "High"
	SeverityCritical = "Critical"
)

// Report is the full analysis result for one transaction window. It is plain
// nested data, JSON-representable without loss, consumed by the rendering,
// persistence, and API layers.
type Report struct {
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	DroppedRows int       `json:"dropped_rows"`

	Summary      SpendingSummary       `json:"summary"`
	Overspending OverspendingReport    `json:"overspending"`
	Trends       TrendReport           `json:"trends"`
	Profile      DailyProfile          `json:"daily_profile"`
	CashFlow     CashFlow              `json:"cash_flow"`
	Risk         RiskAssessment        `json:"risk"`
	Growth       []GrowthOpportunity   `json:"growth_opportunities"`
	Savings      []SavingsOpportunity  `json:"savings_opportunities"`
	Vendors      VendorReport          `json:"vendors"`
	Benchmarks   BenchmarkReport       `json:"benchmarks"`
	WhatIf       WhatIfReport          `json:"what_if"`
	Habits       HabitsReport          `json:"habits"`
	Hygiene      HygieneReport         `json:"hygiene"`
	Unusual      []UnusualTransaction  `json:"unusual_transactions"`
}

// BuildReport runs every analyzer over the batch and assembles the composite
// report. Layered analyzers (risk, growth) consume the already-computed trend
// and cash-flow sections instead of recomputing them. droppedRows is the
// normalizer's data-quality count, carried through for reporting.
func BuildReport(txs []domain.Transaction, droppedRows int, cfg budget.Config) Report {
	report := Report{
		DroppedRows: droppedRows,
	}

	if len(txs) > 0 {
		start, end := txs[0].Day(), txs[0].Day()
		for _, tx := range txs[1:] {
			day := tx.Day()
			if day.Before(start) {
				start = day
			}
			if day.After(end) {
				end = day
			}
		}
		report.WindowStart = start
		report.WindowEnd = end
	}

	report.Summary = Summarize(txs)
	report.Overspending = AnalyzeOverspending(txs, cfg)
	report.Trends = AnalyzeTrends(txs, cfg)
	report.Profile = BuildDailyProfile(txs, cfg.Heuristics)
	report.CashFlow = AnalyzeCashFlow(txs)
	report.Risk = AssessRisk(txs, report.Trends, report.CashFlow, cfg.Heuristics)
	report.Growth = IdentifyOpportunities(txs, report.CashFlow, cfg.Heuristics)
	report.Savings = IdentifySavings(txs, cfg)
	report.Vendors = AnalyzeVendors(txs)
	report.Benchmarks = CompareBenchmarks(txs)
	report.WhatIf = RunWhatIf(txs)
	report.Habits = AnalyzeHabits(txs)
	report.Hygiene = CheckHygiene(txs)
	report.Unusual = FlagUnusual(txs)

	return report
}

// WindowDays returns the calendar length of the report window in days, or 0
// for an empty window.
func (r Report) WindowDays() int {
	if r.WindowStart.IsZero() {
		return 0
	}
	return int(r.WindowEnd.Sub(r.WindowStart).Hours()/24) + 1
}
