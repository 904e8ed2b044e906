// Package report renders an analysis.Report as a plain-text daily digest.
// The rendered text is what lands in GCS, prints from the CLI, and seeds the
// advisor prompt, so the layout stays stable and machine-greppable.
package report

import (
	"fmt"
	"strings"

	"github.com/dvloznov/budget-insight/internal/analysis"
)

const dateLayout = "2006-01-02"

// Render produces the full text digest for a report. Sections that had no
// data render a single placeholder line instead of being dropped, so a
// reader can tell "nothing found" from "not computed".
func Render(r *analysis.Report) string {
	var b strings.Builder

	writeHeader(&b, r)
	writeSummary(&b, r.Summary)
	writeBudget(&b, r.Overspending)
	writeTrends(&b, r.Trends, r.Profile)
	writeCashFlow(&b, r.CashFlow)
	writeRisk(&b, r.Risk)
	writeOpportunities(&b, r.Growth, r.Savings)
	writeVendors(&b, r.Vendors)
	writeBenchmarks(&b, r.Benchmarks)
	writeWhatIf(&b, r.WhatIf)
	writeHabits(&b, r.Habits)
	writeHygiene(&b, r.Hygiene)
	writeUnusual(&b, r.Unusual)

	return b.String()
}

func writeHeader(b *strings.Builder, r *analysis.Report) {
	b.WriteString("=== Budget Insight Daily Report ===\n")
	if r.WindowStart.IsZero() {
		b.WriteString("Window: (no transactions)\n")
	} else {
		b.WriteString(fmt.Sprintf("Window: %s to %s (%d days)\n",
			r.WindowStart.Format(dateLayout), r.WindowEnd.Format(dateLayout), r.WindowDays()))
	}
	if r.DroppedRows > 0 {
		b.WriteString(fmt.Sprintf("Dropped rows: %d (unparseable source data)\n", r.DroppedRows))
	}
	b.WriteString("\n")
}

func writeSummary(b *strings.Builder, s analysis.SpendingSummary) {
	b.WriteString("=== Summary ===\n")
	if s.Status == analysis.DataNoData {
		b.WriteString("No transactions in window.\n\n")
		return
	}
	b.WriteString(fmt.Sprintf("Transactions: %d (%d expenses)\n", s.TransactionCount, s.ExpenseCount))
	b.WriteString(fmt.Sprintf("Total spent:  $%.2f\n", s.TotalSpent))
	b.WriteString(fmt.Sprintf("Total income: $%.2f\n", s.TotalIncome))
	b.WriteString(fmt.Sprintf("Avg expense:  $%.2f\n", s.AverageTransaction))
	if s.LargestDescription != "" {
		b.WriteString(fmt.Sprintf("Largest:      $%.2f (%s)\n", s.LargestAmount, s.LargestDescription))
	}
	b.WriteString("\n")
}

func writeBudget(b *strings.Builder, o analysis.OverspendingReport) {
	b.WriteString("=== Budget Status ===\n")
	if o.Status == analysis.DataNoData {
		b.WriteString("No expenses to compare against budgets.\n\n")
		return
	}
	b.WriteString(fmt.Sprintf("Spent $%.2f of $%.2f budgeted\n", o.TotalSpent, o.TotalBudget))
	b.WriteString(fmt.Sprintf("Spending score: %d/100 (%s)\n", o.SpendingScore, o.RiskLabel))

	for _, c := range o.Overspending {
		b.WriteString(fmt.Sprintf("  [OVER]   %-16s $%.2f / $%.2f (%.0f%%, %s, $%.2f over)\n",
			c.Category, c.Spent, c.Budget, c.PercentageUsed, c.Severity, c.OverspendAmount))
	}
	for _, c := range o.Warnings {
		b.WriteString(fmt.Sprintf("  [WARN]   %-16s $%.2f / $%.2f (%.0f%%)\n",
			c.Category, c.Spent, c.Budget, c.PercentageUsed))
	}
	for _, c := range o.WithinBudget {
		b.WriteString(fmt.Sprintf("  [OK]     %-16s $%.2f / $%.2f (%.0f%%)\n",
			c.Category, c.Spent, c.Budget, c.PercentageUsed))
	}

	for _, rec := range o.Recommendations {
		b.WriteString("  - " + rec + "\n")
	}
	b.WriteString("\n")
}

func writeTrends(b *strings.Builder, t analysis.TrendReport, p analysis.DailyProfile) {
	b.WriteString("=== Trends ===\n")
	switch t.Status {
	case analysis.DataNoData:
		b.WriteString("No expense history to trend.\n\n")
		return
	case analysis.DataInsufficient:
		b.WriteString("Not enough history for trend analysis (need multiple days).\n\n")
		return
	}

	b.WriteString(fmt.Sprintf("Daily volatility: $%.2f\n", t.Volatility))
	if t.ProjectedMonthly > 0 {
		b.WriteString(fmt.Sprintf("Projected monthly spend: $%.2f\n", t.ProjectedMonthly))
	}
	if len(t.HighRiskCategories) > 0 {
		b.WriteString(fmt.Sprintf("On pace to exceed budget: %s\n", strings.Join(t.HighRiskCategories, ", ")))
	}
	if p.Status == analysis.DataOK {
		b.WriteString(fmt.Sprintf("Overall spending is %s, averaging $%.2f/day (consistency %.0f/100)\n",
			p.Trend, p.DailyAverage, p.ConsistencyScore))
		if p.HighestDay != "" {
			b.WriteString(fmt.Sprintf("Heaviest day: %s ($%.2f)\n", p.HighestDay, p.HighestDayAmount))
		}
	}
	for _, c := range t.Categories {
		b.WriteString(fmt.Sprintf("  %-16s %-10s $%.2f total, $%.2f/day", c.Category, c.Direction, c.Total, c.DailyAverage))
		if c.WillExceedBudget {
			b.WriteString(fmt.Sprintf(" (projected $%.2f/mo exceeds $%.2f budget)", c.ProjectedMonthly, c.MonthlyBudget))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeCashFlow(b *strings.Builder, c analysis.CashFlow) {
	b.WriteString("=== Cash Flow ===\n")
	if c.Status == analysis.DataNoData {
		b.WriteString("No transactions in window.\n\n")
		return
	}
	b.WriteString(fmt.Sprintf("Income $%.2f, expenses $%.2f, net %s$%.2f (%s)\n",
		c.Income, c.Expenses, signPrefix(c.NetFlow), abs(c.NetFlow), c.Direction))
	if c.Income > 0 {
		b.WriteString(fmt.Sprintf("Expense ratio %.0f%%, savings rate %.0f%%\n", c.ExpenseRatio*100, c.SavingsRate))
	}
	b.WriteString("\n")
}

func writeRisk(b *strings.Builder, r analysis.RiskAssessment) {
	b.WriteString("=== Risk ===\n")
	if r.Status == analysis.DataNoData {
		b.WriteString("No transactions to assess.\n\n")
		return
	}
	b.WriteString(fmt.Sprintf("Level: %s (confidence %d%%, severity %d)\n", r.Level, r.Confidence, r.SeverityScore))
	for _, f := range r.Factors {
		b.WriteString("  ! " + f + "\n")
	}
	for _, rec := range r.Recommendations {
		b.WriteString("  - " + rec + "\n")
	}
	b.WriteString("\n")
}

func writeOpportunities(b *strings.Builder, growth []analysis.GrowthOpportunity, savings []analysis.SavingsOpportunity) {
	b.WriteString("=== Opportunities ===\n")
	if len(growth) == 0 && len(savings) == 0 {
		b.WriteString("None identified.\n\n")
		return
	}
	for _, g := range growth {
		b.WriteString(fmt.Sprintf("  [%s] %s: $%.2f (%s effort, %s)\n",
			g.Type, g.Description, g.PotentialValue, g.EffortLevel, g.Timeframe))
		for _, a := range g.ActionItems {
			b.WriteString("      - " + a + "\n")
		}
	}
	for _, s := range savings {
		b.WriteString(fmt.Sprintf("  [%s] %s: $%.2f (%s priority)\n", s.Type, s.Description, s.Potential, s.Priority))
	}
	b.WriteString("\n")
}

func writeVendors(b *strings.Builder, v analysis.VendorReport) {
	b.WriteString("=== Vendors ===\n")
	if v.Status == analysis.DataNoData {
		b.WriteString("No vendor activity.\n\n")
		return
	}
	for _, t := range v.TopVendors {
		b.WriteString(fmt.Sprintf("  %-24s $%.2f over %d purchases\n", t.Vendor, t.Total, t.Count))
	}
	for _, rec := range v.Recurring {
		label := "recurring"
		if rec.Subscription {
			label = "subscription"
		}
		b.WriteString(fmt.Sprintf("  %s: %s, %d charges averaging $%.2f over %d days\n",
			label, rec.Vendor, rec.Count, rec.Average, rec.SpanDays))
	}
	b.WriteString("\n")
}

func writeBenchmarks(b *strings.Builder, bm analysis.BenchmarkReport) {
	b.WriteString("=== Benchmarks ===\n")
	if bm.Status == analysis.DataNoData {
		b.WriteString("No spending to benchmark.\n\n")
		return
	}
	for _, c := range bm.Comparisons {
		b.WriteString(fmt.Sprintf("  %-16s $%.2f/day vs $%.2f typical (%+.0f%%, %s)\n",
			c.Category, c.DailyAverage, c.Benchmark, c.DiffPercent, c.Standing))
	}
	b.WriteString("\n")
}

func writeWhatIf(b *strings.Builder, w analysis.WhatIfReport) {
	b.WriteString("=== What If ===\n")
	if w.Status == analysis.DataNoData {
		b.WriteString("No scenarios to model.\n\n")
		return
	}
	for _, s := range w.Scenarios {
		b.WriteString(fmt.Sprintf("  %-20s %s: save $%.2f\n", s.Name, s.Description, s.ProjectedSavings))
	}
	if w.BestScenario != "" {
		b.WriteString(fmt.Sprintf("Best lever: %s\n", w.BestScenario))
	}
	b.WriteString("\n")
}

func writeHabits(b *strings.Builder, h analysis.HabitsReport) {
	b.WriteString("=== Habits ===\n")
	if h.Status == analysis.DataNoData {
		b.WriteString("No purchase activity.\n\n")
		return
	}
	for _, d := range h.ByDay {
		if d.Count == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("  %-10s $%.2f (%d purchases)\n", d.Day, d.Total, d.Count))
	}
	for _, ins := range h.Insights {
		b.WriteString("  - " + ins + "\n")
	}
	b.WriteString("\n")
}

func writeHygiene(b *strings.Builder, h analysis.HygieneReport) {
	b.WriteString("=== Data Hygiene ===\n")
	if h.Status == analysis.DataNoData {
		b.WriteString("No transactions to audit.\n\n")
		return
	}
	b.WriteString(fmt.Sprintf("Quality score: %.0f/100 (%d of %d uncategorized)\n",
		h.QualityScore, h.UncategorizedCount, h.TotalTransactions))
	for _, iss := range h.Issues {
		b.WriteString("  - " + iss + "\n")
	}
	b.WriteString("\n")
}

func writeUnusual(b *strings.Builder, flagged []analysis.UnusualTransaction) {
	b.WriteString("=== Unusual Activity ===\n")
	if len(flagged) == 0 {
		b.WriteString("Nothing flagged.\n")
		return
	}
	for _, u := range flagged {
		b.WriteString(fmt.Sprintf("  %s %s $%.2f [%s] %s\n",
			u.Date.Format(dateLayout), u.Description, abs(u.Amount), u.Severity, strings.Join(u.Reasons, ", ")))
	}
}

func signPrefix(v float64) string {
	if v < 0 {
		return "-"
	}
	return "+"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
