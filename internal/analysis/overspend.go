package analysis

import (
	"fmt"
	"sort"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

// CategoryAnalysis is the budget verdict for one category over the window.
// Severity is only meaningful when Status is OVERSPENDING; Savings is only
// set when Status is WITHIN_BUDGET.
type CategoryAnalysis struct {
	Category        string  `json:"category"`
	Spent           float64 `json:"spent"`
	Budget          float64 `json:"budget"`
	PercentageUsed  float64 `json:"percentage_used"`
	Status          string  `json:"status"`
	Severity        string  `json:"severity,omitempty"`
	OverspendAmount float64 `json:"overspend_amount,omitempty"`
	Savings         float64 `json:"savings,omitempty"`
}

// OverspendingReport is the budget adherence section of a run: per-category
// verdicts bucketed by status, the 0-100 spending score, and templated
// recommendations.
//
// RiskLabel grades budget adherence (Excellent..Critical) and is a different
// scale from RiskAssessment.Level; the two are independent signals consumed
// by different report sections.
type OverspendingReport struct {
	Status         DataStatus         `json:"status"`
	TotalSpent     float64            `json:"total_spent"`
	TotalBudget    float64            `json:"total_budget"`
	SpendingScore  int                `json:"spending_score,omitempty"`
	RiskLabel      string             `json:"risk_level,omitempty"`
	Overspending   []CategoryAnalysis `json:"overspending_alerts"`
	Warnings       []CategoryAnalysis `json:"warnings"`
	WithinBudget   []CategoryAnalysis `json:"within_budget"`
	CategoryTotals map[string]float64 `json:"category_totals"`
	Recommendations []string          `json:"recommendations"`
}

// AnalyzeOverspending classifies each spending category against its daily
// limit and scores the window. Categories with no configured limit are
// excluded from classification but stay visible in CategoryTotals, so the
// per-category totals always sum to TotalSpent.
func AnalyzeOverspending(txs []domain.Transaction, cfg budget.Config) OverspendingReport {
	report := OverspendingReport{
		Status:          DataOK,
		TotalBudget:     cfg.TotalDailyBudget(),
		Overspending:    []CategoryAnalysis{},
		Warnings:        []CategoryAnalysis{},
		WithinBudget:    []CategoryAnalysis{},
		CategoryTotals:  map[string]float64{},
		Recommendations: []string{},
	}

	if len(txs) == 0 {
		report.Status = DataNoData
		report.Recommendations = append(report.Recommendations, "No transaction data available for analysis")
		return report
	}

	report.CategoryTotals = spentByCategory(txs)
	for _, spent := range report.CategoryTotals {
		report.TotalSpent += spent
	}

	for category, spent := range report.CategoryTotals {
		limit := cfg.Limit(category)
		if limit <= 0 {
			continue
		}

		ratio := spent / limit
		ca := CategoryAnalysis{
			Category:       category,
			Spent:          spent,
			Budget:         limit,
			PercentageUsed: ratio * 100,
		}

		switch {
		case ratio >= cfg.OverspendingThreshold:
			ca.Status = StatusOverspending
			ca.Severity = overspendSeverity(ca.PercentageUsed)
			ca.OverspendAmount = spent - limit
			report.Overspending = append(report.Overspending, ca)
		case ratio >= cfg.WarningThreshold:
			ca.Status = StatusWarning
			ca.Severity = SeverityMedium
			report.Warnings = append(report.Warnings, ca)
		default:
			ca.Status = StatusWithinBudget
			ca.Savings = limit - spent
			report.WithinBudget = append(report.WithinBudget, ca)
		}
	}

	// Most severe first; within-budget best performer first.
	sort.Slice(report.Overspending, func(i, j int) bool {
		return report.Overspending[i].PercentageUsed > report.Overspending[j].PercentageUsed
	})
	sort.Slice(report.Warnings, func(i, j int) bool {
		return report.Warnings[i].PercentageUsed > report.Warnings[j].PercentageUsed
	})
	sort.Slice(report.WithinBudget, func(i, j int) bool {
		return report.WithinBudget[i].PercentageUsed < report.WithinBudget[j].PercentageUsed
	})

	report.SpendingScore = spendingScore(report)
	report.RiskLabel = riskLabel(report.SpendingScore)
	report.Recommendations = buildRecommendations(report)

	return report
}

// overspendSeverity buckets a percentage of budget into a severity label.
// With the default 1.2 overspending threshold the Low bucket is unreachable;
// it applies only when the threshold is configured below 120%.
func overspendSeverity(percentage float64) string {
	switch {
	case percentage >= 200:
		return SeverityCritical
	case percentage >= 150:
		return SeverityHigh
	case percentage >= 120:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// spendingScore computes the 0-100 window health score: deductions per
// overspending severity and per warning, small credits for categories held
// within budget, and an under-spend bonus when total spend stays below 80%
// of the combined budget.
func spendingScore(report OverspendingReport) int {
	score := 100

	for _, ca := range report.Overspending {
		switch ca.Severity {
		case SeverityCritical:
			score -= 30
		case SeverityHigh:
			score -= 20
		case SeverityMedium:
			score -= 15
		default:
			score -= 10
		}
	}

	score -= 5 * len(report.Warnings)
	score += 3 * len(report.WithinBudget)

	if report.TotalBudget > 0 && report.TotalSpent < 0.8*report.TotalBudget {
		bonus := int((report.TotalBudget - report.TotalSpent) / report.TotalBudget * 20)
		score += minInt(15, bonus)
	}

	return clampInt(score, 0, 100)
}

func riskLabel(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	case score >= 20:
		return "Poor"
	default:
		return "Critical"
	}
}

func buildRecommendations(report OverspendingReport) []string {
	recs := make([]string, 0, len(report.Overspending)+len(report.Warnings)+2)

	for _, ca := range report.Overspending {
		if ca.Severity == SeverityCritical {
			recs = append(recs, fmt.Sprintf("Urgent: reduce %s spending immediately, over budget by $%.2f", ca.Category, ca.OverspendAmount))
		} else {
			recs = append(recs, fmt.Sprintf("Reduce %s spending, currently at %.1f%% of budget", ca.Category, ca.PercentageUsed))
		}
	}

	for _, ca := range report.Warnings {
		recs = append(recs, fmt.Sprintf("Monitor %s spending, approaching the budget limit at %.1f%%", ca.Category, ca.PercentageUsed))
	}

	if len(report.WithinBudget) > 0 {
		best := report.WithinBudget[0]
		recs = append(recs, fmt.Sprintf("Great job keeping %s at %.1f%% of budget", best.Category, best.PercentageUsed))
	}

	if report.RiskLabel == "Poor" || report.RiskLabel == "Critical" {
		recs = append(recs, "Consider reviewing your overall budget allocations")
	}

	return recs
}
