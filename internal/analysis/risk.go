package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

// Composite risk levels. This vocabulary is independent of the overspending
// report's Excellent..Critical adherence labels.
const (
	RiskMinimal  = "Minimal Risk"
	RiskLow      = "Low Risk"
	RiskModerate = "Moderate Risk"
	RiskHigh     = "High Risk"
)

const (
	// trendSumThreshold is the combined qualifying slope (currency units/day)
	// beyond which the trend check triggers regardless of category count.
	trendSumThreshold = 50.0
	// liquiditySeverityFloor is the expense-to-income ratio where liquidity
	// severity starts scaling. It sits below the trigger ratio so a freshly
	// triggered check already carries meaningful severity.
	liquiditySeverityFloor = 0.7
)

// RiskAssessment is the aggregate verdict of the five independent risk
// checks. Factors and Recommendations are ordered by check evaluation order:
// volatility, concentration, trend, liquidity, behavioral.
type RiskAssessment struct {
	Status          DataStatus `json:"status"`
	Level           string     `json:"risk_level"`
	Confidence      int        `json:"confidence"`
	SeverityScore   int        `json:"severity_score"`
	FactorCount     int        `json:"factor_count"`
	Factors         []string   `json:"factors"`
	Recommendations []string   `json:"recommendations"`
}

type riskCheck struct {
	triggered       bool
	severity        int
	factor          string
	recommendations []string
}

// AssessRisk composes the five risk checks over the batch and the
// already-computed trend and cash-flow results. It never recomputes those
// analyses; layering keeps every analyzer single-purpose.
func AssessRisk(txs []domain.Transaction, trends TrendReport, flow CashFlow, h budget.Heuristics) RiskAssessment {
	assessment := RiskAssessment{
		Status:          DataOK,
		Factors:         []string{},
		Recommendations: []string{},
	}

	if len(txs) == 0 {
		assessment.Status = DataNoData
		assessment.Level = RiskLow
		assessment.Confidence = 60
		return assessment
	}

	checks := []riskCheck{
		checkVolatility(txs, h),
		checkConcentration(txs, h),
		checkTrendDeterioration(trends, h),
		checkLiquidity(flow, h),
		checkBehavioral(txs, h),
	}

	for _, check := range checks {
		if !check.triggered {
			continue
		}
		assessment.FactorCount++
		if check.severity > assessment.SeverityScore {
			assessment.SeverityScore = check.severity
		}
		assessment.Factors = append(assessment.Factors, check.factor)
		assessment.Recommendations = append(assessment.Recommendations, check.recommendations...)
	}

	assessment.Level = riskLevel(assessment.SeverityScore, assessment.FactorCount)
	assessment.Confidence = minInt(95, 60+10*assessment.FactorCount)

	return assessment
}

// riskLevel maps severity and factor count onto the risk ladder. Zero factors
// falls through to Low Risk; the Minimal rung is reachable only at exactly
// one factor.
func riskLevel(severity, factors int) string {
	switch {
	case severity >= 80 || factors >= 4:
		return RiskHigh
	case severity >= 60 || factors >= 3:
		return RiskModerate
	case severity >= 40 || factors >= 2:
		return RiskLow
	case factors == 1:
		return RiskMinimal
	default:
		return RiskLow
	}
}

// checkVolatility flags erratic day-to-day spending. It needs at least 7
// expense transactions across 3 distinct days before the daily standard
// deviation means anything.
func checkVolatility(txs []domain.Transaction, h budget.Heuristics) riskCheck {
	expenses := expensesOf(txs)
	if len(expenses) < 7 {
		return riskCheck{}
	}

	days, totals := dailySeries(expenses)
	if len(days) < 3 {
		return riskCheck{}
	}

	std := stdDev(totals)
	if std <= h.VolatilityLimit {
		return riskCheck{}
	}

	severity := 0
	if m := mean(totals); m > 0 {
		severity = minInt(100, int(math.Round(std/m*100)))
	}

	return riskCheck{
		triggered: true,
		severity:  severity,
		factor:    fmt.Sprintf("High spending volatility: daily totals swing by $%.2f", std),
		recommendations: []string{
			"Set a fixed daily spending allowance to smooth out volatile days",
			"Review large one-off purchases before committing to them",
		},
	}
}

// checkConcentration flags a single category dominating total expense.
func checkConcentration(txs []domain.Transaction, h budget.Heuristics) riskCheck {
	totals := spentByCategory(txs)
	if len(totals) == 0 {
		return riskCheck{}
	}

	var grandTotal float64
	for _, v := range totals {
		grandTotal += v
	}
	if grandTotal <= 0 {
		return riskCheck{}
	}

	top := sortedCategories(totals)[0]
	share := totals[top] / grandTotal
	if share <= h.ConcentrationShare {
		return riskCheck{}
	}

	return riskCheck{
		triggered: true,
		severity:  minInt(100, int(math.Round(share*150))),
		factor:    fmt.Sprintf("Spending concentrated in %s (%.0f%% of total)", top, share*100),
		recommendations: []string{
			fmt.Sprintf("Diversify spending away from %s or set a stricter limit for it", top),
			"Check whether the dominant category hides recurring charges",
		},
	}
}

// checkTrendDeterioration counts categories whose spending is climbing fast.
func checkTrendDeterioration(trends TrendReport, h budget.Heuristics) riskCheck {
	var count int
	var slopeSum float64
	var names []string

	for _, ct := range trends.Categories {
		if ct.Direction == TrendIncreasing && ct.Slope > h.TrendAlertSlope {
			count++
			slopeSum += ct.Slope
			names = append(names, ct.Category)
		}
	}

	if count < 2 && slopeSum <= trendSumThreshold {
		return riskCheck{}
	}

	return riskCheck{
		triggered: true,
		severity:  minInt(100, int(math.Round(slopeSum))),
		factor:    fmt.Sprintf("Rapidly increasing spending in %s", strings.Join(names, ", ")),
		recommendations: []string{
			"Review what changed in the categories trending upward",
			"Set weekly check-ins for categories growing faster than $10/day",
		},
	}
}

// checkLiquidity flags windows where expenses threaten to outrun income.
func checkLiquidity(flow CashFlow, h budget.Heuristics) riskCheck {
	negative := flow.NetFlow < 0
	tightRatio := flow.ExpenseRatio > h.LiquidityRatio
	if !negative && !tightRatio {
		return riskCheck{}
	}

	severity := 0.0
	if negative {
		severity = 50
	}
	if excess := flow.ExpenseRatio - liquiditySeverityFloor; excess > 0 {
		severity += excess * 100
	}

	factor := fmt.Sprintf("Expenses consume %.0f%% of income", flow.ExpenseRatio*100)
	if negative {
		factor = fmt.Sprintf("Negative cash flow: spending exceeds income by $%.2f", -flow.NetFlow)
	}

	return riskCheck{
		triggered: true,
		severity:  minInt(100, int(math.Round(severity))),
		factor:    factor,
		recommendations: []string{
			"Build a buffer by trimming the largest discretionary category",
			"Keep the expense-to-income ratio below 90%",
		},
	}
}

// checkBehavioral looks for impulsive spending patterns: heavy weekend
// spending, late-night purchases, and days with many transactions. Each
// pattern contributes a fixed severity increment.
func checkBehavioral(txs []domain.Transaction, h budget.Heuristics) riskCheck {
	expenses := expensesOf(txs)
	if len(expenses) == 0 {
		return riskCheck{}
	}

	var total, weekendTotal float64
	var lateNight int
	perDayCount := make(map[string]int)

	for _, tx := range expenses {
		amount := tx.AbsAmount()
		total += amount
		if isWeekend(tx.Date) {
			weekendTotal += amount
		}
		if hour := tx.Date.Hour(); hour >= 22 || hour < 6 {
			lateNight++
		}
		perDayCount[tx.Day().Format("2006-01-02")]++
	}

	busyDays := 0
	for _, count := range perDayCount {
		if count > h.BusyDayCount {
			busyDays++
		}
	}

	severity := 0
	var patterns []string
	var recs []string

	if total > 0 && weekendTotal/total > h.WeekendShare {
		severity += 30
		patterns = append(patterns, "high weekend spending")
		recs = append(recs, "Plan weekend activities with a set budget in advance")
	}
	if float64(lateNight)/float64(len(expenses)) > h.LateNightShare {
		severity += 20
		patterns = append(patterns, "frequent late-night purchases")
		recs = append(recs, "Hold late-night purchases until morning before confirming")
	}
	if float64(busyDays)/float64(len(perDayCount)) > h.BusyDayShare {
		severity += 25
		patterns = append(patterns, "many transactions packed into single days")
		recs = append(recs, "Batch errands and spread purchases across the week")
	}

	if severity == 0 {
		return riskCheck{}
	}

	return riskCheck{
		triggered:       true,
		severity:        severity,
		factor:          "Risky spending patterns: " + strings.Join(patterns, ", "),
		recommendations: recs,
	}
}
