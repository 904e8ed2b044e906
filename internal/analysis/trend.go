package analysis

import (
	"sort"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

// Trend directions. The deadbands that separate them are deliberate noise
// filters, configured through budget.Heuristics.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// CategoryTrend is the spending trajectory of one category across the window.
type CategoryTrend struct {
	Category     string  `json:"category"`
	Total        float64 `json:"total_spent"`
	ActiveDays   int     `json:"active_days"`
	DailyAverage float64 `json:"daily_average"`
	Slope        float64 `json:"slope"`
	Direction    string  `json:"trend_direction"`
	Variance     float64 `json:"variance"`

	// Forecast: DailyRate spreads the window total over the calendar window,
	// projected to a 30-day month and compared against the monthly budget.
	// MonthlyBudget is 0 and WillExceedBudget false for categories without a
	// configured limit.
	DailyRate        float64 `json:"daily_rate"`
	ProjectedMonthly float64 `json:"projected_monthly"`
	MonthlyBudget    float64 `json:"monthly_budget,omitempty"`
	WillExceedBudget bool    `json:"will_exceed_budget"`
}

// TrendReport covers per-category trends plus the window-level volatility
// score (standard deviation of the per-day total expense series) and the
// forecast rollup across all categories.
type TrendReport struct {
	Status     DataStatus      `json:"status"`
	WindowDays int             `json:"window_days"`
	Categories []CategoryTrend `json:"categories"`
	Volatility float64         `json:"volatility"`

	// ProjectedMonthly sums the per-category 30-day projections.
	// HighRiskCategories lists the configured categories on track to exceed
	// their monthly budget.
	ProjectedMonthly   float64  `json:"projected_monthly"`
	HighRiskCategories []string `json:"high_risk_categories,omitempty"`
}

// AnalyzeTrends fits a least-squares line over each category's chronological
// daily sums and projects the window's spending rate to a 30-day month. The
// per-category series covers active days only; the slope is a rate over that
// sequence, while DailyRate divides by the full calendar window.
func AnalyzeTrends(txs []domain.Transaction, cfg budget.Config) TrendReport {
	report := TrendReport{
		Status:     DataOK,
		Categories: []CategoryTrend{},
	}

	expenses := expensesOf(txs)
	if len(expenses) == 0 {
		report.Status = DataNoData
		return report
	}

	days, totals := dailySeries(expenses)
	first, last := days[0], days[len(days)-1]
	report.WindowDays = int(last.Sub(first).Hours()/24) + 1

	if len(days) < 2 {
		report.Status = DataInsufficient
	} else {
		report.Volatility = stdDev(totals)
	}

	byCategory := make(map[string]map[string]float64)
	for _, tx := range expenses {
		day := tx.Day().Format("2006-01-02")
		if byCategory[tx.Category] == nil {
			byCategory[tx.Category] = make(map[string]float64)
		}
		byCategory[tx.Category][day] += tx.AbsAmount()
	}

	categoryTotals := spentByCategory(expenses)
	for _, category := range sortedCategories(categoryTotals) {
		daily := byCategory[category]

		dayKeys := make([]string, 0, len(daily))
		for day := range daily {
			dayKeys = append(dayKeys, day)
		}
		sort.Strings(dayKeys)

		series := make([]float64, len(dayKeys))
		for i, day := range dayKeys {
			series[i] = daily[day]
		}

		ct := CategoryTrend{
			Category:     category,
			Total:        categoryTotals[category],
			ActiveDays:   len(series),
			DailyAverage: mean(series),
			Slope:        linearSlope(series),
			Variance:     variance(series),
			DailyRate:    categoryTotals[category] / float64(report.WindowDays),
		}

		switch {
		case ct.Slope > cfg.Heuristics.TrendDeadband:
			ct.Direction = TrendIncreasing
		case ct.Slope < -cfg.Heuristics.TrendDeadband:
			ct.Direction = TrendDecreasing
		default:
			ct.Direction = TrendStable
		}

		ct.ProjectedMonthly = ct.DailyRate * 30
		if limit := cfg.Limit(category); limit > 0 {
			ct.MonthlyBudget = limit * 30
			ct.WillExceedBudget = ct.ProjectedMonthly > ct.MonthlyBudget
		}

		report.ProjectedMonthly += ct.ProjectedMonthly
		if ct.WillExceedBudget {
			report.HighRiskCategories = append(report.HighRiskCategories, category)
		}

		report.Categories = append(report.Categories, ct)
	}

	return report
}

// DailyProfile characterizes the per-day total spending series: direction by
// comparing half-window averages, consistency from the coefficient of
// variation, and the heaviest and lightest spending days.
type DailyProfile struct {
	Status           DataStatus `json:"status"`
	Trend            string     `json:"trend,omitempty"`
	DayCount         int        `json:"day_count"`
	DailyAverage     float64    `json:"daily_average"`
	Variance         float64    `json:"variance"`
	HighestDay       string     `json:"highest_day,omitempty"`
	HighestDayAmount float64    `json:"highest_day_amount,omitempty"`
	LowestDay        string     `json:"lowest_day,omitempty"`
	LowestDayAmount  float64    `json:"lowest_day_amount,omitempty"`
	ConsistencyScore float64    `json:"consistency_score"`
}

// BuildDailyProfile compares the first and second half of the daily series.
// Its deadband is wider than the per-category trend fit's because day-to-day
// totals are noisier than category slopes.
func BuildDailyProfile(txs []domain.Transaction, h budget.Heuristics) DailyProfile {
	profile := DailyProfile{Status: DataOK}

	days, totals := dailySeries(expensesOf(txs))
	if len(days) == 0 {
		profile.Status = DataNoData
		return profile
	}

	profile.DayCount = len(days)
	profile.DailyAverage = mean(totals)

	highest, lowest := 0, 0
	for i := range totals {
		if totals[i] > totals[highest] {
			highest = i
		}
		if totals[i] < totals[lowest] {
			lowest = i
		}
	}
	profile.HighestDay = days[highest].Format("2006-01-02")
	profile.HighestDayAmount = totals[highest]
	profile.LowestDay = days[lowest].Format("2006-01-02")
	profile.LowestDayAmount = totals[lowest]

	if len(days) < 2 {
		profile.Status = DataInsufficient
		return profile
	}

	profile.Variance = variance(totals)

	half := len(totals) / 2
	firstHalf := mean(totals[:half])
	secondHalf := mean(totals[half:])
	switch {
	case secondHalf > firstHalf+h.ProfileDeadband:
		profile.Trend = TrendIncreasing
	case secondHalf < firstHalf-h.ProfileDeadband:
		profile.Trend = TrendDecreasing
	default:
		profile.Trend = TrendStable
	}

	if profile.DailyAverage > 0 {
		cv := stdDev(totals) / profile.DailyAverage
		profile.ConsistencyScore = clampFloat(100-cv*100, 0, 100)
	}

	return profile
}
