package analysis

import (
	"sort"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

// usDailyBenchmarks are rough US household daily spending averages per
// category, used as a reference point rather than a target.
var usDailyBenchmarks = map[string]float64{
	budget.CategoryFoodDining:     35,
	budget.CategoryTransportation: 25,
	budget.CategoryShopping:       30,
	budget.CategoryEntertainment:  15,
	budget.CategoryHealthcare:     20,
	budget.CategoryUtilities:      12,
}

// BenchmarkComparison compares one category's daily spending rate against
// the reference average.
type BenchmarkComparison struct {
	Category     string  `json:"category"`
	DailyAverage float64 `json:"daily_average"`
	Benchmark    float64 `json:"benchmark"`
	DiffPercent  float64 `json:"diff_percent"`
	Standing     string  `json:"standing"`
}

// BenchmarkReport compares the window's spending rates against reference
// daily averages, for categories with a defined benchmark.
type BenchmarkReport struct {
	Status      DataStatus            `json:"status"`
	WindowDays  int                   `json:"window_days"`
	Comparisons []BenchmarkComparison `json:"comparisons"`
}

// CompareBenchmarks spreads each category's window total over the calendar
// window and grades it against the reference average. Within ten percent of
// the benchmark counts as typical.
func CompareBenchmarks(txs []domain.Transaction) BenchmarkReport {
	report := BenchmarkReport{
		Status:      DataOK,
		Comparisons: []BenchmarkComparison{},
	}

	expenses := expensesOf(txs)
	if len(expenses) == 0 {
		report.Status = DataNoData
		return report
	}

	days, _ := dailySeries(expenses)
	report.WindowDays = int(days[len(days)-1].Sub(days[0]).Hours()/24) + 1

	totals := spentByCategory(expenses)
	for _, category := range sortedCategories(totals) {
		benchmark, ok := usDailyBenchmarks[category]
		if !ok {
			continue
		}

		daily := totals[category] / float64(report.WindowDays)
		diff := (daily - benchmark) / benchmark * 100

		standing := "typical"
		switch {
		case diff > 10:
			standing = "above_average"
		case diff < -10:
			standing = "below_average"
		}

		report.Comparisons = append(report.Comparisons, BenchmarkComparison{
			Category:     category,
			DailyAverage: daily,
			Benchmark:    benchmark,
			DiffPercent:  diff,
			Standing:     standing,
		})
	}

	sort.Slice(report.Comparisons, func(i, j int) bool {
		if report.Comparisons[i].DiffPercent != report.Comparisons[j].DiffPercent {
			return report.Comparisons[i].DiffPercent > report.Comparisons[j].DiffPercent
		}
		return report.Comparisons[i].Category < report.Comparisons[j].Category
	})

	return report
}
