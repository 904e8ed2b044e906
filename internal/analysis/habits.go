package analysis

import (
	"fmt"
	"time"

	"github.com/dvloznov/budget-insight/internal/domain"
)

// DayOfWeekStat is the spending profile of one weekday across the window.
type DayOfWeekStat struct {
	Day   string  `json:"day"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// HabitsReport breaks expenses down by weekday and surfaces pattern insights.
// ByDay always lists Monday through Sunday so rendered tables line up across
// runs.
type HabitsReport struct {
	Status             DataStatus      `json:"status"`
	ByDay              []DayOfWeekStat `json:"by_day"`
	HighestSpendingDay string          `json:"highest_spending_day,omitempty"`
	MostActiveDay      string          `json:"most_active_day,omitempty"`
	Insights           []string        `json:"insights"`
}

// AnalyzeHabits aggregates expenses per weekday.
func AnalyzeHabits(txs []domain.Transaction) HabitsReport {
	report := HabitsReport{
		Status:   DataOK,
		ByDay:    []DayOfWeekStat{},
		Insights: []string{},
	}

	totals := make(map[time.Weekday]float64)
	counts := make(map[time.Weekday]int)
	expenseCount := 0
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		wd := tx.Date.Weekday()
		totals[wd] += tx.AbsAmount()
		counts[wd]++
		expenseCount++
	}

	if expenseCount == 0 {
		report.Status = DataNoData
		return report
	}

	week := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}

	var highestDay, busiestDay time.Weekday
	var highestTotal float64
	busiestCount := 0
	for _, wd := range week {
		report.ByDay = append(report.ByDay, DayOfWeekStat{
			Day:   wd.String(),
			Total: totals[wd],
			Count: counts[wd],
		})
		if totals[wd] > highestTotal {
			highestTotal = totals[wd]
			highestDay = wd
		}
		if counts[wd] > busiestCount {
			busiestCount = counts[wd]
			busiestDay = wd
		}
	}

	report.HighestSpendingDay = highestDay.String()
	report.MostActiveDay = busiestDay.String()

	var weekdayTotal, weekendTotal float64
	weekdayDays, weekendDays := 0, 0
	for _, wd := range week {
		if wd == time.Saturday || wd == time.Sunday {
			weekendTotal += totals[wd]
			if counts[wd] > 0 {
				weekendDays++
			}
			continue
		}
		weekdayTotal += totals[wd]
		if counts[wd] > 0 {
			weekdayDays++
		}
	}

	if weekdayDays > 0 && weekendDays > 0 {
		weekdayAvg := weekdayTotal / float64(weekdayDays)
		weekendAvg := weekendTotal / float64(weekendDays)
		if weekdayAvg > 0 && weekendAvg > 2*weekdayAvg {
			report.Insights = append(report.Insights,
				fmt.Sprintf("Weekend days average $%.2f, more than double the weekday average of $%.2f", weekendAvg, weekdayAvg))
		}
	}

	if busiestCount >= 3 {
		report.Insights = append(report.Insights,
			fmt.Sprintf("Most purchases happen on %ss (%d transactions)", busiestDay, busiestCount))
	}

	return report
}
