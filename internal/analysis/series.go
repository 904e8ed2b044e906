package analysis

import (
	"sort"
	"time"

	"github.com/dvloznov/budget-insight/internal/domain"
)

// expensesOf filters a batch down to expense transactions.
func expensesOf(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.IsExpense() {
			out = append(out, tx)
		}
	}
	return out
}

// spentByCategory sums absolute expense amounts per category over the batch.
func spentByCategory(txs []domain.Transaction) map[string]float64 {
	totals := make(map[string]float64)
	for _, tx := range txs {
		if tx.IsExpense() {
			totals[tx.Category] += tx.AbsAmount()
		}
	}
	return totals
}

// dailySeries returns the chronological sequence of days that have at least
// one expense, with each day's total absolute expense sum. Calendar gaps are
// not zero-filled; the series covers active days only.
func dailySeries(txs []domain.Transaction) ([]time.Time, []float64) {
	byDay := make(map[time.Time]float64)
	for _, tx := range txs {
		if tx.IsExpense() {
			byDay[tx.Day()] += tx.AbsAmount()
		}
	}
	if len(byDay) == 0 {
		return nil, nil
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	totals := make([]float64, len(days))
	for i, day := range days {
		totals[i] = byDay[day]
	}
	return days, totals
}

// sortedCategories returns the keys of a category totals map ordered by total
// descending, ties broken by name, so downstream output is deterministic.
func sortedCategories(totals map[string]float64) []string {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if totals[names[i]] != totals[names[j]] {
			return totals[names[i]] > totals[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
