package analysis

import (
	"testing"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

func TestCompareBenchmarks_Standings(t *testing.T) {
	// Ten calendar days, anchored by the first and last expense.
	txs := []domain.Transaction{
		tx(t, "2025-03-01", "Bistro", -300, budget.CategoryFoodDining),
		tx(t, "2025-03-10", "Sushi", -400, budget.CategoryFoodDining),
		tx(t, "2025-03-05", "Power Bill", -60, budget.CategoryUtilities),
		tx(t, "2025-03-06", "Metro Pass", -250, budget.CategoryTransportation),
		tx(t, "2025-03-07", "Cloud Plan", -100, budget.CategorySubscriptions),
	}

	report := CompareBenchmarks(txs)

	if report.Status != DataOK {
		t.Fatalf("expected ok status, got %s", report.Status)
	}
	if report.WindowDays != 10 {
		t.Fatalf("expected a 10-day window, got %d", report.WindowDays)
	}

	// Subscriptions has no reference average and is skipped.
	if len(report.Comparisons) != 3 {
		t.Fatalf("expected 3 comparisons, got %d", len(report.Comparisons))
	}

	food := report.Comparisons[0]
	if food.Category != budget.CategoryFoodDining {
		t.Fatalf("expected the largest overshoot first, got %s", food.Category)
	}
	if !approxEqual(food.DailyAverage, 70, 1e-9) || !approxEqual(food.DiffPercent, 100, 1e-9) {
		t.Errorf("expected daily 70 at +100%%, got %.2f at %.2f%%", food.DailyAverage, food.DiffPercent)
	}
	if food.Standing != "above_average" {
		t.Errorf("expected above_average, got %s", food.Standing)
	}

	transport := report.Comparisons[1]
	if transport.Category != budget.CategoryTransportation || transport.Standing != "typical" {
		t.Errorf("expected Transportation at typical, got %+v", transport)
	}
	if !approxEqual(transport.DiffPercent, 0, 1e-9) {
		t.Errorf("expected diff 0, got %.2f", transport.DiffPercent)
	}

	utilities := report.Comparisons[2]
	if utilities.Category != budget.CategoryUtilities || utilities.Standing != "below_average" {
		t.Errorf("expected Utilities at below_average, got %+v", utilities)
	}
	if !approxEqual(utilities.DiffPercent, -50, 1e-9) {
		t.Errorf("expected diff -50, got %.2f", utilities.DiffPercent)
	}
}

func TestCompareBenchmarks_SingleDayWindow(t *testing.T) {
	txs := []domain.Transaction{
		tx(t, "2025-03-10", "Bistro", -36, budget.CategoryFoodDining),
	}

	report := CompareBenchmarks(txs)

	if report.WindowDays != 1 {
		t.Fatalf("expected a 1-day window, got %d", report.WindowDays)
	}
	if len(report.Comparisons) != 1 {
		t.Fatalf("expected 1 comparison, got %d", len(report.Comparisons))
	}
	// Daily 36 against 35 is within the ten percent band.
	if report.Comparisons[0].Standing != "typical" {
		t.Errorf("expected typical, got %s", report.Comparisons[0].Standing)
	}
}

func TestCompareBenchmarks_EmptyBatch(t *testing.T) {
	report := CompareBenchmarks(nil)
	if report.Status != DataNoData {
		t.Fatalf("expected no_data status, got %s", report.Status)
	}
	if len(report.Comparisons) != 0 {
		t.Errorf("expected no comparisons, got %d", len(report.Comparisons))
	}
}
