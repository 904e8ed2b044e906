package analysis

import (
	"testing"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

func TestSummarize_MixedBatch(t *testing.T) {
	txs := []domain.Transaction{
		tx(t, "2025-03-10", "Paycheck", 1500, "Income"),
		tx(t, "2025-03-11", "Bistro", -42.50, budget.CategoryFoodDining),
		tx(t, "2025-03-12", "Laptop Stand", -120, budget.CategoryShopping),
		tx(t, "2025-03-13", "Latte", -7.25, budget.CategoryFoodDining),
	}

	s := Summarize(txs)

	if s.Status != DataOK {
		t.Fatalf("expected ok status, got %s", s.Status)
	}
	if s.TransactionCount != 4 || s.ExpenseCount != 3 {
		t.Errorf("expected 4 transactions / 3 expenses, got %d/%d", s.TransactionCount, s.ExpenseCount)
	}
	if !approxEqual(s.TotalSpent, 169.75, 1e-9) {
		t.Errorf("expected total spent 169.75, got %.2f", s.TotalSpent)
	}
	if !approxEqual(s.TotalIncome, 1500, 1e-9) {
		t.Errorf("expected total income 1500, got %.2f", s.TotalIncome)
	}
	if !approxEqual(s.AverageTransaction, 169.75/3, 1e-9) {
		t.Errorf("expected average over expenses only, got %.4f", s.AverageTransaction)
	}
	if s.LargestAmount != 120 || s.LargestDescription != "Laptop Stand" {
		t.Errorf("expected largest 120 Laptop Stand, got %.2f %q", s.LargestAmount, s.LargestDescription)
	}
	if !approxEqual(s.ByCategory[budget.CategoryFoodDining], 49.75, 1e-9) {
		t.Errorf("expected 49.75 in Food & Dining, got %.2f", s.ByCategory[budget.CategoryFoodDining])
	}
	if !approxEqual(s.ByCategory[budget.CategoryShopping], 120, 1e-9) {
		t.Errorf("expected 120 in Shopping, got %.2f", s.ByCategory[budget.CategoryShopping])
	}
}

func TestSummarize_IncomeOnly(t *testing.T) {
	txs := []domain.Transaction{
		tx(t, "2025-03-10", "Paycheck", 2000, "Income"),
	}

	s := Summarize(txs)

	if s.Status != DataOK {
		t.Fatalf("expected ok status, got %s", s.Status)
	}
	if s.ExpenseCount != 0 || s.TotalSpent != 0 || s.AverageTransaction != 0 {
		t.Errorf("expected zero expense figures, got %+v", s)
	}
	if s.LargestDescription != "" {
		t.Errorf("expected no largest transaction, got %q", s.LargestDescription)
	}
}

func TestSummarize_EmptyBatch(t *testing.T) {
	s := Summarize(nil)

	if s.Status != DataNoData {
		t.Fatalf("expected no_data status, got %s", s.Status)
	}
	if s.ByCategory == nil || len(s.ByCategory) != 0 {
		t.Errorf("expected empty category map, got %v", s.ByCategory)
	}
}
