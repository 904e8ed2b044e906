package analysis

import (
	"testing"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

func TestAnalyzeCashFlow(t *testing.T) {
	txs := []domain.Transaction{
		tx(t, "2025-03-10", "Paycheck", 2000, "Income"),
		tx(t, "2025-03-11", "Rent Share", -800, budget.CategoryUtilities),
		tx(t, "2025-03-12", "Groceries", -200, budget.CategoryFoodDining),
	}

	flow := AnalyzeCashFlow(txs)

	if flow.Status != DataOK {
		t.Fatalf("expected ok, got %s", flow.Status)
	}
	if flow.Income != 2000 {
		t.Errorf("expected income 2000, got %v", flow.Income)
	}
	if flow.Expenses != 1000 {
		t.Errorf("expected expenses 1000, got %v", flow.Expenses)
	}
	if flow.NetFlow != 1000 {
		t.Errorf("expected net flow 1000, got %v", flow.NetFlow)
	}
	if !approxEqual(flow.ExpenseRatio, 0.5, 1e-9) {
		t.Errorf("expected expense ratio 0.5, got %v", flow.ExpenseRatio)
	}
	if !approxEqual(flow.SavingsRate, 50, 1e-9) {
		t.Errorf("expected savings rate 50%%, got %v", flow.SavingsRate)
	}
	if flow.Direction != "Positive" {
		t.Errorf("expected Positive direction, got %s", flow.Direction)
	}
}

func TestAnalyzeCashFlow_ZeroIncome(t *testing.T) {
	txs := []domain.Transaction{
		tx(t, "2025-03-11", "Groceries", -120, budget.CategoryFoodDining),
	}

	flow := AnalyzeCashFlow(txs)

	// Zero income substitutes 0 for the ratios rather than dividing.
	if flow.ExpenseRatio != 0 {
		t.Errorf("expected zero expense ratio, got %v", flow.ExpenseRatio)
	}
	if flow.SavingsRate != 0 {
		t.Errorf("expected zero savings rate, got %v", flow.SavingsRate)
	}
	if flow.NetFlow != -120 {
		t.Errorf("expected net flow -120, got %v", flow.NetFlow)
	}
	if flow.Direction != "Negative" {
		t.Errorf("expected Negative direction, got %s", flow.Direction)
	}
}

func TestAnalyzeCashFlow_EmptyBatch(t *testing.T) {
	flow := AnalyzeCashFlow(nil)

	if flow.Status != DataNoData {
		t.Errorf("expected no_data, got %s", flow.Status)
	}
	if flow.Income != 0 || flow.Expenses != 0 || flow.NetFlow != 0 {
		t.Errorf("expected canonical zeroes, got %+v", flow)
	}
}
