package analysis

import (
	"strings"
	"testing"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

func TestCheckHygiene_UncategorizedCounting(t *testing.T) {
	txs := []domain.Transaction{
		tx(t, "2025-03-10", "Groceries", -30, budget.CategoryFoodDining),
		tx(t, "2025-03-11", "Mystery Charge", -15, budget.CategoryMiscellaneous),
		tx(t, "2025-03-12", "Old Import", -20, "Other"),
		tx(t, "2025-03-13", "Blank Row", -10, ""),
	}

	report := CheckHygiene(txs)

	if report.Status != DataOK {
		t.Fatalf("expected ok status, got %s", report.Status)
	}
	if report.TotalTransactions != 4 || report.UncategorizedCount != 3 {
		t.Errorf("expected 3 of 4 uncategorized, got %d of %d",
			report.UncategorizedCount, report.TotalTransactions)
	}
	if !approxEqual(report.QualityScore, 25, 1e-9) {
		t.Errorf("expected quality score 25, got %.2f", report.QualityScore)
	}

	var summary string
	for _, issue := range report.Issues {
		if strings.Contains(issue, "lack a real category") {
			summary = issue
		}
	}
	if summary != "3 transactions lack a real category" {
		t.Errorf("unexpected summary issue %q", summary)
	}
}

func TestCheckHygiene_CafeMarkers(t *testing.T) {
	txs := []domain.Transaction{
		// Correctly filed; no issue.
		tx(t, "2025-03-10", "Starbucks Downtown", -6.50, budget.CategoryFoodDining),
		// Cafe markers filed elsewhere.
		tx(t, "2025-03-11", "Starbucks Airport", -7.25, budget.CategoryShopping),
		tx(t, "2025-03-12", "Corner Coffee Cart", -4.00, ""),
	}

	report := CheckHygiene(txs)

	var cafeIssues []string
	for _, issue := range report.Issues {
		if strings.Contains(issue, "cafe purchase") {
			cafeIssues = append(cafeIssues, issue)
		}
	}
	if len(cafeIssues) != 2 {
		t.Fatalf("expected 2 cafe issues, got %+v", report.Issues)
	}
	if cafeIssues[0] != `Possible miscategorized cafe purchase: "Starbucks Airport" filed under Shopping` {
		t.Errorf("unexpected issue %q", cafeIssues[0])
	}
	if cafeIssues[1] != `Possible miscategorized cafe purchase: "Corner Coffee Cart" filed under (none)` {
		t.Errorf("unexpected issue %q", cafeIssues[1])
	}
}

func TestCheckHygiene_CleanBatch(t *testing.T) {
	txs := []domain.Transaction{
		tx(t, "2025-03-10", "Groceries", -30, budget.CategoryFoodDining),
		tx(t, "2025-03-11", "Bus Fare", -2.75, budget.CategoryTransportation),
	}

	report := CheckHygiene(txs)

	if report.UncategorizedCount != 0 || len(report.Issues) != 0 {
		t.Errorf("expected a clean report, got %+v", report)
	}
	if !approxEqual(report.QualityScore, 100, 1e-9) {
		t.Errorf("expected quality score 100, got %.2f", report.QualityScore)
	}
}

func TestCheckHygiene_EmptyBatch(t *testing.T) {
	report := CheckHygiene(nil)
	if report.Status != DataNoData {
		t.Fatalf("expected no_data status, got %s", report.Status)
	}
}
