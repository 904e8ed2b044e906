package analysis

import (
	"strings"
	"testing"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

func identifyAll(t *testing.T, txs []domain.Transaction) []GrowthOpportunity {
	t.Helper()
	return IdentifyOpportunities(txs, AnalyzeCashFlow(txs), budget.DefaultHeuristics())
}

func findOpportunity(ops []GrowthOpportunity, substr string) (GrowthOpportunity, bool) {
	for _, op := range ops {
		if strings.Contains(op.Description, substr) {
			return op, true
		}
	}
	return GrowthOpportunity{}, false
}

func TestIdentifyOpportunities_SubscriptionDetection(t *testing.T) {
	txs := []domain.Transaction{
		tx(t, "2025-03-01", "Netflix", -12.99, budget.CategoryEntertainment),
		tx(t, "2025-03-08", "Netflix", -12.99, budget.CategoryEntertainment),
		tx(t, "2025-03-15", "Netflix", -12.99, budget.CategoryEntertainment),
	}

	ops := identifyAll(t, txs)

	op, ok := findOpportunity(ops, "Netflix")
	if !ok {
		t.Fatalf("expected a Netflix opportunity, got %+v", ops)
	}
	if op.Type != OpportunityOptimization {
		t.Errorf("expected optimization type, got %s", op.Type)
	}
	// 30% of the estimated monthly cost (mean charge x 4).
	if !approxEqual(op.PotentialValue, 0.3*(12.99*4), 1e-9) {
		t.Errorf("expected potential value %.3f, got %.3f", 0.3*(12.99*4), op.PotentialValue)
	}
	if op.EffortLevel != EffortLow || op.Timeframe != TimeframeImmediate {
		t.Errorf("unexpected effort/timeframe: %s/%s", op.EffortLevel, op.Timeframe)
	}
	if len(op.ActionItems) == 0 {
		t.Error("expected action items")
	}
}

func TestIdentifyOpportunities_VariableVendorNotSubscription(t *testing.T) {
	// Same vendor, but amounts vary well past 10% of the mean.
	txs := []domain.Transaction{
		tx(t, "2025-03-01", "Corner Store", -5.00, budget.CategoryShopping),
		tx(t, "2025-03-08", "Corner Store", -45.00, budget.CategoryShopping),
	}

	ops := identifyAll(t, txs)

	if _, ok := findOpportunity(ops, "Corner Store"); ok {
		t.Error("variable-amount vendor must not be detected as a subscription")
	}
}

func TestIdentifyOpportunities_AutomationFromSurplus(t *testing.T) {
	txs := []domain.Transaction{
		tx(t, "2025-03-10", "Paycheck", 1500, "Income"),
		tx(t, "2025-03-11", "Groceries", -500, budget.CategoryFoodDining),
	}

	ops := identifyAll(t, txs)

	// Net flow 1000: automate half of it, annualized.
	transfer, ok := findOpportunity(ops, "transfer to savings")
	if !ok {
		t.Fatalf("expected a surplus transfer opportunity, got %+v", ops)
	}
	if !approxEqual(transfer.PotentialValue, 500*12, 1e-9) {
		t.Errorf("expected annualized value 6000, got %.2f", transfer.PotentialValue)
	}
	if transfer.Type != OpportunityAutomation {
		t.Errorf("expected automation type, got %s", transfer.Type)
	}

	standing, ok := findOpportunity(ops, "budget tracking")
	if !ok {
		t.Fatal("expected the standing budget-automation opportunity")
	}
	if standing.PotentialValue != 200 {
		t.Errorf("expected nominal value 200, got %.2f", standing.PotentialValue)
	}
}

func TestIdentifyOpportunities_CategoryEfficiency(t *testing.T) {
	txs := []domain.Transaction{
		tx(t, "2025-03-10", "Restaurant Week", -200, budget.CategoryFoodDining),
		tx(t, "2025-03-11", "Ride Share", -100, budget.CategoryTransportation),
		tx(t, "2025-03-12", "Gadget", -150, budget.CategoryShopping),
		tx(t, "2025-03-13", "Pharmacy", -10, budget.CategoryHealthcare),
	}

	ops := identifyAll(t, txs)

	// Top three by spend: Food & Dining (200), Shopping (150),
	// Transportation (100). Healthcare has no lever and is fourth anyway.
	food, ok := findOpportunity(ops, budget.CategoryFoodDining)
	if !ok {
		t.Fatal("expected a Food & Dining efficiency opportunity")
	}
	if !approxEqual(food.PotentialValue, 40, 1e-9) {
		t.Errorf("expected 20%% of 200, got %.2f", food.PotentialValue)
	}

	transport, ok := findOpportunity(ops, budget.CategoryTransportation)
	if !ok {
		t.Fatal("expected a Transportation efficiency opportunity")
	}
	if !approxEqual(transport.PotentialValue, 25, 1e-9) {
		t.Errorf("expected 25%% of 100, got %.2f", transport.PotentialValue)
	}

	if _, ok := findOpportunity(ops, budget.CategoryHealthcare); ok {
		t.Error("Healthcare has no efficiency lever")
	}
}

func TestIdentifyOpportunities_Strategic(t *testing.T) {
	// Savings rate 10% (below 20) and net flow above 500: both strategic
	// detectors fire.
	txs := []domain.Transaction{
		tx(t, "2025-03-10", "Paycheck", 6000, "Income"),
		tx(t, "2025-03-11", "Living Costs", -5400, budget.CategoryUtilities),
	}

	ops := identifyAll(t, txs)

	savings, ok := findOpportunity(ops, "savings rate")
	if !ok {
		t.Fatalf("expected a savings-rate opportunity, got %+v", ops)
	}
	if savings.PotentialValue != 1000 {
		t.Errorf("expected fixed strategic value 1000, got %.2f", savings.PotentialValue)
	}
	if savings.EffortLevel != EffortHigh || savings.Timeframe != TimeframeLongTerm {
		t.Errorf("unexpected effort/timeframe: %s/%s", savings.EffortLevel, savings.Timeframe)
	}

	invest, ok := findOpportunity(ops, "Invest")
	if !ok {
		t.Fatal("expected an investment opportunity")
	}
	// 7% annual return on 12x the monthly flow: 600 * 12 * 0.07.
	if !approxEqual(invest.PotentialValue, 504, 1e-9) {
		t.Errorf("expected value 504, got %.2f", invest.PotentialValue)
	}
}

func TestIdentifyOpportunities_TimingSpike(t *testing.T) {
	// Saturday carries $300 against a $133 average across three active
	// weekdays; the spike detector values shifting 30% of it, monthly.
	txs := []domain.Transaction{
		tx(t, "2025-03-10", "Groceries", -25, budget.CategoryFoodDining),
		tx(t, "2025-03-12", "Groceries", -25, budget.CategoryFoodDining),
		tx(t, "2025-03-15", "Mall Trip", -300, budget.CategoryShopping),
		tx(t, "2025-03-17", "Groceries", -25, budget.CategoryFoodDining),
		tx(t, "2025-03-19", "Groceries", -25, budget.CategoryFoodDining),
	}

	ops := identifyAll(t, txs)

	timing, ok := findOpportunity(ops, "Saturday")
	if !ok {
		t.Fatalf("expected a Saturday timing opportunity, got %+v", ops)
	}
	if !approxEqual(timing.PotentialValue, 300*0.3*4, 1e-9) {
		t.Errorf("expected value 360, got %.2f", timing.PotentialValue)
	}
}

func TestIdentifyOpportunities_SortedByValue(t *testing.T) {
	txs := []domain.Transaction{
		tx(t, "2025-03-10", "Paycheck", 1500, "Income"),
		tx(t, "2025-03-11", "Groceries", -500, budget.CategoryFoodDining),
		tx(t, "2025-03-12", "Netflix", -12.99, budget.CategoryEntertainment),
		tx(t, "2025-03-19", "Netflix", -12.99, budget.CategoryEntertainment),
	}

	ops := identifyAll(t, txs)

	if len(ops) < 3 {
		t.Fatalf("expected several opportunities, got %d", len(ops))
	}
	for i := 1; i < len(ops); i++ {
		if ops[i].PotentialValue > ops[i-1].PotentialValue {
			t.Fatalf("opportunities not sorted by value: %.2f before %.2f",
				ops[i-1].PotentialValue, ops[i].PotentialValue)
		}
	}
}

func TestIdentifyOpportunities_EmptyBatch(t *testing.T) {
	ops := identifyAll(t, nil)
	if len(ops) != 0 {
		t.Errorf("expected no opportunities for empty batch, got %d", len(ops))
	}
}
