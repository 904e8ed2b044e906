package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

// Growth opportunity types.
const (
	OpportunitySavings      = "savings"
	OpportunityOptimization = "optimization"
	OpportunityAutomation   = "automation"
)

// Effort levels and timeframes for growth opportunities.
const (
	EffortLow    = "low"
	EffortMedium = "medium"
	EffortHigh   = "high"

	TimeframeImmediate = "immediate"
	TimeframeShortTerm = "short_term"
	TimeframeLongTerm  = "long_term"
)

// GrowthOpportunity is one valued, actionable suggestion. PotentialValue is
// monetary, annualized where the description says so. Opportunities are
// recomputed each run and carry no identity across runs.
type GrowthOpportunity struct {
	Category       string   `json:"category"`
	Type           string   `json:"opportunity_type"`
	Description    string   `json:"description"`
	PotentialValue float64  `json:"potential_value"`
	EffortLevel    string   `json:"effort_level"`
	Timeframe      string   `json:"timeframe"`
	ActionItems    []string `json:"action_items"`
}

// efficiencyLevers holds the per-category savings rates and checklists for
// the category efficiency detector. Discretionary categories carry a 20%
// lever; transportation has more structural slack at 25%.
var efficiencyLevers = map[string]struct {
	rate  float64
	items []string
}{
	budget.CategoryFoodDining: {0.20, []string{
		"Cook more meals at home",
		"Use restaurant deals and happy hours",
		"Limit delivery orders to once a week",
	}},
	budget.CategoryShopping: {0.20, []string{
		"Apply a 24-hour rule before non-essential purchases",
		"Use price comparison tools and coupons",
		"Unsubscribe from promotional emails",
	}},
	budget.CategoryEntertainment: {0.20, []string{
		"Rotate streaming subscriptions instead of stacking them",
		"Look for free events nearby",
		"Share family plans where terms allow",
	}},
	budget.CategoryTransportation: {0.25, []string{
		"Use public transport or carpool twice a week",
		"Combine errands into single trips",
		"Compare fuel prices before filling up",
	}},
}

// IdentifyOpportunities runs the five growth detectors over the batch and the
// already-computed cash flow, returning suggestions sorted by value. A vendor
// or category may appear in opportunities of different types; they represent
// different levers, not claims on the same dollars.
func IdentifyOpportunities(txs []domain.Transaction, flow CashFlow, h budget.Heuristics) []GrowthOpportunity {
	if len(txs) == 0 {
		return []GrowthOpportunity{}
	}

	var ops []GrowthOpportunity
	ops = append(ops, detectSubscriptions(txs, h)...)
	ops = append(ops, detectCategoryEfficiency(txs)...)
	ops = append(ops, detectAutomation(flow)...)
	ops = append(ops, detectTimingPatterns(txs)...)
	ops = append(ops, detectStrategic(flow)...)

	sort.Slice(ops, func(i, j int) bool {
		if ops[i].PotentialValue != ops[j].PotentialValue {
			return ops[i].PotentialValue > ops[j].PotentialValue
		}
		return ops[i].Description < ops[j].Description
	})

	return ops
}

// detectSubscriptions finds vendors charged repeatedly at near-identical
// amounts. Potential value is 30% of the estimated monthly cost, with the
// mean charge times four approximating weekly-to-monthly.
func detectSubscriptions(txs []domain.Transaction, h budget.Heuristics) []GrowthOpportunity {
	byVendor := make(map[string][]float64)
	for _, tx := range txs {
		if tx.IsExpense() {
			byVendor[tx.Description] = append(byVendor[tx.Description], tx.AbsAmount())
		}
	}

	vendors := make([]string, 0, len(byVendor))
	for vendor := range byVendor {
		vendors = append(vendors, vendor)
	}
	sort.Strings(vendors)

	var ops []GrowthOpportunity
	for _, vendor := range vendors {
		amounts := byVendor[vendor]
		if len(amounts) < 2 {
			continue
		}

		m := mean(amounts)
		if m <= 0 || stdDev(amounts) >= h.SubscriptionVariation*m {
			continue
		}

		monthlyCost := m * 4
		ops = append(ops, GrowthOpportunity{
			Category:       budget.CategorySubscriptions,
			Type:           OpportunityOptimization,
			Description:    fmt.Sprintf("Review recurring %s charges (~$%.2f/month)", vendor, monthlyCost),
			PotentialValue: monthlyCost * 0.3,
			EffortLevel:    EffortLow,
			Timeframe:      TimeframeImmediate,
			ActionItems: []string{
				fmt.Sprintf("Check whether %s is still worth paying for", vendor),
				"Cancel if unused, or negotiate a lower rate",
				"Look for annual-payment discounts",
			},
		})
	}

	return ops
}

// detectCategoryEfficiency attaches savings levers to the top three
// categories by spend, where a lever is defined for the category.
func detectCategoryEfficiency(txs []domain.Transaction) []GrowthOpportunity {
	totals := spentByCategory(txs)
	ranked := sortedCategories(totals)
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}

	var ops []GrowthOpportunity
	for _, category := range ranked {
		lever, ok := efficiencyLevers[category]
		if !ok {
			continue
		}
		ops = append(ops, GrowthOpportunity{
			Category:       category,
			Type:           OpportunitySavings,
			Description:    fmt.Sprintf("Trim %s spending by %.0f%%", category, lever.rate*100),
			PotentialValue: totals[category] * lever.rate,
			EffortLevel:    EffortMedium,
			Timeframe:      TimeframeShortTerm,
			ActionItems:    lever.items,
		})
	}

	return ops
}

// detectAutomation proposes automating surplus transfers when the window has
// meaningful positive net flow, plus a standing budget-automation suggestion.
func detectAutomation(flow CashFlow) []GrowthOpportunity {
	var ops []GrowthOpportunity

	if flow.NetFlow > 100 {
		transfer := flow.NetFlow * 0.5
		ops = append(ops, GrowthOpportunity{
			Category:       "Savings",
			Type:           OpportunityAutomation,
			Description:    fmt.Sprintf("Automate a $%.2f monthly transfer to savings", transfer),
			PotentialValue: transfer * 12,
			EffortLevel:    EffortLow,
			Timeframe:      TimeframeImmediate,
			ActionItems: []string{
				fmt.Sprintf("Set up an automatic transfer of $%.2f each month", transfer),
				"Schedule it for the day after payday",
				"Review the amount quarterly",
			},
		})
	}

	ops = append(ops, GrowthOpportunity{
		Category:       "Budgeting",
		Type:           OpportunityAutomation,
		Description:    "Automate budget tracking and alerts",
		PotentialValue: 200,
		EffortLevel:    EffortLow,
		Timeframe:      TimeframeImmediate,
		ActionItems: []string{
			"Enable account alerts for large transactions",
			"Auto-categorize recurring vendors",
			"Schedule a weekly budget review",
		},
	})

	return ops
}

// detectTimingPatterns flags a weekday whose spending runs well above the
// weekly average, valuing a shift of 30% of that day's spend, annualized
// across four weeks.
func detectTimingPatterns(txs []domain.Transaction) []GrowthOpportunity {
	byWeekday := make(map[time.Weekday]float64)
	for _, tx := range txs {
		if tx.IsExpense() {
			byWeekday[tx.Date.Weekday()] += tx.AbsAmount()
		}
	}
	if len(byWeekday) == 0 {
		return nil
	}

	var sum float64
	for _, total := range byWeekday {
		sum += total
	}
	avg := sum / float64(len(byWeekday))

	// Calendar order makes the pick deterministic when totals tie.
	peakDay := time.Sunday
	peakTotal := -1.0
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if total, ok := byWeekday[wd]; ok && total > peakTotal {
			peakDay, peakTotal = wd, total
		}
	}

	if peakTotal <= avg*1.5 {
		return nil
	}

	return []GrowthOpportunity{{
		Category:       "Behavioral",
		Type:           OpportunitySavings,
		Description:    fmt.Sprintf("Shift discretionary spending away from %ss", peakDay),
		PotentialValue: peakTotal * 0.3 * 4,
		EffortLevel:    EffortMedium,
		Timeframe:      TimeframeShortTerm,
		ActionItems: []string{
			fmt.Sprintf("Plan %s purchases in advance", peakDay),
			fmt.Sprintf("Set a spending cap for %ss", peakDay),
			"Move discretionary purchases to lower-spend days",
		},
	}}
}

// detectStrategic proposes long-horizon moves: raising a low savings rate and
// putting sustained surplus to work at a nominal 7% annual return.
func detectStrategic(flow CashFlow) []GrowthOpportunity {
	var ops []GrowthOpportunity

	if flow.Income > 0 && flow.SavingsRate < 20 {
		ops = append(ops, GrowthOpportunity{
			Category:       "Strategic",
			Type:           OpportunitySavings,
			Description:    fmt.Sprintf("Raise your savings rate from %.1f%% toward 20%%", flow.SavingsRate),
			PotentialValue: 1000,
			EffortLevel:    EffortHigh,
			Timeframe:      TimeframeLongTerm,
			ActionItems: []string{
				"Increase your savings rate toward 20% of income",
				"Automate transfers on payday",
				"Review fixed costs for reduction opportunities",
			},
		})
	}

	if flow.NetFlow > 500 {
		ops = append(ops, GrowthOpportunity{
			Category:       "Strategic",
			Type:           OpportunityOptimization,
			Description:    fmt.Sprintf("Invest your $%.2f monthly surplus", flow.NetFlow),
			PotentialValue: flow.NetFlow * 12 * 0.07,
			EffortLevel:    EffortMedium,
			Timeframe:      TimeframeLongTerm,
			ActionItems: []string{
				"Open or top up a low-cost index fund position",
				"Keep three months of expenses liquid first",
				"Reinvest returns automatically",
			},
		})
	}

	return ops
}
