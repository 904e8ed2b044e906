package analysis

import (
	"fmt"
	"sort"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

// Savings opportunity types.
const (
	SavingsBudgetGap          = "budget_gap"
	SavingsSubscriptionReview = "subscription_review"
)

// SavingsOpportunity is a direct, gap-based savings lead: either a category
// spending past its limit or an exactly-recurring charge worth reviewing.
// It is simpler and more immediate than a GrowthOpportunity; the two lists
// are reported side by side.
type SavingsOpportunity struct {
	Category    string  `json:"category"`
	Type        string  `json:"type"`
	Potential   float64 `json:"potential"`
	Priority    string  `json:"priority"`
	Description string  `json:"description"`
}

// IdentifySavings finds concrete gaps: categories whose window spend overran
// the configured limit, and vendors charging a near-constant amount whose
// monthly cost is worth a look.
func IdentifySavings(txs []domain.Transaction, cfg budget.Config) []SavingsOpportunity {
	if len(txs) == 0 {
		return []SavingsOpportunity{}
	}

	ops := []SavingsOpportunity{}

	totals := spentByCategory(txs)
	for _, category := range sortedCategories(totals) {
		limit := cfg.Limit(category)
		if limit <= 0 || totals[category] <= limit {
			continue
		}

		gap := totals[category] - limit
		priority := "Medium"
		if gap > 20 {
			priority = "High"
		}

		ops = append(ops, SavingsOpportunity{
			Category:    category,
			Type:        SavingsBudgetGap,
			Potential:   gap,
			Priority:    priority,
			Description: fmt.Sprintf("%s ran $%.2f over its budget", category, gap),
		})
	}

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

	for _, vendor := range vendors {
		amounts := byVendor[vendor]
		if len(amounts) < 2 || stdDev(amounts) >= 2 {
			continue
		}

		monthly := mean(amounts) * 4
		ops = append(ops, SavingsOpportunity{
			Category:    budget.CategorySubscriptions,
			Type:        SavingsSubscriptionReview,
			Potential:   monthly,
			Priority:    "Medium",
			Description: fmt.Sprintf("%s charges a steady amount, ~$%.2f/month", vendor, monthly),
		})
	}

	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].Potential > ops[j].Potential
	})

	return ops
}
