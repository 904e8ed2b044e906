package analysis

import (
	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

// WhatIfScenario is one hypothetical spending change and the money it would
// have freed over the window.
type WhatIfScenario struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	ProjectedSavings float64 `json:"projected_savings"`
}

// WhatIfReport runs a fixed set of hypothetical cuts against the window's
// actual spending. BestScenario names the scenario with the largest savings.
type WhatIfReport struct {
	Status       DataStatus       `json:"status"`
	Scenarios    []WhatIfScenario `json:"scenarios"`
	BestScenario string           `json:"best_scenario,omitempty"`
}

// RunWhatIf evaluates the canonical trio of cuts: dining out 10% less,
// shopping 20% less, and pausing entertainment entirely. Scenarios are always
// all three, zero-valued when the category had no spend, so runs stay
// comparable week over week.
func RunWhatIf(txs []domain.Transaction) WhatIfReport {
	report := WhatIfReport{
		Status:    DataOK,
		Scenarios: []WhatIfScenario{},
	}

	expenses := expensesOf(txs)
	if len(expenses) == 0 {
		report.Status = DataNoData
		return report
	}

	totals := spentByCategory(expenses)

	report.Scenarios = []WhatIfScenario{
		{
			Name:             "dine_out_less",
			Description:      "Cut dining out by 10%",
			ProjectedSavings: totals[budget.CategoryFoodDining] * 0.10,
		},
		{
			Name:             "curb_shopping",
			Description:      "Cut shopping by 20%",
			ProjectedSavings: totals[budget.CategoryShopping] * 0.20,
		},
		{
			Name:             "pause_entertainment",
			Description:      "Pause entertainment spending for the window",
			ProjectedSavings: totals[budget.CategoryEntertainment],
		},
	}

	best := 0
	for i, s := range report.Scenarios {
		if s.ProjectedSavings > report.Scenarios[best].ProjectedSavings {
			best = i
		}
	}
	if report.Scenarios[best].ProjectedSavings > 0 {
		report.BestScenario = report.Scenarios[best].Name
	}

	return report
}
