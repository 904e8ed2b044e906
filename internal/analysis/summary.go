package analysis

import "github.com/dvloznov/budget-insight/internal/domain"

// SpendingSummary is the headline numbers section: counts, totals, and the
// per-category raw spend breakdown.
type SpendingSummary struct {
	Status             DataStatus         `json:"status"`
	TransactionCount   int                `json:"transaction_count"`
	ExpenseCount       int                `json:"expense_count"`
	TotalSpent         float64            `json:"total_spent"`
	TotalIncome        float64            `json:"total_income"`
	AverageTransaction float64            `json:"avg_transaction"`
	LargestAmount      float64            `json:"largest_transaction"`
	LargestDescription string             `json:"largest_description,omitempty"`
	ByCategory         map[string]float64 `json:"by_category"`
}

// Summarize computes the headline numbers for the window. Averages and the
// largest transaction consider expenses only.
func Summarize(txs []domain.Transaction) SpendingSummary {
	summary := SpendingSummary{
		Status:     DataOK,
		ByCategory: map[string]float64{},
	}

	if len(txs) == 0 {
		summary.Status = DataNoData
		return summary
	}

	summary.TransactionCount = len(txs)
	for _, tx := range txs {
		if !tx.IsExpense() {
			summary.TotalIncome += tx.Amount
			continue
		}

		amount := tx.AbsAmount()
		summary.ExpenseCount++
		summary.TotalSpent += amount
		summary.ByCategory[tx.Category] += amount

		if amount > summary.LargestAmount {
			summary.LargestAmount = amount
			summary.LargestDescription = tx.Description
		}
	}

	if summary.ExpenseCount > 0 {
		summary.AverageTransaction = summary.TotalSpent / float64(summary.ExpenseCount)
	}

	return summary
}
