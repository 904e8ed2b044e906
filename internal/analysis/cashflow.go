package analysis

import "github.com/dvloznov/budget-insight/internal/domain"

// CashFlow is the income/expense balance for the window. ExpenseRatio and
// SavingsRate are 0 when there is no income in the window; the zero
// denominator is substituted, never propagated.
type CashFlow struct {
	Status       DataStatus `json:"status"`
	Income       float64    `json:"income"`
	Expenses     float64    `json:"expenses"`
	NetFlow      float64    `json:"net_flow"`
	ExpenseRatio float64    `json:"expense_ratio"`
	SavingsRate  float64    `json:"savings_rate"`
	Direction    string     `json:"direction,omitempty"`
}

// AnalyzeCashFlow sums inflows against outflows over the window.
func AnalyzeCashFlow(txs []domain.Transaction) CashFlow {
	flow := CashFlow{Status: DataOK}

	if len(txs) == 0 {
		flow.Status = DataNoData
		return flow
	}

	for _, tx := range txs {
		if tx.IsExpense() {
			flow.Expenses += tx.AbsAmount()
		} else {
			flow.Income += tx.Amount
		}
	}

	flow.NetFlow = flow.Income - flow.Expenses
	if flow.Income > 0 {
		flow.ExpenseRatio = flow.Expenses / flow.Income
		flow.SavingsRate = flow.NetFlow / flow.Income * 100
	}

	if flow.NetFlow >= 0 {
		flow.Direction = "Positive"
	} else {
		flow.Direction = "Negative"
	}

	return flow
}
