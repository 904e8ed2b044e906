package pipeline

import (
	"fmt"
	"strings"

	"github.com/dvloznov/budget-insight/internal/advisor"
	"github.com/dvloznov/budget-insight/internal/analysis"
	"github.com/dvloznov/budget-insight/internal/domain"
	infra "github.com/dvloznov/budget-insight/internal/infra/bigquery"
)

// buildTransactionRows converts the normalized transactions into BigQuery
// rows and stamps each row that the analysis flagged as unusual with the
// flag reasons. Matching is by date, description, and amount, the same
// identity the duplicate detector uses.
func buildTransactionRows(txs []domain.Transaction, runID string, rep *analysis.Report) []*infra.TransactionRow {
	flags := make(map[string][]string)
	if rep != nil {
		for _, u := range rep.Unusual {
			flags[flagKey(u.Date.Unix(), u.Description, u.Amount)] = u.Reasons
		}
	}

	rows := make([]*infra.TransactionRow, 0, len(txs))
	for _, tx := range txs {
		row := infra.NewTransactionRow(tx, runID)
		if reasons, ok := flags[flagKey(tx.Date.Unix(), tx.Description, tx.Amount)]; ok {
			row.Flags = reasons
		}
		rows = append(rows, row)
	}
	return rows
}

func flagKey(unixDate int64, description string, amount float64) string {
	return fmt.Sprintf("%d|%s|%.2f", unixDate, description, amount)
}

// appendAdvice renders the advisor's narrative as a final report section.
func appendAdvice(rendered string, advice *advisor.Advice) string {
	if advice == nil {
		return rendered
	}

	var b strings.Builder
	b.WriteString(rendered)
	if !strings.HasSuffix(rendered, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n=== Advisor ===\n")
	if advice.Headline != "" {
		b.WriteString(advice.Headline)
		b.WriteString("\n")
	}
	for _, insight := range advice.Insights {
		b.WriteString(fmt.Sprintf("- %s\n", insight))
	}
	if len(advice.Actions) > 0 {
		b.WriteString("Next steps:\n")
		for i, action := range advice.Actions {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, action))
		}
	}
	return b.String()
}
