package analysis

import (
	"fmt"
	"strings"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

// HygieneReport grades the categorization quality of the window's data.
// QualityScore is the share of transactions carrying a real category, scaled
// to 0-100.
type HygieneReport struct {
	Status             DataStatus `json:"status"`
	TotalTransactions  int        `json:"total_transactions"`
	UncategorizedCount int        `json:"uncategorized_count"`
	QualityScore       float64    `json:"quality_score"`
	Issues             []string   `json:"issues"`
}

// coffeeMarkers are description fragments that almost always mean a cafe
// purchase; seeing one outside Food & Dining suggests a miscategorized row.
var coffeeMarkers = []string{"starbucks", "coffee", "cafe"}

// CheckHygiene counts uncategorized transactions and flags suspected
// miscategorizations. "Miscellaneous", "Other", and blank all count as
// uncategorized; they are fallbacks, not classifications.
func CheckHygiene(txs []domain.Transaction) HygieneReport {
	report := HygieneReport{
		Status: DataOK,
		Issues: []string{},
	}

	if len(txs) == 0 {
		report.Status = DataNoData
		return report
	}

	report.TotalTransactions = len(txs)
	for _, tx := range txs {
		switch tx.Category {
		case budget.CategoryMiscellaneous, "Other", "":
			report.UncategorizedCount++
		}

		if tx.Category != budget.CategoryFoodDining {
			lowered := strings.ToLower(tx.Description)
			for _, marker := range coffeeMarkers {
				if strings.Contains(lowered, marker) {
					report.Issues = append(report.Issues,
						fmt.Sprintf("Possible miscategorized cafe purchase: %q filed under %s", tx.Description, printableCategory(tx.Category)))
					break
				}
			}
		}
	}

	if report.UncategorizedCount > 0 {
		report.Issues = append(report.Issues,
			fmt.Sprintf("%d transactions lack a real category", report.UncategorizedCount))
	}

	report.QualityScore = (1 - float64(report.UncategorizedCount)/float64(report.TotalTransactions)) * 100

	return report
}

func printableCategory(category string) string {
	if category == "" {
		return "(none)"
	}
	return category
}
