package analysis

import (
	"fmt"
	"time"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

// Reason codes for flagged transactions.
const (
	ReasonHighAmount           = "UNUSUALLY_HIGH_AMOUNT"
	ReasonPotentialDuplicate   = "POTENTIAL_DUPLICATE"
	ReasonWeekendDiscretionary = "WEEKEND_DISCRETIONARY_SPENDING"
	ReasonLateNight            = "LATE_NIGHT_SPENDING"
)

// UnusualTransaction is an expense flagged by one or more pattern checks.
// Severity is High when the amount itself is the outlier, Medium when only
// behavioral patterns fired.
type UnusualTransaction struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Reasons     []string  `json:"reasons"`
	Severity    string    `json:"severity"`
}

// FlagUnusual scans expenses for outliers: amounts beyond two standard
// deviations of the window mean, repeated same-day same-amount charges at one
// vendor, weekend discretionary purchases, and deep-night purchases (23:00
// through 05:59). Flagged entries keep the batch's presentation order.
func FlagUnusual(txs []domain.Transaction) []UnusualTransaction {
	expenses := expensesOf(txs)
	if len(expenses) == 0 {
		return []UnusualTransaction{}
	}

	amounts := make([]float64, len(expenses))
	for i, tx := range expenses {
		amounts[i] = tx.AbsAmount()
	}
	m := mean(amounts)
	std := stdDev(amounts)

	// First occurrence of a (day, vendor, amount) triple is legitimate; any
	// repeat looks like a double charge.
	seen := make(map[string]bool, len(expenses))

	flagged := []UnusualTransaction{}
	for _, tx := range expenses {
		var reasons []string

		if std > 0 && tx.AbsAmount() > m+2*std {
			reasons = append(reasons, ReasonHighAmount)
		}

		key := fmt.Sprintf("%s|%s|%.2f", tx.Day().Format("2006-01-02"), tx.Description, tx.AbsAmount())
		if seen[key] {
			reasons = append(reasons, ReasonPotentialDuplicate)
		}
		seen[key] = true

		if isWeekend(tx.Date) && (tx.Category == budget.CategoryShopping || tx.Category == budget.CategoryEntertainment) {
			reasons = append(reasons, ReasonWeekendDiscretionary)
		}

		if hour := tx.Date.Hour(); hour >= 23 || hour <= 5 {
			reasons = append(reasons, ReasonLateNight)
		}

		if len(reasons) == 0 {
			continue
		}

		severity := SeverityMedium
		for _, r := range reasons {
			if r == ReasonHighAmount {
				severity = SeverityHigh
				break
			}
		}

		flagged = append(flagged, UnusualTransaction{
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      tx.Amount,
			Category:    tx.Category,
			Reasons:     reasons,
			Severity:    severity,
		})
	}

	return flagged
}
