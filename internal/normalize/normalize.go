// Package normalize turns raw tabular rows, as they arrive from Google
// Sheets or CSV exports, into validated domain transactions.
package normalize

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/domain"
)

// RawRow is one unvalidated row from a transaction source. All fields are
// strings because spreadsheet cells carry no types.
type RawRow struct {
	Date        string
	Description string
	Amount      string
	Category    string
	Account     string
}

// Result is a normalized batch. Dropped counts rows that failed validation;
// they are reported as a data-quality metric, never escalated as errors.
type Result struct {
	Transactions []domain.Transaction
	Dropped      int
}

// Accepted date layouts, tried in order. Sheets exports datetimes for rows
// entered through the app and bare dates for manual entries.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
	"1/2/2006",
}

// Normalize validates and types a batch of raw rows. Rows missing a parseable
// date, a non-empty description, or a numeric amount are dropped and counted.
// Blank categories are classified from the description using the configured
// keyword table. The output is sorted most recent first; analyzers must not
// rely on that order.
func Normalize(rows []RawRow, cfg budget.Config) Result {
	result := Result{
		Transactions: make([]domain.Transaction, 0, len(rows)),
	}

	for _, row := range rows {
		tx, err := normalizeRow(row, cfg)
		if err != nil {
			result.Dropped++
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}

	sort.SliceStable(result.Transactions, func(i, j int) bool {
		return result.Transactions[i].Date.After(result.Transactions[j].Date)
	})

	return result
}

func normalizeRow(row RawRow, cfg budget.Config) (domain.Transaction, error) {
	date, err := parseDate(row.Date)
	if err != nil {
		return domain.Transaction{}, err
	}

	description := strings.TrimSpace(row.Description)
	if description == "" {
		return domain.Transaction{}, fmt.Errorf("normalizeRow: empty description")
	}

	amount, err := parseAmount(row.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	category := strings.TrimSpace(row.Category)
	if category == "" {
		category = Categorize(description, cfg)
	}

	return domain.Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Category:    category,
		Account:     strings.TrimSpace(row.Account),
	}, nil
}

// Categorize assigns a category by matching the configured keyword lists
// against the lowercased description. Categories are tried in configuration
// order and the first match wins; no match falls through to Miscellaneous.
func Categorize(description string, cfg budget.Config) string {
	lowered := strings.ToLower(description)
	for _, cat := range cfg.Categories {
		for _, keyword := range cat.Keywords {
			if strings.Contains(lowered, keyword) {
				return cat.Name
			}
		}
	}
	return budget.CategoryMiscellaneous
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("parseDate: empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parseDate: unrecognized date %q", s)
}

// parseAmount parses a signed decimal that may carry a currency symbol and
// thousands separators, e.g. "$1,234.56" or "-$42.00".
func parseAmount(s string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", "£", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, fmt.Errorf("parseAmount: empty amount")
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parseAmount: invalid amount %q: %w", s, err)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("parseAmount: non-finite amount %q", s)
	}

	return amount, nil
}
