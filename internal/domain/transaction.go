package domain

import (
	"math"
	"time"
)

// Transaction represents one normalized financial event. This is a domain
// struct, not a storage row; the BigQuery layer maps it into the
// budget.transactions table schema.
// Amounts are signed: negative = money out (expense), positive = money in
// (income). A Transaction is constructed once by the normalizer and never
// mutated by downstream analyzers.
type Transaction struct {
	Date        time.Time // day granularity; time-of-day kept when the source provides it
	Description string    // merchant / memo text, non-empty after normalization
	Amount      float64
	Category    string // budget category, "Miscellaneous" when unresolved
	Account     string // source account label, may be empty
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool {
	return t.Amount < 0
}

// AbsAmount returns the unsigned monetary value of the transaction.
func (t Transaction) AbsAmount() float64 {
	return math.Abs(t.Amount)
}

// Day returns the transaction date truncated to midnight, for grouping
// by calendar date.
func (t Transaction) Day() time.Time {
	y, m, d := t.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Date.Location())
}
