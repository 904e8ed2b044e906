package bigquery

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/dvloznov/budget-insight/internal/domain"
)

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id" json:"transaction_id"` // REQUIRED
	RunID         string `bigquery:"run_id" json:"run_id"`                 // NULLABLE

	TransactionDate civil.Date            `bigquery:"transaction_date" json:"transaction_date"` // REQUIRED
	BookedAt        bigquery.NullDateTime `bigquery:"booked_at" json:"booked_at,omitempty"`     // NULLABLE

	Description string   `bigquery:"description" json:"description"` // REQUIRED
	Amount      *big.Rat `bigquery:"amount" json:"amount"`           // REQUIRED NUMERIC

	Category  string              `bigquery:"category" json:"category"`         // NULLABLE
	Account   bigquery.NullString `bigquery:"account" json:"account,omitempty"` // NULLABLE
	IsExpense bool                `bigquery:"is_expense" json:"is_expense"`

	Flags []string `bigquery:"flags" json:"flags,omitempty"` // REPEATED STRING

	CreatedTS time.Time `bigquery:"created_ts" json:"created_ts"` // REQUIRED
}

// MarshalJSON customizes JSON serialization for TransactionRow so NUMERIC
// amounts render as fixed two-decimal strings.
func (t TransactionRow) MarshalJSON() ([]byte, error) {
	type Alias TransactionRow
	return json.Marshal(&struct {
		Amount string `json:"amount"`
		*Alias
	}{
		Amount: func() string {
			if t.Amount == nil {
				return "0.00"
			}
			return t.Amount.FloatString(2)
		}(),
		Alias: (*Alias)(&t),
	})
}

// NewTransactionRow converts a domain transaction into its storage row. The
// amount is stored as an exact two-decimal rational; intra-day timestamps,
// when the source had one, are kept in booked_at alongside the civil date.
func NewTransactionRow(tx domain.Transaction, runID string) *TransactionRow {
	row := &TransactionRow{
		TransactionID:   uuid.NewString(),
		RunID:           runID,
		TransactionDate: civil.DateOf(tx.Date),
		Description:     tx.Description,
		Amount:          ratFromAmount(tx.Amount),
		Category:        tx.Category,
		IsExpense:       tx.IsExpense(),
		CreatedTS:       time.Now(),
	}

	if tx.Account != "" {
		row.Account = bigquery.NullString{StringVal: tx.Account, Valid: true}
	}

	hour, min, sec := tx.Date.Clock()
	if hour != 0 || min != 0 || sec != 0 {
		row.BookedAt = bigquery.NullDateTime{DateTime: civil.DateTimeOf(tx.Date), Valid: true}
	}

	return row
}

// ToDomain converts the row back into a domain transaction. The booked_at
// timestamp wins over the bare civil date when present, so late-night
// detection keeps working on round-tripped data.
func (t *TransactionRow) ToDomain() domain.Transaction {
	date := t.TransactionDate.In(time.UTC)
	if t.BookedAt.Valid {
		date = t.BookedAt.DateTime.In(time.UTC)
	}

	amount := 0.0
	if t.Amount != nil {
		amount, _ = t.Amount.Float64()
	}

	return domain.Transaction{
		Date:        date,
		Description: t.Description,
		Amount:      amount,
		Category:    t.Category,
		Account:     t.Account.StringVal,
	}
}

// ratFromAmount represents a float amount as an exact two-decimal rational,
// suitable for a NUMERIC column.
func ratFromAmount(amount float64) *big.Rat {
	r, ok := new(big.Rat).SetString(fmt.Sprintf("%.2f", amount))
	if !ok {
		return new(big.Rat)
	}
	return r
}
