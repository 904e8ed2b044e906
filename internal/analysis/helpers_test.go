package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/dvloznov/budget-insight/internal/domain"
)

// tx builds a transaction for tests. The date accepts "2006-01-02" or
// "2006-01-02 15:04".
func tx(t *testing.T, date, description string, amount float64, category string) domain.Transaction {
	t.Helper()

	parsed, err := time.Parse("2006-01-02 15:04", date)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", date)
	}
	if err != nil {
		t.Fatalf("bad test date %q: %v", date, err)
	}

	return domain.Transaction{
		Date:        parsed,
		Description: description,
		Amount:      amount,
		Category:    category,
	}
}

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
