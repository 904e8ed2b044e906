package bigquery

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/budget-insight/internal/analysis"
	"github.com/dvloznov/budget-insight/internal/domain"
)

func TestNewTransactionRow(t *testing.T) {
	tx := domain.Transaction{
		Date:        time.Date(2024, 3, 15, 23, 45, 0, 0, time.UTC),
		Description: "Late Night Diner",
		Amount:      -32.50,
		Category:    "Food & Dining",
		Account:     "Checking",
	}

	row := NewTransactionRow(tx, "run-1")

	if row.TransactionID == "" {
		t.Error("expected a generated transaction_id")
	}
	if row.RunID != "run-1" {
		t.Errorf("run_id = %q", row.RunID)
	}
	if got := row.TransactionDate.String(); got != "2024-03-15" {
		t.Errorf("transaction_date = %q", got)
	}
	if !row.BookedAt.Valid {
		t.Error("intra-day timestamp should populate booked_at")
	}
	if got := row.Amount.FloatString(2); got != "-32.50" {
		t.Errorf("amount = %s", got)
	}
	if !row.IsExpense {
		t.Error("negative amount should mark is_expense")
	}
	if !row.Account.Valid || row.Account.StringVal != "Checking" {
		t.Errorf("account = %+v", row.Account)
	}
}

func TestNewTransactionRowMidnightHasNoBookedAt(t *testing.T) {
	tx := domain.Transaction{
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: "Manual Entry",
		Amount:      -10,
		Category:    "Miscellaneous",
	}

	row := NewTransactionRow(tx, "run-1")

	if row.BookedAt.Valid {
		t.Error("midnight dates carry no intra-day time, booked_at should be null")
	}
	if row.Account.Valid {
		t.Error("empty account should map to null")
	}
}

func TestTransactionRowRoundTrip(t *testing.T) {
	original := domain.Transaction{
		Date:        time.Date(2024, 3, 15, 23, 45, 0, 0, time.UTC),
		Description: "Late Night Diner",
		Amount:      -32.50,
		Category:    "Food & Dining",
		Account:     "Checking",
	}

	back := NewTransactionRow(original, "run-1").ToDomain()

	if !back.Date.Equal(original.Date) {
		t.Errorf("date round trip: %v != %v", back.Date, original.Date)
	}
	if back.Amount != original.Amount {
		t.Errorf("amount round trip: %v != %v", back.Amount, original.Amount)
	}
	if back.Description != original.Description || back.Category != original.Category || back.Account != original.Account {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestTransactionRowJSONFormatsAmount(t *testing.T) {
	tx := domain.Transaction{
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: "Grocery Store",
		Amount:      -52.1,
		Category:    "Food & Dining",
	}

	encoded, err := json.Marshal(NewTransactionRow(tx, "run-1"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if !strings.Contains(string(encoded), `"amount":"-52.10"`) {
		t.Errorf("amount should serialize as a two-decimal string, got %s", encoded)
	}
}

func TestRatFromAmountIsExact(t *testing.T) {
	// 0.1 + 0.2 style floats must not leak binary noise into NUMERIC.
	if got := ratFromAmount(19.99).FloatString(4); got != "19.9900" {
		t.Errorf("ratFromAmount(19.99) = %s", got)
	}
	if got := ratFromAmount(-0.1).FloatString(2); got != "-0.10" {
		t.Errorf("ratFromAmount(-0.1) = %s", got)
	}
}

func reportFixture(t *testing.T) *analysis.Report {
	t.Helper()
	report := &analysis.Report{
		WindowStart: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		DroppedRows: 2,
	}
	report.Summary = analysis.SpendingSummary{
		Status:           analysis.DataOK,
		TransactionCount: 4,
		TotalSpent:       180,
		TotalIncome:      2000,
		ByCategory:       map[string]float64{"Food": 60, "Shopping": 120},
	}
	report.Overspending.SpendingScore = 88
	report.Overspending.RiskLabel = "Excellent"
	report.Risk.Level = "Low Risk"
	report.CashFlow.NetFlow = 1820
	return report
}

func TestNewReportRowFlattensHeadlines(t *testing.T) {
	reportDate := civil.Date{Year: 2024, Month: 3, Day: 15}

	row := NewReportRow(reportFixture(t), "run-9", reportDate, "rendered text")

	if row.ReportID == "" || row.RunID != "run-9" {
		t.Errorf("ids: %q / %q", row.ReportID, row.RunID)
	}
	if row.WindowStart.String() != "2024-03-08" || row.WindowEnd.String() != "2024-03-15" {
		t.Errorf("window: %s .. %s", row.WindowStart, row.WindowEnd)
	}
	if row.TransactionCount != 4 || row.DroppedRows != 2 {
		t.Errorf("counts: %d / %d", row.TransactionCount, row.DroppedRows)
	}
	if got := row.NetFlow.FloatString(2); got != "1820.00" {
		t.Errorf("net_flow = %s", got)
	}
	if row.SpendingScore != 88 || row.ScoreLabel != "Excellent" || row.RiskLevel != "Low Risk" {
		t.Errorf("scores: %d %q %q", row.SpendingScore, row.ScoreLabel, row.RiskLevel)
	}
	if row.TopCategory != "Shopping" {
		t.Errorf("top_category = %q, want Shopping", row.TopCategory)
	}
	if !row.Payload.Valid {
		t.Error("payload should be set")
	}
	if !row.ReportText.Valid || row.ReportText.StringVal != "rendered text" {
		t.Errorf("report_text: %+v", row.ReportText)
	}
}

func TestNewReportRowEmptyWindowFallsBackToReportDate(t *testing.T) {
	reportDate := civil.Date{Year: 2024, Month: 3, Day: 15}
	report := &analysis.Report{}

	row := NewReportRow(report, "run-9", reportDate, "")

	if row.WindowStart != reportDate || row.WindowEnd != reportDate {
		t.Errorf("empty window should collapse to the report date, got %s .. %s", row.WindowStart, row.WindowEnd)
	}
	if row.ReportText.Valid {
		t.Error("empty rendered text should map to null")
	}
}

func TestTopCategory(t *testing.T) {
	tests := []struct {
		name       string
		byCategory map[string]float64
		want       string
	}{
		{"highest spend wins", map[string]float64{"Food": 60, "Shopping": 120, "Transport": 15}, "Shopping"},
		{"ties break alphabetically", map[string]float64{"Utilities": 50, "Food": 50}, "Food"},
		{"empty map", map[string]float64{}, ""},
		{"nil map", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := topCategory(tt.byCategory); got != tt.want {
				t.Errorf("topCategory() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsedPayloadFromString(t *testing.T) {
	reportDate := civil.Date{Year: 2024, Month: 3, Day: 15}
	row := NewReportRow(reportFixture(t), "run-9", reportDate, "")

	// Simulate a read path where the JSON column surfaces as a string.
	encoded, err := json.Marshal(reportFixture(t))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	row.Payload.JSONVal = string(encoded)

	parsed, err := row.ParsedPayload()
	if err != nil {
		t.Fatalf("ParsedPayload: %v", err)
	}
	if parsed.Summary.TransactionCount != 4 || parsed.Overspending.SpendingScore != 88 {
		t.Errorf("payload round trip lost data: %+v", parsed.Summary)
	}
}

func TestParsedPayloadFromStruct(t *testing.T) {
	reportDate := civil.Date{Year: 2024, Month: 3, Day: 15}
	row := NewReportRow(reportFixture(t), "run-9", reportDate, "")

	parsed, err := row.ParsedPayload()
	if err != nil {
		t.Fatalf("ParsedPayload: %v", err)
	}
	if parsed.Risk.Level != "Low Risk" {
		t.Errorf("risk level = %q", parsed.Risk.Level)
	}
}

func TestParsedPayloadMissing(t *testing.T) {
	row := &ReportRow{ReportID: "r1"}
	if _, err := row.ParsedPayload(); err == nil {
		t.Error("expected error for missing payload")
	}
}
