package bigquery

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/dvloznov/budget-insight/internal/analysis"
)

type ReportRow struct {
	ReportID string `bigquery:"report_id" json:"report_id"` // REQUIRED
	RunID    string `bigquery:"run_id" json:"run_id"`       // NULLABLE

	ReportDate  civil.Date `bigquery:"report_date" json:"report_date"`   // REQUIRED
	WindowStart civil.Date `bigquery:"window_start" json:"window_start"` // REQUIRED
	WindowEnd   civil.Date `bigquery:"window_end" json:"window_end"`     // REQUIRED

	TransactionCount int64 `bigquery:"transaction_count" json:"transaction_count"`
	DroppedRows      int64 `bigquery:"dropped_rows" json:"dropped_rows"`

	TotalSpent  *big.Rat `bigquery:"total_spent" json:"total_spent"`   // NUMERIC
	TotalIncome *big.Rat `bigquery:"total_income" json:"total_income"` // NUMERIC
	NetFlow     *big.Rat `bigquery:"net_flow" json:"net_flow"`         // NUMERIC

	SpendingScore int64  `bigquery:"spending_score" json:"spending_score"`
	ScoreLabel    string `bigquery:"score_label" json:"score_label"`   // NULLABLE
	RiskLevel     string `bigquery:"risk_level" json:"risk_level"`     // NULLABLE
	TopCategory   string `bigquery:"top_category" json:"top_category"` // NULLABLE
	AlertCount    int64  `bigquery:"alert_count" json:"alert_count"`

	Payload    bigquery.NullJSON   `bigquery:"payload" json:"payload,omitempty"`         // NULLABLE JSON: full analysis.Report
	ReportText bigquery.NullString `bigquery:"report_text" json:"report_text,omitempty"` // NULLABLE: rendered digest
	GCSURI     bigquery.NullString `bigquery:"gcs_uri" json:"gcs_uri,omitempty"`         // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts" json:"created_ts"` // REQUIRED
}

// MarshalJSON customizes JSON serialization for ReportRow so NUMERIC totals
// render as fixed two-decimal strings.
func (r ReportRow) MarshalJSON() ([]byte, error) {
	type Alias ReportRow
	return json.Marshal(&struct {
		TotalSpent  string `json:"total_spent"`
		TotalIncome string `json:"total_income"`
		NetFlow     string `json:"net_flow"`
		*Alias
	}{
		TotalSpent:  ratDecimalString(r.TotalSpent),
		TotalIncome: ratDecimalString(r.TotalIncome),
		NetFlow:     ratDecimalString(r.NetFlow),
		Alias:       (*Alias)(&r),
	})
}

func ratDecimalString(r *big.Rat) string {
	if r == nil {
		return "0.00"
	}
	return r.FloatString(2)
}

// NewReportRow flattens the headline figures of a report into a queryable row
// and keeps the complete report as a JSON payload. reportDate is the day the
// report is about, which can trail the window end on quiet days.
func NewReportRow(report *analysis.Report, runID string, reportDate civil.Date, rendered string) *ReportRow {
	row := &ReportRow{
		ReportID:         uuid.NewString(),
		RunID:            runID,
		ReportDate:       reportDate,
		TransactionCount: int64(report.Summary.TransactionCount),
		DroppedRows:      int64(report.DroppedRows),
		TotalSpent:       ratFromAmount(report.Summary.TotalSpent),
		TotalIncome:      ratFromAmount(report.Summary.TotalIncome),
		NetFlow:          ratFromAmount(report.CashFlow.NetFlow),
		SpendingScore:    int64(report.Overspending.SpendingScore),
		ScoreLabel:       report.Overspending.RiskLabel,
		RiskLevel:        report.Risk.Level,
		TopCategory:      topCategory(report.Summary.ByCategory),
		AlertCount:       int64(len(report.Overspending.Overspending)),
		Payload:          bigquery.NullJSON{JSONVal: report, Valid: true},
		CreatedTS:        time.Now(),
	}

	if !report.WindowStart.IsZero() {
		row.WindowStart = civil.DateOf(report.WindowStart)
		row.WindowEnd = civil.DateOf(report.WindowEnd)
	} else {
		row.WindowStart = reportDate
		row.WindowEnd = reportDate
	}

	if rendered != "" {
		row.ReportText = bigquery.NullString{StringVal: rendered, Valid: true}
	}

	return row
}

// topCategory picks the category with the highest spend. Ties break
// alphabetically so repeated runs over the same data flatten identically.
func topCategory(byCategory map[string]float64) string {
	var top string
	var topSpend float64
	for category, spend := range byCategory {
		if spend > topSpend || (spend == topSpend && top != "" && category < top) {
			top = category
			topSpend = spend
		}
	}
	return top
}

// ParsedPayload unmarshals the stored report payload. Reads can surface the
// JSON column as a string or as decoded generic values depending on the
// iterator path, so both are handled.
func (r *ReportRow) ParsedPayload() (*analysis.Report, error) {
	if !r.Payload.Valid {
		return nil, fmt.Errorf("ParsedPayload: report row %s has no payload", r.ReportID)
	}

	var raw []byte
	switch v := r.Payload.JSONVal.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("ParsedPayload: re-encode payload: %w", err)
		}
		raw = encoded
	}

	var report analysis.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("ParsedPayload: unmarshal payload: %w", err)
	}

	return &report, nil
}
