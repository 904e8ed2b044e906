// Package sheets retrieves raw transaction rows from a Google Sheets
// spreadsheet. The expected tab layout is one transaction per row with
// columns date, description, amount, category, account.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/dvloznov/budget-insight/internal/config"
	"github.com/dvloznov/budget-insight/internal/logger"
	"github.com/dvloznov/budget-insight/internal/normalize"
)

// Layouts tried when filtering rows by date. Unparseable dates are NOT
// filtered here; they pass through so the normalizer can drop and count them.
var filterLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
	"1/2/2006",
}

// SheetsRowSource reads transaction rows from one spreadsheet range.
type SheetsRowSource struct {
	spreadsheetID string
	readRange     string
}

// NewSheetsRowSource creates a row source for the configured spreadsheet.
func NewSheetsRowSource(cfg config.GoogleConfig) *SheetsRowSource {
	return &SheetsRowSource{
		spreadsheetID: cfg.SpreadsheetID,
		readRange:     cfg.ReadRange,
	}
}

// FetchRows reads the configured range and returns raw rows dated within
// [start, end]. Zero bounds disable that side of the filter. A sheet with no
// data rows yields an empty slice, not an error.
func (s *SheetsRowSource) FetchRows(ctx context.Context, start, end time.Time) ([]normalize.RawRow, error) {
	srv, err := sheets.NewService(ctx, option.WithScopes(sheets.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("FetchRows: create sheets service: %w", err)
	}

	resp, err := srv.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("FetchRows: read range %s: %w", s.readRange, err)
	}

	rows := valuesToRows(resp.Values)
	filtered := filterByDate(rows, start, end)

	logger.FromContext(ctx).Info().
		Str("spreadsheet_id", s.spreadsheetID).
		Str("range", s.readRange).
		Int("rows_fetched", len(rows)).
		Int("rows_in_window", len(filtered)).
		Msg("Fetched rows from Google Sheets")

	return filtered, nil
}

// valuesToRows maps sheet cells onto RawRow by position. Short rows are
// padded with empty cells; extra cells are ignored.
func valuesToRows(values [][]interface{}) []normalize.RawRow {
	rows := make([]normalize.RawRow, 0, len(values))
	for _, value := range values {
		rows = append(rows, normalize.RawRow{
			Date:        cellString(value, 0),
			Description: cellString(value, 1),
			Amount:      cellString(value, 2),
			Category:    cellString(value, 3),
			Account:     cellString(value, 4),
		})
	}
	return rows
}

func cellString(row []interface{}, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

// filterByDate keeps rows whose date parses inside [start, end], plus every
// row whose date does not parse at all.
func filterByDate(rows []normalize.RawRow, start, end time.Time) []normalize.RawRow {
	if start.IsZero() && end.IsZero() {
		return rows
	}

	kept := make([]normalize.RawRow, 0, len(rows))
	for _, row := range rows {
		date, ok := parseLenient(row.Date)
		if !ok {
			kept = append(kept, row)
			continue
		}
		if !start.IsZero() && date.Before(start) {
			continue
		}
		if !end.IsZero() && date.After(end) {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

func parseLenient(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range filterLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
