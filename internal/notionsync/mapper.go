package notionsync

import (
	"math/big"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/budget-insight/internal/infra/bigquery"
)

const (
	// excerptMaxLen caps the rendered report text pushed into the excerpt
	// property. Notion rejects rich text content above 2000 characters.
	excerptMaxLen = 1900
)

// ReportToNotionProperties converts a report row to Notion page properties.
// The target database needs a "Report Date" title column plus the number,
// select, date, and rich text columns named below; the page title is the
// report date so pages sort and dedupe naturally.
func ReportToNotionProperties(row *bigquery.ReportRow) notionapi.Properties {
	props := notionapi.Properties{
		"Report Date": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.ReportDate.String(),
					},
				},
			},
		},
		"Date": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(time.Date(
						row.ReportDate.Year,
						row.ReportDate.Month,
						row.ReportDate.Day,
						0, 0, 0, 0,
						time.UTC,
					))
					return &d
				}(),
			},
		},
		"Total Spent": notionapi.NumberProperty{
			Number: ratToNumber(row.TotalSpent),
		},
		"Total Income": notionapi.NumberProperty{
			Number: ratToNumber(row.TotalIncome),
		},
		"Net Flow": notionapi.NumberProperty{
			Number: ratToNumber(row.NetFlow),
		},
		"Transactions": notionapi.NumberProperty{
			Number: float64(row.TransactionCount),
		},
		"Spending Score": notionapi.NumberProperty{
			Number: float64(row.SpendingScore),
		},
		"Alert Count": notionapi.NumberProperty{
			Number: float64(row.AlertCount),
		},
	}

	// Score Label
	if row.ScoreLabel != "" {
		props["Score Label"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: row.ScoreLabel,
			},
		}
	}

	// Risk Level
	if row.RiskLevel != "" {
		props["Risk Level"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: row.RiskLevel,
			},
		}
	}

	// Top Category
	if row.TopCategory != "" {
		props["Top Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: row.TopCategory,
			},
		}
	}

	// Run ID - links the page back to the analysis run that produced it
	if row.RunID != "" {
		props["Run ID"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.RunID,
					},
				},
			},
		}
	}

	// Report Excerpt - truncated rendered digest
	if row.ReportText.Valid && row.ReportText.StringVal != "" {
		props["Report Excerpt"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: excerpt(row.ReportText.StringVal),
					},
				},
			},
		}
	}

	// GCS Link - full report in Cloud Storage if it was uploaded
	if row.GCSURI.Valid && row.GCSURI.StringVal != "" {
		props["GCS Link"] = notionapi.URLProperty{
			URL: row.GCSURI.StringVal,
		}
	}

	// Generated At - use CreatedTS
	if !row.CreatedTS.IsZero() {
		props["Generated At"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: (*notionapi.Date)(&row.CreatedTS),
			},
		}
	}

	return props
}

// ratToNumber renders a NUMERIC column as a Notion number. Nil rats map to
// zero rather than panicking on rows from partial reads.
func ratToNumber(r *big.Rat) float64 {
	if r == nil {
		return 0
	}
	f, _ := r.Float64()
	return f
}

// excerpt trims the rendered report to fit a single rich text block,
// cutting at a line boundary where one is close enough to the cap.
func excerpt(text string) string {
	if len(text) <= excerptMaxLen {
		return text
	}

	cut := text[:excerptMaxLen]
	if idx := strings.LastIndexByte(cut, '\n'); idx > excerptMaxLen/2 {
		cut = cut[:idx]
	}
	return cut
}
