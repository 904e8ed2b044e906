package notionsync

import (
	"context"
	"fmt"
	"sort"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/budget-insight/internal/infra/bigquery"
	"github.com/dvloznov/budget-insight/internal/logger"
)

// NotionExporter pushes daily report pages into a Notion database. The zero
// value is not usable, construct it with NewNotionExporter.
type NotionExporter struct {
	client     NotionService
	databaseID string
	dryRun     bool
}

// NewNotionExporter creates an exporter bound to one reports database.
func NewNotionExporter(client NotionService, databaseID string, dryRun bool) *NotionExporter {
	return &NotionExporter{
		client:     client,
		databaseID: databaseID,
		dryRun:     dryRun,
	}
}

// ExportReport creates or updates the Notion page for a single report row.
func (e *NotionExporter) ExportReport(ctx context.Context, row *bigquery.ReportRow) error {
	return SyncReport(ctx, e.client, e.databaseID, row, e.dryRun)
}

// SyncReport creates or updates the Notion page for a single daily report.
// Pages are keyed by the report date in the title, so re-running a day's
// analysis overwrites the existing page instead of stacking duplicates.
func SyncReport(ctx context.Context, notionClient NotionService, notionDBID string, row *bigquery.ReportRow, dryRun bool) error {
	log := logger.FromContext(ctx)
	reportDate := row.ReportDate.String()

	log.Info().
		Str("report_date", reportDate).
		Bool("dry_run", dryRun).
		Msg("Starting report sync to Notion")

	// Query existing pages to find one for this date
	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("failed to query Notion pages: %w", err)
	}

	var existingPageID string
	for _, page := range notionPages {
		if extractReportDate(page) == reportDate {
			existingPageID = string(page.ID)
			break
		}
	}

	if dryRun {
		if existingPageID != "" {
			log.Info().
				Str("report_date", reportDate).
				Str("page_id", existingPageID).
				Msg("[DRY RUN] Would update existing Notion page")
		} else {
			log.Info().
				Str("report_date", reportDate).
				Msg("[DRY RUN] Would create new Notion page")
		}
		return nil
	}

	props := ReportToNotionProperties(row)

	if existingPageID != "" {
		if _, err := notionClient.UpdatePage(ctx, existingPageID, props); err != nil {
			return fmt.Errorf("failed to update Notion page: %w", err)
		}
		log.Info().
			Str("report_date", reportDate).
			Str("page_id", existingPageID).
			Msg("Updated Notion report page")
		return nil
	}

	page, err := notionClient.CreatePage(ctx, notionDBID, props)
	if err != nil {
		return fmt.Errorf("failed to create Notion page: %w", err)
	}

	log.Info().
		Str("report_date", reportDate).
		Str("page_id", string(page.ID)).
		Msg("Created Notion report page")

	return nil
}

// SyncReports mirrors the full report history into Notion. This function:
// 1. Queries all persisted reports and keeps the newest row per date
// 2. Deletes stale pages (dates with no matching report, or no title at all)
// 3. Creates/updates one page per report date
func SyncReports(ctx context.Context, repo ReportLister, notionClient NotionService, notionDBID string, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Bool("dry_run", dryRun).
		Msg("Starting report history sync to Notion")

	// Query all reports from BigQuery
	reports, err := repo.ListAllReports(ctx)
	if err != nil {
		return fmt.Errorf("failed to query reports: %w", err)
	}

	log.Info().Int("report_count", len(reports)).Msg("Retrieved reports from BigQuery")

	// Rows arrive ordered by created_ts, so the newest row per date wins.
	latestByDate := make(map[string]*bigquery.ReportRow)
	for _, row := range reports {
		latestByDate[row.ReportDate.String()] = row
	}

	// Query all existing report pages from Notion
	log.Info().Msg("Querying existing report pages from Notion")
	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("failed to query Notion pages: %w", err)
	}

	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	// Build map of existing report dates in Notion
	existingPageByDate := make(map[string]string)
	for _, page := range notionPages {
		date := extractReportDate(page)
		if date != "" {
			existingPageByDate[date] = string(page.ID)
		}
	}

	// Delete stale pages (no title from an old sync, or no matching report)
	var deleted int
	for _, page := range notionPages {
		date := extractReportDate(page)

		if date == "" || latestByDate[date] == nil {
			if dryRun {
				log.Info().
					Str("report_date", date).
					Str("page_id", string(page.ID)).
					Msg("[DRY RUN] Would delete stale Notion page")
				deleted++
			} else {
				if err := notionClient.DeletePage(ctx, string(page.ID)); err != nil {
					log.Warn().
						Err(err).
						Str("report_date", date).
						Str("page_id", string(page.ID)).
						Msg("Failed to delete stale Notion page")
					continue
				}
				log.Info().
					Str("report_date", date).
					Str("page_id", string(page.ID)).
					Msg("Deleted stale Notion page")
				deleted++
			}
		}
	}

	if deleted > 0 {
		log.Info().Int("deleted", deleted).Msg("Deleted stale report pages from Notion")
	}

	// Sync reports in date order
	dates := make([]string, 0, len(latestByDate))
	for date := range latestByDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var created, updated int
	for _, date := range dates {
		row := latestByDate[date]
		existingPageID := existingPageByDate[date]

		if dryRun {
			if existingPageID != "" {
				log.Info().
					Str("report_date", date).
					Str("page_id", existingPageID).
					Msg("[DRY RUN] Would update existing Notion page")
				updated++
			} else {
				log.Info().
					Str("report_date", date).
					Msg("[DRY RUN] Would create new Notion page")
				created++
			}
			continue
		}

		props := ReportToNotionProperties(row)

		if existingPageID != "" {
			// Update existing page
			_, err := notionClient.UpdatePage(ctx, existingPageID, props)
			if err != nil {
				log.Warn().
					Err(err).
					Str("report_date", date).
					Str("page_id", existingPageID).
					Msg("Failed to update Notion page")
				// Continue processing other reports
				continue
			}
			log.Info().
				Str("report_date", date).
				Str("page_id", existingPageID).
				Msg("Updated Notion report page")
			updated++
		} else {
			// Create new page
			page, err := notionClient.CreatePage(ctx, notionDBID, props)
			if err != nil {
				log.Warn().
					Err(err).
					Str("report_date", date).
					Msg("Failed to create Notion page")
				// Continue processing other reports
				continue
			}
			log.Info().
				Str("report_date", date).
				Str("page_id", string(page.ID)).
				Msg("Created Notion report page")
			created++
		}
	}

	log.Info().
		Int("deleted", deleted).
		Int("created", created).
		Int("updated", updated).
		Int("total", len(dates)).
		Msg("Report history sync completed")

	return nil
}

// queryAllNotionPages queries all pages from a Notion database and returns them.
// Handles pagination automatically.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}

		// Only set StartCursor if we have a cursor value
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}

// extractReportDate extracts the report date from a Notion page's title.
// Returns empty string if not found.
func extractReportDate(page notionapi.Page) string {
	if prop, ok := page.Properties["Report Date"]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if len(title.Title) > 0 {
				return title.Title[0].PlainText
			}
		}
	}
	return ""
}
