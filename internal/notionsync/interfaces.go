package notionsync

import (
	"context"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/budget-insight/internal/infra/bigquery"
)

// NotionService defines the interface for interacting with Notion API.
// This interface enables mocking and testing of Notion operations.
type NotionService interface {
	// CreatePage creates a new page in a Notion database with the given properties.
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)

	// UpdatePage updates an existing Notion page with the given properties.
	UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)

	// QueryDatabase queries a Notion database with the given filter.
	QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)

	// DeletePage archives a Notion page. Notion has no hard delete, archiving
	// removes the page from the database view.
	DeletePage(ctx context.Context, pageID string) error
}

// ReportLister is the single repository operation the history sync needs.
// The BigQuery report repository satisfies it.
type ReportLister interface {
	ListAllReports(ctx context.Context) ([]*bigquery.ReportRow, error)
}
