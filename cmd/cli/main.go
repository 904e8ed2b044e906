package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/dvloznov/budget-insight/internal/budget"
	"github.com/dvloznov/budget-insight/internal/config"
	infraBQ "github.com/dvloznov/budget-insight/internal/infra/bigquery"
	"github.com/dvloznov/budget-insight/internal/logger"
	"github.com/dvloznov/budget-insight/internal/normalize"
	"github.com/dvloznov/budget-insight/internal/notionsync"
	"github.com/dvloznov/budget-insight/internal/pipeline"
	"github.com/dvloznov/budget-insight/internal/sheets"
)

func main() {
	log := logger.ForService("cli")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(log)
	case "fetch":
		runFetch(log)
	case "report":
		runReport(log)
	case "budget":
		runBudget(log)
	case "notion":
		runNotion(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Budget Insight CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze   Run the full analysis pipeline for a date")
	fmt.Println("  fetch     Fetch and normalize transactions without persisting")
	fmt.Println("  report    Print the latest persisted report")
	fmt.Println("  budget    Print the effective budget configuration")
	fmt.Println("  notion    Mirror persisted reports into a Notion database")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// parseReportDate turns an optional --date flag into a report date,
// defaulting to today in UTC.
func parseReportDate(value string) (civil.Date, error) {
	if value == "" {
		return civil.DateOf(time.Now().UTC()), nil
	}
	return civil.ParseDate(value)
}

func runAnalyze(log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	date := fs.String("date", "", "Report date in YYYY-MM-DD format (defaults to today)")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	reportDate, err := parseReportDate(*date)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: --date must be formatted as YYYY-MM-DD")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().Str("report_date", reportDate.String()).Msg("Starting analysis")

	state, err := pipeline.RunDailyAnalysis(ctx, cfg, reportDate, "CLI")
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	fmt.Println(state.Rendered)
	fmt.Println("Analysis completed successfully.")
}

func runFetch(log zerolog.Logger) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	date := fs.String("date", "", "Report date in YYYY-MM-DD format (defaults to today)")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if !cfg.Google.SheetsConfigured() {
		log.Fatal().Msg("Error: SHEETS_SPREADSHEET_ID is required")
	}

	reportDate, err := parseReportDate(*date)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: --date must be formatted as YYYY-MM-DD")
	}

	budgetCfg, err := budget.Load(cfg.BudgetFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load budget configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	start, end := pipeline.AnalysisWindow(reportDate)

	source := sheets.NewSheetsRowSource(cfg.Google)
	raw, err := source.FetchRows(ctx, start, end)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch rows")
	}

	result := normalize.Normalize(raw, budgetCfg)

	fmt.Println("\n=== Fetch Summary ===")
	fmt.Printf("Window:       %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Printf("Rows fetched: %d\n", len(raw))
	fmt.Printf("Transactions: %d\n", len(result.Transactions))
	fmt.Printf("Dropped rows: %d\n", result.Dropped)

	fmt.Printf("\n=== Transactions (%d) ===\n", len(result.Transactions))
	for i, txn := range result.Transactions {
		fmt.Printf("\n%d. %s\n", i+1, txn.Description)
		fmt.Printf("   Date:     %s\n", txn.Date.Format("2006-01-02"))
		fmt.Printf("   Amount:   %.2f\n", txn.Amount)
		fmt.Printf("   Category: %s\n", txn.Category)
		if txn.Account != "" {
			fmt.Printf("   Account:  %s\n", txn.Account)
		}
	}
	fmt.Println()
}

func runReport(log zerolog.Logger) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := infraBQ.NewBigQueryReportRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	row, err := repo.LatestReport(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load latest report")
	}

	if row == nil {
		log.Fatal().Msg("No reports have been generated yet")
	}

	fmt.Println("\n=== Report Details ===")
	fmt.Printf("ID:      %s\n", row.ReportID)
	fmt.Printf("Date:    %s\n", row.ReportDate)
	fmt.Printf("Score:   %d (%s)\n", row.SpendingScore, row.ScoreLabel)
	fmt.Printf("Risk:    %s\n", row.RiskLevel)
	fmt.Printf("Created: %s\n", row.CreatedTS.Format(time.RFC3339))
	if row.GCSURI.Valid {
		fmt.Printf("GCS URI: %s\n", row.GCSURI.StringVal)
	}

	if row.ReportText.Valid {
		fmt.Println()
		fmt.Println(row.ReportText.StringVal)
	}
}

func runBudget(log zerolog.Logger) {
	fs := flag.NewFlagSet("budget", flag.ExitOnError)
	file := fs.String("file", os.Getenv("BUDGET_FILE"), "Budget YAML file (or set BUDGET_FILE env)")
	fs.Parse(os.Args[2:])

	budgetCfg, err := budget.Load(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load budget configuration")
	}

	out, err := yaml.Marshal(budgetCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to render budget configuration")
	}

	fmt.Printf("Total daily budget: %.2f\n\n", budgetCfg.TotalDailyBudget())
	fmt.Print(string(out))
}

func runNotion(log zerolog.Logger) {
	fs := flag.NewFlagSet("notion", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "Log what would change without writing to Notion")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if !cfg.Notion.NotionConfigured() {
		log.Fatal().Msg("Error: NOTION_API_KEY and NOTION_DATABASE_ID are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := infraBQ.NewBigQueryReportRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	client := notionsync.NewNotionClient(cfg.Notion.APIKey)

	log.Info().Bool("dry_run", *dryRun).Msg("Starting Notion sync")

	if err := notionsync.SyncReports(ctx, repo, client, cfg.Notion.DatabaseID, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Notion sync failed")
	}

	fmt.Println("Notion sync completed successfully.")
}
