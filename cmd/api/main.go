package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/budget-insight/internal/api/handlers"
	"github.com/dvloznov/budget-insight/internal/api/middleware"
	"github.com/dvloznov/budget-insight/internal/config"
	infraBQ "github.com/dvloznov/budget-insight/internal/infra/bigquery"
	"github.com/dvloznov/budget-insight/internal/jobs"
	"github.com/dvloznov/budget-insight/internal/jobs/inmemory"
	"github.com/dvloznov/budget-insight/internal/logger"
	"github.com/dvloznov/budget-insight/internal/pipeline"
)

func main() {
	// Initialize logger
	log := logger.ForService("api")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	apiKey := os.Getenv("API_KEY")
	if apiKey == "" {
		log.Warn().Msg("No API_KEY configured - authentication is disabled")
	}

	if !cfg.Google.SheetsConfigured() {
		log.Warn().Msg("No SHEETS_SPREADSHEET_ID configured - analysis jobs will fail until one is set")
	}

	// Initialize repositories
	ctx := context.Background()

	repo, err := infraBQ.NewBigQueryReportRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create report repository")
	}
	defer repo.Close()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Worker.QueueSize, cfg.Worker.Count, jobStore)

	// Start worker in background to process jobs
	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, log))
	defer cancelWorker()

	// Create job handler for processing analysis jobs
	jobHandler := func(ctx context.Context, job jobs.Job) error {
		analysisJob, ok := job.(*jobs.AnalysisJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		reportDate, err := civil.ParseDate(analysisJob.ReportDate)
		if err != nil {
			return fmt.Errorf("invalid report date %q: %w", analysisJob.ReportDate, err)
		}

		log.Info().
			Str("job_id", analysisJob.JobID).
			Str("report_date", analysisJob.ReportDate).
			Msg("Processing analysis job")

		// Execute the pipeline
		state, err := pipeline.RunDailyAnalysis(ctx, cfg, reportDate, analysisJob.Trigger)
		if state != nil {
			analysisJob.RunID = state.RunID
		}
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", analysisJob.JobID).
				Str("report_date", analysisJob.ReportDate).
				Msg("Pipeline execution failed")
			return err
		}

		log.Info().
			Str("job_id", analysisJob.JobID).
			Str("run_id", analysisJob.RunID).
			Msg("Pipeline execution completed successfully")

		return nil
	}

	// Start job consumer in background
	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	reportsHandler := handlers.NewReportsHandler(repo, jobQueue, log)
	transactionsHandler := handlers.NewTransactionsHandler(repo, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Create router
	mux := http.NewServeMux()

	// Reports endpoints
	mux.HandleFunc("/api/reports", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			reportsHandler.EnqueueReport(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/reports/latest", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			reportsHandler.LatestReport(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Transactions endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.ListTransactions(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Extract job ID from path
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware. RequestID sits above Logger so every request log
	// carries the request ID, and CORS sits above rate limiting and auth so
	// preflight requests always succeed.
	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(
					middleware.RateLimit(cfg.Server.RateLimitPerMinute, cfg.Server.RateLimitBurst)(
						middleware.Auth(apiKey)(mux),
					),
				),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", server.Addr).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel worker context
	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	// Close job queue
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
