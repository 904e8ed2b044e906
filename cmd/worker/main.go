package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/budget-insight/internal/config"
	"github.com/dvloznov/budget-insight/internal/jobs"
	"github.com/dvloznov/budget-insight/internal/jobs/inmemory"
	"github.com/dvloznov/budget-insight/internal/logger"
	"github.com/dvloznov/budget-insight/internal/pipeline"
)

// dailyRunHourUTC is when the scheduler fires each day. Scheduled runs
// analyze the previous day, so an early-morning trigger covers a complete day.
const dailyRunHourUTC = 6

func main() {
	// Initialize logger
	log := logger.ForService("worker")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize job store and queue
	// In production, this would be replaced with Cloud Tasks or Pub/Sub
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Worker.QueueSize, cfg.Worker.Count, jobStore)

	log.Info().Msg("Starting worker service")

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	// Create job handler that processes analysis jobs
	handler := func(ctx context.Context, job jobs.Job) error {
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
			Str("trigger", analysisJob.Trigger).
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

	// Start consuming jobs
	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	// Enqueue one analysis per day for the last complete day
	go scheduleDailyAnalysis(ctx, jobQueue, cfg.Worker.MaxRetries, log)

	log.Info().Msg("Worker service started, waiting for jobs...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	// Cancel context to stop workers
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	// Close the queue
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker service exited")
}

// scheduleDailyAnalysis enqueues one analysis job per day, each analyzing the
// previous day. The first job fires at the next dailyRunHourUTC.
func scheduleDailyAnalysis(ctx context.Context, publisher jobs.Publisher, maxRetries int, log zerolog.Logger) {
	for {
		next := nextRunTime(time.Now().UTC())
		log.Info().Time("next_run", next).Msg("Scheduled next daily analysis")

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}

		reportDate := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
		job := &jobs.AnalysisJob{
			ReportDate: reportDate,
			Trigger:    "WORKER",
			MaxRetries: maxRetries,
		}

		if err := publisher.PublishAnalysis(ctx, job); err != nil {
			log.Error().Err(err).Str("report_date", reportDate).Msg("Failed to enqueue scheduled analysis")
			continue
		}

		log.Info().
			Str("job_id", job.JobID).
			Str("report_date", reportDate).
			Msg("Enqueued scheduled daily analysis")
	}
}

// nextRunTime returns the next daily trigger strictly after now.
func nextRunTime(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), dailyRunHourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
