package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/dvloznov/budget-insight/internal/api/middleware"
	infra "github.com/dvloznov/budget-insight/internal/infra/bigquery"
	"github.com/dvloznov/budget-insight/internal/jobs"
)

const (
	latestReportCacheKey = "latest-report"

	// Reports change at most once per pipeline run, so a short TTL keeps
	// dashboard polling off BigQuery without serving stale scores for long.
	latestReportCacheTTL = 30 * time.Second
)

// ReportsHandler handles report-related endpoints.
type ReportsHandler struct {
	repo      infra.ReportRepository
	publisher jobs.Publisher
	validate  *validator.Validate
	cache     *cache.Cache
	log       zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(repo infra.ReportRepository, publisher jobs.Publisher, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{
		repo:      repo,
		publisher: publisher,
		validate:  validator.New(),
		cache:     cache.New(latestReportCacheTTL, time.Minute),
		log:       log,
	}
}

// EnqueueReportRequest is the body of POST /api/reports. An empty or absent
// date means today.
type EnqueueReportRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// EnqueueReport handles POST /api/reports
func (h *ReportsHandler) EnqueueReport(w http.ResponseWriter, r *http.Request) {
	var req EnqueueReportRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
		return
	}

	reportDate := req.Date
	if reportDate == "" {
		reportDate = time.Now().UTC().Format("2006-01-02")
	}

	ctx := r.Context()

	job := &jobs.AnalysisJob{
		ReportDate: reportDate,
		Trigger:    "API",
	}

	if err := h.publisher.PublishAnalysis(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue analysis job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue analysis job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("report_date", reportDate).Msg("Analysis job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":      job.JobID,
		"report_date": reportDate,
		"status":      string(job.Status),
	})
}

// LatestReport handles GET /api/reports/latest
func (h *ReportsHandler) LatestReport(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.cache.Get(latestReportCacheKey); ok {
		middleware.WriteJSON(w, http.StatusOK, cached)
		return
	}

	report, err := h.repo.LatestReport(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load latest report")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load latest report")
		return
	}
	if report == nil {
		middleware.WriteError(w, http.StatusNotFound, "No reports have been generated yet")
		return
	}

	h.cache.Set(latestReportCacheKey, report, cache.DefaultExpiration)
	middleware.WriteJSON(w, http.StatusOK, report)
}

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	repo infra.ReportRepository
	log  zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(repo infra.ReportRepository, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		repo: repo,
		log:  log,
	}
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters
	query := r.URL.Query()
	startStr := query.Get("start")
	endStr := query.Get("end")

	var start, end time.Time
	var err error

	if startStr != "" {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid start format, want YYYY-MM-DD")
			return
		}
	} else {
		start = time.Now().UTC().AddDate(0, 0, -30)
	}

	if endStr != "" {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid end format, want YYYY-MM-DD")
			return
		}
	} else {
		end = time.Now().UTC()
	}

	if end.Before(start) {
		middleware.WriteError(w, http.StatusBadRequest, "end must not precede start")
		return
	}

	transactions, err := h.repo.QueryTransactionsByDateRange(ctx, start, end)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}

	if transactions == nil {
		transactions = []*infra.TransactionRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		ReportDate: query.Get("report_date"),
		Status:     jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
