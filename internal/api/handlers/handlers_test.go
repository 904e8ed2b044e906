package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/budget-insight/internal/api/handlers"
	infra "github.com/dvloznov/budget-insight/internal/infra/bigquery"
	"github.com/dvloznov/budget-insight/internal/jobs"
	"github.com/dvloznov/budget-insight/internal/jobs/inmemory"
	"github.com/dvloznov/budget-insight/internal/logger"
)

// MockReportRepository is a mock implementation of infra.ReportRepository.
type MockReportRepository struct {
	InsertTransactionsFunc           func(ctx context.Context, rows []*infra.TransactionRow) error
	QueryTransactionsByDateRangeFunc func(ctx context.Context, startDate, endDate time.Time) ([]*infra.TransactionRow, error)
	StartAnalysisRunFunc             func(ctx context.Context, reportDate civil.Date, trigger string) (string, error)
	MarkAnalysisRunFailedFunc        func(ctx context.Context, runID string, runErr error)
	MarkAnalysisRunSucceededFunc     func(ctx context.Context, runID string, rowsFetched, rowsDropped int) error
	InsertReportFunc                 func(ctx context.Context, row *infra.ReportRow) error
	LatestReportFunc                 func(ctx context.Context) (*infra.ReportRow, error)
	ListAllReportsFunc               func(ctx context.Context) ([]*infra.ReportRow, error)
}

func (m *MockReportRepository) InsertTransactions(ctx context.Context, rows []*infra.TransactionRow) error {
	if m.InsertTransactionsFunc != nil {
		return m.InsertTransactionsFunc(ctx, rows)
	}
	return nil
}

func (m *MockReportRepository) QueryTransactionsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*infra.TransactionRow, error) {
	if m.QueryTransactionsByDateRangeFunc != nil {
		return m.QueryTransactionsByDateRangeFunc(ctx, startDate, endDate)
	}
	return nil, nil
}

func (m *MockReportRepository) StartAnalysisRun(ctx context.Context, reportDate civil.Date, trigger string) (string, error) {
	if m.StartAnalysisRunFunc != nil {
		return m.StartAnalysisRunFunc(ctx, reportDate, trigger)
	}
	return "run-123", nil
}

func (m *MockReportRepository) MarkAnalysisRunFailed(ctx context.Context, runID string, runErr error) {
	if m.MarkAnalysisRunFailedFunc != nil {
		m.MarkAnalysisRunFailedFunc(ctx, runID, runErr)
	}
}

func (m *MockReportRepository) MarkAnalysisRunSucceeded(ctx context.Context, runID string, rowsFetched, rowsDropped int) error {
	if m.MarkAnalysisRunSucceededFunc != nil {
		return m.MarkAnalysisRunSucceededFunc(ctx, runID, rowsFetched, rowsDropped)
	}
	return nil
}

func (m *MockReportRepository) InsertReport(ctx context.Context, row *infra.ReportRow) error {
	if m.InsertReportFunc != nil {
		return m.InsertReportFunc(ctx, row)
	}
	return nil
}

func (m *MockReportRepository) LatestReport(ctx context.Context) (*infra.ReportRow, error) {
	if m.LatestReportFunc != nil {
		return m.LatestReportFunc(ctx)
	}
	return nil, nil
}

func (m *MockReportRepository) ListAllReports(ctx context.Context) ([]*infra.ReportRow, error) {
	if m.ListAllReportsFunc != nil {
		return m.ListAllReportsFunc(ctx)
	}
	return nil, nil
}

// MockPublisher is a mock implementation of jobs.Publisher. It fills the
// same defaults the real queue would.
type MockPublisher struct {
	PublishAnalysisFunc func(ctx context.Context, job *jobs.AnalysisJob) error
	CloseFunc           func() error
}

func (m *MockPublisher) PublishAnalysis(ctx context.Context, job *jobs.AnalysisJob) error {
	if m.PublishAnalysisFunc != nil {
		return m.PublishAnalysisFunc(ctx, job)
	}
	job.JobID = "job-1"
	job.Status = jobs.JobStatusPending
	return nil
}

func (m *MockPublisher) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ infra.ReportRepository = (*MockReportRepository)(nil)
var _ jobs.Publisher = (*MockPublisher)(nil)

func TestEnqueueReportAcceptsDate(t *testing.T) {
	var published *jobs.AnalysisJob
	publisher := &MockPublisher{
		PublishAnalysisFunc: func(ctx context.Context, job *jobs.AnalysisJob) error {
			job.JobID = "job-1"
			job.Status = jobs.JobStatusPending
			published = job
			return nil
		},
	}
	h := handlers.NewReportsHandler(&MockReportRepository{}, publisher, logger.NewWithWriter(&strings.Builder{}))

	req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(`{"date":"2024-03-15"}`))
	rec := httptest.NewRecorder()
	h.EnqueueReport(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusAccepted, rec.Body.String())
	}
	if published == nil {
		t.Fatal("expected a job to be published")
	}
	if published.ReportDate != "2024-03-15" {
		t.Errorf("job report date = %q", published.ReportDate)
	}
	if published.Trigger != "API" {
		t.Errorf("job trigger = %q", published.Trigger)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["job_id"] != "job-1" {
		t.Errorf("job_id = %q", body["job_id"])
	}
	if body["status"] != string(jobs.JobStatusPending) {
		t.Errorf("status = %q", body["status"])
	}
}

func TestEnqueueReportDefaultsToToday(t *testing.T) {
	var published *jobs.AnalysisJob
	publisher := &MockPublisher{
		PublishAnalysisFunc: func(ctx context.Context, job *jobs.AnalysisJob) error {
			published = job
			return nil
		},
	}
	h := handlers.NewReportsHandler(&MockReportRepository{}, publisher, logger.NewWithWriter(&strings.Builder{}))

	req := httptest.NewRequest(http.MethodPost, "/api/reports", nil)
	rec := httptest.NewRecorder()
	h.EnqueueReport(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if want := time.Now().UTC().Format("2006-01-02"); published.ReportDate != want {
		t.Errorf("report date = %q, want today %q", published.ReportDate, want)
	}
}

func TestEnqueueReportRejectsBadDates(t *testing.T) {
	for _, body := range []string{
		`{"date":"03/15/2024"}`,
		`{"date":"2024-3-15"}`,
		`{"date":"yesterday"}`,
		`{"date":`,
	} {
		t.Run(body, func(t *testing.T) {
			publisher := &MockPublisher{
				PublishAnalysisFunc: func(ctx context.Context, job *jobs.AnalysisJob) error {
					t.Error("nothing should be published for an invalid request")
					return nil
				},
			}
			h := handlers.NewReportsHandler(&MockReportRepository{}, publisher, logger.NewWithWriter(&strings.Builder{}))

			req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(body))
			rec := httptest.NewRecorder()
			h.EnqueueReport(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestEnqueueReportPublishFailure(t *testing.T) {
	publisher := &MockPublisher{
		PublishAnalysisFunc: func(ctx context.Context, job *jobs.AnalysisJob) error {
			return errors.New("queue is closed")
		},
	}
	h := handlers.NewReportsHandler(&MockReportRepository{}, publisher, logger.NewWithWriter(&strings.Builder{}))

	req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(`{"date":"2024-03-15"}`))
	rec := httptest.NewRecorder()
	h.EnqueueReport(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestLatestReportServesAndCaches(t *testing.T) {
	calls := 0
	repo := &MockReportRepository{
		LatestReportFunc: func(ctx context.Context) (*infra.ReportRow, error) {
			calls++
			return &infra.ReportRow{
				ReportID:      "rep-1",
				ReportDate:    civil.Date{Year: 2024, Month: time.March, Day: 15},
				TotalSpent:    big.NewRat(18000, 100),
				SpendingScore: 88,
				ScoreLabel:    "Excellent",
			}, nil
		},
	}
	h := handlers.NewReportsHandler(repo, &MockPublisher{}, logger.NewWithWriter(&strings.Builder{}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.LatestReport(rec, httptest.NewRequest(http.MethodGet, "/api/reports/latest", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var body map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["report_id"] != "rep-1" {
			t.Errorf("report_id = %v", body["report_id"])
		}
		if body["total_spent"] != "180.00" {
			t.Errorf("total_spent = %v, want the fixed-point string", body["total_spent"])
		}
	}

	if calls != 1 {
		t.Errorf("repository queried %d times, the second request should hit the cache", calls)
	}
}

func TestLatestReportNotFound(t *testing.T) {
	h := handlers.NewReportsHandler(&MockReportRepository{}, &MockPublisher{}, logger.NewWithWriter(&strings.Builder{}))

	rec := httptest.NewRecorder()
	h.LatestReport(rec, httptest.NewRequest(http.MethodGet, "/api/reports/latest", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestLatestReportRepositoryFailure(t *testing.T) {
	repo := &MockReportRepository{
		LatestReportFunc: func(ctx context.Context) (*infra.ReportRow, error) {
			return nil, errors.New("bigquery unavailable")
		},
	}
	h := handlers.NewReportsHandler(repo, &MockPublisher{}, logger.NewWithWriter(&strings.Builder{}))

	rec := httptest.NewRecorder()
	h.LatestReport(rec, httptest.NewRequest(http.MethodGet, "/api/reports/latest", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestListTransactionsParsesRange(t *testing.T) {
	var gotStart, gotEnd time.Time
	repo := &MockReportRepository{
		QueryTransactionsByDateRangeFunc: func(ctx context.Context, start, end time.Time) ([]*infra.TransactionRow, error) {
			gotStart, gotEnd = start, end
			return []*infra.TransactionRow{
				{TransactionID: "tx-1", Description: "Coffee", Amount: big.NewRat(-450, 100)},
			}, nil
		},
	}
	h := handlers.NewTransactionsHandler(repo, logger.NewWithWriter(&strings.Builder{}))

	rec := httptest.NewRecorder()
	h.ListTransactions(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?start=2024-03-01&end=2024-03-15", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC); !gotStart.Equal(want) {
		t.Errorf("start = %v, want %v", gotStart, want)
	}
	if want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC); !gotEnd.Equal(want) {
		t.Errorf("end = %v, want %v", gotEnd, want)
	}

	var body struct {
		Transactions []map[string]interface{} `json:"transactions"`
		Count        int                      `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Count != 1 || len(body.Transactions) != 1 {
		t.Fatalf("count = %d, transactions = %d", body.Count, len(body.Transactions))
	}
	if body.Transactions[0]["amount"] != "-4.50" {
		t.Errorf("amount = %v, want the fixed-point string", body.Transactions[0]["amount"])
	}
}

func TestListTransactionsRejectsBadRanges(t *testing.T) {
	h := handlers.NewTransactionsHandler(&MockReportRepository{}, logger.NewWithWriter(&strings.Builder{}))

	for name, target := range map[string]string{
		"bad start":      "/api/transactions?start=March+1",
		"bad end":        "/api/transactions?end=2024-03-99",
		"inverted range": "/api/transactions?start=2024-03-15&end=2024-03-01",
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ListTransactions(rec, httptest.NewRequest(http.MethodGet, target, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestListTransactionsDefaultsToThirtyDays(t *testing.T) {
	var gotStart, gotEnd time.Time
	repo := &MockReportRepository{
		QueryTransactionsByDateRangeFunc: func(ctx context.Context, start, end time.Time) ([]*infra.TransactionRow, error) {
			gotStart, gotEnd = start, end
			return nil, nil
		},
	}
	h := handlers.NewTransactionsHandler(repo, logger.NewWithWriter(&strings.Builder{}))

	rec := httptest.NewRecorder()
	h.ListTransactions(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if window := gotEnd.Sub(gotStart); window < 29*24*time.Hour || window > 31*24*time.Hour {
		t.Errorf("default window = %v, want about 30 days", window)
	}
}

func TestGetJob(t *testing.T) {
	store := inmemory.NewStore()
	ctx := context.Background()
	if err := store.SaveJob(ctx, &jobs.AnalysisJob{
		JobID:      "job-7",
		ReportDate: "2024-03-15",
		Status:     jobs.JobStatusCompleted,
		CreatedAt:  time.Now(),
	}); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}
	h := handlers.NewJobsHandler(store, logger.NewWithWriter(&strings.Builder{}))

	rec := httptest.NewRecorder()
	h.GetJob(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/job-7", nil), "job-7")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body jobs.AnalysisJob
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.JobID != "job-7" || body.Status != jobs.JobStatusCompleted {
		t.Errorf("job = %+v", body)
	}
}

func TestGetJobNotFound(t *testing.T) {
	h := handlers.NewJobsHandler(inmemory.NewStore(), logger.NewWithWriter(&strings.Builder{}))

	rec := httptest.NewRecorder()
	h.GetJob(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/ghost", nil), "ghost")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestListJobsFilters(t *testing.T) {
	store := inmemory.NewStore()
	ctx := context.Background()
	base := time.Date(2024, time.March, 15, 8, 0, 0, 0, time.UTC)
	for i, status := range []jobs.JobStatus{jobs.JobStatusPending, jobs.JobStatusCompleted, jobs.JobStatusPending} {
		if err := store.SaveJob(ctx, &jobs.AnalysisJob{
			JobID:      "job-" + string(rune('a'+i)),
			ReportDate: "2024-03-15",
			Status:     status,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("SaveJob: %v", err)
		}
	}
	h := handlers.NewJobsHandler(store, logger.NewWithWriter(&strings.Builder{}))

	rec := httptest.NewRecorder()
	h.ListJobs(rec, httptest.NewRequest(http.MethodGet, "/api/jobs?status=pending", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Jobs  []jobs.AnalysisJob `json:"jobs"`
		Count int                `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Count != 2 {
		t.Fatalf("count = %d, want 2 pending jobs", body.Count)
	}
	// Newest first.
	if body.Jobs[0].JobID != "job-c" || body.Jobs[1].JobID != "job-a" {
		t.Errorf("jobs = %q, %q, want job-c then job-a", body.Jobs[0].JobID, body.Jobs[1].JobID)
	}
}
