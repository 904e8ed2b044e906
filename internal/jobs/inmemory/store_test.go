package inmemory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/budget-insight/internal/jobs"
)

func storedJob(id, date string, status jobs.JobStatus, createdAt time.Time) *jobs.AnalysisJob {
	return &jobs.AnalysisJob{
		JobID:      id,
		ReportDate: date,
		Trigger:    "API",
		Status:     status,
		CreatedAt:  createdAt,
	}
}

func TestSaveJobRequiresID(t *testing.T) {
	store := NewStore()

	err := store.SaveJob(context.Background(), &jobs.AnalysisJob{ReportDate: "2024-03-15"})
	if err == nil {
		t.Fatal("expected error for job without ID")
	}
}

func TestGetJobReturnsCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	if err := store.SaveJob(ctx, storedJob("job-1", "2024-03-15", jobs.JobStatusPending, base)); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}

	// Mutating the returned job must not affect the stored one
	got.Status = jobs.JobStatusFailed

	again, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if again.Status != jobs.JobStatusPending {
		t.Errorf("stored job mutated through returned copy: %s", again.Status)
	}
}

func TestGetJobMissing(t *testing.T) {
	store := NewStore()

	_, err := store.GetJob(context.Background(), "nope")
	if err == nil || !strings.Contains(err.Error(), "job not found") {
		t.Errorf("err = %v, want job not found", err)
	}
}

func TestListJobsFiltersAndOrders(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	seed := []*jobs.AnalysisJob{
		storedJob("job-1", "2024-03-14", jobs.JobStatusCompleted, base),
		storedJob("job-2", "2024-03-15", jobs.JobStatusPending, base.Add(1*time.Minute)),
		storedJob("job-3", "2024-03-15", jobs.JobStatusFailed, base.Add(2*time.Minute)),
		storedJob("job-4", "2024-03-16", jobs.JobStatusPending, base.Add(3*time.Minute)),
	}
	for _, job := range seed {
		if err := store.SaveJob(ctx, job); err != nil {
			t.Fatalf("SaveJob(%s): %v", job.JobID, err)
		}
	}

	t.Run("no filter returns newest first", func(t *testing.T) {
		got, err := store.ListJobs(ctx, jobs.JobFilter{})
		if err != nil {
			t.Fatalf("ListJobs: %v", err)
		}
		if len(got) != 4 {
			t.Fatalf("len = %d, want 4", len(got))
		}
		for i, want := range []string{"job-4", "job-3", "job-2", "job-1"} {
			if got[i].JobID != want {
				t.Errorf("position %d = %s, want %s", i, got[i].JobID, want)
			}
		}
	})

	t.Run("filter by status", func(t *testing.T) {
		got, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusPending})
		if err != nil {
			t.Fatalf("ListJobs: %v", err)
		}
		if len(got) != 2 || got[0].JobID != "job-4" || got[1].JobID != "job-2" {
			t.Errorf("pending jobs = %v", jobIDs(got))
		}
	})

	t.Run("filter by report date", func(t *testing.T) {
		got, err := store.ListJobs(ctx, jobs.JobFilter{ReportDate: "2024-03-15"})
		if err != nil {
			t.Fatalf("ListJobs: %v", err)
		}
		if len(got) != 2 || got[0].JobID != "job-3" || got[1].JobID != "job-2" {
			t.Errorf("2024-03-15 jobs = %v", jobIDs(got))
		}
	})

	t.Run("limit and offset", func(t *testing.T) {
		got, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 2, Offset: 1})
		if err != nil {
			t.Fatalf("ListJobs: %v", err)
		}
		if len(got) != 2 || got[0].JobID != "job-3" || got[1].JobID != "job-2" {
			t.Errorf("page = %v", jobIDs(got))
		}
	})

	t.Run("offset past the end", func(t *testing.T) {
		got, err := store.ListJobs(ctx, jobs.JobFilter{Offset: 10})
		if err != nil {
			t.Fatalf("ListJobs: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})
}

func jobIDs(list []*jobs.AnalysisJob) []string {
	ids := make([]string, len(list))
	for i, job := range list {
		ids[i] = job.JobID
	}
	return ids
}

func TestUpdateJobStatus(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	job := storedJob("job-1", "2024-03-15", jobs.JobStatusRunning, time.Now())
	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}

	if err := store.UpdateJobStatus(ctx, "job-1", jobs.JobStatusFailed, "fetch blew up"); err != nil {
		t.Fatalf("UpdateJobStatus: %v", err)
	}

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != jobs.JobStatusFailed || got.Error != "fetch blew up" {
		t.Errorf("job after update: %s / %q", got.Status, got.Error)
	}

	if err := store.UpdateJobStatus(ctx, "ghost", jobs.JobStatusFailed, ""); err == nil {
		t.Error("expected error for unknown job")
	}
}
