package service

import (
	"errors"
	"testing"

	"docsearch-be/internal/apperr"
	"docsearch-be/internal/dto"

	"github.com/google/uuid"
)

func TestJobTrackerLifecycle(t *testing.T) {
	tracker := NewJobTracker()
	owner := uuid.New()

	job := tracker.Create(owner, "doc-1", 3)
	if job.Status != JobStatusPending {
		t.Errorf("new job status = %s, want pending", job.Status)
	}

	tracker.MarkRunning(job.Id)
	tracker.Progress(job.Id, 2)

	status, err := tracker.Status(owner, job.Id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Status != string(JobStatusInProgress) {
		t.Errorf("status = %s, want in-progress", status.Status)
	}
	if status.ProcessedPages != 2 || status.TotalPages != 3 {
		t.Errorf("progress = %d/%d, want 2/3", status.ProcessedPages, status.TotalPages)
	}

	summary := &dto.IngestSummary{DocumentId: "doc-1", TotalPages: 3, ProcessedPages: 3, TotalChunks: 7}
	tracker.Complete(job.Id, summary)

	// Finished jobs remain readable from the TTL cache.
	status, err = tracker.Status(owner, job.Id)
	if err != nil {
		t.Fatalf("Status after completion: %v", err)
	}
	if status.Status != string(JobStatusCompleted) {
		t.Errorf("status = %s, want completed", status.Status)
	}
	if status.Summary == nil || status.Summary.TotalChunks != 7 {
		t.Errorf("summary not carried: %+v", status.Summary)
	}
}

func TestJobTrackerProgressNeverRegresses(t *testing.T) {
	tracker := NewJobTracker()
	owner := uuid.New()
	job := tracker.Create(owner, "doc-1", 5)

	// Workers finish pages concurrently, so reports can arrive out of order.
	tracker.Progress(job.Id, 3)
	tracker.Progress(job.Id, 1)

	status, err := tracker.Status(owner, job.Id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.ProcessedPages != 3 {
		t.Errorf("ProcessedPages = %d, want 3", status.ProcessedPages)
	}
}

func TestJobTrackerOwnerScoping(t *testing.T) {
	tracker := NewJobTracker()
	owner := uuid.New()
	stranger := uuid.New()

	job := tracker.Create(owner, "doc-1", 1)

	if _, err := tracker.Status(stranger, job.Id); !errors.Is(err, apperr.ErrJobNotFound) {
		t.Errorf("foreign Status err = %v, want ErrJobNotFound", err)
	}
	if err := tracker.Cancel(stranger, job.Id); !errors.Is(err, apperr.ErrJobNotFound) {
		t.Errorf("foreign Cancel err = %v, want ErrJobNotFound", err)
	}

	tracker.Complete(job.Id, &dto.IngestSummary{DocumentId: "doc-1"})
	if _, err := tracker.Status(stranger, job.Id); !errors.Is(err, apperr.ErrJobNotFound) {
		t.Errorf("foreign Status on finished job err = %v, want ErrJobNotFound", err)
	}
}

func TestJobTrackerUnknownJob(t *testing.T) {
	tracker := NewJobTracker()
	if _, err := tracker.Status(uuid.New(), uuid.New()); !errors.Is(err, apperr.ErrJobNotFound) {
		t.Errorf("err = %v, want ErrJobNotFound", err)
	}
}

func TestJobTrackerCancel(t *testing.T) {
	tracker := NewJobTracker()
	owner := uuid.New()
	job := tracker.Create(owner, "doc-1", 2)

	if tracker.CancelRequested(job.Id) {
		t.Error("cancel requested before Cancel was called")
	}
	if err := tracker.Cancel(owner, job.Id); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !tracker.CancelRequested(job.Id) {
		t.Error("cancel request not recorded")
	}

	// A failure after a cancel request lands as cancelled, not failed.
	tracker.Fail(job.Id, apperr.ErrJobCancelled.Error(), false)
	status, err := tracker.Status(owner, job.Id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Status != string(JobStatusCancelled) {
		t.Errorf("status = %s, want cancelled", status.Status)
	}
}

func TestJobTrackerCancelFinishedJob(t *testing.T) {
	tracker := NewJobTracker()
	owner := uuid.New()
	job := tracker.Create(owner, "doc-1", 1)
	tracker.Complete(job.Id, &dto.IngestSummary{DocumentId: "doc-1"})

	if err := tracker.Cancel(owner, job.Id); !errors.Is(err, apperr.ErrJobNotCancellable) {
		t.Errorf("err = %v, want ErrJobNotCancellable", err)
	}
}

func TestJobTrackerFailRetryable(t *testing.T) {
	tracker := NewJobTracker()
	owner := uuid.New()
	job := tracker.Create(owner, "doc-1", 1)

	tracker.Fail(job.Id, "store unreachable", true)
	status, err := tracker.Status(owner, job.Id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Status != string(JobStatusFailed) {
		t.Errorf("status = %s, want failed", status.Status)
	}
	if !status.Retryable {
		t.Error("Retryable not carried")
	}
	if status.Error != "store unreachable" {
		t.Errorf("Error = %q", status.Error)
	}
}
