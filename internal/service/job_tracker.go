package service

import (
	"sync"
	"time"

	"docsearch-be/internal/apperr"
	"docsearch-be/internal/dto"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// IngestJob is the tracked state of one asynchronous ingestion.
type IngestJob struct {
	Id             uuid.UUID
	OwnerId        uuid.UUID
	DocumentId     string
	Status         JobStatus
	ProcessedPages int
	TotalPages     int
	Summary        *dto.IngestSummary
	Error          string
	Retryable      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time

	cancelRequested bool
}

type IJobTracker interface {
	Create(ownerId uuid.UUID, documentId string, totalPages int) *IngestJob
	MarkRunning(jobId uuid.UUID)
	Progress(jobId uuid.UUID, processedPages int)
	Complete(jobId uuid.UUID, summary *dto.IngestSummary)
	Fail(jobId uuid.UUID, reason string, retryable bool)
	Cancel(ownerId uuid.UUID, jobId uuid.UUID) error
	CancelRequested(jobId uuid.UUID) bool
	Status(ownerId uuid.UUID, jobId uuid.UUID) (*dto.JobStatusResponse, error)
}

// jobTracker keeps active jobs in a locked map and parks finished ones in a
// TTL cache so pollers can still read the outcome for a while without the
// tracker growing without bound.
type jobTracker struct {
	mu       sync.RWMutex
	active   map[uuid.UUID]*IngestJob
	finished *gocache.Cache
}

const (
	finishedJobTTL     = 1 * time.Hour
	finishedJobCleanup = 10 * time.Minute
)

func NewJobTracker() IJobTracker {
	return &jobTracker{
		active:   make(map[uuid.UUID]*IngestJob),
		finished: gocache.New(finishedJobTTL, finishedJobCleanup),
	}
}

func (t *jobTracker) Create(ownerId uuid.UUID, documentId string, totalPages int) *IngestJob {
	job := &IngestJob{
		Id:         uuid.New(),
		OwnerId:    ownerId,
		DocumentId: documentId,
		Status:     JobStatusPending,
		TotalPages: totalPages,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	t.mu.Lock()
	t.active[job.Id] = job
	t.mu.Unlock()

	snapshot := *job
	return &snapshot
}

func (t *jobTracker) MarkRunning(jobId uuid.UUID) {
	t.mutate(jobId, func(job *IngestJob) {
		job.Status = JobStatusInProgress
	})
}

// Progress records page completion. Concurrent workers may report out of
// order; the counter never moves backwards.
func (t *jobTracker) Progress(jobId uuid.UUID, processedPages int) {
	t.mutate(jobId, func(job *IngestJob) {
		if processedPages > job.ProcessedPages {
			job.ProcessedPages = processedPages
		}
	})
}

func (t *jobTracker) Complete(jobId uuid.UUID, summary *dto.IngestSummary) {
	t.finish(jobId, func(job *IngestJob) {
		job.Status = JobStatusCompleted
		job.Summary = summary
		job.ProcessedPages = summary.ProcessedPages
	})
}

func (t *jobTracker) Fail(jobId uuid.UUID, reason string, retryable bool) {
	t.finish(jobId, func(job *IngestJob) {
		if job.cancelRequested {
			job.Status = JobStatusCancelled
		} else {
			job.Status = JobStatusFailed
		}
		job.Error = reason
		job.Retryable = retryable
	})
}

func (t *jobTracker) Cancel(ownerId uuid.UUID, jobId uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.active[jobId]
	if !ok || job.OwnerId != ownerId {
		if _, found := t.lookupFinished(ownerId, jobId); found {
			return apperr.ErrJobNotCancellable
		}
		return apperr.ErrJobNotFound
	}
	job.cancelRequested = true
	job.UpdatedAt = time.Now()
	return nil
}

func (t *jobTracker) CancelRequested(jobId uuid.UUID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.active[jobId]
	return ok && job.cancelRequested
}

func (t *jobTracker) Status(ownerId uuid.UUID, jobId uuid.UUID) (*dto.JobStatusResponse, error) {
	t.mu.RLock()
	job, ok := t.active[jobId]
	if ok && job.OwnerId == ownerId {
		res := toStatusResponse(job)
		t.mu.RUnlock()
		return res, nil
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if job, found := t.lookupFinished(ownerId, jobId); found {
		return toStatusResponse(job), nil
	}
	return nil, apperr.ErrJobNotFound
}

func (t *jobTracker) mutate(jobId uuid.UUID, fn func(*IngestJob)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if job, ok := t.active[jobId]; ok {
		fn(job)
		job.UpdatedAt = time.Now()
	}
}

// finish applies a terminal transition and moves the job to the TTL cache.
func (t *jobTracker) finish(jobId uuid.UUID, fn func(*IngestJob)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.active[jobId]
	if !ok {
		return
	}
	fn(job)
	job.UpdatedAt = time.Now()
	delete(t.active, jobId)
	t.finished.SetDefault(jobId.String(), job)
}

func (t *jobTracker) lookupFinished(ownerId uuid.UUID, jobId uuid.UUID) (*IngestJob, bool) {
	v, found := t.finished.Get(jobId.String())
	if !found {
		return nil, false
	}
	job := v.(*IngestJob)
	if job.OwnerId != ownerId {
		return nil, false
	}
	return job, true
}

func toStatusResponse(job *IngestJob) *dto.JobStatusResponse {
	return &dto.JobStatusResponse{
		JobId:          job.Id,
		DocumentId:     job.DocumentId,
		Status:         string(job.Status),
		ProcessedPages: job.ProcessedPages,
		TotalPages:     job.TotalPages,
		Summary:        job.Summary,
		Error:          job.Error,
		Retryable:      job.Retryable,
	}
}
