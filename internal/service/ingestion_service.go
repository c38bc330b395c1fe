package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"docsearch-be/internal/apperr"
	"docsearch-be/internal/config"
	"docsearch-be/internal/dto"
	"docsearch-be/internal/entity"
	"docsearch-be/internal/pkg/logger"
	"docsearch-be/internal/repository/unitofwork"
	"docsearch-be/pkg/chunker"
	"docsearch-be/pkg/embedding"
	"docsearch-be/pkg/textnorm"

	"github.com/google/uuid"
)

type IIngestionService interface {
	// Submit validates the request, registers a job and publishes it for
	// asynchronous processing.
	Submit(ctx context.Context, ownerId uuid.UUID, request *dto.IngestDocumentRequest) (*dto.SubmitIngestResponse, error)

	// IngestSync runs the full pipeline inline and returns the summary.
	IngestSync(ctx context.Context, ownerId uuid.UUID, request *dto.IngestDocumentRequest) (*dto.IngestSummary, error)

	// ProcessJob executes a previously submitted job. Called by the consumer.
	ProcessJob(ctx context.Context, payload *dto.PublishIngestDocumentMessage) error

	DeleteDocument(ctx context.Context, ownerId uuid.UUID, documentId string) error
	JobStatus(ownerId uuid.UUID, jobId uuid.UUID) (*dto.JobStatusResponse, error)
	CancelJob(ownerId uuid.UUID, jobId uuid.UUID) error
}

type ingestionService struct {
	uowFactory unitofwork.RepositoryFactory
	generator  *embedding.Generator
	publisher  IPublisherService
	tracker    IJobTracker
	retrieval  config.RetrievalConfig
	logger     logger.ILogger
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	generator *embedding.Generator,
	publisher IPublisherService,
	tracker IJobTracker,
	retrieval config.RetrievalConfig,
	log logger.ILogger,
) IIngestionService {
	return &ingestionService{
		uowFactory: uowFactory,
		generator:  generator,
		publisher:  publisher,
		tracker:    tracker,
		retrieval:  retrieval,
		logger:     log,
	}
}

func (s *ingestionService) Submit(ctx context.Context, ownerId uuid.UUID, request *dto.IngestDocumentRequest) (*dto.SubmitIngestResponse, error) {
	if err := s.validate(request); err != nil {
		return nil, err
	}

	job := s.tracker.Create(ownerId, request.DocumentId, len(request.Pages))

	payload := dto.PublishIngestDocumentMessage{
		JobId:   job.Id,
		OwnerId: ownerId,
		Request: *request,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, payloadJson); err != nil {
		s.tracker.Fail(job.Id, "failed to enqueue ingestion", true)
		return nil, err
	}

	s.logger.Info("ingestion", "job submitted", map[string]interface{}{
		"job_id":      job.Id.String(),
		"document_id": request.DocumentId,
		"pages":       len(request.Pages),
	})
	return &dto.SubmitIngestResponse{JobId: job.Id}, nil
}

func (s *ingestionService) IngestSync(ctx context.Context, ownerId uuid.UUID, request *dto.IngestDocumentRequest) (*dto.IngestSummary, error) {
	if err := s.validate(request); err != nil {
		return nil, err
	}
	return s.runPipeline(ctx, ownerId, request, uuid.Nil)
}

func (s *ingestionService) ProcessJob(ctx context.Context, payload *dto.PublishIngestDocumentMessage) error {
	s.tracker.MarkRunning(payload.JobId)

	summary, err := s.runPipeline(ctx, payload.OwnerId, &payload.Request, payload.JobId)
	if err != nil {
		retryable := !isTerminal(err)
		s.tracker.Fail(payload.JobId, err.Error(), retryable)
		return err
	}
	s.tracker.Complete(payload.JobId, summary)
	return nil
}

func (s *ingestionService) DeleteDocument(ctx context.Context, ownerId uuid.UUID, documentId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChunkRepository().DeleteByDocumentId(ctx, ownerId, documentId); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *ingestionService) JobStatus(ownerId uuid.UUID, jobId uuid.UUID) (*dto.JobStatusResponse, error) {
	return s.tracker.Status(ownerId, jobId)
}

func (s *ingestionService) CancelJob(ownerId uuid.UUID, jobId uuid.UUID) error {
	return s.tracker.Cancel(ownerId, jobId)
}

// validate applies the pre-flight checks that reject a request before any
// work is queued: size budget, source type, presence of text.
func (s *ingestionService) validate(request *dto.IngestDocumentRequest) error {
	if !entity.SourceType(request.SourceType).Valid() {
		return apperr.ErrInvalidSourceType
	}

	totalChars := 0
	hasText := false
	for _, page := range request.Pages {
		totalChars += len(page.Text)
		if len(page.Text) > 0 {
			hasText = true
		}
	}
	if !hasText {
		return apperr.ErrEmptyDocument
	}
	if totalChars > s.retrieval.MaxDocumentChars {
		return apperr.ErrDocumentTooLarge
	}
	return nil
}

// pageResult collects one page's chunks, indexed so the merged order matches
// the request's page order regardless of worker completion order.
type pageResult struct {
	chunks []chunker.Chunk
	err    error
}

// runPipeline is the shared ingestion path: normalize and chunk pages in a
// bounded worker pool, embed the whole document as one batch, then replace
// the document's stored chunks transactionally. jobId is uuid.Nil for the
// synchronous path; cancellation is only checked for tracked jobs, between
// stages.
func (s *ingestionService) runPipeline(ctx context.Context, ownerId uuid.UUID, request *dto.IngestDocumentRequest, jobId uuid.UUID) (*dto.IngestSummary, error) {
	summary := &dto.IngestSummary{
		DocumentId: request.DocumentId,
		TotalPages: len(request.Pages),
	}

	results := make([]pageResult, len(request.Pages))
	var wg sync.WaitGroup
	var done atomic.Int32
	sem := make(chan struct{}, s.workerCount())

	for i := range request.Pages {
		if s.cancelled(jobId) {
			return nil, apperr.ErrJobCancelled
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = s.processPage(request.Pages[i].Text)
			// Pollers see the counter advance as each page finishes, not one
			// jump after the whole chunking phase.
			if jobId != uuid.Nil {
				s.tracker.Progress(jobId, int(done.Add(1)))
			}
		}(i)
	}
	wg.Wait()

	if s.cancelled(jobId) {
		return nil, apperr.ErrJobCancelled
	}

	// Merge page results in request order. A failed page becomes a PageError
	// and its siblings still ingest.
	var chunks []*entity.Chunk
	var texts []string
	globalIndex := 0
	for i, res := range results {
		pageNo := pageNumberOf(request.Pages[i], i)
		if res.err != nil {
			summary.PageErrors = append(summary.PageErrors, dto.PageError{
				PageNumber: pageNo,
				Error:      res.err.Error(),
			})
			continue
		}
		for _, c := range res.chunks {
			chunk := &entity.Chunk{
				Id:           entity.NewChunkId(ownerId, request.DocumentId, idPageNumber(request.Pages[i], i), c.Index),
				OwnerId:      ownerId,
				DocumentId:   request.DocumentId,
				Text:         c.Text,
				SourceType:   entity.SourceType(request.SourceType),
				SourceLink:   request.SourceLink,
				PageNumber:   request.Pages[i].PageNumber,
				SectionTitle: c.SectionTitle,
				ChunkIndex:   globalIndex,
				ChunkSize:    len([]rune(c.Text)),
			}
			chunks = append(chunks, chunk)
			texts = append(texts, c.Text)
			globalIndex++
		}
		summary.ProcessedPages++
	}

	if len(chunks) == 0 {
		if len(summary.PageErrors) > 0 {
			return nil, fmt.Errorf("every page failed: %s", summary.PageErrors[0].Error)
		}
		return nil, apperr.ErrEmptyDocument
	}

	if s.cancelled(jobId) {
		return nil, apperr.ErrJobCancelled
	}

	// One batched provider call per document.
	batch := s.generator.Embed(texts, embedding.TaskTypeDocument)
	for i, v := range batch.Vectors {
		chunks[i].Embedding = v.Values
		chunks[i].Degraded = v.Degraded
	}
	summary.TotalChunks = len(chunks)
	summary.DegradedChunks = batch.DegradedCount
	if batch.Reason != nil {
		summary.Warnings = append(summary.Warnings, batch.Reason.Error())
		s.logger.Warn("ingestion", "embedding backend degraded", map[string]interface{}{
			"document_id": request.DocumentId,
			"degraded":    batch.DegradedCount,
			"reason":      batch.Reason.Error(),
		})
	}

	if s.cancelled(jobId) {
		return nil, apperr.ErrJobCancelled
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// Full re-sync: stale chunks from a previous, longer version of the
	// document must not survive.
	if err := uow.ChunkRepository().DeleteByDocumentId(ctx, ownerId, request.DocumentId); err != nil {
		return nil, err
	}
	if err := uow.ChunkRepository().UpsertBulk(ctx, ownerId, chunks); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("ingestion", "document ingested", map[string]interface{}{
		"document_id":     request.DocumentId,
		"total_chunks":    summary.TotalChunks,
		"degraded_chunks": summary.DegradedChunks,
		"processed_pages": summary.ProcessedPages,
	})
	return summary, nil
}

// processPage normalizes and chunks one page. Pages whose text is pure
// boilerplate normalize to empty and contribute no chunks without failing.
func (s *ingestionService) processPage(text string) pageResult {
	normalized := textnorm.Normalize(text)
	if normalized == "" {
		return pageResult{}
	}
	return pageResult{
		chunks: chunker.Split(normalized, s.retrieval.MaxChunkSize, s.retrieval.ChunkOverlap),
	}
}

func (s *ingestionService) workerCount() int {
	if s.retrieval.WorkerPoolSize < 1 {
		return 1
	}
	return s.retrieval.WorkerPoolSize
}

func (s *ingestionService) cancelled(jobId uuid.UUID) bool {
	return jobId != uuid.Nil && s.tracker.CancelRequested(jobId)
}

// pageNumberOf is the page number used for reporting: the declared number
// when present, else the 1-based position.
func pageNumberOf(page dto.IngestPage, index int) int {
	if page.PageNumber != nil {
		return *page.PageNumber
	}
	return index + 1
}

// idPageNumber feeds the deterministic chunk id. Unpaginated pages use the
// negated 1-based position: negative keys never collide with declared page
// numbers, and distinct unpaginated pages never collide with each other.
func idPageNumber(page dto.IngestPage, index int) int {
	if page.PageNumber != nil {
		return *page.PageNumber
	}
	return -(index + 1)
}

// isTerminal reports whether a pipeline error would fail again on retry.
func isTerminal(err error) bool {
	return errors.Is(err, apperr.ErrEmptyDocument) ||
		errors.Is(err, apperr.ErrDocumentTooLarge) ||
		errors.Is(err, apperr.ErrInvalidSourceType) ||
		errors.Is(err, apperr.ErrJobCancelled)
}
