package apperr

import "errors"

// Domain errors shared between services and the HTTP error middleware.
// Non-fatal pipeline conditions (degraded normalization, fallback
// embeddings) are by design NOT errors here: they flow through summaries
// and warnings instead of aborting ingestion.
var (
	// ErrEmptyDocument rejects an ingestion request with no usable text.
	// Nothing is written.
	ErrEmptyDocument = errors.New("document has no text content")

	// ErrDocumentTooLarge rejects an ingestion request exceeding the
	// configured character budget. Nothing is written.
	ErrDocumentTooLarge = errors.New("document exceeds the maximum size")

	// ErrInvalidSourceType rejects a source_type outside the closed set.
	ErrInvalidSourceType = errors.New("unknown source type")

	// ErrJobNotFound covers expired, foreign and never-created job ids
	// alike, so a job id cannot be probed across owners.
	ErrJobNotFound = errors.New("ingestion job not found")

	// ErrJobNotCancellable means the job already finished.
	ErrJobNotCancellable = errors.New("ingestion job already finished")

	// ErrJobCancelled is the failure reason of a job stopped between pages
	// on request.
	ErrJobCancelled = errors.New("ingestion job cancelled")
)
