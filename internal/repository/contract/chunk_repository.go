package contract

import (
	"context"
	"errors"

	"docsearch-be/internal/entity"

	"github.com/google/uuid"
)

// ErrDimensionMismatch is returned when a write carries a vector whose length
// differs from the store's configured embedding dimension.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// DefaultRepairBatch bounds FindDegraded batches when the caller passes no
// limit.
const DefaultRepairBatch = 100

// ChunkRepository owns chunk storage exclusively. Every operation is scoped
// to a single owner; no call path may return another owner's chunks.
type ChunkRepository interface {
	// UpsertBulk writes chunks keyed by their id. An existing id is replaced
	// in place (text, embedding, metadata; updated_at bumps, created_at is
	// untouched). Rejects vectors whose length differs from the configured
	// dimension.
	UpsertBulk(ctx context.Context, ownerId uuid.UUID, chunks []*entity.Chunk) error

	// SearchSimilar returns up to limit chunks of the given owner ranked by
	// cosine similarity to the query vector, descending; ties broken by more
	// recent created_at. Results below threshold are dropped. A non-empty
	// sourceType restricts results to that source variant.
	SearchSimilar(ctx context.Context, ownerId uuid.UUID, queryVector []float32, limit int, threshold float64, sourceType string) ([]*entity.ScoredChunk, error)

	// DeleteByDocumentId removes every chunk of one document.
	DeleteByDocumentId(ctx context.Context, ownerId uuid.UUID, documentId string) error

	// DeleteAllByOwnerId removes every chunk of an owner (account removal).
	DeleteAllByOwnerId(ctx context.Context, ownerId uuid.UUID) error

	// FindByDocumentId returns a document's chunks ordered by chunk_index.
	FindByDocumentId(ctx context.Context, ownerId uuid.UUID, documentId string) ([]*entity.Chunk, error)

	// FindDegraded returns one batch of chunks flagged for a re-embed repair
	// pass, oldest first. limit <= 0 falls back to a default batch size.
	FindDegraded(ctx context.Context, ownerId uuid.UUID, limit, offset int) ([]*entity.Chunk, error)

	Count(ctx context.Context, ownerId uuid.UUID) (int64, error)
}
