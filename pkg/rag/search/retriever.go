package search

import (
	"context"
	"errors"

	"docsearch-be/internal/pkg/logger"
	"docsearch-be/internal/repository/contract"
	"docsearch-be/pkg/embedding"
	"docsearch-be/pkg/rag/consolidate"

	"github.com/google/uuid"
)

// Config encapsulates search parameters. SourceType, when non-empty,
// restricts hits to one source variant.
type Config struct {
	ScoreThreshold float64
	TopK           int
	SourceType     string
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		ScoreThreshold: 0.0,
		TopK:           10,
	}
}

// Retriever embeds a query and runs the owner-scoped similarity search. It
// holds no per-request state and may be called concurrently.
type Retriever struct {
	generator *embedding.Generator
	chunks    contract.ChunkRepository
	logger    logger.ILogger
}

func NewRetriever(generator *embedding.Generator, chunks contract.ChunkRepository, log logger.ILogger) *Retriever {
	return &Retriever{
		generator: generator,
		chunks:    chunks,
		logger:    log,
	}
}

// Retrieve returns ranked chunk-level hits for the query. A degraded query
// embedding (hash fallback) is logged but still searched: it can at least
// match chunks embedded during the same outage.
func (r *Retriever) Retrieve(ctx context.Context, ownerId uuid.UUID, query string, config Config) ([]consolidate.Hit, error) {
	queryVector, err := r.generator.EmbedQuery(query)
	if err != nil {
		if !errors.Is(err, embedding.ErrBackendUnavailable) {
			return nil, err
		}
		r.logger.Warn("retriever", "query embedded via fallback", map[string]interface{}{
			"error": err.Error(),
		})
	}

	scored, err := r.chunks.SearchSimilar(ctx, ownerId, queryVector, config.TopK, config.ScoreThreshold, config.SourceType)
	if err != nil {
		return nil, err
	}

	hits := make([]consolidate.Hit, len(scored))
	for i, s := range scored {
		hits[i] = consolidate.Hit{Chunk: s.Chunk, Score: s.Similarity}
	}
	return hits, nil
}
