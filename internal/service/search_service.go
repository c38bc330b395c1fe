package service

import (
	"context"

	"docsearch-be/internal/apperr"
	"docsearch-be/internal/config"
	"docsearch-be/internal/dto"
	"docsearch-be/internal/entity"
	"docsearch-be/internal/pkg/logger"
	"docsearch-be/pkg/rag/consolidate"
	"docsearch-be/pkg/rag/search"

	"github.com/google/uuid"
)

type ISearchService interface {
	// Search runs owner-scoped retrieval. sourceType is optional; when set it
	// must be a valid source variant and restricts results to it.
	Search(ctx context.Context, ownerId uuid.UUID, query string, topK int, sourceType string) (*dto.SearchResponse, error)
}

type searchService struct {
	retriever *search.Retriever
	retrieval config.RetrievalConfig
	logger    logger.ILogger
}

func NewSearchService(retriever *search.Retriever, retrieval config.RetrievalConfig, log logger.ILogger) ISearchService {
	return &searchService{
		retriever: retriever,
		retrieval: retrieval,
		logger:    log,
	}
}

// Search runs retrieval, consolidates chunk hits into per-source groups and
// highlights query terms in the group texts. topK <= 0 falls back to the
// configured default.
func (s *searchService) Search(ctx context.Context, ownerId uuid.UUID, query string, topK int, sourceType string) (*dto.SearchResponse, error) {
	if sourceType != "" && !entity.SourceType(sourceType).Valid() {
		return nil, apperr.ErrInvalidSourceType
	}

	cfg := search.DefaultConfig()
	cfg.TopK = topK
	cfg.SourceType = sourceType
	if cfg.TopK <= 0 {
		cfg.TopK = s.retrieval.TopKDefault
	}

	hits, err := s.retriever.Retrieve(ctx, ownerId, query, cfg)
	if err != nil {
		return nil, err
	}

	groups := consolidate.Consolidate(hits)

	results := make([]dto.SearchResultItem, len(groups))
	for i, g := range groups {
		results[i] = dto.SearchResultItem{
			Text: consolidate.Highlight(g.Text, query),
			Source: dto.SearchSource{
				DisplayName: g.DisplayName,
				URL:         g.URL,
			},
			Score:      g.Score,
			ChunkCount: g.ChunkCount,
			Expanded:   g.Expanded,
		}
	}

	s.logger.Debug("search", "query served", map[string]interface{}{
		"hits":   len(hits),
		"groups": len(groups),
	})
	return &dto.SearchResponse{Query: query, Results: results}, nil
}
