package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"docsearch-be/internal/entity"
	"docsearch-be/internal/repository/contract"

	"github.com/google/uuid"
)

// ChunkRepository is an in-memory implementation of the chunk store. It is
// the index-less degradation path: similarity search is a brute-force full
// scan with post-hoc owner filtering. Also used as the test double.
type ChunkRepository struct {
	mu        sync.RWMutex
	dimension int
	chunks    map[uuid.UUID]*entity.Chunk
}

func NewChunkRepository(dimension int) *ChunkRepository {
	return &ChunkRepository{
		dimension: dimension,
		chunks:    make(map[uuid.UUID]*entity.Chunk),
	}
}

var _ contract.ChunkRepository = (*ChunkRepository)(nil)

func (r *ChunkRepository) UpsertBulk(ctx context.Context, ownerId uuid.UUID, chunks []*entity.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range chunks {
		if len(c.Embedding) != r.dimension {
			return fmt.Errorf("chunk %s has %d dims, store expects %d: %w",
				c.Id, len(c.Embedding), r.dimension, contract.ErrDimensionMismatch)
		}
		if c.OwnerId != ownerId {
			return fmt.Errorf("chunk %s owner %s does not match write scope %s",
				c.Id, c.OwnerId, ownerId)
		}
	}

	now := time.Now()
	for _, c := range chunks {
		cp := *c
		if existing, ok := r.chunks[c.Id]; ok {
			// Replace in place: created_at survives, updated_at bumps.
			cp.CreatedAt = existing.CreatedAt
		} else if cp.CreatedAt.IsZero() {
			cp.CreatedAt = now
		}
		t := now
		cp.UpdatedAt = &t
		r.chunks[c.Id] = &cp
	}
	return nil
}

func (r *ChunkRepository) SearchSimilar(ctx context.Context, ownerId uuid.UUID, queryVector []float32, limit int, threshold float64, sourceType string) ([]*entity.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}
	if len(queryVector) != r.dimension {
		return nil, contract.ErrDimensionMismatch
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var scored []*entity.ScoredChunk
	for _, c := range r.chunks {
		if c.OwnerId != ownerId {
			continue
		}
		if sourceType != "" && string(c.SourceType) != sourceType {
			continue
		}
		sim := cosineSimilarity(queryVector, c.Embedding)
		if sim < threshold {
			continue
		}
		cp := *c
		scored = append(scored, &entity.ScoredChunk{Chunk: &cp, Similarity: sim})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Chunk.CreatedAt.After(scored[j].Chunk.CreatedAt)
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (r *ChunkRepository) DeleteByDocumentId(ctx context.Context, ownerId uuid.UUID, documentId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.chunks {
		if c.OwnerId == ownerId && c.DocumentId == documentId {
			delete(r.chunks, id)
		}
	}
	return nil
}

func (r *ChunkRepository) DeleteAllByOwnerId(ctx context.Context, ownerId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.chunks {
		if c.OwnerId == ownerId {
			delete(r.chunks, id)
		}
	}
	return nil
}

func (r *ChunkRepository) FindByDocumentId(ctx context.Context, ownerId uuid.UUID, documentId string) ([]*entity.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Chunk
	for _, c := range r.chunks {
		if c.OwnerId == ownerId && c.DocumentId == documentId {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out, nil
}

func (r *ChunkRepository) FindDegraded(ctx context.Context, ownerId uuid.UUID, limit, offset int) ([]*entity.Chunk, error) {
	if limit <= 0 {
		limit = contract.DefaultRepairBatch
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Chunk
	for _, c := range r.chunks {
		if c.OwnerId == ownerId && c.Degraded {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ChunkRepository) Count(ctx context.Context, ownerId uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, c := range r.chunks {
		if c.OwnerId == ownerId {
			count++
		}
	}
	return count, nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
