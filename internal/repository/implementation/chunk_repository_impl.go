package implementation

import (
	"context"
	"fmt"

	"docsearch-be/internal/entity"
	"docsearch-be/internal/mapper"
	"docsearch-be/internal/model"
	"docsearch-be/internal/repository/contract"
	"docsearch-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChunkRepositoryImpl struct {
	db        *gorm.DB
	mapper    *mapper.ChunkMapper
	dimension int
}

func NewChunkRepository(db *gorm.DB, dimension int) contract.ChunkRepository {
	return &ChunkRepositoryImpl{
		db:        db,
		mapper:    mapper.NewChunkMapper(),
		dimension: dimension,
	}
}

func (r *ChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// ownerScope restricts every query to one owner. Isolation lives here, not in
// callers.
func (r *ChunkRepositoryImpl) ownerScope(ctx context.Context, ownerId uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Where("owner_id = ?", ownerId)
}

func (r *ChunkRepositoryImpl) validate(ownerId uuid.UUID, chunks []*entity.Chunk) error {
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
	return nil
}

func (r *ChunkRepositoryImpl) UpsertBulk(ctx context.Context, ownerId uuid.UUID, chunks []*entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := r.validate(ownerId, chunks); err != nil {
		return err
	}

	models := r.mapper.ToModels(chunks)

	// Classic upsert: conflict on the primary key (= logical chunk id)
	// resolves as update-in-place. created_at is deliberately absent from
	// the assignment list so it survives re-ingestion.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"text", "embedding", "source_type", "source_link", "page_number",
			"section_title", "chunk_index", "chunk_size", "metadata", "updated_at",
		}),
	}).Create(models).Error
}

func (r *ChunkRepositoryImpl) SearchSimilar(ctx context.Context, ownerId uuid.UUID, queryVector []float32, limit int, threshold float64, sourceType string) ([]*entity.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}
	if len(queryVector) != r.dimension {
		return nil, contract.ErrDimensionMismatch
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding <=> query) recovers the similarity score.
	type result struct {
		model.DocumentChunk
		Similarity float64
	}
	var results []result

	qv := pgvector.NewVector(queryVector)

	query := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, 1 - (embedding <=> ?) as similarity", qv).
		Where("owner_id = ?", ownerId).
		Where("1 - (embedding <=> ?) >= ?", qv, threshold)
	if sourceType != "" {
		query = specification.BySourceType{SourceType: sourceType}.Apply(query)
	}

	err := query.
		Order("similarity DESC").
		Order("created_at DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = &entity.ScoredChunk{
			Chunk:      r.mapper.ToEntity(&res.DocumentChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *ChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, ownerId uuid.UUID, documentId string) error {
	return r.applySpecifications(
		r.ownerScope(ctx, ownerId),
		specification.ByDocumentId{DocumentId: documentId},
	).Delete(&model.DocumentChunk{}).Error
}

func (r *ChunkRepositoryImpl) DeleteAllByOwnerId(ctx context.Context, ownerId uuid.UUID) error {
	return r.ownerScope(ctx, ownerId).Delete(&model.DocumentChunk{}).Error
}

func (r *ChunkRepositoryImpl) FindByDocumentId(ctx context.Context, ownerId uuid.UUID, documentId string) ([]*entity.Chunk, error) {
	var models []*model.DocumentChunk
	query := r.applySpecifications(
		r.ownerScope(ctx, ownerId),
		specification.ByDocumentId{DocumentId: documentId},
		specification.OrderBy{Field: "chunk_index"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChunkRepositoryImpl) FindDegraded(ctx context.Context, ownerId uuid.UUID, limit, offset int) ([]*entity.Chunk, error) {
	if limit <= 0 {
		limit = contract.DefaultRepairBatch
	}
	var models []*model.DocumentChunk
	query := r.applySpecifications(
		r.ownerScope(ctx, ownerId),
		specification.DegradedEmbeddings{},
		specification.OrderBy{Field: "created_at"},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChunkRepositoryImpl) Count(ctx context.Context, ownerId uuid.UUID) (int64, error) {
	var count int64
	err := r.ownerScope(ctx, ownerId).Model(&model.DocumentChunk{}).Count(&count).Error
	return count, err
}
