package mapper

import (
	"encoding/json"
	"time"

	"docsearch-be/internal/entity"
	"docsearch-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// chunkMetadata is the JSON payload of the metadata column. It carries the
// repair flag for hash-fallback vectors.
type chunkMetadata struct {
	EmbeddingDegraded bool `json:"embedding_degraded,omitempty"`
}

type ChunkMapper struct{}

func NewChunkMapper() *ChunkMapper {
	return &ChunkMapper{}
}

func (m *ChunkMapper) ToEntity(c *model.DocumentChunk) *entity.Chunk {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	var meta chunkMetadata
	if len(c.Metadata) > 0 {
		// Malformed metadata is ignored; the flag just reads as false.
		_ = json.Unmarshal(c.Metadata, &meta)
	}

	return &entity.Chunk{
		Id:           c.Id,
		OwnerId:      c.OwnerId,
		DocumentId:   c.DocumentId,
		Text:         c.Text,
		SourceType:   entity.SourceType(c.SourceType),
		SourceLink:   c.SourceLink,
		PageNumber:   c.PageNumber,
		SectionTitle: c.SectionTitle,
		Embedding:    c.Embedding.Slice(),
		ChunkIndex:   c.ChunkIndex,
		ChunkSize:    c.ChunkSize,
		Degraded:     meta.EmbeddingDegraded,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ChunkMapper) ToModel(c *entity.Chunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	metaJson, _ := json.Marshal(chunkMetadata{EmbeddingDegraded: c.Degraded})

	return &model.DocumentChunk{
		Id:           c.Id,
		OwnerId:      c.OwnerId,
		DocumentId:   c.DocumentId,
		Text:         c.Text,
		SourceType:   string(c.SourceType),
		SourceLink:   c.SourceLink,
		PageNumber:   c.PageNumber,
		SectionTitle: c.SectionTitle,
		Embedding:    pgvector.NewVector(c.Embedding),
		ChunkIndex:   c.ChunkIndex,
		ChunkSize:    c.ChunkSize,
		Metadata:     datatypes.JSON(metaJson),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ChunkMapper) ToEntities(chunks []*model.DocumentChunk) []*entity.Chunk {
	entities := make([]*entity.Chunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *ChunkMapper) ToModels(chunks []*entity.Chunk) []*model.DocumentChunk {
	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
