package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// DocumentChunk is the persisted form of a chunk. The primary key IS the
// logical chunk id, so ON CONFLICT upserts replace in place and can never
// create a duplicate row for the same logical chunk.
//
// The vector(768) tag matches the default EMBEDDING_DIMENSION; cmd/migrate
// rewrites the column type when a different dimension is configured.
type DocumentChunk struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerId      uuid.UUID       `gorm:"type:uuid;not null;index:idx_document_chunks_owner"`
	DocumentId   string          `gorm:"type:varchar(255);not null;index:idx_document_chunks_document"`
	Text         string          `gorm:"type:text;not null"`
	SourceType   string          `gorm:"type:varchar(32);not null"`
	SourceLink   string          `gorm:"type:text"`
	PageNumber   *int            `gorm:""`
	SectionTitle string          `gorm:"type:text"`
	Embedding    pgvector.Vector `gorm:"type:vector(768)"`
	ChunkIndex   int             `gorm:"default:0"` // 0-based ordinal within the document
	ChunkSize    int             `gorm:"default:0"` // denormalized len(text)
	Metadata     datatypes.JSON  `gorm:""`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
