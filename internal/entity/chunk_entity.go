package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SourceType is a closed set of chunk origins. Each value implies which of
// the optional chunk fields are meaningful: uploaded files carry page
// numbers, synced pages carry a deep link, plain text carries neither.
type SourceType string

const (
	SourceTypeUploadedFile SourceType = "uploaded-file"
	SourceTypeSyncedPage   SourceType = "synced-page"
	SourceTypePlainText    SourceType = "plain-text"
)

func (s SourceType) Valid() bool {
	switch s {
	case SourceTypeUploadedFile, SourceTypeSyncedPage, SourceTypePlainText:
		return true
	}
	return false
}

// Chunk is the atomic retrievable unit. Id doubles as the upsert key and is
// derived deterministically from (owner, document, page, chunk position), so
// re-ingesting the same logical chunk always hits the same row.
type Chunk struct {
	Id           uuid.UUID
	OwnerId      uuid.UUID
	DocumentId   string
	Text         string
	SourceType   SourceType
	SourceLink   string
	PageNumber   *int
	SectionTitle string
	Embedding    []float32
	ChunkIndex   int
	ChunkSize    int
	// Degraded marks vectors produced by the hash fallback while the primary
	// embedding backend was down. A re-embed pass can find and repair them.
	Degraded  bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// chunkIdNamespace scopes the UUIDv5 derivation of chunk ids.
var chunkIdNamespace = uuid.MustParse("9f2c1b5e-7d34-4c8a-9e61-0b8f3a2d6c47")

// NewChunkId derives the stable id for the chunk at position chunkIndex of
// the given page. pageNumber is negative for unpaginated sources.
func NewChunkId(ownerId uuid.UUID, documentId string, pageNumber int, chunkIndex int) uuid.UUID {
	name := fmt.Sprintf("%s/%s/%d/%d", ownerId, documentId, pageNumber, chunkIndex)
	return uuid.NewSHA1(chunkIdNamespace, []byte(name))
}

// ScoredChunk wraps a Chunk with its cosine similarity to a query vector.
type ScoredChunk struct {
	Chunk      *Chunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}
