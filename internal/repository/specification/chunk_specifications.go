package specification

import (
	"fmt"

	"gorm.io/gorm"
)

// ByDocumentId filters chunks of one parent document
type ByDocumentId struct {
	DocumentId string
}

func (s ByDocumentId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentId)
}

// BySourceType filters by the source variant (uploaded-file, synced-page, plain-text)
type BySourceType struct {
	SourceType string
}

func (s BySourceType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_type = ?", s.SourceType)
}

// DegradedEmbeddings selects chunks flagged for a re-embed repair pass
type DegradedEmbeddings struct{}

func (s DegradedEmbeddings) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("metadata ->> 'embedding_degraded' = 'true'")
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}
