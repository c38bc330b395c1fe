package dto

import (
	"github.com/google/uuid"
)

// IngestPage is one unit of parallel ingestion work. PageNumber is set only
// for paginated origins (PDF pages); synced pages and plain text leave it
// nil.
type IngestPage struct {
	Text       string `json:"text"`
	PageNumber *int   `json:"page_number,omitempty"`
}

type IngestDocumentRequest struct {
	DocumentId string       `json:"document_id" validate:"required,max=255"`
	SourceType string       `json:"source_type" validate:"required,oneof=uploaded-file synced-page plain-text"`
	SourceLink string       `json:"source_link,omitempty" validate:"omitempty,url"`
	Pages      []IngestPage `json:"pages" validate:"required,min=1"`
}

type SubmitIngestResponse struct {
	JobId uuid.UUID `json:"job_id"`
}

// PageError reports one failed page; sibling pages still ingest.
type PageError struct {
	PageNumber int    `json:"page_number"`
	Error      string `json:"error"`
}

// IngestSummary is the completed-job report. ProcessedPages < TotalPages
// signals an explicitly partial ingestion.
type IngestSummary struct {
	DocumentId     string      `json:"document_id"`
	TotalPages     int         `json:"total_pages"`
	ProcessedPages int         `json:"processed_pages"`
	TotalChunks    int         `json:"total_chunks"`
	DegradedChunks int         `json:"degraded_chunks"`
	Warnings       []string    `json:"warnings,omitempty"`
	PageErrors     []PageError `json:"page_errors,omitempty"`
}

type JobStatusResponse struct {
	JobId          uuid.UUID      `json:"job_id"`
	DocumentId     string         `json:"document_id"`
	Status         string         `json:"status"`
	ProcessedPages int            `json:"processed_pages"`
	TotalPages     int            `json:"total_pages"`
	Summary        *IngestSummary `json:"summary,omitempty"`
	Error          string         `json:"error,omitempty"`
	Retryable      bool           `json:"retryable,omitempty"`
}

// PublishIngestDocumentMessage is the payload of the async ingestion topic.
type PublishIngestDocumentMessage struct {
	JobId   uuid.UUID             `json:"job_id"`
	OwnerId uuid.UUID             `json:"owner_id"`
	Request IngestDocumentRequest `json:"request"`
}
