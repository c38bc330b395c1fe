package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docsearch-be/internal/apperr"
	"docsearch-be/internal/dto"
	"docsearch-be/internal/entity"
	"docsearch-be/internal/repository/unitofwork"
	"docsearch-be/pkg/rag/search"

	"github.com/google/uuid"
)

func newSearchFixture(t *testing.T) (ISearchService, IIngestionService) {
	t.Helper()

	factory := unitofwork.NewMemoryFactory(testDimension)
	generator := healthyGenerator()
	tracker := NewJobTracker()
	ingestion := NewIngestionService(factory, generator, nil, tracker, testRetrievalConfig(), nopLogger{})

	retriever := search.NewRetriever(generator, factory.Repository(), nopLogger{})
	searchSvc := NewSearchService(retriever, testRetrievalConfig(), nopLogger{})
	return searchSvc, ingestion
}

func ingestPlainText(t *testing.T, ingestion IIngestionService, owner uuid.UUID, documentId, text string) {
	t.Helper()
	_, err := ingestion.IngestSync(context.Background(), owner, &dto.IngestDocumentRequest{
		DocumentId: documentId,
		SourceType: string(entity.SourceTypePlainText),
		Pages:      []dto.IngestPage{{Text: text}},
	})
	if err != nil {
		t.Fatalf("IngestSync(%s): %v", documentId, err)
	}
}

func TestSearchFindsExactText(t *testing.T) {
	owner := uuid.New()
	searchSvc, ingestion := newSearchFixture(t)

	target := "The gateway forwards authenticated requests downstream."
	ingestPlainText(t, ingestion, owner, "gateway-notes", target)
	ingestPlainText(t, ingestion, owner, "unrelated-notes", "Completely different musings about gardening and soil.")

	res, err := searchSvc.Search(context.Background(), owner, target, 0, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Query != target {
		t.Errorf("Query echoed as %q", res.Query)
	}
	if len(res.Results) == 0 {
		t.Fatal("no results for an exact-text query")
	}

	best := res.Results[0]
	if best.Source.DisplayName != "gateway-notes" {
		t.Errorf("best result from %q, want gateway-notes", best.Source.DisplayName)
	}
	if best.Score < 0.99 {
		t.Errorf("exact-text similarity = %f, want ~1", best.Score)
	}
	if !strings.Contains(best.Text, "<mark>gateway</mark>") {
		t.Errorf("query terms not highlighted: %q", best.Text)
	}
	if best.ChunkCount != 1 || !best.Expanded {
		t.Errorf("best result chunkCount=%d expanded=%v", best.ChunkCount, best.Expanded)
	}
}

func TestSearchOwnerIsolation(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	searchSvc, ingestion := newSearchFixture(t)

	secret := "The launch codes are stored in the vault."
	ingestPlainText(t, ingestion, owner, "secrets", secret)

	res, err := searchSvc.Search(context.Background(), stranger, secret, 0, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Results) != 0 {
		t.Errorf("another owner's search returned %d results", len(res.Results))
	}
}

func TestSearchEmptyStore(t *testing.T) {
	owner := uuid.New()
	searchSvc, _ := newSearchFixture(t)

	res, err := searchSvc.Search(context.Background(), owner, "anything at all", 0, "")
	if err != nil {
		t.Fatalf("Search on empty store: %v", err)
	}
	if len(res.Results) != 0 {
		t.Errorf("empty store returned %d results", len(res.Results))
	}
}

func TestSearchSourceTypeFilter(t *testing.T) {
	owner := uuid.New()
	searchSvc, ingestion := newSearchFixture(t)

	// The same text under two source variants: only the filter separates them.
	target := "Quarterly revenue grew across all regions."
	ingestPlainText(t, ingestion, owner, "board-notes", target)
	_, err := ingestion.IngestSync(context.Background(), owner, &dto.IngestDocumentRequest{
		DocumentId: "q3-report.pdf",
		SourceType: string(entity.SourceTypeUploadedFile),
		Pages:      []dto.IngestPage{{Text: target}},
	})
	if err != nil {
		t.Fatalf("IngestSync: %v", err)
	}

	res, err := searchSvc.Search(context.Background(), owner, target, 0, string(entity.SourceTypeUploadedFile))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Results) != 1 {
		t.Fatalf("filtered search returned %d results, want 1", len(res.Results))
	}
	if res.Results[0].Source.DisplayName != "q3-report.pdf" {
		t.Errorf("DisplayName = %q, want q3-report.pdf", res.Results[0].Source.DisplayName)
	}

	all, err := searchSvc.Search(context.Background(), owner, target, 0, "")
	if err != nil {
		t.Fatalf("unfiltered Search: %v", err)
	}
	if len(all.Results) != 2 {
		t.Errorf("unfiltered search returned %d results, want 2", len(all.Results))
	}

	if _, err := searchSvc.Search(context.Background(), owner, target, 0, "carrier-pigeon"); !errors.Is(err, apperr.ErrInvalidSourceType) {
		t.Errorf("err = %v, want ErrInvalidSourceType", err)
	}
}

func TestSearchConsolidatesSameDocument(t *testing.T) {
	owner := uuid.New()
	searchSvc, ingestion := newSearchFixture(t)

	// Two pages of one document produce two chunks sharing a source.
	_, err := ingestion.IngestSync(context.Background(), owner, &dto.IngestDocumentRequest{
		DocumentId: "manual.pdf",
		SourceType: string(entity.SourceTypeUploadedFile),
		Pages: []dto.IngestPage{
			{Text: "Chapter about installation procedures and setup.", PageNumber: pagePtr(1)},
			{Text: "Chapter about maintenance procedures and cleanup.", PageNumber: pagePtr(2)},
		},
	})
	if err != nil {
		t.Fatalf("IngestSync: %v", err)
	}

	// Exact text of one page guarantees a top hit; whatever else matches from
	// the same document must fold into the same group.
	res, err := searchSvc.Search(context.Background(), owner, "Chapter about installation procedures and setup.", 0, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Results) != 1 {
		t.Fatalf("got %d results, want hits consolidated into 1 group", len(res.Results))
	}
	if res.Results[0].Source.DisplayName != "manual.pdf" {
		t.Errorf("DisplayName = %q, want manual.pdf", res.Results[0].Source.DisplayName)
	}
	if res.Results[0].ChunkCount < 1 {
		t.Errorf("ChunkCount = %d", res.Results[0].ChunkCount)
	}
}
