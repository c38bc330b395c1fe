package consolidate

import (
	"strings"
	"testing"

	"docsearch-be/internal/entity"

	"github.com/google/uuid"
)

func docHit(documentId, text string, score float64) Hit {
	return Hit{
		Chunk: &entity.Chunk{
			Id:         uuid.New(),
			DocumentId: documentId,
			Text:       text,
			SourceType: entity.SourceTypeUploadedFile,
		},
		Score: score,
	}
}

func TestConsolidateGroupsByDocument(t *testing.T) {
	hits := []Hit{
		docHit("guide.pdf", "chunk a1", 0.9),
		docHit("notes.md", "chunk b1", 0.85),
		docHit("guide.pdf", "chunk a2", 0.7),
	}

	groups := Consolidate(hits)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	first := groups[0]
	if first.DisplayName != "guide.pdf" {
		t.Errorf("first group = %q, want guide.pdf", first.DisplayName)
	}
	if first.ChunkCount != 2 {
		t.Errorf("ChunkCount = %d, want 2", first.ChunkCount)
	}
	if first.Score != 0.9 {
		t.Errorf("Score = %f, want max contributing score 0.9", first.Score)
	}
	if first.Text != "chunk a1\n\nchunk a2" {
		t.Errorf("Text = %q", first.Text)
	}

	if groups[1].DisplayName != "notes.md" {
		t.Errorf("second group = %q, want notes.md", groups[1].DisplayName)
	}
	if groups[1].Score != 0.85 {
		t.Errorf("second group score = %f", groups[1].Score)
	}
}

func TestConsolidateMoreChunksSuffix(t *testing.T) {
	hits := []Hit{
		docHit("big.pdf", "one", 0.9),
		docHit("big.pdf", "two", 0.8),
		docHit("big.pdf", "three", 0.7),
		docHit("big.pdf", "four", 0.6),
	}

	groups := Consolidate(hits)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if !strings.HasSuffix(groups[0].Text, "+2 more chunks") {
		t.Errorf("Text = %q, want '+2 more chunks' suffix", groups[0].Text)
	}
	if !strings.HasPrefix(groups[0].Text, "one\n\ntwo") {
		t.Errorf("Text = %q, want the two best chunks first", groups[0].Text)
	}
}

func TestConsolidateEqualScoreTieBreaksOnChunkCount(t *testing.T) {
	hits := []Hit{
		docHit("single.pdf", "only chunk", 0.9),
		docHit("double.pdf", "first", 0.9),
		docHit("double.pdf", "second", 0.4),
	}

	groups := Consolidate(hits)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].DisplayName != "double.pdf" {
		t.Errorf("first group = %q, want the one with more chunks", groups[0].DisplayName)
	}
}

func TestConsolidateExpandedOnlyForTopTwo(t *testing.T) {
	hits := []Hit{
		docHit("a.pdf", "a", 0.9),
		docHit("b.pdf", "b", 0.8),
		docHit("c.pdf", "c", 0.7),
	}

	groups := Consolidate(hits)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	wantExpanded := []bool{true, true, false}
	for i, g := range groups {
		if g.Expanded != wantExpanded[i] {
			t.Errorf("group %d Expanded = %v, want %v", i, g.Expanded, wantExpanded[i])
		}
	}
}

func TestConsolidateSourceLinkPerPage(t *testing.T) {
	page3, page4 := 3, 4
	link := "https://example.com/wiki/resilience"
	hits := []Hit{
		{Chunk: &entity.Chunk{Id: uuid.New(), DocumentId: "doc", SourceLink: link, PageNumber: &page3, Text: "p3"}, Score: 0.9},
		{Chunk: &entity.Chunk{Id: uuid.New(), DocumentId: "doc", SourceLink: link, PageNumber: &page4, Text: "p4"}, Score: 0.8},
	}

	groups := Consolidate(hits)
	if len(groups) != 2 {
		t.Fatalf("pages behind one link merged: got %d groups, want 2", len(groups))
	}
	if groups[0].URL != link+"#page=3" {
		t.Errorf("URL = %q, want page anchor", groups[0].URL)
	}
}

func TestConsolidateUnidentifiableHitsStaySeparate(t *testing.T) {
	hits := []Hit{
		{Chunk: &entity.Chunk{Id: uuid.New(), Text: "orphan one"}, Score: 0.9},
		{Chunk: &entity.Chunk{Id: uuid.New(), Text: "orphan two"}, Score: 0.8},
	}

	groups := Consolidate(hits)
	if len(groups) != 2 {
		t.Fatalf("unidentifiable hits merged: got %d groups", len(groups))
	}
	for _, g := range groups {
		if g.DisplayName != "Untitled source" {
			t.Errorf("DisplayName = %q, want Untitled source", g.DisplayName)
		}
	}
}

func TestConsolidateSyncedPageUsesSectionTitle(t *testing.T) {
	hits := []Hit{
		{Chunk: &entity.Chunk{
			Id:           uuid.New(),
			DocumentId:   "page-123",
			SourceType:   entity.SourceTypeSyncedPage,
			SectionTitle: "Quarterly Planning",
			Text:         "content",
		}, Score: 0.9},
	}

	groups := Consolidate(hits)
	if groups[0].DisplayName != "Quarterly Planning" {
		t.Errorf("DisplayName = %q, want the section title", groups[0].DisplayName)
	}
}

func TestConsolidateEmpty(t *testing.T) {
	if groups := Consolidate(nil); len(groups) != 0 {
		t.Errorf("Consolidate(nil) = %v, want empty", groups)
	}
}
