package consolidate

import (
	"fmt"
	"sort"

	"docsearch-be/internal/entity"
)

// Hit is one chunk-level search result entering consolidation.
type Hit struct {
	Chunk *entity.Chunk
	Score float64
}

// SourceGroup is the consolidated view of every hit that shares one logical
// source. Score is the max of the contributing scores; Text holds the top
// two contributing chunk texts.
type SourceGroup struct {
	DisplayName string
	Text        string
	ChunkCount  int
	Score       float64
	URL         string
	// Expanded marks the groups shown open by default (the first two); the
	// rest sit behind an expand action in the client.
	Expanded bool
}

// chunkSeparator joins the two representative chunk texts.
const chunkSeparator = "\n\n"

// expandedByDefault is how many top groups the caller shows open.
const expandedByDefault = 2

// Consolidate collapses chunk-level hits into per-source groups, ranked by
// group score descending with chunkCount descending as the tie-break (order
// is otherwise stable in input order).
//
// Source identity precedence: source_link, then document_id, then a
// synthetic per-hit identity — unidentifiable hits are never merged with
// each other.
func Consolidate(hits []Hit) []SourceGroup {
	type group struct {
		hits  []Hit
		first int // input position of the group's first hit, for stability
	}

	order := make([]string, 0, len(hits))
	groups := make(map[string]*group)

	for i, hit := range hits {
		key := sourceIdentity(hit)
		g, ok := groups[key]
		if !ok {
			g = &group{first: i}
			groups[key] = g
			order = append(order, key)
		}
		g.hits = append(g.hits, hit)
	}

	out := make([]SourceGroup, 0, len(order))
	for _, key := range order {
		out = append(out, buildGroup(groups[key].hits))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ChunkCount > out[j].ChunkCount
	})

	for i := range out {
		out[i].Expanded = i < expandedByDefault
	}
	return out
}

// sourceIdentity derives the grouping key for a hit.
func sourceIdentity(hit Hit) string {
	c := hit.Chunk
	if c.SourceLink != "" {
		key := "link:" + c.SourceLink
		if c.PageNumber != nil {
			key = fmt.Sprintf("%s#page=%d", key, *c.PageNumber)
		}
		return key
	}
	if c.DocumentId != "" {
		return "doc:" + c.DocumentId
	}
	return "chunk:" + c.Id.String()
}

func buildGroup(hits []Hit) SourceGroup {
	// Highest two individual scores become the representative text; input
	// order breaks score ties (hits arrive ranked already).
	ranked := make([]Hit, len(hits))
	copy(ranked, hits)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	top := ranked[0]
	text := top.Chunk.Text
	if len(ranked) > 1 {
		text += chunkSeparator + ranked[1].Chunk.Text
	}
	if len(ranked) > 2 {
		text += fmt.Sprintf("%s+%d more chunks", chunkSeparator, len(ranked)-2)
	}

	return SourceGroup{
		DisplayName: displayName(top.Chunk),
		Text:        text,
		ChunkCount:  len(hits),
		Score:       top.Score,
		URL:         sourceURL(top.Chunk),
	}
}

// displayName picks a human-readable label for the group's source: the
// section heading of the best chunk when present, else the document id
// (uploads carry their filename there).
func displayName(c *entity.Chunk) string {
	if c.SourceType == entity.SourceTypeSyncedPage && c.SectionTitle != "" {
		return c.SectionTitle
	}
	if c.DocumentId != "" {
		return c.DocumentId
	}
	return "Untitled source"
}

func sourceURL(c *entity.Chunk) string {
	if c.SourceLink == "" {
		return ""
	}
	if c.PageNumber != nil {
		return fmt.Sprintf("%s#page=%d", c.SourceLink, *c.PageNumber)
	}
	return c.SourceLink
}
