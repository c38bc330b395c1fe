package dto

// SearchSource identifies the origin behind a consolidated result.
type SearchSource struct {
	DisplayName string `json:"displayName"`
	URL         string `json:"url,omitempty"`
}

// SearchResultItem is one consolidated source group as returned to the
// answer-generation collaborator.
type SearchResultItem struct {
	Text       string       `json:"text"`
	Source     SearchSource `json:"source"`
	Score      float64      `json:"score"`
	ChunkCount int          `json:"chunkCount"`
	Expanded   bool         `json:"expanded"`
}

type SearchResponse struct {
	Query   string             `json:"query"`
	Results []SearchResultItem `json:"results"`
}
