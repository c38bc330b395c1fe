package embedding

// Task types understood by the providers. Documents and queries are embedded
// with different task hints so asymmetric models place them correctly.
const (
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    = "RETRIEVAL_QUERY"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
	// GenerateBatch embeds all texts in one call where the backend supports
	// it; all texts share model and version.
	GenerateBatch(texts []string, taskType string) ([][]float32, error)
}
