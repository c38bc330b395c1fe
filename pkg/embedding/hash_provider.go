package embedding

import (
	"hash/fnv"
	"strconv"
)

// HashProvider produces deterministic pseudo-embeddings from an FNV-1a hash
// of the text. It is the last link of the fallback chain: the vectors carry
// no real semantics, but they have the right dimension, they are stable
// across processes, and they keep ingestion moving through a model outage
// until a re-embed pass repairs the flagged chunks.
type HashProvider struct {
	Dimension int
}

func NewHashProvider(dimension int) *HashProvider {
	return &HashProvider{Dimension: dimension}
}

func (p *HashProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: p.vector(text),
		},
	}, nil
}

func (p *HashProvider) GenerateBatch(texts []string, taskType string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = p.vector(text)
	}
	return vectors, nil
}

// vector hashes (text, component index) into each dimension, mapped to
// [-1, 1] and normalized to unit length.
func (p *HashProvider) vector(text string) []float32 {
	values := make([]float32, p.Dimension)
	for i := range values {
		h := fnv.New64a()
		h.Write([]byte(text))
		h.Write([]byte("/" + strconv.Itoa(i)))
		sum := h.Sum64()
		// top 53 bits into [0,1), then shift to [-1,1)
		values[i] = float32(float64(sum>>11)/float64(1<<53))*2 - 1
	}
	return normalizeVector(values)
}
