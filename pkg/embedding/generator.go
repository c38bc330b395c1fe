package embedding

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrBackendUnavailable signals that the primary embedding backend could not
// be reached and the deterministic hash fallback produced the vectors. It is
// a warning, not a failure: ingestion proceeds, the chunks are flagged.
var ErrBackendUnavailable = errors.New("embedding backend unavailable")

// VectorResult is one embedded text: either the primary model's vector
// (Degraded=false) or the hash fallback's (Degraded=true).
type VectorResult struct {
	Values   []float32
	Degraded bool
}

// BatchResult is the outcome of embedding a batch. Reason is non-nil exactly
// when DegradedCount > 0 and wraps ErrBackendUnavailable, so callers can
// distinguish a degraded success from a clean one.
type BatchResult struct {
	Vectors       []VectorResult
	DegradedCount int
	Reason        error
}

// ProviderFactory builds the primary provider. Construction is deferred so
// the process-wide Generator can be created before config/network are ready.
type ProviderFactory func() EmbeddingProvider

// Generator is the fallback chain in front of the embedding providers. It is
// safe for concurrent use: the primary provider is built exactly once
// (guarded by sync.Once) and providers themselves are stateless HTTP clients.
type Generator struct {
	dimension int
	factory   ProviderFactory
	fallback  *HashProvider

	initOnce sync.Once
	primary  EmbeddingProvider
}

func NewGenerator(dimension int, factory ProviderFactory) *Generator {
	return &Generator{
		dimension: dimension,
		factory:   factory,
		fallback:  NewHashProvider(dimension),
	}
}

func (g *Generator) Dimension() int {
	return g.dimension
}

func (g *Generator) provider() EmbeddingProvider {
	g.initOnce.Do(func() {
		if g.factory != nil {
			g.primary = g.factory()
		}
	})
	return g.primary
}

// Embed maps texts to unit-length vectors of the configured dimension, all
// in one provider call. It never fails outright: when the primary backend is
// down (or returns vectors of the wrong length) the hash fallback fills in
// and the result is flagged degraded.
func (g *Generator) Embed(texts []string, taskType string) *BatchResult {
	result := &BatchResult{
		Vectors: make([]VectorResult, len(texts)),
	}
	if len(texts) == 0 {
		return result
	}

	var vectors [][]float32
	var primaryErr error

	if p := g.provider(); p != nil {
		vectors, primaryErr = p.GenerateBatch(texts, taskType)
	} else {
		primaryErr = fmt.Errorf("no primary embedding provider configured")
	}
	if primaryErr == nil && len(vectors) != len(texts) {
		primaryErr = fmt.Errorf("provider returned %d vectors for %d texts", len(vectors), len(texts))
	}

	if primaryErr != nil {
		// Whole-batch fallback keeps the document's vectors consistent.
		hashed, _ := g.fallback.GenerateBatch(texts, taskType)
		for i := range texts {
			result.Vectors[i] = VectorResult{Values: hashed[i], Degraded: true}
		}
		result.DegradedCount = len(texts)
		result.Reason = fmt.Errorf("%w: %v", ErrBackendUnavailable, primaryErr)
		return result
	}

	for i, v := range vectors {
		if len(v) != g.dimension {
			hv, _ := g.fallback.Generate(texts[i], taskType)
			result.Vectors[i] = VectorResult{Values: hv.Embedding.Values, Degraded: true}
			result.DegradedCount++
			continue
		}
		result.Vectors[i] = VectorResult{Values: normalizeVector(v), Degraded: false}
	}
	if result.DegradedCount > 0 {
		result.Reason = fmt.Errorf("%w: %d of %d vectors had wrong dimension",
			ErrBackendUnavailable, result.DegradedCount, len(texts))
	}
	return result
}

// EmbedQuery embeds a single query string.
func (g *Generator) EmbedQuery(query string) ([]float32, error) {
	res := g.Embed([]string{query}, TaskTypeQuery)
	if len(res.Vectors) != 1 {
		return nil, fmt.Errorf("query embedding produced %d vectors", len(res.Vectors))
	}
	// A degraded query vector is still usable against degraded chunks, but
	// surfacing the reason lets the caller log it.
	return res.Vectors[0].Values, res.Reason
}

// normalizeVector normalizes a vector to unit length (magnitude = 1).
// Cosine distance in pgvector expects normalized vectors for accurate
// similarity.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	// Avoid division by zero
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
