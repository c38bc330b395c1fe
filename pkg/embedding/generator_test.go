package embedding

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
)

// stubProvider is a scriptable primary provider for generator tests.
type stubProvider struct {
	vectors [][]float32
	err     error
}

func (s *stubProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: s.vectors[0]},
	}, nil
}

func (s *stubProvider) GenerateBatch(texts []string, taskType string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors, nil
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestEmbedHealthyProvider(t *testing.T) {
	stub := &stubProvider{vectors: [][]float32{
		{1, 0, 0, 0},
		{0, 2, 0, 0},
	}}
	g := NewGenerator(4, func() EmbeddingProvider { return stub })

	res := g.Embed([]string{"alpha", "beta"}, TaskTypeDocument)
	if res.DegradedCount != 0 {
		t.Errorf("DegradedCount = %d, want 0", res.DegradedCount)
	}
	if res.Reason != nil {
		t.Errorf("Reason = %v, want nil", res.Reason)
	}
	if len(res.Vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(res.Vectors))
	}
	for i, v := range res.Vectors {
		if v.Degraded {
			t.Errorf("vector %d flagged degraded", i)
		}
		if norm := vectorNorm(v.Values); math.Abs(norm-1) > 1e-5 {
			t.Errorf("vector %d norm = %f, want 1", i, norm)
		}
	}
	// {0,2,0,0} normalizes to the unit vector along the same axis.
	if got := res.Vectors[1].Values[1]; math.Abs(float64(got)-1) > 1e-5 {
		t.Errorf("normalized component = %f, want 1", got)
	}
}

func TestEmbedBackendDownFallsBackWholeBatch(t *testing.T) {
	stub := &stubProvider{err: fmt.Errorf("connection refused")}
	g := NewGenerator(8, func() EmbeddingProvider { return stub })

	res := g.Embed([]string{"alpha", "beta", "gamma"}, TaskTypeDocument)
	if res.DegradedCount != 3 {
		t.Errorf("DegradedCount = %d, want 3", res.DegradedCount)
	}
	if !errors.Is(res.Reason, ErrBackendUnavailable) {
		t.Errorf("Reason = %v, want ErrBackendUnavailable", res.Reason)
	}
	for i, v := range res.Vectors {
		if !v.Degraded {
			t.Errorf("vector %d not flagged degraded", i)
		}
		if len(v.Values) != 8 {
			t.Errorf("vector %d has %d dims, want 8", i, len(v.Values))
		}
		if norm := vectorNorm(v.Values); math.Abs(norm-1) > 1e-5 {
			t.Errorf("vector %d norm = %f, want 1", i, norm)
		}
	}

	// The fallback is deterministic: a second run yields identical vectors.
	again := g.Embed([]string{"alpha", "beta", "gamma"}, TaskTypeDocument)
	for i := range res.Vectors {
		if !reflect.DeepEqual(res.Vectors[i].Values, again.Vectors[i].Values) {
			t.Errorf("fallback vector %d differs between runs", i)
		}
	}
}

func TestEmbedNoProviderConfigured(t *testing.T) {
	g := NewGenerator(4, nil)
	res := g.Embed([]string{"alpha"}, TaskTypeDocument)
	if res.DegradedCount != 1 || !errors.Is(res.Reason, ErrBackendUnavailable) {
		t.Errorf("expected degraded result, got count=%d reason=%v", res.DegradedCount, res.Reason)
	}
}

func TestEmbedWrongDimensionFallsBackPerVector(t *testing.T) {
	stub := &stubProvider{vectors: [][]float32{
		{1, 0, 0, 0},
		{1, 0}, // wrong length
	}}
	g := NewGenerator(4, func() EmbeddingProvider { return stub })

	res := g.Embed([]string{"alpha", "beta"}, TaskTypeDocument)
	if res.DegradedCount != 1 {
		t.Fatalf("DegradedCount = %d, want 1", res.DegradedCount)
	}
	if res.Vectors[0].Degraded {
		t.Error("healthy vector flagged degraded")
	}
	if !res.Vectors[1].Degraded {
		t.Error("wrong-dimension vector not flagged degraded")
	}
	if len(res.Vectors[1].Values) != 4 {
		t.Errorf("fallback vector has %d dims, want 4", len(res.Vectors[1].Values))
	}
	if !errors.Is(res.Reason, ErrBackendUnavailable) {
		t.Errorf("Reason = %v, want ErrBackendUnavailable", res.Reason)
	}
}

func TestEmbedEmptyBatch(t *testing.T) {
	g := NewGenerator(4, nil)
	res := g.Embed(nil, TaskTypeDocument)
	if len(res.Vectors) != 0 || res.DegradedCount != 0 || res.Reason != nil {
		t.Errorf("empty batch produced %+v", res)
	}
}

func TestEmbedQueryReportsFallback(t *testing.T) {
	g := NewGenerator(4, nil)
	vec, err := g.EmbedQuery("what is resilience")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("err = %v, want ErrBackendUnavailable", err)
	}
	if len(vec) != 4 {
		t.Errorf("query vector has %d dims, want 4", len(vec))
	}
}

func TestHashProviderDeterministic(t *testing.T) {
	p := NewHashProvider(16)
	a, err := p.Generate("resilience", TaskTypeDocument)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, _ := p.Generate("resilience", TaskTypeDocument)
	if !reflect.DeepEqual(a.Embedding.Values, b.Embedding.Values) {
		t.Error("same text produced different vectors")
	}

	c, _ := p.Generate("a different text", TaskTypeDocument)
	if reflect.DeepEqual(a.Embedding.Values, c.Embedding.Values) {
		t.Error("different texts produced identical vectors")
	}
	if norm := vectorNorm(a.Embedding.Values); math.Abs(norm-1) > 1e-5 {
		t.Errorf("hash vector norm = %f, want 1", norm)
	}
}
