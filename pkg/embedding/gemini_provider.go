package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type GeminiProvider struct {
	ApiKey string
}

func NewGeminiProvider(apiKey string) EmbeddingProvider {
	return &GeminiProvider{
		ApiKey: apiKey,
	}
}

const geminiModelName = "text-embedding-004"

func (p *GeminiProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	geminiReq := EmbeddingRequest{
		Model: geminiModelName,
		Content: EmbeddingRequestContent{
			Parts: []EmbeddingRequestContentPart{
				{
					Text: text,
				},
			},
		},
		TaskType: taskType,
	}

	resByte, err := p.post("embedContent", geminiReq)
	if err != nil {
		return nil, err
	}

	var resEmbedding EmbeddingResponse
	if err := json.Unmarshal(resByte, &resEmbedding); err != nil {
		return nil, err
	}

	return &resEmbedding, nil
}

// GenerateBatch embeds all texts in one batchEmbedContents call, amortizing
// transport and model warm-up cost across the document's chunks.
func (p *GeminiProvider) GenerateBatch(texts []string, taskType string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batchReq := BatchEmbeddingRequest{
		Requests: make([]EmbeddingRequest, len(texts)),
	}
	for i, text := range texts {
		batchReq.Requests[i] = EmbeddingRequest{
			Model: "models/" + geminiModelName,
			Content: EmbeddingRequestContent{
				Parts: []EmbeddingRequestContentPart{
					{
						Text: text,
					},
				},
			},
			TaskType: taskType,
		}
	}

	resByte, err := p.post("batchEmbedContents", batchReq)
	if err != nil {
		return nil, err
	}

	var batchRes BatchEmbeddingResponse
	if err := json.Unmarshal(resByte, &batchRes); err != nil {
		return nil, err
	}
	if len(batchRes.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini batch returned %d embeddings for %d texts",
			len(batchRes.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, e := range batchRes.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

func (p *GeminiProvider) post(method string, payload interface{}) ([]byte, error) {
	reqJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s:%s",
		geminiModelName, method,
	)

	req, err := http.NewRequest("POST", endpoint, bytes.NewBuffer(reqJson))
	if err != nil {
		return nil, err
	}

	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error from gemini response, code %d, body %s", res.StatusCode, string(resByte))
	}

	return resByte, nil
}
