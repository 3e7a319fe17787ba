package chatgpt

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// EmbeddingRequest asks for one vector per input string.
type EmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingData is a single vector in an embeddings response.
type EmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// EmbeddingResponse is the embeddings endpoint payload.
type EmbeddingResponse struct {
	Data  []EmbeddingData `json:"data"`
	Model string          `json:"model"`
	Usage Usage           `json:"usage"`
}

// CreateEmbedding calls the embeddings endpoint. Data is returned in input order.
func (c *Client) CreateEmbedding(ctx context.Context, req EmbeddingRequest) (EmbeddingResponse, error) {
	var out EmbeddingResponse
	body, err := c.post(ctx, embeddingsPath, req)
	if err != nil {
		return out, fmt.Errorf("embedding: %w", err)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode embedding: %w", err)
	}
	sort.SliceStable(out.Data, func(i, j int) bool { return out.Data[i].Index < out.Data[j].Index })
	return out, nil
}
