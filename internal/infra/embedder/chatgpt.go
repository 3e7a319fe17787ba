package embedder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/smart-faq/internal/domain/faq"
	"github.com/yanqian/smart-faq/internal/infra/llm/chatgpt"
	"github.com/yanqian/smart-faq/pkg/metrics"
)

// maxBatchTokens keeps each request well under the provider's per-request cap.
const maxBatchTokens = 200_000

// ChatGPTEmbedder calls an OpenAI-compatible embeddings API.
type ChatGPTEmbedder struct {
	client *chatgpt.Client
	model  string
	tokens *metrics.TokenCounter
	logger *slog.Logger
}

// NewChatGPTEmbedder constructs an embedder backed by the ChatGPT client.
func NewChatGPTEmbedder(client *chatgpt.Client, model string, tokens *metrics.TokenCounter, logger *slog.Logger) *ChatGPTEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatGPTEmbedder{
		client: client,
		model:  strings.TrimSpace(model),
		tokens: tokens,
		logger: logger.With("component", "embedder.chatgpt"),
	}
}

// Embed requests embeddings for the given texts, batching by token count.
func (e *ChatGPTEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var (
		out         = make([][]float32, 0, len(texts))
		batch       []string
		batchTokens int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		resp, err := e.client.CreateEmbedding(ctx, chatgpt.EmbeddingRequest{Model: e.model, Input: batch})
		if err != nil {
			return fmt.Errorf("create embedding: %w", err)
		}
		if len(resp.Data) != len(batch) {
			return fmt.Errorf("embedding result count mismatch: expected=%d got=%d", len(batch), len(resp.Data))
		}
		for _, item := range resp.Data {
			vec := make([]float32, len(item.Embedding))
			copy(vec, item.Embedding)
			out = append(out, vec)
		}
		e.logger.Debug("embedding batch complete", "inputs", len(batch), "tokens", batchTokens, "usage_tokens", resp.Usage.TotalTokens)
		batch = nil
		batchTokens = 0
		return nil
	}

	for _, text := range texts {
		tokens := e.tokens.Count(text)
		if tokens > maxBatchTokens {
			return nil, fmt.Errorf("text too large for embedding request: tokens=%d", tokens)
		}
		if batchTokens+tokens > maxBatchTokens && len(batch) > 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		batch = append(batch, text)
		batchTokens += tokens
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ faq.Embedder = (*ChatGPTEmbedder)(nil)
