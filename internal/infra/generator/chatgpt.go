package generator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yanqian/smart-faq/internal/domain/faq"
	"github.com/yanqian/smart-faq/internal/infra/llm/chatgpt"
	"github.com/yanqian/smart-faq/pkg/metrics"
)

// ChatGPTLLM adapts the ChatGPT client to the FAQ domain.
type ChatGPTLLM struct {
	client      *chatgpt.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

// NewChatGPTLLM constructs the adapter.
func NewChatGPTLLM(client *chatgpt.Client, model string, temperature float32, logger *slog.Logger) *ChatGPTLLM {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatGPTLLM{
		client:      client,
		model:       model,
		temperature: temperature,
		logger:      logger.With("component", "generator.chatgpt"),
	}
}

// Chat sends a chat completion request and returns the first choice.
func (l *ChatGPTLLM) Chat(ctx context.Context, messages []faq.LLMMessage) (string, error) {
	req := chatgpt.ChatCompletionRequest{
		Model:       l.model,
		Temperature: l.temperature,
		Messages:    make([]chatgpt.Message, 0, len(messages)),
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, chatgpt.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	resp, err := l.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	usage := metrics.NewTokenUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	if !usage.IsZero() {
		l.logger.Debug("chat completion usage", "prompt_tokens", usage.PromptTokens, "completion_tokens", usage.CompletionTokens, "total_tokens", usage.TotalTokens)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ faq.LLM = (*ChatGPTLLM)(nil)

// EchoLLM answers without external calls by quoting the best matching FAQ.
type EchoLLM struct{}

// Chat returns the first answer line from the FAQ context in the last message.
func (EchoLLM) Chat(_ context.Context, messages []faq.LLMMessage) (string, error) {
	if len(messages) == 0 {
		return "", nil
	}
	content := messages[len(messages)-1].Content
	for _, line := range strings.Split(content, "\n") {
		if answer, ok := strings.CutPrefix(line, "A: "); ok {
			return answer, nil
		}
	}
	return "Answer: " + content, nil
}

var _ faq.LLM = EchoLLM{}
