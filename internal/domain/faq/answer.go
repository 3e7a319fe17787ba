package faq

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/smart-faq/internal/domain/analytics"
	apperrors "github.com/yanqian/smart-faq/pkg/errors"
	"github.com/yanqian/smart-faq/pkg/util"
)

func (s *service) Answer(ctx context.Context, query string) (AnswerResult, error) {
	start := time.Now()
	query = strings.TrimSpace(query)
	if query == "" {
		return AnswerResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, "query cannot be empty", nil)
	}

	key := answerCacheKey(query)
	var cached AnswerResult
	if s.loadCached(ctx, key, &cached) {
		cached.Cached = true
		return cached, nil
	}

	found, err := s.Search(ctx, query)
	if err != nil {
		return AnswerResult{}, err
	}
	if len(found.Results) == 0 {
		// fallback answers are never cached
		return AnswerResult{
			Answer:       s.cfg.FallbackAnswer,
			Sources:      []SearchResult{},
			Confidence:   0,
			ResponseTime: util.ElapsedMillis(start),
		}, nil
	}

	sources := found.Results
	if len(sources) > s.cfg.ContextSize {
		sources = sources[:s.cfg.ContextSize]
	}
	messages := s.buildPrompt(query, sources)
	answer, err := s.llm.Chat(ctx, messages)
	if err != nil {
		return AnswerResult{}, apperrors.Wrap(apperrors.CodeLLM, "answer generation failed", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return AnswerResult{}, apperrors.Wrap(apperrors.CodeLLM, "answer generation returned empty response", nil)
	}

	responseTime := util.ElapsedMillis(start)
	queryID := s.recorder.Record(ctx, analytics.Entry{
		Query:          query,
		Mode:           analytics.ModeAnswer,
		MatchedFAQIDs:  resultIDs(found.Results),
		ResponseTimeMs: responseTime,
	})

	result := AnswerResult{
		Answer:       answer,
		Sources:      sources,
		Confidence:   confidence(sources),
		QueryID:      queryID,
		ResponseTime: responseTime,
	}
	s.storeCached(ctx, key, result, s.cfg.AnswerCacheTTL)

	if s.logger.Enabled(ctx, slog.LevelDebug) {
		s.logger.Debug("faq answer generated",
			"sources", len(sources),
			"prompt_tokens", s.promptTokens(messages),
			"latency_ms", responseTime,
		)
	}
	return result, nil
}

func (s *service) buildPrompt(query string, sources []SearchResult) []LLMMessage {
	user := fmt.Sprintf("FAQs:\n%s\n\nUser Question: %s\n\nProvide a clear, helpful answer based on the FAQs above.", buildContext(sources), query)
	return []LLMMessage{
		{Role: "system", Content: s.cfg.Prompt},
		{Role: "user", Content: user},
	}
}

// buildContext renders one "Q: ...\nA: ..." block per source, separated by blank lines.
func buildContext(sources []SearchResult) string {
	blocks := make([]string, 0, len(sources))
	for _, src := range sources {
		blocks = append(blocks, fmt.Sprintf("Q: %s\nA: %s", src.Question, src.Answer))
	}
	return strings.Join(blocks, "\n\n")
}

func confidence(sources []SearchResult) float64 {
	if len(sources) == 0 {
		return 0
	}
	return sources[0].Similarity
}

func resultIDs(results []SearchResult) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	return ids
}

func (s *service) promptTokens(messages []LLMMessage) int {
	total := 0
	for _, msg := range messages {
		total += s.tokens.Count(msg.Content)
	}
	return total
}
