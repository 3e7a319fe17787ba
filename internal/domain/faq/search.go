package faq

import (
	"context"
	"strings"
	"time"

	"github.com/yanqian/smart-faq/internal/domain/analytics"
	apperrors "github.com/yanqian/smart-faq/pkg/errors"
	"github.com/yanqian/smart-faq/pkg/util"
)

func (s *service) Search(ctx context.Context, query string) (SearchResponse, error) {
	start := time.Now()
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "query cannot be empty", nil)
	}

	key := searchCacheKey(query)
	var cached SearchResponse
	if s.loadCached(ctx, key, &cached) {
		cached.Cached = true
		return cached, nil
	}

	vector, err := s.embedOne(ctx, query)
	if err != nil {
		return SearchResponse{}, err
	}
	matches, err := s.index.Query(ctx, vector, QueryOptions{TopK: s.cfg.SearchTopK, ReturnMetadata: true})
	if err != nil {
		return SearchResponse{}, apperrors.Wrap(apperrors.CodeVector, "vector query failed", err)
	}
	if len(matches) == 0 {
		return SearchResponse{Results: []SearchResult{}, ResponseTime: util.ElapsedMillis(start)}, nil
	}

	ids := matchIDs(matches)
	records, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return SearchResponse{}, apperrors.Wrap(apperrors.CodeStorage, "faq lookup failed", err)
	}

	resp := SearchResponse{
		Results:      rankMatches(matches, records, s.cfg.SimilarityThreshold),
		ResponseTime: util.ElapsedMillis(start),
	}

	s.recorder.Record(ctx, analytics.Entry{
		Query:          query,
		Mode:           analytics.ModeSearch,
		MatchedFAQIDs:  ids,
		ResponseTimeMs: resp.ResponseTime,
	})
	s.storeCached(ctx, key, resp, s.cfg.SearchCacheTTL)

	s.logger.Debug("faq search computed", "matches", len(matches), "results", len(resp.Results), "latency_ms", resp.ResponseTime)
	return resp, nil
}

// rankMatches merges vector hits with store records and applies the relevance gate.
// Output order is the vector index order.
func rankMatches(matches []VectorMatch, records []FAQ, threshold float64) []SearchResult {
	byID := make(map[string]FAQ, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}
	results := make([]SearchResult, 0, len(matches))
	for _, match := range matches {
		if match.Score <= threshold {
			continue
		}
		rec, ok := byID[match.ID]
		question := rec.Question
		if !ok || question == "" {
			// the store may lag behind the index
			question = match.Metadata[MetadataQuestion]
		}
		results = append(results, SearchResult{
			ID:         match.ID,
			Question:   question,
			Answer:     rec.Answer,
			Category:   rec.Category,
			Similarity: match.Score,
		})
	}
	return results
}

func matchIDs(matches []VectorMatch) []string {
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	return ids
}

func (s *service) embedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEmbedding, "embedding failed", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeEmbedding, "embedding response empty", nil)
	}
	return vectors[0], nil
}
