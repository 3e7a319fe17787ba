package faq

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

const (
	searchKeyPrefix = "search:"
	answerKeyPrefix = "answer:"
)

// normalizeQuery folds case and surrounding whitespace so equivalent queries share a cache entry.
func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func searchCacheKey(query string) string {
	return searchKeyPrefix + normalizeQuery(query)
}

func answerCacheKey(query string) string {
	return answerKeyPrefix + normalizeQuery(query)
}

// loadCached decodes a cached payload into dst. Cache failures degrade to a miss.
func (s *service) loadCached(ctx context.Context, key string, dst any) bool {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("faq cache lookup failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn("faq cache payload corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (s *service) storeCached(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("faq cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, payload, ttl); err != nil {
		s.logger.Warn("faq cache save failed", "key", key, "error", err)
	}
}
