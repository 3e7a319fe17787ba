package faq

import "time"

// Config holds runtime knobs for the FAQ service.
type Config struct {
	Prompt              string
	SearchTopK          int
	SimilarityThreshold float64
	ContextSize         int
	SearchCacheTTL      time.Duration
	AnswerCacheTTL      time.Duration
	FallbackAnswer      string
}

const (
	defaultPrompt              = "You are a helpful FAQ assistant. Answer the user's question using ONLY the provided FAQ entries. Be concise and friendly. If the FAQs don't contain the answer, say so politely."
	defaultSearchTopK          = 5
	defaultSimilarityThreshold = 0.7
	defaultContextSize         = 3
	defaultSearchCacheTTL      = time.Hour
	defaultAnswerCacheTTL      = 24 * time.Hour
	defaultFallbackAnswer      = "I couldn't find any relevant information in our FAQ. Please contact support for assistance."
)

// DefaultConfig mirrors the production defaults.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Prompt == "" {
		c.Prompt = defaultPrompt
	}
	if c.SearchTopK <= 0 {
		c.SearchTopK = defaultSearchTopK
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = defaultSimilarityThreshold
	}
	if c.ContextSize <= 0 {
		c.ContextSize = defaultContextSize
	}
	if c.SearchCacheTTL <= 0 {
		c.SearchCacheTTL = defaultSearchCacheTTL
	}
	if c.AnswerCacheTTL <= 0 {
		c.AnswerCacheTTL = defaultAnswerCacheTTL
	}
	if c.FallbackAnswer == "" {
		c.FallbackAnswer = defaultFallbackAnswer
	}
	return c
}
