package metrics

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding matches the OpenAI embedding and gpt-4o-mini era tokenizers closely enough for budgeting.
const DefaultEncoding = "cl100k_base"

// TokenCounter counts tokens with tiktoken, degrading to a rune based estimate
// when the BPE ranks cannot be loaded (offline environments).
type TokenCounter struct {
	encoding string

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewTokenCounter constructs a lazily initialised counter.
func NewTokenCounter(encoding string) *TokenCounter {
	if strings.TrimSpace(encoding) == "" {
		encoding = DefaultEncoding
	}
	return &TokenCounter{encoding: encoding}
}

// Count returns the number of tokens in text.
func (c *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c == nil {
		return EstimateTokens(text)
	}
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding(c.encoding)
		if err == nil {
			c.enc = enc
		}
	})
	if c.enc == nil {
		return EstimateTokens(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// EstimateTokens is an upper-biased estimate: ~1 token per 2 runes and never below the word count.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	runes := utf8.RuneCountInString(text)
	words := len(strings.Fields(text))
	byRunes := (runes + 1) / 2
	if byRunes < words {
		return words
	}
	return byRunes
}
