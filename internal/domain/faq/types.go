package faq

import (
	"strings"
	"time"
)

// DefaultCategory is stored in vector metadata for entries without a category.
const DefaultCategory = "general"

// Metadata keys written next to each vector.
const (
	MetadataQuestion = "question"
	MetadataCategory = "category"
)

// FAQ is a curated question/answer pair keyed by a caller-assigned id.
type FAQ struct {
	ID        string    `json:"id" validate:"required,max=128"`
	Question  string    `json:"question" validate:"required"`
	Answer    string    `json:"answer" validate:"required"`
	Category  string    `json:"category,omitempty" validate:"max=64"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

func (f FAQ) trimmed() FAQ {
	f.ID = strings.TrimSpace(f.ID)
	f.Question = strings.TrimSpace(f.Question)
	f.Answer = strings.TrimSpace(f.Answer)
	f.Category = strings.TrimSpace(f.Category)
	return f
}

// embeddingText is the text the vector for an entry is computed from.
func (f FAQ) embeddingText() string {
	return f.Question + " " + f.Answer
}

func (f FAQ) metadata() map[string]string {
	category := f.Category
	if category == "" {
		category = DefaultCategory
	}
	return map[string]string{
		MetadataQuestion: f.Question,
		MetadataCategory: category,
	}
}

// SearchResult is a FAQ entry that passed the relevance gate.
type SearchResult struct {
	ID         string  `json:"id"`
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Category   string  `json:"category,omitempty"`
	Similarity float64 `json:"similarity"`
}

// SearchResponse is returned by Search.
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	ResponseTime int64          `json:"responseTime"`
	Cached       bool           `json:"cached,omitempty"`
}

// AnswerResult is returned by Answer.
type AnswerResult struct {
	Answer       string         `json:"answer"`
	Sources      []SearchResult `json:"sources"`
	Confidence   float64        `json:"confidence"`
	QueryID      string         `json:"queryId,omitempty"`
	ResponseTime int64          `json:"responseTime"`
	Cached       bool           `json:"cached,omitempty"`
}

// QueryRequest is the HTTP payload for search and answer.
type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}
