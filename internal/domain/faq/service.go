package faq

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/yanqian/smart-faq/pkg/metrics"
)

// Service exposes the smart FAQ capabilities.
type Service interface {
	// Search returns FAQ entries whose similarity clears the relevance threshold.
	Search(ctx context.Context, query string) (SearchResponse, error)
	// Answer synthesizes a natural-language answer grounded in the top search results.
	Answer(ctx context.Context, query string) (AnswerResult, error)

	Index(ctx context.Context, item FAQ) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]FAQ, error)
	Seed(ctx context.Context) (int, error)
}

type service struct {
	cfg      Config
	cache    Cache
	embedder Embedder
	index    VectorIndex
	repo     Repository
	llm      LLM
	recorder Recorder
	seeds    SeedSource
	tokens   *metrics.TokenCounter
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService wires up the FAQ domain.
func NewService(cfg Config, cache Cache, embedder Embedder, index VectorIndex, repo Repository, llm LLM, recorder Recorder, seeds SeedSource, tokens *metrics.TokenCounter, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg.withDefaults(),
		cache:    cache,
		embedder: embedder,
		index:    index,
		repo:     repo,
		llm:      llm,
		recorder: recorder,
		seeds:    seeds,
		tokens:   tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("component", "faq.service"),
	}
}
