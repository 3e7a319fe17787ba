package faq

import (
	"context"
	"time"

	"github.com/yanqian/smart-faq/internal/domain/analytics"
)

// Cache stores serialized results under derived keys until their TTL lapses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Embedder converts text into fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorMatch is a nearest-neighbour hit.
type VectorMatch struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// QueryOptions tunes a vector query.
type QueryOptions struct {
	TopK           int
	ReturnMetadata bool
}

// VectorIndex stores one vector per FAQ id. Query returns matches by descending score.
type VectorIndex interface {
	Upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error
	DeleteByIDs(ctx context.Context, ids []string) error
	Query(ctx context.Context, vector []float32, opts QueryOptions) ([]VectorMatch, error)
}

// Repository is the authoritative FAQ record store.
type Repository interface {
	Upsert(ctx context.Context, item FAQ) error
	Delete(ctx context.Context, id string) error
	// FindByIDs returns the records that exist; missing ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]FAQ, error)
	// List returns every record, newest first.
	List(ctx context.Context) ([]FAQ, error)
}

// LLMMessage mirrors a simplified chat payload.
type LLMMessage struct {
	Role    string
	Content string
}

// LLM generates text from a chat transcript.
type LLM interface {
	Chat(ctx context.Context, messages []LLMMessage) (string, error)
}

// Recorder logs computed queries. Implementations must not block on or fail because of storage.
type Recorder interface {
	Record(ctx context.Context, entry analytics.Entry) string
}

// SeedSource supplies the corpus loaded by Seed.
type SeedSource interface {
	Load(ctx context.Context) ([]FAQ, error)
}
