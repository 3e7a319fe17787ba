package vectorindex

import (
	"context"
	"fmt"
	"maps"
	"math"
	"sort"
	"sync"

	"github.com/yanqian/smart-faq/internal/domain/faq"
)

type memoryPoint struct {
	vector   []float32
	metadata map[string]string
}

// MemoryIndex is a brute-force cosine index kept in process memory.
type MemoryIndex struct {
	mu     sync.RWMutex
	points map[string]memoryPoint
}

// NewMemoryIndex constructs an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{points: make(map[string]memoryPoint)}
}

// Upsert stores or replaces the vector for id.
func (m *MemoryIndex) Upsert(_ context.Context, id string, vector []float32, metadata map[string]string) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty vector for %q", id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points[id] = memoryPoint{
		vector:   append([]float32(nil), vector...),
		metadata: maps.Clone(metadata),
	}
	return nil
}

// DeleteByIDs removes the given ids; unknown ids are ignored.
func (m *MemoryIndex) DeleteByIDs(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.points, id)
	}
	return nil
}

// Query returns up to TopK matches by descending cosine similarity.
func (m *MemoryIndex) Query(_ context.Context, vector []float32, opts faq.QueryOptions) ([]faq.VectorMatch, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]faq.VectorMatch, 0, len(m.points))
	for id, point := range m.points {
		match := faq.VectorMatch{ID: id, Score: cosineSimilarity(vector, point.vector)}
		if opts.ReturnMetadata {
			match.Metadata = maps.Clone(point.metadata)
		}
		matches = append(matches, match)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})
	if opts.TopK > 0 && len(matches) > opts.TopK {
		matches = matches[:opts.TopK]
	}
	return matches, nil
}

// Len reports the number of stored vectors.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ faq.VectorIndex = (*MemoryIndex)(nil)
