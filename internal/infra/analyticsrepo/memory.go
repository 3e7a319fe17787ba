package analyticsrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/smart-faq/internal/domain/analytics"
)

// MemoryRepository keeps query logs and feedback in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	entries  []analytics.Entry
	feedback []analytics.Feedback
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) InsertQuery(_ context.Context, entry analytics.Entry) error {
	entry.MatchedFAQIDs = append([]string{}, entry.MatchedFAQIDs...)
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) InsertFeedback(_ context.Context, feedback analytics.Feedback) error {
	r.mu.Lock()
	r.feedback = append(r.feedback, feedback)
	r.mu.Unlock()
	return nil
}

// PopularQueries groups entries newer than since by exact query text.
func (r *MemoryRepository) PopularQueries(_ context.Context, since time.Time, limit int) ([]analytics.PopularQuery, error) {
	type bucket struct {
		count int64
		total int64
	}
	r.mu.RLock()
	buckets := make(map[string]*bucket)
	for _, entry := range r.entries {
		if !entry.Timestamp.After(since) {
			continue
		}
		b, ok := buckets[entry.Query]
		if !ok {
			b = &bucket{}
			buckets[entry.Query] = b
		}
		b.count++
		b.total += entry.ResponseTimeMs
	}
	r.mu.RUnlock()

	out := make([]analytics.PopularQuery, 0, len(buckets))
	for query, b := range buckets {
		out = append(out, analytics.PopularQuery{
			Query:     query,
			Count:     b.count,
			AvgTimeMs: float64(b.total) / float64(b.count),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Query < out[j].Query
		}
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) FeedbackStats(_ context.Context) (analytics.FeedbackStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		stats analytics.FeedbackStats
		sum   int64
	)
	for _, fb := range r.feedback {
		stats.TotalFeedback++
		sum += int64(fb.Rating)
		if fb.Helpful {
			stats.HelpfulCount++
		}
	}
	if stats.TotalFeedback > 0 {
		stats.AvgRating = float64(sum) / float64(stats.TotalFeedback)
	}
	return stats, nil
}

// Entries returns a snapshot of the stored query log.
func (r *MemoryRepository) Entries() []analytics.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]analytics.Entry(nil), r.entries...)
}

var _ analytics.Repository = (*MemoryRepository)(nil)
