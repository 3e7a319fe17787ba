package faqrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/smart-faq/internal/domain/faq"
)

type memoryRecord struct {
	item faq.FAQ
	seq  int64
}

// MemoryRepository is an in-memory faq.Repository used for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	seq     int64
	records map[string]memoryRecord
	now     func() time.Time
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

// Upsert implements faq.Repository. CreatedAt survives updates.
func (r *MemoryRepository) Upsert(_ context.Context, item faq.FAQ) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	existing, ok := r.records[item.ID]
	if ok {
		item.CreatedAt = existing.item.CreatedAt
	} else {
		r.seq++
		existing.seq = r.seq
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	r.records[item.ID] = memoryRecord{item: item, seq: existing.seq}
	return nil
}

// Delete implements faq.Repository. Unknown ids are ignored.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.records, id)
	r.mu.Unlock()
	return nil
}

// FindByIDs implements faq.Repository.
func (r *MemoryRepository) FindByIDs(_ context.Context, ids []string) ([]faq.FAQ, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]faq.FAQ, 0, len(ids))
	for _, id := range ids {
		if rec, ok := r.records[id]; ok {
			out = append(out, rec.item)
		}
	}
	return out, nil
}

// List implements faq.Repository, newest first.
func (r *MemoryRepository) List(_ context.Context) ([]faq.FAQ, error) {
	r.mu.RLock()
	records := make([]memoryRecord, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec)
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].item.CreatedAt.Equal(records[j].item.CreatedAt) {
			return records[i].item.CreatedAt.After(records[j].item.CreatedAt)
		}
		return records[i].seq > records[j].seq
	})
	out := make([]faq.FAQ, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.item)
	}
	return out, nil
}

var _ faq.Repository = (*MemoryRepository)(nil)
