package faq

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/yanqian/smart-faq/pkg/errors"
)

// Index upserts an entry into the record store and then into the vector index.
// The two writes are not atomic: a failure after the store write leaves the
// index stale until the entry is indexed again.
func (s *service) Index(ctx context.Context, item FAQ) error {
	item = item.trimmed()
	if err := s.validate.Struct(item); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "invalid faq", err)
	}

	if err := s.repo.Upsert(ctx, item); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to store faq", err)
	}
	vector, err := s.embedOne(ctx, item.embeddingText())
	if err != nil {
		return err
	}
	if err := s.index.Upsert(ctx, item.ID, vector, item.metadata()); err != nil {
		return apperrors.Wrap(apperrors.CodeVector, "failed to index faq", err)
	}
	s.logger.Info("faq indexed", "faq_id", item.ID, "dims", len(vector))
	return nil
}

// Delete removes the entry from the record store and then from the vector index.
func (s *service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "faq id cannot be empty", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to delete faq", err)
	}
	if err := s.index.DeleteByIDs(ctx, []string{id}); err != nil {
		return apperrors.Wrap(apperrors.CodeVector, "failed to delete faq vector", err)
	}
	s.logger.Info("faq deleted", "faq_id", id)
	return nil
}

func (s *service) List(ctx context.Context) ([]FAQ, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to list faqs", err)
	}
	if items == nil {
		items = []FAQ{}
	}
	return items, nil
}

// Seed indexes every entry supplied by the configured seed source.
func (s *service) Seed(ctx context.Context) (int, error) {
	if s.seeds == nil {
		return 0, apperrors.Wrap(apperrors.CodeStorage, "seed source not configured", errors.New("nil seed source"))
	}
	items, err := s.seeds.Load(ctx)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeStorage, "failed to load seed corpus", err)
	}
	for i, item := range items {
		if err := s.Index(ctx, item); err != nil {
			s.logger.Error("seed aborted", "indexed", i, "faq_id", item.ID, "error", err)
			return i, err
		}
	}
	s.logger.Info("faq corpus seeded", "count", len(items))
	return len(items), nil
}
