package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/smart-faq/pkg/errors"
	"github.com/yanqian/smart-faq/pkg/util"
)

// Service records usage and serves the reporting surface.
type Service interface {
	// Record dispatches the entry and returns its id, or "" when dispatch failed.
	// It never fails the caller.
	Record(ctx context.Context, entry Entry) string
	SubmitFeedback(ctx context.Context, req FeedbackRequest) error
	Summary(ctx context.Context) (Summary, error)
	// HandleJob is the queue consumer for JobRecordQuery.
	HandleJob(ctx context.Context, name string, payload []byte) error
}

type service struct {
	cfg      Config
	repo     Repository
	queue    JobQueue
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the analytics recorder. A nil queue writes entries inline.
func NewService(cfg Config, repo Repository, queue JobQueue, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg.withDefaults(),
		repo:     repo,
		queue:    queue,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("component", "analytics.service"),
		now:      util.NowUTC,
	}
}

func (s *service) Record(ctx context.Context, entry Entry) string {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	if entry.MatchedFAQIDs == nil {
		entry.MatchedFAQIDs = []string{}
	}

	if s.queue == nil {
		if err := s.repo.InsertQuery(ctx, entry); err != nil {
			s.logger.Warn("query log write failed", "mode", entry.Mode, "error", err)
			return ""
		}
		return entry.ID
	}

	// the job may run after the request has returned
	if err := s.queue.Enqueue(context.WithoutCancel(ctx), JobRecordQuery, entry); err != nil {
		s.logger.Warn("query log enqueue failed", "mode", entry.Mode, "error", err)
		return ""
	}
	return entry.ID
}

func (s *service) HandleJob(ctx context.Context, name string, payload []byte) error {
	switch name {
	case JobRecordQuery:
		var entry Entry
		if err := json.Unmarshal(payload, &entry); err != nil {
			return fmt.Errorf("decode %s payload: %w", name, err)
		}
		if err := s.repo.InsertQuery(ctx, entry); err != nil {
			return fmt.Errorf("persist query log %s: %w", entry.ID, err)
		}
		return nil
	default:
		return fmt.Errorf("unknown analytics job %q", name)
	}
}

func (s *service) SubmitFeedback(ctx context.Context, req FeedbackRequest) error {
	req.QueryID = strings.TrimSpace(req.QueryID)
	req.Comment = strings.TrimSpace(req.Comment)
	if err := s.validate.Struct(req); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "invalid feedback", err)
	}
	feedback := Feedback{
		QueryID:   req.QueryID,
		Rating:    req.Rating,
		Helpful:   req.Helpful,
		Comment:   req.Comment,
		CreatedAt: s.now(),
	}
	if err := s.repo.InsertFeedback(ctx, feedback); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to save feedback", err)
	}
	return nil
}

func (s *service) Summary(ctx context.Context) (Summary, error) {
	since := s.now().Add(-s.cfg.PopularWindow)
	popular, err := s.repo.PopularQueries(ctx, since, s.cfg.PopularLimit)
	if err != nil {
		return Summary{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load popular queries", err)
	}
	if popular == nil {
		popular = []PopularQuery{}
	}
	stats, err := s.repo.FeedbackStats(ctx)
	if err != nil {
		return Summary{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load feedback stats", err)
	}
	return Summary{PopularQueries: popular, FeedbackStats: stats}, nil
}
