package analytics

import (
	"context"
	"time"
)

// Repository persists query logs and feedback and answers the reporting aggregations.
type Repository interface {
	InsertQuery(ctx context.Context, entry Entry) error
	InsertFeedback(ctx context.Context, feedback Feedback) error
	PopularQueries(ctx context.Context, since time.Time, limit int) ([]PopularQuery, error)
	FeedbackStats(ctx context.Context) (FeedbackStats, error)
}

// JobQueue hands work to a background consumer.
type JobQueue interface {
	Enqueue(ctx context.Context, name string, payload any) error
}
