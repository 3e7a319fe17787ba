package analyticsrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/smart-faq/internal/domain/analytics"
)

// PostgresRepository persists analytics in the queries and feedback tables.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) InsertQuery(ctx context.Context, entry analytics.Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO queries (id, query, mode, matched_faq_ids, response_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ID, entry.Query, string(entry.Mode), entry.MatchedFAQIDs, entry.ResponseTimeMs, entry.Timestamp)
	return err
}

func (r *PostgresRepository) InsertFeedback(ctx context.Context, feedback analytics.Feedback) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO feedback (query_id, rating, helpful, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, feedback.QueryID, feedback.Rating, feedback.Helpful, feedback.Comment, feedback.CreatedAt)
	return err
}

func (r *PostgresRepository) PopularQueries(ctx context.Context, since time.Time, limit int) ([]analytics.PopularQuery, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT query, COUNT(*) AS count, AVG(response_time_ms)::float8 AS avg_time
		FROM queries
		WHERE created_at > $1
		GROUP BY query
		ORDER BY count DESC, query ASC
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analytics.PopularQuery
	for rows.Next() {
		var pq analytics.PopularQuery
		if err := rows.Scan(&pq.Query, &pq.Count, &pq.AvgTimeMs); err != nil {
			return nil, err
		}
		out = append(out, pq)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) FeedbackStats(ctx context.Context) (analytics.FeedbackStats, error) {
	var stats analytics.FeedbackStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(AVG(rating), 0)::float8,
			COALESCE(SUM(CASE WHEN helpful THEN 1 ELSE 0 END), 0),
			COUNT(*)
		FROM feedback
	`).Scan(&stats.AvgRating, &stats.HelpfulCount, &stats.TotalFeedback)
	return stats, err
}

var _ analytics.Repository = (*PostgresRepository)(nil)
