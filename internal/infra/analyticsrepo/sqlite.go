package analyticsrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yanqian/smart-faq/internal/domain/analytics"
)

// SQLiteRepository persists analytics in SQLite. Matched ids are stored as a
// JSON array and timestamps as unix milliseconds.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates the queries and feedback tables if needed.
func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS queries (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			mode TEXT NOT NULL,
			matched_faq_ids TEXT NOT NULL,
			response_time_ms INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries (created_at);
		CREATE TABLE IF NOT EXISTS feedback (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query_id TEXT NOT NULL,
			rating INTEGER NOT NULL,
			helpful INTEGER NOT NULL,
			comment TEXT NULL,
			created_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("create analytics tables: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) InsertQuery(ctx context.Context, entry analytics.Entry) error {
	ids, err := json.Marshal(entry.MatchedFAQIDs)
	if err != nil {
		return fmt.Errorf("encode matched ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO queries (id, query, mode, matched_faq_ids, response_time_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Query, string(entry.Mode), string(ids), entry.ResponseTimeMs, entry.Timestamp.UnixMilli(),
	)
	return err
}

func (r *SQLiteRepository) InsertFeedback(ctx context.Context, feedback analytics.Feedback) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feedback (query_id, rating, helpful, comment, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		feedback.QueryID, feedback.Rating, feedback.Helpful, feedback.Comment, feedback.CreatedAt.UnixMilli(),
	)
	return err
}

func (r *SQLiteRepository) PopularQueries(ctx context.Context, since time.Time, limit int) ([]analytics.PopularQuery, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT query, COUNT(*) AS count, AVG(response_time_ms) AS avg_time
		 FROM queries
		 WHERE created_at > ?
		 GROUP BY query
		 ORDER BY count DESC, query ASC
		 LIMIT ?`,
		since.UnixMilli(), limit,
	)
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

func (r *SQLiteRepository) FeedbackStats(ctx context.Context) (analytics.FeedbackStats, error) {
	var stats analytics.FeedbackStats
	err := r.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(AVG(rating), 0.0),
			COALESCE(SUM(CASE WHEN helpful = 1 THEN 1 ELSE 0 END), 0),
			COUNT(*)
		 FROM feedback`,
	).Scan(&stats.AvgRating, &stats.HelpfulCount, &stats.TotalFeedback)
	return stats, err
}

var _ analytics.Repository = (*SQLiteRepository)(nil)
