package analyticsrepo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/smart-faq/internal/domain/analytics"
	"github.com/yanqian/smart-faq/internal/infra/database"
)

var base = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func exerciseRepository(t *testing.T, repo analytics.Repository) {
	t.Helper()
	ctx := context.Background()

	entries := []analytics.Entry{
		{ID: "q1", Query: "reset password", Mode: analytics.ModeSearch, MatchedFAQIDs: []string{"1"}, ResponseTimeMs: 10, Timestamp: base.Add(-time.Hour)},
		{ID: "q2", Query: "reset password", Mode: analytics.ModeAnswer, MatchedFAQIDs: []string{"1", "2"}, ResponseTimeMs: 30, Timestamp: base.Add(-2 * time.Hour)},
		{ID: "q3", Query: "shipping", Mode: analytics.ModeSearch, MatchedFAQIDs: []string{}, ResponseTimeMs: 5, Timestamp: base.Add(-3 * time.Hour)},
		{ID: "q4", Query: "ancient", Mode: analytics.ModeSearch, MatchedFAQIDs: []string{}, ResponseTimeMs: 5, Timestamp: base.Add(-8 * 24 * time.Hour)},
	}
	for _, e := range entries {
		require.NoError(t, repo.InsertQuery(ctx, e))
	}

	popular, err := repo.PopularQueries(ctx, base.Add(-7*24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	require.Equal(t, "reset password", popular[0].Query)
	require.EqualValues(t, 2, popular[0].Count)
	require.InDelta(t, 20.0, popular[0].AvgTimeMs, 1e-9)
	require.Equal(t, "shipping", popular[1].Query)

	limited, err := repo.PopularQueries(ctx, base.Add(-7*24*time.Hour), 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)

	stats, err := repo.FeedbackStats(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.TotalFeedback)
	require.Zero(t, stats.AvgRating)

	require.NoError(t, repo.InsertFeedback(ctx, analytics.Feedback{QueryID: "q2", Rating: 5, Helpful: true, CreatedAt: base}))
	require.NoError(t, repo.InsertFeedback(ctx, analytics.Feedback{QueryID: "q2", Rating: 2, Comment: "meh", CreatedAt: base}))

	stats, err = repo.FeedbackStats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.TotalFeedback)
	require.EqualValues(t, 1, stats.HelpfulCount)
	require.InDelta(t, 3.5, stats.AvgRating, 1e-9)
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestSQLiteRepository(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "analytics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := NewSQLiteRepository(db)
	require.NoError(t, err)
	exerciseRepository(t, repo)
}
