package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/smart-faq/pkg/errors"
)

type fakeRepo struct {
	entries   []Entry
	feedback  []Feedback
	insertErr error
	since     time.Time
	limit     int
	popular   []PopularQuery
	stats     FeedbackStats
}

func (f *fakeRepo) InsertQuery(_ context.Context, entry Entry) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeRepo) InsertFeedback(_ context.Context, feedback Feedback) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.feedback = append(f.feedback, feedback)
	return nil
}

func (f *fakeRepo) PopularQueries(_ context.Context, since time.Time, limit int) ([]PopularQuery, error) {
	f.since = since
	f.limit = limit
	return f.popular, nil
}

func (f *fakeRepo) FeedbackStats(context.Context) (FeedbackStats, error) {
	return f.stats, nil
}

type fakeQueue struct {
	names    []string
	payloads []any
	err      error
	ctxErr   error
}

func (f *fakeQueue) Enqueue(ctx context.Context, name string, payload any) error {
	f.ctxErr = ctx.Err()
	if f.err != nil {
		return f.err
	}
	f.names = append(f.names, name)
	f.payloads = append(f.payloads, payload)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow() time.Time {
	return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
}

func newTestService(repo Repository, queue JobQueue) *service {
	svc := NewService(Config{}, repo, queue, testLogger()).(*service)
	svc.now = fixedNow
	return svc
}

func TestRecordInlineAssignsIDAndTimestamp(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, nil)

	id := svc.Record(context.Background(), Entry{Query: "reset password", Mode: ModeSearch, ResponseTimeMs: 12})

	require.NotEmpty(t, id)
	require.Len(t, repo.entries, 1)
	require.Equal(t, id, repo.entries[0].ID)
	require.Equal(t, fixedNow(), repo.entries[0].Timestamp)
	require.NotNil(t, repo.entries[0].MatchedFAQIDs)
}

func TestRecordSwallowsRepositoryFailure(t *testing.T) {
	repo := &fakeRepo{insertErr: errors.New("db down")}
	svc := newTestService(repo, nil)

	id := svc.Record(context.Background(), Entry{Query: "q", Mode: ModeAnswer})
	require.Empty(t, id)
}

func TestRecordEnqueuesWithDetachedContext(t *testing.T) {
	queue := &fakeQueue{}
	svc := newTestService(&fakeRepo{}, queue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	id := svc.Record(ctx, Entry{Query: "q", Mode: ModeAnswer, MatchedFAQIDs: []string{"1", "2"}})

	require.NotEmpty(t, id)
	require.NoError(t, queue.ctxErr)
	require.Equal(t, []string{JobRecordQuery}, queue.names)
	entry, ok := queue.payloads[0].(Entry)
	require.True(t, ok)
	require.Equal(t, id, entry.ID)
	require.Equal(t, []string{"1", "2"}, entry.MatchedFAQIDs)
}

func TestRecordEnqueueFailureReturnsEmptyID(t *testing.T) {
	svc := newTestService(&fakeRepo{}, &fakeQueue{err: errors.New("queue full")})
	require.Empty(t, svc.Record(context.Background(), Entry{Query: "q", Mode: ModeSearch}))
}

func TestHandleJobPersistsEntry(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, nil)
	payload, err := json.Marshal(Entry{ID: "abc", Query: "q", Mode: ModeSearch, MatchedFAQIDs: []string{"1"}})
	require.NoError(t, err)

	require.NoError(t, svc.HandleJob(context.Background(), JobRecordQuery, payload))
	require.Len(t, repo.entries, 1)
	require.Equal(t, "abc", repo.entries[0].ID)

	require.Error(t, svc.HandleJob(context.Background(), "unknown", payload))
	require.Error(t, svc.HandleJob(context.Background(), JobRecordQuery, []byte("{")))
}

func TestSubmitFeedbackValidates(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, nil)

	err := svc.SubmitFeedback(context.Background(), FeedbackRequest{QueryID: " ", Rating: 4})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	err = svc.SubmitFeedback(context.Background(), FeedbackRequest{QueryID: "q1", Rating: 9})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	require.NoError(t, svc.SubmitFeedback(context.Background(), FeedbackRequest{QueryID: "q1", Rating: 5, Helpful: true, Comment: " thanks "}))
	require.Len(t, repo.feedback, 1)
	require.Equal(t, "thanks", repo.feedback[0].Comment)
	require.Equal(t, fixedNow(), repo.feedback[0].CreatedAt)
}

func TestSubmitFeedbackStorageFailure(t *testing.T) {
	svc := newTestService(&fakeRepo{insertErr: errors.New("boom")}, nil)
	err := svc.SubmitFeedback(context.Background(), FeedbackRequest{QueryID: "q1", Rating: 3})
	require.True(t, apperrors.IsCode(err, apperrors.CodeStorage))
}

func TestSummaryUsesTrailingWindow(t *testing.T) {
	repo := &fakeRepo{stats: FeedbackStats{AvgRating: 4.5, HelpfulCount: 3, TotalFeedback: 4}}
	svc := newTestService(repo, nil)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, fixedNow().Add(-7*24*time.Hour), repo.since)
	require.Equal(t, 10, repo.limit)
	require.NotNil(t, summary.PopularQueries)
	require.Equal(t, int64(4), summary.FeedbackStats.TotalFeedback)
}
