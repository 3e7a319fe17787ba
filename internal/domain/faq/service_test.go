package faq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/smart-faq/internal/domain/analytics"
	apperrors "github.com/yanqian/smart-faq/pkg/errors"
)

type memCache struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

type stubEmbedder struct {
	calls int
	texts []string
	err   error
}

func (e *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	e.texts = append(e.texts, texts...)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type stubIndex struct {
	matches  []VectorMatch
	queryErr error
	upserted map[string]map[string]string
	deleted  []string
	topK     int
}

func (i *stubIndex) Upsert(_ context.Context, id string, _ []float32, metadata map[string]string) error {
	if i.upserted == nil {
		i.upserted = map[string]map[string]string{}
	}
	i.upserted[id] = metadata
	return nil
}

func (i *stubIndex) DeleteByIDs(_ context.Context, ids []string) error {
	i.deleted = append(i.deleted, ids...)
	return nil
}

func (i *stubIndex) Query(_ context.Context, _ []float32, opts QueryOptions) ([]VectorMatch, error) {
	i.topK = opts.TopK
	return i.matches, i.queryErr
}

type stubRepo struct {
	items     map[string]FAQ
	findCalls int
	upsertErr error
}

func newStubRepo(items ...FAQ) *stubRepo {
	r := &stubRepo{items: map[string]FAQ{}}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *stubRepo) Upsert(_ context.Context, item FAQ) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.items[item.ID] = item
	return nil
}

func (r *stubRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func (r *stubRepo) FindByIDs(_ context.Context, ids []string) ([]FAQ, error) {
	r.findCalls++
	var out []FAQ
	for _, id := range ids {
		if it, ok := r.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *stubRepo) List(context.Context) ([]FAQ, error) {
	return nil, nil
}

type stubLLM struct {
	reply    string
	err      error
	calls    int
	messages []LLMMessage
}

func (l *stubLLM) Chat(_ context.Context, messages []LLMMessage) (string, error) {
	l.calls++
	l.messages = messages
	return l.reply, l.err
}

type stubRecorder struct {
	entries []analytics.Entry
}

func (r *stubRecorder) Record(_ context.Context, entry analytics.Entry) string {
	r.entries = append(r.entries, entry)
	return "q-" + string(entry.Mode)
}

type fixture struct {
	cache    *memCache
	embedder *stubEmbedder
	index    *stubIndex
	repo     *stubRepo
	llm      *stubLLM
	recorder *stubRecorder
	svc      Service
}

func newFixture(matches []VectorMatch, items ...FAQ) *fixture {
	f := &fixture{
		cache:    newMemCache(),
		embedder: &stubEmbedder{},
		index:    &stubIndex{matches: matches},
		repo:     newStubRepo(items...),
		llm:      &stubLLM{reply: "Use the reset link."},
		recorder: &stubRecorder{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewService(Config{}, f.cache, f.embedder, f.index, f.repo, f.llm, f.recorder, nil, nil, logger)
	return f
}

var sampleFAQs = []FAQ{
	{ID: "a", Question: "How do I reset my password?", Answer: "Use the reset link.", Category: "account"},
	{ID: "b", Question: "What payment methods?", Answer: "Cards.", Category: "billing"},
	{ID: "c", Question: "How long is shipping?", Answer: "3-5 days.", Category: "shipping"},
}

func TestSearchFiltersByThresholdAndKeepsIndexOrder(t *testing.T) {
	f := newFixture([]VectorMatch{
		{ID: "b", Score: 0.91},
		{ID: "a", Score: 0.82},
		{ID: "c", Score: 0.7},
	}, sampleFAQs...)

	resp, err := f.svc.Search(context.Background(), "payments")
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	require.Equal(t, "b", resp.Results[0].ID)
	require.Equal(t, "a", resp.Results[1].ID)
	require.Equal(t, "billing", resp.Results[0].Category)
	require.InDelta(t, 0.91, resp.Results[0].Similarity, 1e-9)
	require.False(t, resp.Cached)
	require.Equal(t, 5, f.index.topK)

	require.Len(t, f.recorder.entries, 1)
	entry := f.recorder.entries[0]
	require.Equal(t, analytics.ModeSearch, entry.Mode)
	require.Equal(t, []string{"b", "a", "c"}, entry.MatchedFAQIDs)
	require.Equal(t, time.Hour, f.cache.ttls["search:payments"])
}

func TestSearchFallsBackToMetadataQuestion(t *testing.T) {
	f := newFixture([]VectorMatch{
		{ID: "ghost", Score: 0.95, Metadata: map[string]string{MetadataQuestion: "Where is my order?", MetadataCategory: "orders"}},
	})

	resp, err := f.svc.Search(context.Background(), "order status")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	require.Equal(t, "Where is my order?", resp.Results[0].Question)
	require.Empty(t, resp.Results[0].Answer)
	require.Empty(t, resp.Results[0].Category)
}

func TestSearchWithoutNeighboursSkipsStoreAndSideEffects(t *testing.T) {
	f := newFixture(nil, sampleFAQs...)

	resp, err := f.svc.Search(context.Background(), "anything")
	require.NoError(t, err)
	require.NotNil(t, resp.Results)
	require.Empty(t, resp.Results)
	require.Zero(t, f.repo.findCalls)
	require.Empty(t, f.recorder.entries)
	require.Empty(t, f.cache.data)
}

func TestSearchServesFromCache(t *testing.T) {
	f := newFixture([]VectorMatch{{ID: "a", Score: 0.9}}, sampleFAQs...)
	ctx := context.Background()

	first, err := f.svc.Search(ctx, "Reset Password")
	require.NoError(t, err)
	stored := string(f.cache.data["search:reset password"])
	require.NotEmpty(t, stored)

	second, err := f.svc.Search(ctx, "  reset password ")
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, first.Results, second.Results)
	require.Equal(t, first.ResponseTime, second.ResponseTime)
	require.Equal(t, 1, f.embedder.calls)
	require.Len(t, f.recorder.entries, 1)
	require.Equal(t, stored, string(f.cache.data["search:reset password"]))
}

func TestSearchDegradesWhenCacheFails(t *testing.T) {
	f := newFixture([]VectorMatch{{ID: "a", Score: 0.9}}, sampleFAQs...)
	f.cache.getErr = errors.New("cache down")
	f.cache.setErr = errors.New("cache down")

	resp, err := f.svc.Search(context.Background(), "reset")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
}

func TestSearchErrorCodes(t *testing.T) {
	ctx := context.Background()

	f := newFixture(nil)
	_, err := f.svc.Search(ctx, "   ")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	f = newFixture(nil)
	f.embedder.err = errors.New("boom")
	_, err = f.svc.Search(ctx, "q")
	require.True(t, apperrors.IsCode(err, apperrors.CodeEmbedding))

	f = newFixture(nil)
	f.index.queryErr = errors.New("boom")
	_, err = f.svc.Search(ctx, "q")
	require.True(t, apperrors.IsCode(err, apperrors.CodeVector))
}

func TestAnswerBuildsContextFromTopThree(t *testing.T) {
	items := append([]FAQ{}, sampleFAQs...)
	items = append(items, FAQ{ID: "d", Question: "Cancel?", Answer: "Within 24h."})
	f := newFixture([]VectorMatch{
		{ID: "a", Score: 0.95},
		{ID: "b", Score: 0.9},
		{ID: "c", Score: 0.85},
		{ID: "d", Score: 0.8},
	}, items...)

	result, err := f.svc.Answer(context.Background(), "reset my password")
	require.NoError(t, err)
	require.Equal(t, "Use the reset link.", result.Answer)
	require.Len(t, result.Sources, 3)
	require.InDelta(t, 0.95, result.Confidence, 1e-9)
	require.Equal(t, "q-answer", result.QueryID)

	require.Len(t, f.llm.messages, 2)
	require.Equal(t, "system", f.llm.messages[0].Role)
	require.Equal(t, defaultPrompt, f.llm.messages[0].Content)
	wantContext := "Q: How do I reset my password?\nA: Use the reset link.\n\n" +
		"Q: What payment methods?\nA: Cards.\n\n" +
		"Q: How long is shipping?\nA: 3-5 days."
	require.Equal(t, "FAQs:\n"+wantContext+"\n\nUser Question: reset my password\n\nProvide a clear, helpful answer based on the FAQs above.", f.llm.messages[1].Content)
	require.NotContains(t, f.llm.messages[1].Content, "Cancel?")

	last := f.recorder.entries[len(f.recorder.entries)-1]
	require.Equal(t, analytics.ModeAnswer, last.Mode)
	require.Equal(t, []string{"a", "b", "c", "d"}, last.MatchedFAQIDs)
	require.Equal(t, 24*time.Hour, f.cache.ttls["answer:reset my password"])
}

func TestAnswerFallbackIsNotCached(t *testing.T) {
	f := newFixture([]VectorMatch{{ID: "a", Score: 0.3}}, sampleFAQs...)
	ctx := context.Background()

	result, err := f.svc.Answer(ctx, "weather")
	require.NoError(t, err)
	require.Equal(t, defaultFallbackAnswer, result.Answer)
	require.NotNil(t, result.Sources)
	require.Empty(t, result.Sources)
	require.Zero(t, result.Confidence)
	require.Empty(t, result.QueryID)
	require.Zero(t, f.llm.calls)
	_, cached := f.cache.data["answer:weather"]
	require.False(t, cached)
}

func TestAnswerCacheHit(t *testing.T) {
	f := newFixture([]VectorMatch{{ID: "a", Score: 0.9}}, sampleFAQs...)
	ctx := context.Background()

	first, err := f.svc.Answer(ctx, "reset")
	require.NoError(t, err)
	second, err := f.svc.Answer(ctx, "RESET")
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, first.Answer, second.Answer)
	require.Equal(t, first.QueryID, second.QueryID)
	require.Equal(t, 1, f.llm.calls)
}

func TestAnswerGenerationFailure(t *testing.T) {
	f := newFixture([]VectorMatch{{ID: "a", Score: 0.9}}, sampleFAQs...)
	f.llm.err = errors.New("model offline")

	_, err := f.svc.Answer(context.Background(), "reset")
	require.True(t, apperrors.IsCode(err, apperrors.CodeLLM))
	_, cached := f.cache.data["answer:reset"]
	require.False(t, cached)

	f.llm.err = nil
	f.llm.reply = "  "
	_, err = f.svc.Answer(context.Background(), "reset")
	require.True(t, apperrors.IsCode(err, apperrors.CodeLLM))
}

func TestIndexWritesStoreThenVector(t *testing.T) {
	f := newFixture(nil)
	err := f.svc.Index(context.Background(), FAQ{ID: " 7 ", Question: "Q?", Answer: "A."})
	require.NoError(t, err)

	require.Contains(t, f.repo.items, "7")
	require.Equal(t, []string{"Q? A."}, f.embedder.texts)
	require.Equal(t, map[string]string{MetadataQuestion: "Q?", MetadataCategory: DefaultCategory}, f.index.upserted["7"])
}

func TestIndexValidation(t *testing.T) {
	f := newFixture(nil)
	err := f.svc.Index(context.Background(), FAQ{ID: "1", Question: "Q?"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	err = f.svc.Index(context.Background(), FAQ{ID: strings.Repeat("x", 129), Question: "Q", Answer: "A"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Empty(t, f.repo.items)
}

func TestIndexStorageFailureSkipsVector(t *testing.T) {
	f := newFixture(nil)
	f.repo.upsertErr = errors.New("disk full")
	err := f.svc.Index(context.Background(), FAQ{ID: "1", Question: "Q", Answer: "A"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeStorage))
	require.Zero(t, f.embedder.calls)
	require.Empty(t, f.index.upserted)
}

func TestDeleteRemovesBoth(t *testing.T) {
	f := newFixture(nil, sampleFAQs...)
	require.NoError(t, f.svc.Delete(context.Background(), "a"))
	require.NotContains(t, f.repo.items, "a")
	require.Equal(t, []string{"a"}, f.index.deleted)
}

func TestListNeverNil(t *testing.T) {
	f := newFixture(nil)
	items, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, items)
}
