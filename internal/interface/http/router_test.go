package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/smart-faq/internal/domain/analytics"
	"github.com/yanqian/smart-faq/internal/domain/faq"
	"github.com/yanqian/smart-faq/internal/infra/config"
	apperrors "github.com/yanqian/smart-faq/pkg/errors"
)

func TestRouter_SearchSuccess(t *testing.T) {
	svc := &stubFAQ{
		searchFn: func(_ context.Context, query string) (faq.SearchResponse, error) {
			require.Equal(t, "reset password", query)
			return faq.SearchResponse{
				Results:      []faq.SearchResult{{ID: "1", Question: "How do I reset my password?", Answer: "Link.", Similarity: 0.91}},
				ResponseTime: 12,
			}, nil
		},
	}

	rec := performRequest(http.MethodPost, "/api/search", `{"query":"reset password"}`, newRouterUnderTest(t, svc, &stubAnalytics{}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var got faq.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Results, 1)
	require.Equal(t, "1", got.Results[0].ID)
	require.NotContains(t, rec.Body.String(), "cached")
}

func TestRouter_SearchMissingQuery(t *testing.T) {
	rec := performRequest(http.MethodPost, "/api/search", `{}`, newRouterUnderTest(t, &stubFAQ{}, &stubAnalytics{}))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_input", body["code"])
	require.NotEmpty(t, body["error"])
}

func TestRouter_AnswerMapsErrorCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid", apperrors.Wrap(apperrors.CodeInvalidInput, "query cannot be empty", nil), http.StatusBadRequest, "invalid_input"},
		{"not found", apperrors.Wrap(apperrors.CodeNotFound, "missing", nil), http.StatusNotFound, "not_found"},
		{"llm", apperrors.Wrap(apperrors.CodeLLM, "answer generation failed", errors.New("upstream 503 secret detail")), http.StatusInternalServerError, "llm_error"},
		{"foreign", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubFAQ{
				answerFn: func(context.Context, string) (faq.AnswerResult, error) {
					return faq.AnswerResult{}, tc.err
				},
			}
			rec := performRequest(http.MethodPost, "/api/answer", `{"query":"x"}`, newRouterUnderTest(t, svc, &stubAnalytics{}))
			require.Equal(t, tc.status, rec.Code)
			body := decodeErrorBody(t, rec.Body.Bytes())
			require.Equal(t, tc.code, body["code"])
			require.NotContains(t, body["error"], "secret detail")
		})
	}
}

func TestRouter_FAQLifecycle(t *testing.T) {
	svc := &stubFAQ{}
	server := newRouterUnderTest(t, svc, &stubAnalytics{})

	rec := performRequest(http.MethodPost, "/api/faqs", `{"id":"9","question":"Q?","answer":"A.","category":"misc"}`, server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true}`, rec.Body.String())
	require.Equal(t, "9", svc.indexed.ID)

	rec = performRequest(http.MethodDelete, "/api/faqs/9", "", server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "9", svc.deleted)

	rec = performRequest(http.MethodGet, "/api/faqs", "", server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = performRequest(http.MethodPost, "/api/seed", "", server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true,"count":5}`, rec.Body.String())
}

func TestRouter_FeedbackAndAnalytics(t *testing.T) {
	stats := &stubAnalytics{
		summary: analytics.Summary{
			PopularQueries: []analytics.PopularQuery{{Query: "reset", Count: 3, AvgTimeMs: 12.5}},
			FeedbackStats:  analytics.FeedbackStats{AvgRating: 4, HelpfulCount: 1, TotalFeedback: 1},
		},
	}
	server := newRouterUnderTest(t, &stubFAQ{}, stats)

	rec := performRequest(http.MethodPost, "/api/feedback", `{"queryId":"q-1","rating":4,"helpful":true}`, server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "q-1", stats.feedback.QueryID)
	require.True(t, stats.feedback.Helpful)

	rec = performRequest(http.MethodGet, "/api/analytics", "", server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"popularQueries":[{"query":"reset","count":3,"avgTimeMs":12.5}],"feedbackStats":{"avgRating":4,"helpfulCount":1,"totalFeedback":1}}`, rec.Body.String())
}

func TestRouter_PreflightAndBanner(t *testing.T) {
	server := newRouterUnderTest(t, &stubFAQ{}, &stubAnalytics{})

	rec := performRequest(http.MethodOptions, "/api/search", "", server)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	require.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))

	rec = performRequest(http.MethodGet, "/", "", server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "POST /api/answer")
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	server := NewRouter(cfg, NewHandler(&stubFAQ{}, &stubAnalytics{}, newTestLogger()))

	require.Equal(t, http.StatusOK, performRequest(http.MethodGet, "/api/faqs", "", server).Code)
	rec := performRequest(http.MethodGet, "/api/faqs", "", server)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, rec.Body.Bytes())["code"])

	require.Equal(t, http.StatusOK, performRequest(http.MethodGet, "/healthz", "", server).Code)
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
}

func newRouterUnderTest(t *testing.T, faqSvc faq.Service, analyticsSvc analytics.Service) *http.Server {
	t.Helper()
	return NewRouter(testConfig(), NewHandler(faqSvc, analyticsSvc, newTestLogger()))
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubFAQ struct {
	searchFn func(ctx context.Context, query string) (faq.SearchResponse, error)
	answerFn func(ctx context.Context, query string) (faq.AnswerResult, error)
	indexed  faq.FAQ
	deleted  string
}

func (s *stubFAQ) Search(ctx context.Context, query string) (faq.SearchResponse, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, query)
	}
	return faq.SearchResponse{Results: []faq.SearchResult{}}, nil
}

func (s *stubFAQ) Answer(ctx context.Context, query string) (faq.AnswerResult, error) {
	if s.answerFn != nil {
		return s.answerFn(ctx, query)
	}
	return faq.AnswerResult{}, nil
}

func (s *stubFAQ) Index(_ context.Context, item faq.FAQ) error {
	s.indexed = item
	return nil
}

func (s *stubFAQ) Delete(_ context.Context, id string) error {
	s.deleted = id
	return nil
}

func (s *stubFAQ) List(context.Context) ([]faq.FAQ, error) {
	return []faq.FAQ{}, nil
}

func (s *stubFAQ) Seed(context.Context) (int, error) {
	return 5, nil
}

type stubAnalytics struct {
	feedback analytics.FeedbackRequest
	summary  analytics.Summary
}

func (s *stubAnalytics) Record(context.Context, analytics.Entry) string { return "" }

func (s *stubAnalytics) SubmitFeedback(_ context.Context, req analytics.FeedbackRequest) error {
	s.feedback = req
	return nil
}

func (s *stubAnalytics) Summary(context.Context) (analytics.Summary, error) {
	return s.summary, nil
}

func (s *stubAnalytics) HandleJob(context.Context, string, []byte) error { return nil }

func decodeErrorBody(t *testing.T, raw []byte) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
