package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yanqian/smart-faq/internal/domain/analytics"
	"github.com/yanqian/smart-faq/internal/domain/faq"
)

// APIError is the decoded error envelope returned by the server.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Client talks to the FAQ HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client rooted at server, e.g. http://localhost:8080.
func NewClient(server string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(server, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Seed(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/seed", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) Search(ctx context.Context, query string) (faq.SearchResponse, error) {
	var out faq.SearchResponse
	err := c.do(ctx, http.MethodPost, "/api/search", faq.QueryRequest{Query: query}, &out)
	return out, err
}

func (c *Client) Ask(ctx context.Context, query string) (faq.AnswerResult, error) {
	var out faq.AnswerResult
	err := c.do(ctx, http.MethodPost, "/api/answer", faq.QueryRequest{Query: query}, &out)
	return out, err
}

func (c *Client) ListFAQs(ctx context.Context) ([]faq.FAQ, error) {
	var out []faq.FAQ
	err := c.do(ctx, http.MethodGet, "/api/faqs", nil, &out)
	return out, err
}

func (c *Client) UpsertFAQ(ctx context.Context, item faq.FAQ) error {
	return c.do(ctx, http.MethodPost, "/api/faqs", item, nil)
}

func (c *Client) DeleteFAQ(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/faqs/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Feedback(ctx context.Context, req analytics.FeedbackRequest) error {
	return c.do(ctx, http.MethodPost, "/api/feedback", req, nil)
}

func (c *Client) Analytics(ctx context.Context) (analytics.Summary, error) {
	var out analytics.Summary
	err := c.do(ctx, http.MethodGet, "/api/analytics", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
