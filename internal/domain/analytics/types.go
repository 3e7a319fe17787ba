package analytics

import "time"

// Mode identifies which pipeline produced a query log entry.
type Mode string

const (
	// ModeSearch marks plain semantic search calls.
	ModeSearch Mode = "search"
	// ModeAnswer marks retrieval-augmented answer calls.
	ModeAnswer Mode = "answer"
)

// JobRecordQuery is the queue job name used to persist query log entries.
const JobRecordQuery = "record_query"

// Entry is an append-only audit record of one computed search or answer.
type Entry struct {
	ID             string    `json:"id"`
	Query          string    `json:"query"`
	Mode           Mode      `json:"mode"`
	MatchedFAQIDs  []string  `json:"matchedFaqIds"`
	ResponseTimeMs int64     `json:"responseTimeMs"`
	Timestamp      time.Time `json:"timestamp"`
}

// FeedbackRequest is submitted by callers after reading an answer.
type FeedbackRequest struct {
	QueryID string `json:"queryId" validate:"required"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Helpful bool   `json:"helpful"`
	Comment string `json:"comment" validate:"max=2000"`
}

// Feedback is the persisted form of a FeedbackRequest.
type Feedback struct {
	QueryID   string    `json:"queryId"`
	Rating    int       `json:"rating"`
	Helpful   bool      `json:"helpful"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PopularQuery aggregates identical query strings inside the reporting window.
type PopularQuery struct {
	Query     string  `json:"query"`
	Count     int64   `json:"count"`
	AvgTimeMs float64 `json:"avgTimeMs"`
}

// FeedbackStats summarises every feedback submission.
type FeedbackStats struct {
	AvgRating     float64 `json:"avgRating"`
	HelpfulCount  int64   `json:"helpfulCount"`
	TotalFeedback int64   `json:"totalFeedback"`
}

// Summary is served by the analytics endpoint.
type Summary struct {
	PopularQueries []PopularQuery `json:"popularQueries"`
	FeedbackStats  FeedbackStats  `json:"feedbackStats"`
}
