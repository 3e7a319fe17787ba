package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/smart-faq/internal/domain/analytics"
	"github.com/yanqian/smart-faq/internal/domain/faq"
)

const banner = `Smart FAQ Assistant API

Available Endpoints:
POST /api/seed          -> Load demo FAQs
POST /api/search        -> Semantic search
POST /api/answer        -> Get AI answer (RAG)
POST /api/feedback      -> Submit feedback
GET  /api/faqs          -> List all FAQs
POST /api/faqs          -> Add new FAQ
DELETE /api/faqs/:id    -> Delete FAQ
GET  /api/analytics     -> Usage stats

Status: Online
`

// Handler wires the HTTP transport to domain services.
type Handler struct {
	faqSvc       faq.Service
	analyticsSvc analytics.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(faqSvc faq.Service, analyticsSvc analytics.Service, logger *slog.Logger) *Handler {
	return &Handler{
		faqSvc:       faqSvc,
		analyticsSvc: analyticsSvc,
		logger:       logger.With("component", "http.handler"),
	}
}

// Home prints the endpoint banner.
func (h *Handler) Home(c *gin.Context) {
	c.String(http.StatusOK, banner)
}

// Health is a liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Search runs semantic retrieval.
func (h *Handler) Search(c *gin.Context) {
	var req faq.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}
	resp, err := h.faqSvc.Search(c.Request.Context(), req.Query)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Answer synthesizes a grounded answer.
func (h *Handler) Answer(c *gin.Context) {
	var req faq.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}
	resp, err := h.faqSvc.Answer(c.Request.Context(), req.Query)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Feedback stores a rating for an earlier answer.
func (h *Handler) Feedback(c *gin.Context) {
	var req analytics.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}
	if err := h.analyticsSvc.SubmitFeedback(c.Request.Context(), req); err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListFAQs returns the catalog, newest first.
func (h *Handler) ListFAQs(c *gin.Context) {
	items, err := h.faqSvc.List(c.Request.Context())
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, items)
}

// UpsertFAQ adds or replaces a catalog entry.
func (h *Handler) UpsertFAQ(c *gin.Context) {
	var item faq.FAQ
	if err := c.ShouldBindJSON(&item); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}
	if err := h.faqSvc.Index(c.Request.Context(), item); err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteFAQ removes a catalog entry.
func (h *Handler) DeleteFAQ(c *gin.Context) {
	if err := h.faqSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Analytics reports popular queries and feedback stats.
func (h *Handler) Analytics(c *gin.Context) {
	summary, err := h.analyticsSvc.Summary(c.Request.Context())
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Seed loads the configured starter corpus.
func (h *Handler) Seed(c *gin.Context) {
	count, err := h.faqSvc.Seed(c.Request.Context())
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}
