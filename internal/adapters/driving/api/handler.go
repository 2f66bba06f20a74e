package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

type handler struct {
	svc Services
}

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	ConversationID string `json:"conversation_id"`
	Query          string `json:"query" binding:"required"`
	Answer         bool   `json:"answer"`
}

// ClassifyRequest is the body of POST /v1/classify.
type ClassifyRequest struct {
	ConversationID string `json:"conversation_id"`
	Query          string `json:"query" binding:"required"`
}

// RetrieveRequest is the body of POST /v1/retrieve.
type RetrieveRequest struct {
	Query    string `json:"query" binding:"required"`
	Category string `json:"category"`
}

// RetrieveResponse is the body returned by POST /v1/retrieve.
type RetrieveResponse struct {
	Plan     domain.RetrievalPlan `json:"plan"`
	Evidence domain.EvidenceSet   `json:"evidence"`
}

// ConversationResponse is the body returned by GET /v1/conversations/:id.
type ConversationResponse struct {
	ConversationID string                    `json:"conversation_id"`
	Turns          []domain.ConversationTurn `json:"turns"`
}

// RegisterRoutes registers the v1 routes.
func (h *handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/ask", h.Ask)
	r.POST("/classify", h.Classify)
	r.POST("/retrieve", h.Retrieve)
	r.GET("/conversations/:id", h.GetConversation)
	r.DELETE("/conversations/:id", h.DeleteConversation)
	r.GET("/filings", h.ListFilings)
}

// Ask classifies, retrieves and records one conversational turn.
func (h *handler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	ask := h.svc.Query.Ask
	if req.Answer {
		ask = h.svc.Query.Answer
	}
	result, err := ask(c.Request.Context(), req.ConversationID, req.Query)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Classify labels a question without retrieving evidence.
func (h *handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	summary := ""
	if req.ConversationID != "" {
		summary = h.svc.History.Summary(req.ConversationID)
	}
	c.JSON(http.StatusOK, h.svc.Classifier.Classify(c.Request.Context(), req.Query, summary))
}

// Retrieve runs the plan of the requested category.
func (h *handler) Retrieve(c *gin.Context) {
	var req RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category := domain.CategoryDirectLookup
	if req.Category != "" {
		parsed, ok := domain.ParseQueryCategory(req.Category)
		if !ok {
			abort(c, fmt.Errorf("category %q: %w", req.Category, domain.ErrInvalidInput))
			return
		}
		category = parsed
	}

	plan := h.svc.Retrieval.Plan(category)
	ev := h.svc.Retrieval.Retrieve(c.Request.Context(), req.Query, plan)
	c.JSON(http.StatusOK, RetrieveResponse{Plan: plan, Evidence: ev})
}

// GetConversation returns the remembered turns, oldest first.
func (h *handler) GetConversation(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, ConversationResponse{
		ConversationID: id,
		Turns:          h.svc.History.History(id),
	})
}

// DeleteConversation forgets a conversation.
func (h *handler) DeleteConversation(c *gin.Context) {
	h.svc.History.Clear(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// ListFilings returns the ingest catalog.
func (h *handler) ListFilings(c *gin.Context) {
	if h.svc.Ingest == nil {
		c.JSON(http.StatusOK, []domain.FilingRecord{})
		return
	}
	records, err := h.svc.Ingest.Filings(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
