package handler

import (
	"net/http"

	"internship_portal/internal/middleware"
	"internship_portal/internal/model"
	"internship_portal/internal/service"

	"github.com/gin-gonic/gin"
)

// PostingHandler handles internship posting requests
type PostingHandler struct {
	service service.PostingService
}

// NewPostingHandler creates a new PostingHandler
func NewPostingHandler(s service.PostingService) *PostingHandler {
	return &PostingHandler{service: s}
}

// ListPostings is public; see PostingService.ListPostings for the default status
func (h *PostingHandler) ListPostings(c *gin.Context) {
	var filters model.PostingFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		respondBindError(c, err)
		return
	}

	postings, err := h.service.ListPostings(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, postings)
}

func (h *PostingHandler) GetPosting(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	posting, err := h.service.GetPosting(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posting)
}

func (h *PostingHandler) CreatePosting(c *gin.Context) {
	var req model.CreatePostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	posting, err := h.service.CreatePosting(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, posting)
}

func (h *PostingHandler) UpdatePosting(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req model.UpdatePostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	posting, err := h.service.UpdatePosting(c.Request.Context(), middleware.GetSession(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posting)
}

func (h *PostingHandler) DeletePosting(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeletePosting(c.Request.Context(), middleware.GetSession(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Posting deleted successfully"})
}

// RegisterPostingRoutes registers posting routes
func (h *PostingHandler) RegisterPostingRoutes(rg *gin.RouterGroup, sessionMW, adminMW gin.HandlerFunc) {
	postingGroup := rg.Group("/postings")
	{
		postingGroup.GET("", h.ListPostings)
		postingGroup.GET("/:id", h.GetPosting)
		postingGroup.POST("", sessionMW, adminMW, h.CreatePosting)
		postingGroup.PUT("/:id", sessionMW, adminMW, h.UpdatePosting)
		postingGroup.DELETE("/:id", sessionMW, adminMW, h.DeletePosting)
	}
}
