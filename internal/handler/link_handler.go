// ===========================================
// Link Management Endpoints
// ===========================================
// Owner-scoped CRUD plus analytics. All routes sit behind the JWT
// middleware; the service layer enforces ownership per link.
// ===========================================

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/user/linkgate/internal/middleware"
	"github.com/user/linkgate/internal/models"
	"github.com/user/linkgate/internal/service"
)

// LinkHandler handles link management requests.
type LinkHandler struct {
	links *service.LinkService
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(links *service.LinkService) *LinkHandler {
	return &LinkHandler{links: links}
}

// Create handles POST /links.
//
// Request:
//
//	{
//	  "target_url": "https://example.com/launch",
//	  "slug": "launch-day",          // optional, generated if omitted
//	  "password": "hunter2",         // optional, enables the password gate
//	  "requires_auth": true,         // optional
//	  "one_time": false,             // optional
//	  "click_limit": 100,            // optional
//	  "expires_at": "2025-12-31T00:00:00Z"
//	}
func (h *LinkHandler) Create(c *gin.Context) {
	var req models.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	link, err := h.links.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		handleError(c, err)
		return
	}

	// 201 for new resources, not 200.
	c.JSON(http.StatusCreated, link)
}

// List handles GET /links.
func (h *LinkHandler) List(c *gin.Context) {
	links, err := h.links.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, links)
}

// Get handles GET /links/:id.
func (h *LinkHandler) Get(c *gin.Context) {
	id, ok := linkID(c)
	if !ok {
		return
	}

	link, err := h.links.Get(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// Update handles PUT /links/:id.
// Partial update: omitted fields stay as they are.
func (h *LinkHandler) Update(c *gin.Context) {
	id, ok := linkID(c)
	if !ok {
		return
	}

	var req models.UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	link, err := h.links.Update(c.Request.Context(), id, middleware.GetUserID(c), req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// Delete handles DELETE /links/:id.
func (h *LinkHandler) Delete(c *gin.Context) {
	id, ok := linkID(c)
	if !ok {
		return
	}

	if err := h.links.Delete(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Analytics handles GET /private/analytics/:linkId.
func (h *LinkHandler) Analytics(c *gin.Context) {
	id, err := uuid.Parse(c.Param("linkId"))
	if err != nil {
		badID(c)
		return
	}

	stats, err := h.links.Analytics(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// linkID parses the :id path parameter, answering 400 itself on junk.
func linkID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badID(c)
		return uuid.Nil, false
	}
	return id, true
}

func badID(c *gin.Context) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "Invalid link id",
		Code:    models.ErrCodeBadBody,
		Details: "Link ids are UUIDs",
	})
}
