// ===========================================
// Resolution Endpoints
// ===========================================
// GET  /public/resolve/:slug    - unauthenticated resolution
// POST /public/verify-password  - satisfy the password gate
// GET  /private/resolve/:slug   - authenticated resolution
// POST /private/verify-password - password gate, auth already proven
//
// Blocked outcomes still answer 200 with protection flags and preview
// metadata; "gone" states answer 410 with the status code and preview.
// The target URL never appears in any of those bodies.
// ===========================================

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/linkgate/internal/middleware"
	"github.com/user/linkgate/internal/models"
	"github.com/user/linkgate/internal/policy"
	"github.com/user/linkgate/internal/service"
)

// ResolveHandler handles slug resolution requests.
type ResolveHandler struct {
	resolver *service.ResolveService
}

// NewResolveHandler creates a new resolve handler.
func NewResolveHandler(resolver *service.ResolveService) *ResolveHandler {
	return &ResolveHandler{resolver: resolver}
}

// ResolvePublic handles GET /public/resolve/:slug.
func (h *ResolveHandler) ResolvePublic(c *gin.Context) {
	outcome, err := h.resolver.ResolvePublic(c.Request.Context(), c.Param("slug"), clientInfo(c))
	if err != nil {
		handleError(c, err)
		return
	}
	writeOutcome(c, outcome)
}

// ResolvePrivate handles GET /private/resolve/:slug.
// The auth middleware has already verified identity, so the auth gate
// is satisfied here.
func (h *ResolveHandler) ResolvePrivate(c *gin.Context) {
	outcome, err := h.resolver.ResolvePrivate(c.Request.Context(), c.Param("slug"), clientInfo(c))
	if err != nil {
		handleError(c, err)
		return
	}
	writeOutcome(c, outcome)
}

// VerifyPasswordPublic handles POST /public/verify-password.
func (h *ResolveHandler) VerifyPasswordPublic(c *gin.Context) {
	h.verifyPassword(c, false)
}

// VerifyPasswordPrivate handles POST /private/verify-password.
func (h *ResolveHandler) VerifyPasswordPrivate(c *gin.Context) {
	h.verifyPassword(c, true)
}

func (h *ResolveHandler) verifyPassword(c *gin.Context, authed bool) {
	var req models.VerifyPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	outcome, err := h.resolver.VerifyPassword(c.Request.Context(), req.Slug, req.Password, authed, clientInfo(c))
	if err != nil {
		handleError(c, err)
		return
	}
	writeOutcome(c, outcome)
}

// ===========================================
// Outcome Mapping
// ===========================================

// writeOutcome shapes a disclosure decision into HTTP.
func writeOutcome(c *gin.Context, outcome *service.ResolveOutcome) {
	switch outcome.Status {
	case policy.StatusNotFound:
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "Link not found",
			Code:  models.ErrCodeNotFound,
		})
		return

	case policy.StatusInactive, policy.StatusExpired, policy.StatusExhausted:
		// The link exists but is gone; preview metadata is still fair
		// to disclose, the target is not.
		c.JSON(http.StatusGone, models.ErrorResponse{
			Error:   goneMessage(outcome.Status),
			Code:    string(outcome.Status),
			Preview: outcome.Preview,
		})
		return
	}

	if outcome.Disclosed {
		c.JSON(http.StatusOK, models.ResolveTargetResponse{TargetURL: outcome.TargetURL})
		return
	}

	// A gate blocked disclosure: tell the caller which ones apply.
	resp := models.ResolveProtectedResponse{
		RequiresAuth:     outcome.Protection.RequiresAuth,
		RequiresPassword: outcome.Protection.RequiresPassword,
	}
	if outcome.Preview != nil {
		resp.Title = outcome.Preview.Title
		resp.Note = outcome.Preview.Note
		resp.PreviewImage = outcome.Preview.PreviewImage
	}
	c.JSON(http.StatusOK, resp)
}

func goneMessage(status policy.Status) string {
	switch status {
	case policy.StatusInactive:
		return "Link is no longer active"
	case policy.StatusExpired:
		return "Link has expired"
	default:
		return "Link has reached its usage limit"
	}
}

// clientInfo extracts what the click recorder needs from the request.
func clientInfo(c *gin.Context) service.Client {
	return service.Client{
		IP:        middleware.ClientIP(c),
		UserAgent: c.Request.UserAgent(),
	}
}
