package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// IndexHandler answers the API root.
type IndexHandler struct {
	version string
}

// NewIndexHandler creates a new index handler.
func NewIndexHandler(version string) *IndexHandler {
	return &IndexHandler{version: version}
}

// Index handles GET /. A cheap "is this thing on" endpoint for humans
// and uptime checks.
func (h *IndexHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "linkgate",
		"version": h.version,
		"status":  "ok",
	})
}
