// ===========================================
// Package handler - HTTP Request Handlers
// ===========================================
// Handlers are thin: parse the request, call a service, shape the
// response. The error mapping below is the single place service errors
// become HTTP statuses, so every endpoint fails the same way.
// ===========================================

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/linkgate/internal/models"
	"github.com/user/linkgate/internal/service"
)

// handleError converts service errors to HTTP responses.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSlugInvalid):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid slug",
			Code:    models.ErrCodeBadSlug,
			Details: "Slugs are 3-41 characters: letters, digits, hyphen, underscore, starting alphanumeric",
		})

	case errors.Is(err, service.ErrTargetInvalid):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid target URL",
			Code:    models.ErrCodeBadBody,
			Details: "Target must be an absolute http or https URL",
		})

	case errors.Is(err, service.ErrCannotReactivate):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Inactive links cannot be reactivated",
			Code:  models.ErrCodeBadBody,
		})

	case errors.Is(err, service.ErrLoginRequired):
		// Password verification never bypasses the auth gate.
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error: "This link requires authentication",
			Code:  models.ErrCodeLoginRequired,
		})

	case errors.Is(err, service.ErrNoPasswordSet):
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error: "This link has no password",
			Code:  models.ErrCodeNoPasswordSet,
		})

	case errors.Is(err, service.ErrInvalidPassword):
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error: "Password does not match",
			Code:  models.ErrCodeInvalidPassword,
		})

	case errors.Is(err, service.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "Link not found",
			Code:  models.ErrCodeNotFound,
		})

	case errors.Is(err, service.ErrForbidden):
		// Deliberately distinct from 404: existence is not hidden,
		// access is simply denied.
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error: "You do not own this link",
			Code:  models.ErrCodeForbidden,
		})

	case errors.Is(err, service.ErrSlugTaken):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error: "Slug already taken",
			Code:  models.ErrCodeConflict,
		})

	default:
		// Unknown error: generic 500, never internal details.
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Internal server error",
			Code:  models.ErrCodeServerError,
		})
	}
}

// badBody rejects malformed or invalid JSON request bodies.
func badBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "Invalid request body",
		Code:    models.ErrCodeBadBody,
		Details: err.Error(),
	})
}
