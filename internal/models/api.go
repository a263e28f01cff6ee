// ===========================================
// Request/Response DTOs
// ===========================================
// DTOs carry data across the HTTP boundary.
// Request DTOs validate and sanitize user input via Gin binding tags.
// Response DTOs shape the API output.
//
// WHY SEPARATE FROM DOMAIN MODELS?
// - API contract != internal representation
// - Validation rules live here, not on domain models
// - Can evolve the API without changing core logic
// ===========================================

package models

import (
	"time"

	"github.com/google/uuid"
)

// CreateLinkRequest is the body for POST /links.
type CreateLinkRequest struct {
	// Target must be an absolute http(s) URL (validated again in the service).
	TargetURL string `json:"target_url" binding:"required,url"`

	// Custom slug (optional). Normalized and validated by the service;
	// when empty a random slug is generated.
	Slug string `json:"slug,omitempty"`

	Title        *string `json:"title,omitempty"`
	Note         *string `json:"note,omitempty"`
	PreviewImage *string `json:"preview_image,omitempty"`

	RequiresAuth bool `json:"requires_auth,omitempty"`

	// Plaintext password; hashed before storage, never persisted as-is.
	Password *string `json:"password,omitempty"`

	OneTime    bool       `json:"one_time,omitempty"`
	ClickLimit *int       `json:"click_limit,omitempty" binding:"omitempty,min=1"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// UpdateLinkRequest is the body for PUT /links/:id.
// Every field is a pointer: nil means "leave unchanged".
type UpdateLinkRequest struct {
	TargetURL    *string    `json:"target_url,omitempty" binding:"omitempty,url"`
	Slug         *string    `json:"slug,omitempty"`
	Title        *string    `json:"title,omitempty"`
	Note         *string    `json:"note,omitempty"`
	PreviewImage *string    `json:"preview_image,omitempty"`
	RequiresAuth *bool      `json:"requires_auth,omitempty"`
	Password     *string    `json:"password,omitempty"` // empty string clears the password gate
	OneTime      *bool      `json:"one_time,omitempty"`
	ClickLimit   *int       `json:"click_limit,omitempty" binding:"omitempty,min=1"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Active       *bool      `json:"active,omitempty"` // only false is accepted; links never reactivate
}

// VerifyPasswordRequest is the body for the verify-password endpoints.
type VerifyPasswordRequest struct {
	Slug     string `json:"slug" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LinkPreview is the metadata disclosed even when the target is withheld.
type LinkPreview struct {
	Title        *string `json:"title,omitempty"`
	Note         *string `json:"note,omitempty"`
	PreviewImage *string `json:"preview_image,omitempty"`
}

// ResolveTargetResponse is returned when disclosure is permitted.
type ResolveTargetResponse struct {
	TargetURL string `json:"target_url"`
}

// ResolveProtectedResponse is returned when a gate blocks disclosure.
// The caller learns which gates apply plus the preview, never the target.
type ResolveProtectedResponse struct {
	RequiresAuth     bool    `json:"requires_auth"`
	RequiresPassword bool    `json:"requires_password"`
	Title            *string `json:"title,omitempty"`
	Note             *string `json:"note,omitempty"`
	PreviewImage     *string `json:"preview_image,omitempty"`
}

// AnalyticsResponse is the body for GET /private/analytics/:linkId.
type AnalyticsResponse struct {
	LinkID      uuid.UUID `json:"link_id"`
	TotalClicks int       `json:"total_clicks"`
	Clicks      []Click   `json:"clicks"`
}

// ===========================================
// Error Response
// ===========================================

// ErrorResponse provides a consistent error format across all endpoints.
// Preview is populated on "gone" outcomes where the link exists but may
// no longer disclose its target.
type ErrorResponse struct {
	Error   string       `json:"error"`             // Human-readable message
	Code    string       `json:"code,omitempty"`    // Machine-readable error code
	Details string       `json:"details,omitempty"` // Additional context
	Preview *LinkPreview `json:"preview,omitempty"` // Metadata-only preview, if any
}

// Machine-readable error codes (use with ErrorResponse.Code).
// Clients can switch on these for programmatic handling.
const (
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeInactive        = "INACTIVE"
	ErrCodeExpired         = "EXPIRED"
	ErrCodeExhausted       = "EXHAUSTED"
	ErrCodeNoPasswordSet   = "NO_PASSWORD_SET"
	ErrCodeInvalidPassword = "INVALID_PASSWORD"
	ErrCodeLoginRequired   = "LOGIN_REQUIRED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeBadSlug         = "BAD_SLUG"
	ErrCodeBadBody         = "BAD_BODY"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeServerError     = "SERVER_ERROR"
)

// ===========================================
// Health Check Response
// ===========================================

// HealthResponse is returned by the /health endpoint.
// Useful for load balancers and Kubernetes probes.
type HealthResponse struct {
	Status   string            `json:"status"`   // "healthy" or "unhealthy"
	Version  string            `json:"version"`  // Application version
	Services map[string]string `json:"services"` // Dependency health (db, redis)
}
