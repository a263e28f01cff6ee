// ===========================================
// Package models - Domain Models
// ===========================================
// Models represent the core data structures of the API.
// They are "dumb" data containers with no business logic.
//
// NAMING CONVENTION:
// - Singular nouns: Link, Click (not Links, Clicks)
// - Request/Response suffixes for DTOs (see api.go)
// ===========================================

package models

import (
	"time"

	"github.com/google/uuid"
)

// Link is the primary domain entity: a short slug mapped to a target URL,
// plus the access policy that gates its disclosure.
type Link struct {
	ID     uuid.UUID `json:"id"`
	UserID string    `json:"user_id"` // Owner (JWT subject)
	Slug   string    `json:"slug"`    // Unique short key, case-sensitive in storage

	TargetURL string `json:"target_url"`

	// Display metadata - disclosed even when the target is withheld.
	Title        *string `json:"title,omitempty"`
	Note         *string `json:"note,omitempty"`
	PreviewImage *string `json:"preview_image,omitempty"`

	// Disclosure gates.
	// A non-nil PasswordHash is the sole source of truth for the
	// password gate; there is no separate boolean.
	RequiresAuth bool    `json:"requires_auth"`
	PasswordHash *string `json:"-"` // "-" means never serialize to JSON!

	// Consumption limits. ClickCount only ever increases.
	OneTime    bool `json:"one_time"`
	ClickLimit *int `json:"click_limit,omitempty"`
	ClickCount int  `json:"click_count"`

	// Temporal validity and administrative state.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Active    bool       `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasPassword reports whether the password gate is active.
func (l *Link) HasPassword() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}

// Click is an immutable event record appended on every successful
// resolution. Never updated or deleted by the resolution path.
type Click struct {
	ID        uuid.UUID `json:"id"`
	LinkID    uuid.UUID `json:"link_id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}
