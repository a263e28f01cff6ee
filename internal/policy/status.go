// ===========================================
// Package policy - Link Resolution Rules
// ===========================================
// Pure functions deciding whether a link is currently resolvable and
// which disclosure gates apply to it. No I/O, no clocks hidden inside:
// callers pass the evaluation time in, so the same snapshot always
// produces the same answer.
//
// The check order below is a deliberate precedence, not an accident of
// conditional nesting. Keep it as an ordered list.
// ===========================================

package policy

import (
	"time"

	"github.com/user/linkgate/internal/models"
)

// Status classifies a link's resolvability at a point in time.
type Status string

const (
	StatusOK        Status = "OK"
	StatusNotFound  Status = "NOT_FOUND"
	StatusInactive  Status = "INACTIVE"
	StatusExpired   Status = "EXPIRED"
	StatusExhausted Status = "EXHAUSTED"
)

// Evaluate computes whether a link may currently resolve.
// First match wins:
//
//  1. absent                          -> NOT_FOUND
//  2. active = false                  -> INACTIVE
//  3. expires_at in the past          -> EXPIRED
//  4. one_time and click_count >= 1   -> EXHAUSTED
//  5. click_count >= click_limit      -> EXHAUSTED
//  6. otherwise                       -> OK
//
// The active check comes first on purpose: exhaustion eventually flips
// active to false, so INACTIVE dominates once the auto-disable lands.
func Evaluate(link *models.Link, now time.Time) Status {
	if link == nil {
		return StatusNotFound
	}
	if !link.Active {
		return StatusInactive
	}
	if link.ExpiresAt != nil && now.After(*link.ExpiresAt) {
		return StatusExpired
	}
	if link.OneTime && link.ClickCount >= 1 {
		return StatusExhausted
	}
	if link.ClickLimit != nil && link.ClickCount >= *link.ClickLimit {
		return StatusExhausted
	}
	return StatusOK
}

// Protection names the disclosure gates that apply to a link.
type Protection struct {
	RequiresAuth     bool
	RequiresPassword bool
}

// Classify computes the protection flags for a link.
// Total function of exactly two fields: requires_auth and the presence
// of a password hash.
func Classify(link *models.Link) Protection {
	return Protection{
		RequiresAuth:     link.RequiresAuth,
		RequiresPassword: link.HasPassword(),
	}
}

// Exhausted reports whether a link has reached its usage ceiling.
// Shared by Evaluate and the post-click auto-disable check.
func Exhausted(link *models.Link) bool {
	if link.OneTime && link.ClickCount >= 1 {
		return true
	}
	return link.ClickLimit != nil && link.ClickCount >= *link.ClickLimit
}
