// ===========================================
// Resolution Orchestrator
// ===========================================
// The stateful core of the API: given a slug and the caller's trust
// level, decide whether the target URL may be disclosed, record the
// click, and apply the auto-disable transition.
//
// GATE ORDER (deliberate precedence):
// 1. Status (not found / inactive / expired / exhausted)
// 2. Auth gate - password verification alone never bypasses it
// 3. Password gate
//
// Blocked-but-existing outcomes are values, not errors: they still
// carry protection flags and preview metadata. Errors are reserved for
// gate rejections on the verify-password path and store failures.
// ===========================================

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/user/linkgate/internal/models"
	"github.com/user/linkgate/internal/policy"
	"github.com/user/linkgate/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Resolution errors.
var (
	ErrSlugInvalid     = errors.New("invalid slug")
	ErrNoPasswordSet   = errors.New("link has no password set")
	ErrInvalidPassword = errors.New("password does not match")
	ErrLoginRequired   = errors.New("link requires authentication")
)

// Client identifies the caller for click analytics.
type Client struct {
	IP        string
	UserAgent string
}

// ResolveOutcome is the disclosure decision for one resolution attempt.
type ResolveOutcome struct {
	Status     policy.Status       // OK even when a gate withheld the target
	Protection policy.Protection   // which gates apply (valid when the link exists)
	Disclosed  bool                // true only when TargetURL may be revealed
	TargetURL  string              // set only when Disclosed
	Preview    *models.LinkPreview // display metadata, set when the link exists
}

// ResolveService runs the resolution workflow.
type ResolveService struct {
	store LinkStore
}

// NewResolveService creates a new resolution service.
func NewResolveService(store LinkStore) *ResolveService {
	return &ResolveService{store: store}
}

// ResolvePublic resolves a slug for an unauthenticated caller.
// Auth-gated links come back protected; the caller must escalate to
// the authenticated path.
func (s *ResolveService) ResolvePublic(ctx context.Context, slug string, client Client) (*ResolveOutcome, error) {
	return s.resolve(ctx, slug, false, nil, client)
}

// ResolvePrivate resolves a slug for a caller with verified identity.
// The auth gate is considered satisfied; the password gate still
// applies independently.
func (s *ResolveService) ResolvePrivate(ctx context.Context, slug string, client Client) (*ResolveOutcome, error) {
	return s.resolve(ctx, slug, true, nil, client)
}

// VerifyPassword attempts to satisfy the password gate.
// authed reflects whether the caller arrived through the authenticated
// path; an auth-gated link rejects unauthenticated password attempts
// outright with ErrLoginRequired.
func (s *ResolveService) VerifyPassword(ctx context.Context, slug, password string, authed bool, client Client) (*ResolveOutcome, error) {
	return s.resolve(ctx, slug, authed, &password, client)
}

// resolve is the shared workflow behind all resolution entry points.
//
// FLOW:
// 1. Normalize + validate the slug (reject before touching the store)
// 2. Look up the link
// 3. Evaluate status; non-OK returns a blocked outcome with preview
// 4. Auth gate
// 5. Password gate
// 6. Register the click, then disclose the target
// 7. Best-effort auto-disable of newly exhausted links
func (s *ResolveService) resolve(ctx context.Context, rawSlug string, authed bool, password *string, client Client) (*ResolveOutcome, error) {
	slug := NormalizeSlug(rawSlug)
	if !ValidSlug(slug) {
		return nil, ErrSlugInvalid
	}

	link, err := s.store.GetBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return &ResolveOutcome{Status: policy.StatusNotFound}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up link: %w", err)
	}

	if status := policy.Evaluate(link, time.Now()); status != policy.StatusOK {
		return &ResolveOutcome{Status: status, Preview: preview(link)}, nil
	}

	prot := policy.Classify(link)
	outcome := &ResolveOutcome{
		Status:     policy.StatusOK,
		Protection: prot,
		Preview:    preview(link),
	}

	// Auth gate first.
	if prot.RequiresAuth && !authed {
		if password != nil {
			// Presenting a password does not substitute for identity.
			return nil, ErrLoginRequired
		}
		return outcome, nil
	}

	// Password gate.
	if prot.RequiresPassword {
		if password == nil {
			return outcome, nil
		}
		if bcrypt.CompareHashAndPassword([]byte(*link.PasswordHash), []byte(*password)) != nil {
			return nil, ErrInvalidPassword
		}
	} else if password != nil {
		// A password was presented but none is set. Distinct code -
		// never conflated with a mismatch.
		return nil, ErrNoPasswordSet
	}

	// All gates passed: the click is registered before the target is
	// revealed, then the exhaustion transition runs best-effort.
	if err := s.registerClick(ctx, link.ID, client); err != nil {
		return nil, err
	}
	s.maybeAutoDisable(ctx, link.ID)

	outcome.Disclosed = true
	outcome.TargetURL = link.TargetURL
	return outcome, nil
}

// ===========================================
// Click Recorder
// ===========================================

// registerClick appends a click event and atomically bumps the
// counter. The increment must be a single server-side operation -
// concurrent resolutions of the same slug must not lose updates.
func (s *ResolveService) registerClick(ctx context.Context, linkID uuid.UUID, client Client) error {
	click := &models.Click{
		LinkID:    linkID,
		IP:        client.IP,
		UserAgent: client.UserAgent,
	}
	if err := s.store.Insert(ctx, click); err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	if err := s.store.IncrementClickCount(ctx, linkID); err != nil {
		// The click row already exists; a stranded row without a
		// counter bump is an accepted inconsistency. No rollback.
		return fmt.Errorf("failed to increment click count: %w", err)
	}
	return nil
}

// maybeAutoDisable re-reads the link and flips it inactive once its
// usage ceiling is reached. Not atomic with the increment: concurrent
// resolutions can slip a bounded number of extra disclosures past the
// limit before the disable lands. Failures here never fail the
// resolution that already disclosed.
func (s *ResolveService) maybeAutoDisable(ctx context.Context, linkID uuid.UUID) {
	fresh, err := s.store.GetByID(ctx, linkID)
	if err != nil {
		log.Printf("auto-disable: failed to re-read link %s: %v", linkID, err)
		return
	}

	if fresh.Active && policy.Exhausted(fresh) {
		if err := s.store.SetActive(ctx, linkID, false); err != nil {
			log.Printf("auto-disable: failed to deactivate link %s: %v", linkID, err)
		}
	}
}

// preview extracts the metadata that may be disclosed even when the
// target is withheld.
func preview(link *models.Link) *models.LinkPreview {
	return &models.LinkPreview{
		Title:        link.Title,
		Note:         link.Note,
		PreviewImage: link.PreviewImage,
	}
}
