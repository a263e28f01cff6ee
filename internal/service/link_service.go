// ===========================================
// Link Management
// ===========================================
// Owner-scoped CRUD and analytics. Every mutation and analytics read
// verifies ownership; a mismatch is FORBIDDEN, deliberately distinct
// from NOT_FOUND (existence is not hidden from other users).
// ===========================================

package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/user/linkgate/internal/models"
	"github.com/user/linkgate/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Link management errors.
var (
	ErrLinkNotFound     = errors.New("link not found")
	ErrForbidden        = errors.New("link is owned by another user")
	ErrSlugTaken        = errors.New("slug already taken")
	ErrTargetInvalid    = errors.New("invalid target URL")
	ErrCannotReactivate = errors.New("inactive links cannot be reactivated")
)

// LinkService handles owner-scoped link operations.
type LinkService struct {
	store LinkStore
}

// NewLinkService creates a new link service.
func NewLinkService(store LinkStore) *LinkService {
	return &LinkService{store: store}
}

// Create builds and stores a new link for the authenticated owner.
//
// FLOW:
// 1. Validate the target URL
// 2. Normalize/validate the custom slug, or generate one
// 3. Hash the password, if any (plaintext never reaches the store)
// 4. Insert; a slug collision surfaces as ErrSlugTaken
func (s *LinkService) Create(ctx context.Context, userID string, req models.CreateLinkRequest) (*models.Link, error) {
	if !validTargetURL(req.TargetURL) {
		return nil, ErrTargetInvalid
	}

	var slug string
	if req.Slug != "" {
		slug = NormalizeSlug(req.Slug)
		if !ValidSlug(slug) {
			return nil, ErrSlugInvalid
		}
	} else {
		var err error
		slug, err = generateUniqueSlug(ctx, s.store)
		if err != nil {
			return nil, fmt.Errorf("failed to generate slug: %w", err)
		}
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	link := &models.Link{
		UserID:       userID,
		Slug:         slug,
		TargetURL:    req.TargetURL,
		Title:        req.Title,
		Note:         req.Note,
		PreviewImage: req.PreviewImage,
		RequiresAuth: req.RequiresAuth,
		PasswordHash: hash,
		OneTime:      req.OneTime,
		ClickLimit:   req.ClickLimit,
		ExpiresAt:    req.ExpiresAt,
		Active:       true,
	}

	if err := s.store.Create(ctx, link); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to store link: %w", err)
	}

	return link, nil
}

// List returns all links owned by the caller.
func (s *LinkService) List(ctx context.Context, userID string) ([]models.Link, error) {
	links, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

// Get fetches one link, enforcing ownership.
func (s *LinkService) Get(ctx context.Context, id uuid.UUID, userID string) (*models.Link, error) {
	return s.getOwned(ctx, id, userID)
}

// Update applies a partial update to an owned link.
// nil request fields are left unchanged.
func (s *LinkService) Update(ctx context.Context, id uuid.UUID, userID string, req models.UpdateLinkRequest) (*models.Link, error) {
	link, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.TargetURL != nil {
		if !validTargetURL(*req.TargetURL) {
			return nil, ErrTargetInvalid
		}
		link.TargetURL = *req.TargetURL
	}

	if req.Slug != nil {
		slug := NormalizeSlug(*req.Slug)
		if !ValidSlug(slug) {
			return nil, ErrSlugInvalid
		}
		link.Slug = slug
	}

	if req.Title != nil {
		link.Title = req.Title
	}
	if req.Note != nil {
		link.Note = req.Note
	}
	if req.PreviewImage != nil {
		link.PreviewImage = req.PreviewImage
	}
	if req.RequiresAuth != nil {
		link.RequiresAuth = *req.RequiresAuth
	}

	if req.Password != nil {
		if *req.Password == "" {
			// Clearing the hash removes the password gate entirely;
			// its presence is the only thing that activates the gate.
			link.PasswordHash = nil
		} else {
			hash, err := hashPassword(req.Password)
			if err != nil {
				return nil, err
			}
			link.PasswordHash = hash
		}
	}

	if req.OneTime != nil {
		link.OneTime = *req.OneTime
	}
	if req.ClickLimit != nil {
		link.ClickLimit = req.ClickLimit
	}
	if req.ExpiresAt != nil {
		link.ExpiresAt = req.ExpiresAt
	}

	if req.Active != nil {
		// Deactivation is permanent. No code path flips a link back on.
		if *req.Active {
			return nil, ErrCannotReactivate
		}
		link.Active = false
	}

	if err := s.store.Update(ctx, link); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrSlugTaken
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to update link: %w", err)
	}

	return link, nil
}

// Delete removes an owned link and its click history.
func (s *LinkService) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to delete link: %w", err)
	}
	return nil
}

// Analytics returns the click history for an owned link.
// TotalClicks comes from the link's counter, which is authoritative
// even if a click row insert once failed.
func (s *LinkService) Analytics(ctx context.Context, linkID uuid.UUID, userID string) (*models.AnalyticsResponse, error) {
	link, err := s.getOwned(ctx, linkID, userID)
	if err != nil {
		return nil, err
	}

	clicks, err := s.store.ListByLink(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to load clicks: %w", err)
	}

	return &models.AnalyticsResponse{
		LinkID:      link.ID,
		TotalClicks: link.ClickCount,
		Clicks:      clicks,
	}, nil
}

// ===========================================
// Helpers
// ===========================================

// getOwned fetches a link and verifies the caller owns it.
func (s *LinkService) getOwned(ctx context.Context, id uuid.UUID, userID string) (*models.Link, error) {
	link, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	if link.UserID != userID {
		return nil, ErrForbidden
	}
	return link, nil
}

// hashPassword bcrypt-hashes a plaintext password.
// Returns nil for absent or empty input.
func hashPassword(password *string) (*string, error) {
	if password == nil || *password == "" {
		return nil, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	s := string(hash)
	return &s, nil
}

// validTargetURL accepts absolute http(s) URLs only.
// Blocks javascript:, data:, file: and friends.
func validTargetURL(raw string) bool {
	if len(raw) < 10 || len(raw) > 2083 {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
