// ===========================================
// Package service - Business Logic Layer
// ===========================================
// Services contain the decision logic of the API: the resolution
// policy engine, click recording, and owner-scoped link management.
// Handlers stay thin (HTTP in/out), repositories stay thin (SQL
// in/out); everything in between lives here.
// ===========================================

package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/user/linkgate/internal/models"
)

// LinkStore is the single persistence contract consumed by services.
// *repository.Store satisfies it; tests substitute an in-memory fake.
//
// Only services hold a store handle - no other component talks to the
// database directly.
type LinkStore interface {
	// Link rows.
	Create(ctx context.Context, link *models.Link) error
	GetBySlug(ctx context.Context, slug string) (*models.Link, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Link, error)
	ListByUser(ctx context.Context, userID string) ([]models.Link, error)
	Update(ctx context.Context, link *models.Link) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	IncrementClickCount(ctx context.Context, id uuid.UUID) error
	SlugExists(ctx context.Context, slug string) (bool, error)

	// Click events.
	Insert(ctx context.Context, click *models.Click) error
	ListByLink(ctx context.Context, linkID uuid.UUID) ([]models.Click, error)
}
