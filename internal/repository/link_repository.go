// ===========================================
// Package repository - Data Access Layer
// ===========================================
// The repository pattern abstracts database operations.
// Handlers call services, services call repositories.
//
// This is the only place that touches SQL. Services see domain models
// and the sentinel errors below, nothing else.
//
// NAMING CONVENTION:
// - Methods named after what they do: Create, GetBySlug, Delete
// - Input: domain models or primitives
// - Output: domain models or errors
// ===========================================

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/linkgate/internal/models"
)

// Common errors returned by repository methods.
// Using package-level errors allows callers to check with errors.Is().
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
)

const linkColumns = `
	id, user_id, slug, target_url, title, note, preview_image,
	requires_auth, password_hash, one_time, click_limit, click_count,
	expires_at, active, created_at, updated_at
`

// LinkRepository handles all link database operations.
type LinkRepository struct {
	db *pgxpool.Pool
}

// NewLinkRepository creates a new link repository.
func NewLinkRepository(db *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create inserts a new link.
// Returns ErrAlreadyExists if the slug is taken (unique index on slug —
// uniqueness is enforced by the store, not callers).
func (r *LinkRepository) Create(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (` + linkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	now := time.Now()
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = now
	}
	link.UpdatedAt = now

	_, err := r.db.Exec(ctx, query,
		link.ID,
		link.UserID,
		link.Slug,
		link.TargetURL,
		link.Title,
		link.Note,
		link.PreviewImage,
		link.RequiresAuth,
		link.PasswordHash,
		link.OneTime,
		link.ClickLimit,
		link.ClickCount,
		link.ExpiresAt,
		link.Active,
		link.CreatedAt,
		link.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// GetBySlug retrieves a link by its slug.
// Returns ErrNotFound if no such link exists.
func (r *LinkRepository) GetBySlug(ctx context.Context, slug string) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE slug = $1`
	return r.getOne(ctx, query, slug)
}

// GetByID retrieves a link by its id.
// Returns ErrNotFound if no such link exists.
func (r *LinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// ListByUser returns all links owned by a user, newest first.
func (r *LinkRepository) ListByUser(ctx context.Context, userID string) ([]models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	links := []models.Link{}
	for rows.Next() {
		var link models.Link
		if err := scanLink(rows, &link); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	return links, nil
}

// Update persists mutable link fields.
// Returns ErrNotFound if the link no longer exists and ErrAlreadyExists
// on a slug collision, so slug conflicts surface as conflicts rather
// than opaque server errors.
func (r *LinkRepository) Update(ctx context.Context, link *models.Link) error {
	query := `
		UPDATE links
		SET slug = $2, target_url = $3, title = $4, note = $5,
		    preview_image = $6, requires_auth = $7, password_hash = $8,
		    one_time = $9, click_limit = $10, expires_at = $11,
		    active = $12, updated_at = $13
		WHERE id = $1
	`

	link.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, query,
		link.ID,
		link.Slug,
		link.TargetURL,
		link.Title,
		link.Note,
		link.PreviewImage,
		link.RequiresAuth,
		link.PasswordHash,
		link.OneTime,
		link.ClickLimit,
		link.ExpiresAt,
		link.Active,
		link.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to update link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a link.
// Returns ErrNotFound if the link doesn't exist. Click rows cascade at
// the schema level.
func (r *LinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive flips the administrative active flag.
// The resolution path only ever calls this with false.
func (r *LinkRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE links SET active = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, active, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set active flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementClickCount atomically bumps the click counter.
//
// WHY ATOMIC INCREMENT?
// Concurrent resolutions of the same slug race on this counter.
// click_count = click_count + 1 is atomic at the database level;
// a read-modify-write in Go would lose updates.
func (r *LinkRepository) IncrementClickCount(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE links SET click_count = click_count + 1 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment click count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SlugExists checks if a slug is already taken.
// Cheaper than GetBySlug when only existence matters (index-only scan).
func (r *LinkRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var one int
	err := r.db.QueryRow(ctx, `SELECT 1 FROM links WHERE slug = $1 LIMIT 1`, slug).Scan(&one)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return true, nil
}

// DeactivateExpired marks every expired, still-active link inactive.
// Returns the number of affected rows. Called from the background sweep;
// links are deactivated, never deleted, so owners keep their analytics.
func (r *LinkRepository) DeactivateExpired(ctx context.Context) (int64, error) {
	query := `
		UPDATE links
		SET active = false, updated_at = $1
		WHERE active = true
		  AND expires_at IS NOT NULL
		  AND expires_at < $1
	`

	result, err := r.db.Exec(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired links: %w", err)
	}
	return result.RowsAffected(), nil
}

// ===========================================
// Helpers
// ===========================================

// getOne runs a single-row link query.
func (r *LinkRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Link, error) {
	link := &models.Link{}
	err := scanLink(r.db.QueryRow(ctx, query, arg), link)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return link, nil
}

// scanLink reads one row in linkColumns order.
func scanLink(row pgx.Row, link *models.Link) error {
	return row.Scan(
		&link.ID,
		&link.UserID,
		&link.Slug,
		&link.TargetURL,
		&link.Title,
		&link.Note,
		&link.PreviewImage,
		&link.RequiresAuth,
		&link.PasswordHash,
		&link.OneTime,
		&link.ClickLimit,
		&link.ClickCount,
		&link.ExpiresAt,
		&link.Active,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
}

// isUniqueViolation checks for a unique constraint violation.
// PostgreSQL error code 23505 = unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
