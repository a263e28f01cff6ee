// ===========================================
// Click Repository
// ===========================================
// Click rows are append-only event records. They are inserted on
// successful resolutions and read back for analytics - never updated
// or deleted here.
// ===========================================

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/linkgate/internal/models"
)

// ClickRepository handles click event storage.
type ClickRepository struct {
	db *pgxpool.Pool
}

// NewClickRepository creates a new click repository.
func NewClickRepository(db *pgxpool.Pool) *ClickRepository {
	return &ClickRepository{db: db}
}

// Insert appends a click event.
func (r *ClickRepository) Insert(ctx context.Context, click *models.Click) error {
	query := `
		INSERT INTO link_clicks (id, link_id, ip, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if click.ID == uuid.Nil {
		click.ID = uuid.New()
	}
	if click.CreatedAt.IsZero() {
		click.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(ctx, query,
		click.ID,
		click.LinkID,
		click.IP,
		click.UserAgent,
		click.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert click: %w", err)
	}

	return nil
}

// ListByLink returns all clicks for a link, newest first.
func (r *ClickRepository) ListByLink(ctx context.Context, linkID uuid.UUID) ([]models.Click, error) {
	query := `
		SELECT id, link_id, ip, user_agent, created_at
		FROM link_clicks
		WHERE link_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}
	defer rows.Close()

	clicks := []models.Click{}
	for rows.Next() {
		var click models.Click
		if err := rows.Scan(&click.ID, &click.LinkID, &click.IP, &click.UserAgent, &click.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan click: %w", err)
		}
		clicks = append(clicks, click)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}

	return clicks, nil
}
