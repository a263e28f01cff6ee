package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Store bundles link and click persistence behind a single handle.
// Services depend on this (through an interface) instead of holding
// scattered database handles.
type Store struct {
	*LinkRepository
	*ClickRepository
}

// NewStore creates the combined store over one connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{
		LinkRepository:  NewLinkRepository(db),
		ClickRepository: NewClickRepository(db),
	}
}
