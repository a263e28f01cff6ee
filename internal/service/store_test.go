package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/linkgate/internal/models"
	"github.com/user/linkgate/internal/repository"
)

// fakeStore is an in-memory LinkStore for unit tests.
// It mirrors the repository's contract: sentinel errors, slug
// uniqueness, atomic counter semantics (trivially atomic under a lock).
type fakeStore struct {
	mu     sync.Mutex
	links  map[uuid.UUID]*models.Link
	clicks []models.Click

	failIncrement bool // simulate a store failure mid-registration
}

var _ LinkStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{links: make(map[uuid.UUID]*models.Link)}
}

// add seeds a link, assigning an id when missing.
func (f *fakeStore) add(link *models.Link) *models.Link {
	f.mu.Lock()
	defer f.mu.Unlock()

	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	cp := *link
	f.links[link.ID] = &cp
	return link
}

func (f *fakeStore) Create(ctx context.Context, link *models.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.links {
		if existing.Slug == link.Slug {
			return repository.ErrAlreadyExists
		}
	}
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	link.CreatedAt = time.Now()
	link.UpdatedAt = link.CreatedAt
	cp := *link
	f.links[link.ID] = &cp
	return nil
}

func (f *fakeStore) GetBySlug(ctx context.Context, slug string) (*models.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, link := range f.links {
		if link.Slug == slug {
			cp := *link
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	link, ok := f.links[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *link
	return &cp, nil
}

func (f *fakeStore) ListByUser(ctx context.Context, userID string) ([]models.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Link{}
	for _, link := range f.links {
		if link.UserID == userID {
			out = append(out, *link)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(ctx context.Context, link *models.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.links[link.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range f.links {
		if id != link.ID && existing.Slug == link.Slug {
			return repository.ErrAlreadyExists
		}
	}
	cp := *link
	cp.UpdatedAt = time.Now()
	f.links[link.ID] = &cp
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.links[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.links, id)
	return nil
}

func (f *fakeStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	link, ok := f.links[id]
	if !ok {
		return repository.ErrNotFound
	}
	link.Active = active
	return nil
}

func (f *fakeStore) IncrementClickCount(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failIncrement {
		return context.DeadlineExceeded
	}
	link, ok := f.links[id]
	if !ok {
		return repository.ErrNotFound
	}
	link.ClickCount++
	return nil
}

func (f *fakeStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, link := range f.links {
		if link.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Insert(ctx context.Context, click *models.Click) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if click.ID == uuid.Nil {
		click.ID = uuid.New()
	}
	if click.CreatedAt.IsZero() {
		click.CreatedAt = time.Now()
	}
	f.clicks = append(f.clicks, *click)
	return nil
}

func (f *fakeStore) ListByLink(ctx context.Context, linkID uuid.UUID) ([]models.Click, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Click{}
	for _, click := range f.clicks {
		if click.LinkID == linkID {
			out = append(out, click)
		}
	}
	return out, nil
}

// clickCount reports recorded click events for a link.
func (f *fakeStore) clickCount(linkID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, click := range f.clicks {
		if click.LinkID == linkID {
			n++
		}
	}
	return n
}
