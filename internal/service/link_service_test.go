package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/linkgate/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const ownerID = "user-abc"

func TestCreateWithCustomSlug(t *testing.T) {
	store := newFakeStore()
	svc := NewLinkService(store)

	link, err := svc.Create(context.Background(), ownerID, models.CreateLinkRequest{
		TargetURL: "https://example.com/page",
		Slug:      "  /My Launch  Page ",
	})
	require.NoError(t, err)

	// Normalized: trimmed, leading slash stripped, whitespace runs
	// collapsed to a single hyphen, case preserved.
	assert.Equal(t, "My-Launch-Page", link.Slug)
	assert.Equal(t, ownerID, link.UserID)
	assert.True(t, link.Active)
	assert.Zero(t, link.ClickCount)
}

func TestCreateGeneratesSlug(t *testing.T) {
	store := newFakeStore()
	svc := NewLinkService(store)

	link, err := svc.Create(context.Background(), ownerID, models.CreateLinkRequest{
		TargetURL: "https://example.com/page",
	})
	require.NoError(t, err)

	assert.Len(t, link.Slug, generatedSlugLength)
	assert.True(t, ValidSlug(link.Slug), "generated slug %q must pass validation", link.Slug)
}

func TestCreateRejectsBadInput(t *testing.T) {
	store := newFakeStore()
	svc := NewLinkService(store)

	_, err := svc.Create(context.Background(), ownerID, models.CreateLinkRequest{
		TargetURL: "javascript:alert(1)",
	})
	assert.ErrorIs(t, err, ErrTargetInvalid)

	_, err = svc.Create(context.Background(), ownerID, models.CreateLinkRequest{
		TargetURL: "https://example.com/page",
		Slug:      "a",
	})
	assert.ErrorIs(t, err, ErrSlugInvalid)
}

func TestCreateSlugConflict(t *testing.T) {
	store := newFakeStore()
	svc := NewLinkService(store)

	_, err := svc.Create(context.Background(), ownerID, models.CreateLinkRequest{
		TargetURL: "https://example.com/first",
		Slug:      "taken",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "someone-else", models.CreateLinkRequest{
		TargetURL: "https://example.com/second",
		Slug:      "taken",
	})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestCreateHashesPassword(t *testing.T) {
	store := newFakeStore()
	svc := NewLinkService(store)

	link, err := svc.Create(context.Background(), ownerID, models.CreateLinkRequest{
		TargetURL: "https://example.com/page",
		Password:  strPtr("hunter2"),
	})
	require.NoError(t, err)

	require.NotNil(t, link.PasswordHash)
	assert.NotEqual(t, "hunter2", *link.PasswordHash, "plaintext must never be stored")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*link.PasswordHash), []byte("hunter2")))
}

func TestOwnershipEnforced(t *testing.T) {
	store := newFakeStore()
	link := store.add(activeLink("owned"))
	svc := NewLinkService(store)

	_, err := svc.Get(context.Background(), link.ID, "intruder")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(context.Background(), link.ID, "intruder", models.UpdateLinkRequest{Title: strPtr("hijack")})
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Delete(context.Background(), link.ID, "intruder")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Analytics(context.Background(), link.ID, "intruder")
	assert.ErrorIs(t, err, ErrForbidden)

	// The real owner still gets through.
	got, err := svc.Get(context.Background(), link.ID, link.UserID)
	require.NoError(t, err)
	assert.Equal(t, "owned", got.Slug)
}

func TestUpdatePartialFields(t *testing.T) {
	store := newFakeStore()
	link := store.add(func() *models.Link {
		l := activeLink("partial")
		l.Title = strPtr("Old title")
		l.Note = strPtr("Old note")
		return l
	}())
	svc := NewLinkService(store)

	got, err := svc.Update(context.Background(), link.ID, link.UserID, models.UpdateLinkRequest{
		Title: strPtr("New title"),
	})
	require.NoError(t, err)

	assert.Equal(t, "New title", *got.Title)
	assert.Equal(t, "Old note", *got.Note, "untouched fields stay as they were")
	assert.Equal(t, "partial", got.Slug)
}

func TestUpdateSlugConflict(t *testing.T) {
	store := newFakeStore()
	store.add(activeLink("existing"))
	link := store.add(activeLink("mine"))
	svc := NewLinkService(store)

	_, err := svc.Update(context.Background(), link.ID, link.UserID, models.UpdateLinkRequest{
		Slug: strPtr("existing"),
	})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestUpdateClearsPassword(t *testing.T) {
	store := newFakeStore()
	link := store.add(func() *models.Link {
		l := activeLink("gated")
		l.PasswordHash = hashOf(t, "secret")
		return l
	}())
	svc := NewLinkService(store)

	got, err := svc.Update(context.Background(), link.ID, link.UserID, models.UpdateLinkRequest{
		Password: strPtr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, got.PasswordHash)
}

func TestUpdateActiveTransitions(t *testing.T) {
	store := newFakeStore()
	link := store.add(activeLink("switch"))
	svc := NewLinkService(store)

	truev, falsev := true, false

	got, err := svc.Update(context.Background(), link.ID, link.UserID, models.UpdateLinkRequest{Active: &falsev})
	require.NoError(t, err)
	assert.False(t, got.Active)

	// Deactivation is one-way.
	_, err = svc.Update(context.Background(), link.ID, link.UserID, models.UpdateLinkRequest{Active: &truev})
	assert.ErrorIs(t, err, ErrCannotReactivate)
}

func TestDeleteAndList(t *testing.T) {
	store := newFakeStore()
	a := store.add(activeLink("keep"))
	b := store.add(activeLink("drop"))
	svc := NewLinkService(store)

	require.NoError(t, svc.Delete(context.Background(), b.ID, b.UserID))

	links, err := svc.List(context.Background(), a.UserID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "keep", links[0].Slug)

	_, err = svc.Get(context.Background(), b.ID, b.UserID)
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestAnalytics(t *testing.T) {
	store := newFakeStore()
	link := store.add(func() *models.Link {
		l := activeLink("tracked")
		return l
	}())
	resolver := NewResolveService(store)
	svc := NewLinkService(store)

	for i := 0; i < 3; i++ {
		_, err := resolver.ResolvePublic(context.Background(), "tracked", testClient)
		require.NoError(t, err)
	}

	got, err := svc.Analytics(context.Background(), link.ID, link.UserID)
	require.NoError(t, err)

	assert.Equal(t, link.ID, got.LinkID)
	assert.Equal(t, 3, got.TotalClicks)
	require.Len(t, got.Clicks, 3)
	assert.Equal(t, testClient.IP, got.Clicks[0].IP)
}

func TestExpiryRoundTrip(t *testing.T) {
	store := newFakeStore()
	link := store.add(activeLink("deadline"))
	svc := NewLinkService(store)

	future := time.Now().Add(time.Hour)
	got, err := svc.Update(context.Background(), link.ID, link.UserID, models.UpdateLinkRequest{
		ExpiresAt: &future,
	})
	require.NoError(t, err)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, got.ExpiresAt.Equal(future))
}
