// ===========================================
// Slug Handling
// ===========================================
// Slugs are the human-facing short keys. They are case-sensitive in
// storage, so normalization cleans whitespace and stray slashes but
// never changes letter case.
// ===========================================

package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// slugPattern is applied after normalization: leading alphanumeric,
// then 2-40 more of [a-zA-Z0-9-_], i.e. 3-41 characters total.
var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-_]{2,40}$`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeSlug prepares raw slug input for lookup or storage:
// trim, strip a leading slash (pasted paths), collapse internal
// whitespace runs to a single hyphen.
func NormalizeSlug(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "/")
	s = strings.TrimSpace(s)
	return whitespaceRun.ReplaceAllString(s, "-")
}

// ValidSlug reports whether a normalized slug is acceptable.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// ===========================================
// Slug Generation
// ===========================================
// Auto-generated slugs are 7 random alphanumeric characters.
// 62^7 ≈ 3.5 trillion combinations, so collisions are rare;
// we still retry a few times against the store.
//
// crypto/rand, not math/rand: generated slugs must be unguessable.

const slugChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const generatedSlugLength = 7

// randomSlug creates a random alphanumeric slug.
func randomSlug(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	for i := range bytes {
		bytes[i] = slugChars[bytes[i]%62]
	}
	return string(bytes), nil
}

// generateUniqueSlug creates a slug not yet present in the store.
// Gives up after 5 collisions.
func generateUniqueSlug(ctx context.Context, store LinkStore) (string, error) {
	const maxRetries = 5

	for i := 0; i < maxRetries; i++ {
		slug, err := randomSlug(generatedSlugLength)
		if err != nil {
			return "", err
		}

		exists, err := store.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		// Collision - retry with a fresh slug.
	}

	return "", errors.New("failed to generate unique slug after retries")
}
