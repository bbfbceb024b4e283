// Package post supplies blog posts to the views.
//
// A Repository returns the full collection in seed order and looks single
// posts up by slug. Not finding a slug is a normal outcome reported through
// the found flag; errors are reserved for a backend that cannot answer and
// wrap ErrUnavailable. When the caller's context ends first, the context's
// own error is returned unwrapped.
package post

import (
	"context"
	"errors"
	"fmt"

	"github.com/Bitlatte/folio/internal/async"
	"github.com/Bitlatte/folio/internal/model"
)

var (
	// ErrUnavailable is wrapped by every backend failure.
	ErrUnavailable = errors.New("post repository unavailable")
	// ErrDuplicateSlug is returned when two seeded posts share a non-empty slug.
	ErrDuplicateSlug = errors.New("duplicate post slug")
	// ErrDuplicateID is returned when two seeded posts share an identifier.
	ErrDuplicateID = errors.New("duplicate post id")
)

// Repository is the retrieval contract the views depend on.
type Repository interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (model.Post, bool, error)
}

// Lookup is the settled result of a slug lookup.
type Lookup struct {
	Post  model.Post
	Found bool
}

// ListAsync issues ListPosts on its own goroutine.
func ListAsync(ctx context.Context, repo Repository) *async.Future[[]model.Post] {
	return async.Go(ctx, repo.ListPosts)
}

// GetAsync issues GetPostBySlug on its own goroutine. An empty slug settles
// to not-found at once.
func GetAsync(ctx context.Context, repo Repository, slug string) *async.Future[Lookup] {
	if slug == "" {
		return async.Resolved(Lookup{}, nil)
	}
	return async.Go(ctx, func(ctx context.Context) (Lookup, error) {
		p, found, err := repo.GetPostBySlug(ctx, slug)
		return Lookup{Post: p, Found: found}, err
	})
}

// Validate checks the seed invariants: identifiers are set and unique, and
// non-empty slugs are unique.
func Validate(posts []model.Post) error {
	ids := make(map[string]struct{}, len(posts))
	slugs := make(map[string]struct{}, len(posts))
	for i, p := range posts {
		if p.ID.IsZero() {
			return fmt.Errorf("post %d (%q) has no id", i, p.Title)
		}
		if _, ok := ids[p.ID.Key()]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		ids[p.ID.Key()] = struct{}{}

		if !p.HasSlug() {
			continue
		}
		if _, ok := slugs[p.Slug]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateSlug, p.Slug)
		}
		slugs[p.Slug] = struct{}{}
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
