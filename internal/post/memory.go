package post

import (
	"context"
	"time"

	"github.com/Bitlatte/folio/internal/model"
)

// MemoryRepository serves a fixed collection seeded at construction.
// The collection is never mutated afterwards.
type MemoryRepository struct {
	posts   []model.Post
	latency time.Duration
}

// MemoryOption configures a MemoryRepository.
type MemoryOption func(*MemoryRepository)

// WithLatency delays every read by d, honouring context cancellation.
func WithLatency(d time.Duration) MemoryOption {
	return func(r *MemoryRepository) {
		r.latency = d
	}
}

// NewMemoryRepository copies posts and validates the seed.
func NewMemoryRepository(posts []model.Post, opts ...MemoryOption) (*MemoryRepository, error) {
	if err := Validate(posts); err != nil {
		return nil, err
	}
	r := &MemoryRepository{posts: clonePosts(posts)}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ListPosts returns a copy of the collection in seed order.
func (r *MemoryRepository) ListPosts(ctx context.Context) ([]model.Post, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return clonePosts(r.posts), nil
}

// GetPostBySlug scans the collection for slug. An empty slug is never found.
func (r *MemoryRepository) GetPostBySlug(ctx context.Context, slug string) (model.Post, bool, error) {
	if err := r.wait(ctx); err != nil {
		return model.Post{}, false, err
	}
	if slug == "" {
		return model.Post{}, false, nil
	}
	for _, p := range r.posts {
		if p.Slug == slug {
			return clonePost(p), true, nil
		}
	}
	return model.Post{}, false, nil
}

// Len is the number of seeded posts.
func (r *MemoryRepository) Len() int {
	return len(r.posts)
}

func (r *MemoryRepository) wait(ctx context.Context) error {
	if r.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(r.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func clonePosts(posts []model.Post) []model.Post {
	out := make([]model.Post, len(posts))
	for i, p := range posts {
		out[i] = clonePost(p)
	}
	return out
}

func clonePost(p model.Post) model.Post {
	if p.PublishDate != nil {
		d := *p.PublishDate
		p.PublishDate = &d
	}
	return p
}
