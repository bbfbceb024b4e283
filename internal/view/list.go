package view

import (
	"context"
	"sync"

	"github.com/Bitlatte/folio/internal/logger"
	"github.com/Bitlatte/folio/internal/model"
	"github.com/Bitlatte/folio/internal/post"
)

// ListState is what the list page shows.
type ListState struct {
	Status Status
	Posts  []model.Post
	Err    error
}

// ListBinding requests the collection once on activation. There is no
// refresh: a new listing needs a new binding.
type ListBinding struct {
	repo post.Repository
	log  logger.Logger
	ctx  context.Context

	once    sync.Once
	mu      sync.Mutex
	state   ListState
	settled chan struct{}
}

// NewListBinding mounts a list view. The request runs under ctx.
func NewListBinding(ctx context.Context, repo post.Repository, log logger.Logger) *ListBinding {
	if log == nil {
		log = logger.NewNop()
	}
	return &ListBinding{
		repo:    repo,
		log:     log.With(logger.String("view", "post-list")),
		ctx:     ctx,
		settled: make(chan struct{}),
	}
}

// Activate issues the listing request. Only the first call does anything.
func (b *ListBinding) Activate() {
	b.once.Do(func() {
		b.mu.Lock()
		b.state = ListState{Status: StatusLoading}
		b.mu.Unlock()

		b.log.Debug("Listing posts")
		post.ListAsync(b.ctx, b.repo).Then(func(posts []model.Post, err error) {
			b.mu.Lock()
			defer b.mu.Unlock()
			if err != nil {
				b.log.Error("Listing posts failed", logger.Error(err))
				b.state = ListState{Status: StatusUnavailable, Err: err}
			} else {
				b.log.Debug("Listed posts", logger.Int("count", len(posts)))
				b.state = ListState{Status: StatusReady, Posts: posts}
			}
			close(b.settled)
		})
	})
}

// State returns the current state.
func (b *ListBinding) State() ListState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Wait blocks until the listing settles.
func (b *ListBinding) Wait(ctx context.Context) (ListState, error) {
	if b.State().Status == StatusIdle {
		return ListState{}, ErrNotActive
	}
	select {
	case <-b.settled:
		return b.State(), nil
	case <-ctx.Done():
		return ListState{}, ctx.Err()
	}
}
