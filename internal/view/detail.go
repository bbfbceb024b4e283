package view

import (
	"context"
	"sync"

	"github.com/Bitlatte/folio/internal/async"
	"github.com/Bitlatte/folio/internal/logger"
	"github.com/Bitlatte/folio/internal/model"
	"github.com/Bitlatte/folio/internal/post"
)

// DetailState is what the detail page shows.
type DetailState struct {
	Slug   string
	Status Status
	Post   model.Post
	Err    error
}

// DetailBinding keeps the displayed post in step with the route's slug.
// Each slug change cancels the lookup in flight and issues a new one; only
// the most recently issued lookup may update the state.
type DetailBinding struct {
	repo   post.Repository
	log    logger.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	gen      uint64
	active   bool
	closed   bool
	inflight *async.Future[post.Lookup]
	state    DetailState
	settled  chan struct{}
	updates  chan DetailState
}

// NewDetailBinding mounts a detail view. Lookups run under ctx, and the
// binding closes itself when ctx ends.
func NewDetailBinding(ctx context.Context, repo post.Repository, log logger.Logger) *DetailBinding {
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	b := &DetailBinding{
		repo:    repo,
		log:     log.With(logger.String("view", "post-detail")),
		ctx:     ctx,
		cancel:  cancel,
		updates: make(chan DetailState, 1),
	}
	context.AfterFunc(ctx, b.Close)
	return b
}

// SetSlug reacts to a new route parameter value. Setting the current slug
// again is a no-op. An empty slug settles to not-found without a lookup.
func (b *DetailBinding) SetSlug(slug string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || (b.active && b.state.Slug == slug) {
		return
	}
	if b.inflight != nil {
		b.inflight.Cancel()
		b.inflight = nil
	}
	// Release waiters parked on the superseded lookup; they pick up the new one.
	if b.active && !b.state.Status.Settled() {
		close(b.settled)
	}
	b.gen++
	gen := b.gen
	b.active = true
	b.settled = make(chan struct{})

	if slug == "" {
		b.log.Warn("No slug in route")
		b.settle(DetailState{Status: StatusNotFound})
		return
	}

	b.log.Debug("Resolving post", logger.String("slug", slug))
	b.state = DetailState{Slug: slug, Status: StatusLoading}
	f := post.GetAsync(b.ctx, b.repo, slug)
	b.inflight = f
	f.Then(func(res post.Lookup, err error) {
		b.complete(gen, slug, res, err)
	})
}

func (b *DetailBinding) complete(gen uint64, slug string, res post.Lookup, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || gen != b.gen {
		b.log.Debug("Discarding superseded lookup", logger.String("slug", slug))
		return
	}
	b.inflight = nil

	switch {
	case err != nil && b.ctx.Err() != nil:
		b.log.Debug("Lookup abandoned", logger.String("slug", slug), logger.Error(err))
		b.settle(DetailState{Slug: slug, Status: StatusUnavailable, Err: err})
	case err != nil:
		b.log.Error("Post lookup failed", logger.String("slug", slug), logger.Error(err))
		b.settle(DetailState{Slug: slug, Status: StatusUnavailable, Err: err})
	case !res.Found:
		b.log.Info("Post not found", logger.String("slug", slug))
		b.settle(DetailState{Slug: slug, Status: StatusNotFound})
	default:
		b.settle(DetailState{Slug: slug, Status: StatusReady, Post: res.Post})
	}
}

// settle must be called with mu held.
func (b *DetailBinding) settle(s DetailState) {
	b.state = s
	close(b.settled)
	publish(b.updates, s)
}

// State returns the current state, which may still be loading.
func (b *DetailBinding) State() DetailState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Updates delivers every settled state. A slow reader only sees the latest.
// The channel is closed by Close.
func (b *DetailBinding) Updates() <-chan DetailState {
	return b.updates
}

// Wait blocks until the most recently issued lookup settles.
func (b *DetailBinding) Wait(ctx context.Context) (DetailState, error) {
	for {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return DetailState{}, ErrClosed
		}
		if !b.active {
			b.mu.Unlock()
			return DetailState{}, ErrNotActive
		}
		ch := b.settled
		if b.state.Status.Settled() {
			s := b.state
			b.mu.Unlock()
			return s, nil
		}
		b.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return DetailState{}, ctx.Err()
		}
	}
}

// Close unmounts the view and cancels any lookup in flight.
func (b *DetailBinding) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.inflight != nil {
		b.inflight.Cancel()
		b.inflight = nil
	}
	if b.active && !b.state.Status.Settled() {
		close(b.settled)
	}
	b.cancel()
	close(b.updates)
}
