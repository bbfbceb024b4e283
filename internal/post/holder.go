package post

import (
	"context"
	"sync/atomic"

	"github.com/Bitlatte/folio/internal/model"
)

// Holder delegates to a Repository that can be replaced while serving.
// Each call sees either the old or the new repository, never a mix.
type Holder struct {
	current atomic.Pointer[repoBox]
}

type repoBox struct {
	repo Repository
}

// NewHolder starts out delegating to repo.
func NewHolder(repo Repository) *Holder {
	h := &Holder{}
	h.Swap(repo)
	return h
}

// Swap installs repo and returns the one it replaced.
func (h *Holder) Swap(repo Repository) Repository {
	old := h.current.Swap(&repoBox{repo: repo})
	if old == nil {
		return nil
	}
	return old.repo
}

// Current returns the repository in use.
func (h *Holder) Current() Repository {
	return h.current.Load().repo
}

func (h *Holder) ListPosts(ctx context.Context) ([]model.Post, error) {
	return h.Current().ListPosts(ctx)
}

func (h *Holder) GetPostBySlug(ctx context.Context, slug string) (model.Post, bool, error) {
	return h.Current().GetPostBySlug(ctx, slug)
}
