package post

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/model"
)

func seeded(t *testing.T, opts ...MemoryOption) *MemoryRepository {
	t.Helper()
	repo, err := NewMemoryRepository(content.Builtin(time.Now()), opts...)
	require.NoError(t, err)
	return repo
}

func TestMemoryRepository_ListPostsInSeedOrder(t *testing.T) {
	repo := seeded(t)

	posts, err := repo.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"primeiro-post", "angular-19", "markdown-no-blog"},
		[]string{posts[0].Slug, posts[1].Slug, posts[2].Slug})
}

func TestMemoryRepository_ListIsPureRead(t *testing.T) {
	repo := seeded(t)
	ctx := context.Background()

	first, err := repo.ListPosts(ctx)
	require.NoError(t, err)
	first[0].Title = "changed"
	*first[0].PublishDate = time.Time{}

	second, err := repo.ListPosts(ctx)
	require.NoError(t, err)
	third, err := repo.ListPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, third)
	assert.Len(t, second, 3)
	assert.Equal(t, "Meu Primeiro Post", second[0].Title)
	assert.False(t, second[0].PublishDate.IsZero())
}

func TestMemoryRepository_GetPostBySlug(t *testing.T) {
	repo := seeded(t)
	ctx := context.Background()

	p, found, err := repo.GetPostBySlug(ctx, "primeiro-post")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Meu Primeiro Post", p.Title)

	for i := 0; i < 3; i++ {
		_, found, err = repo.GetPostBySlug(ctx, "nonexistent")
		require.NoError(t, err)
		assert.False(t, found)
	}

	_, found, err = repo.GetPostBySlug(ctx, "")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewMemoryRepository_RejectsDuplicates(t *testing.T) {
	_, err := NewMemoryRepository([]model.Post{
		{ID: model.IntID(1), Slug: "a"},
		{ID: model.IntID(2), Slug: "a"},
	})
	assert.ErrorIs(t, err, ErrDuplicateSlug)

	_, err = NewMemoryRepository([]model.Post{
		{ID: model.StringID("x")},
		{ID: model.StringID("x")},
	})
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = NewMemoryRepository([]model.Post{{Title: "no id"}})
	assert.Error(t, err)
}

func TestNewMemoryRepository_AllowsManyPostsWithoutSlug(t *testing.T) {
	repo, err := NewMemoryRepository([]model.Post{
		{ID: model.IntID(1)},
		{ID: model.IntID(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.Len())
}

func TestMemoryRepository_LatencyHonoursCancellation(t *testing.T) {
	repo := seeded(t, WithLatency(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := repo.GetPostBySlug(ctx, "primeiro-post")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAsyncHelpers(t *testing.T) {
	repo := seeded(t, WithLatency(time.Millisecond))
	ctx := context.Background()

	posts, err := ListAsync(ctx, repo).Await(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 3)

	res, err := GetAsync(ctx, repo, "angular-19").Await(ctx)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "Novidades do Angular 19+", res.Post.Title)
}

func TestGetAsync_EmptySlugNeverReachesRepository(t *testing.T) {
	f := GetAsync(context.Background(), nil, "")
	select {
	case <-f.Done():
	default:
		t.Fatal("empty slug lookup should already be settled")
	}
	res, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestHolder_Swap(t *testing.T) {
	ctx := context.Background()
	h := NewHolder(seeded(t))

	next, err := NewMemoryRepository([]model.Post{{ID: model.IntID(9), Slug: "novo", Title: "Novo"}})
	require.NoError(t, err)
	old := h.Swap(next)
	assert.NotNil(t, old)

	posts, err := h.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	_, found, err := h.GetPostBySlug(ctx, "primeiro-post")
	require.NoError(t, err)
	assert.False(t, found)
}
