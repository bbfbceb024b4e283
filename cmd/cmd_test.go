package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/logger"
	"github.com/Bitlatte/folio/internal/model"
	"github.com/Bitlatte/folio/internal/post"
	"github.com/Bitlatte/folio/internal/route"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		SiteTitle:  "Meu Blog",
		OutputDir:  filepath.Join(t.TempDir(), "public"),
		DateLayout: "02/01/2006",
		Content:    content.Config{Source: content.SourceBuiltin},
	}
}

func TestRunBuildProcess(t *testing.T) {
	cfg := testConfig(t)
	staticDir := filepath.Join(t.TempDir(), "static")
	require.NoError(t, os.MkdirAll(filepath.Join(staticDir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "css", "site.css"), []byte("body{}"), 0o644))

	repo, err := post.NewMemoryRepository(append(content.Builtin(time.Now()),
		model.Post{ID: model.IntID(4), Title: "Sem slug", Content: "x"}))
	require.NoError(t, err)

	require.NoError(t, runBuildProcess(context.Background(), cfg, route.Default(), repo, staticDir, logger.NewNop()))

	list, err := os.ReadFile(filepath.Join(cfg.OutputDir, "posts", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(list), "Meu Primeiro Post")
	assert.Contains(t, string(list), "Sem slug")

	for _, slug := range []string{"primeiro-post", "angular-19", "markdown-no-blog"} {
		assert.FileExists(t, filepath.Join(cfg.OutputDir, "post", slug, "index.html"))
	}
	entries, err := os.ReadDir(filepath.Join(cfg.OutputDir, "post"))
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	root, err := os.ReadFile(filepath.Join(cfg.OutputDir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(root), `url=/posts`)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "404.html"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "css", "site.css"))
}

func TestRunBuildProcess_FollowsRouteTable(t *testing.T) {
	cfg := testConfig(t)
	repo, err := post.NewMemoryRepository([]model.Post{
		{ID: model.IntID(1), Title: "Primeiro", Slug: "primeiro"},
		{ID: model.IntID(2), Title: "Aninhado", Slug: "a/b"},
	})
	require.NoError(t, err)

	routes := route.Default()
	routes[1].Title = "Artigos"
	require.NoError(t, runBuildProcess(context.Background(), cfg, routes, repo, "", logger.NewNop()))

	list, err := os.ReadFile(filepath.Join(cfg.OutputDir, "posts", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(list), "<title>Meu Blog - Artigos</title>")

	assert.FileExists(t, filepath.Join(cfg.OutputDir, "post", "primeiro", "index.html"))
	assert.NoDirExists(t, filepath.Join(cfg.OutputDir, "post", "a"))
}

func TestRunBuildProcess_RequiresListRoute(t *testing.T) {
	routes := route.Table{
		{Path: "/post/{slug}", View: route.ViewPostDetail},
		{Path: route.CatchAll, RedirectTo: "/post/primeiro-post"},
	}
	repo, err := post.NewMemoryRepository(content.Builtin(time.Now()))
	require.NoError(t, err)

	err = runBuildProcess(context.Background(), testConfig(t), routes, repo, "", logger.NewNop())
	assert.ErrorContains(t, err, "/posts")
}

func TestOpenRepository_Builtin(t *testing.T) {
	repo, closeRepo, err := openRepository(context.Background(), testConfig(t), 0, logger.NewNop())
	require.NoError(t, err)
	defer closeRepo()

	posts, err := repo.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestOpenRepository_RedisWithSeed(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Content.Source = content.SourceRedis
	cfg.Redis = post.RedisConfig{Address: mr.Addr(), Prefix: "folio", Seed: true}

	repo, closeRepo, err := openRepository(context.Background(), cfg, 0, logger.NewNop())
	require.NoError(t, err)
	defer closeRepo()

	p, found, err := repo.GetPostBySlug(context.Background(), "primeiro-post")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Meu Primeiro Post", p.Title)
}

func TestOpenRepository_UnknownSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Content.Source = "carrier-pigeon"
	_, closeRepo, err := openRepository(context.Background(), cfg, 0, logger.NewNop())
	assert.ErrorIs(t, err, content.ErrUnknownSource)
	assert.NotNil(t, closeRepo)
}

func TestReloadContent_KeepsPreviousOnFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("---\nslug: a\n---\nA"), 0o644))
	cfg := content.Config{Source: content.SourceDir, Dir: dir}

	initial, err := post.NewMemoryRepository(content.Builtin(time.Now()))
	require.NoError(t, err)
	holder := post.NewHolder(initial)

	require.NoError(t, reloadContent(holder, cfg, logger.NewNop()))
	posts, err := holder.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "a", posts[0].Slug)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("---\nid: b\nslug: a\n---\nB"), 0o644))
	assert.ErrorIs(t, reloadContent(holder, cfg, logger.NewNop()), post.ErrDuplicateSlug)
	posts, err = holder.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestWatchContent_ReloadsAfterChange(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan struct{}, 4)
	watcher, err := watchContent(ctx, dir, func() error {
		reloads <- struct{}{}
		return nil
	}, logger.NewNop())
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.md"), []byte("hello"), 0o644))

	select {
	case <-reloads:
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after change")
	}
}

func TestPrintRoutes(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	require.NoError(t, printRoutes(&buf, route.Default()))
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[2], "post-list")
	assert.Contains(t, lines[3], "/post/{slug}")
	assert.Contains(t, lines[4], "-> /posts")
}

func TestPrintPosts(t *testing.T) {
	var buf bytes.Buffer
	posts := append(content.Builtin(time.Now()), model.Post{ID: model.StringID("x"), Title: "No slug"})
	require.NoError(t, printPosts(&buf, posts))
	assert.Contains(t, buf.String(), "primeiro-post")
	assert.Contains(t, buf.String(), "Meu Primeiro Post")
	assert.Regexp(t, `x\s+-\s+No slug`, buf.String())
}
