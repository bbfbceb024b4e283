package content

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bitlatte/folio/internal/model"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestBuiltin(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	posts := Builtin(now)
	require.Len(t, posts, 3)
	assert.Equal(t, "Meu Primeiro Post", posts[0].Title)
	assert.Equal(t, "primeiro-post", posts[0].Slug)
	assert.Equal(t, model.FormatMarkdown, posts[2].Format)
	assert.Equal(t, now, *posts[2].PublishDate)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "01-hello.md"), "---\nid: 10\ntitle: Hello There\nslug: hello\nauthor: Ana\ndate: 2025-03-28\n---\n# Hi\n")
	writeFile(t, filepath.Join(dir, "02-plain_notes.md"), "Just *markdown*.\n")
	writeFile(t, filepath.Join(dir, "03-draft.md"), "---\ntitle: Draft\ndraft: true\n---\nhidden\n")
	writeFile(t, filepath.Join(dir, "readme.txt"), "ignored")

	posts, err := LoadDir(dir, nil)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	first := posts[0]
	assert.Equal(t, model.IntID(10), first.ID)
	assert.Equal(t, "Hello There", first.Title)
	assert.Equal(t, "hello", first.Slug)
	assert.Equal(t, "Ana", first.Author)
	assert.Equal(t, "# Hi", first.Content)
	require.NotNil(t, first.PublishDate)
	assert.Equal(t, "2025-03-28", first.PublishDate.Format("2006-01-02"))

	second := posts[1]
	assert.Equal(t, "02-plain-notes", second.Slug)
	assert.Equal(t, "02 Plain Notes", second.Title)
	assert.Equal(t, model.StringID("02-plain-notes"), second.ID)
	assert.Equal(t, model.FormatMarkdown, second.Format)
	assert.Nil(t, second.PublishDate)
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.yaml")
	writeFile(t, path, `posts:
  - id: 1
    slug: one
    title: One
    content: "<p>1</p>"
  - id: two
    title: Two
    content: "**2**"
    format: markdown
`)
	posts, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, model.FormatHTML, posts[0].Format)
	assert.Equal(t, model.StringID("two"), posts[1].ID)
	assert.False(t, posts[1].HasSlug())
	assert.Equal(t, model.FormatMarkdown, posts[1].Format)
}

func TestLoad_UnknownSource(t *testing.T) {
	_, err := Load(Config{Source: "ftp"}, nil)
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestLoad_DefaultsToBuiltin(t *testing.T) {
	posts, err := Load(Config{}, nil)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "meu-primeiro-post", Slugify("Meu Primeiro  Post!"))
	assert.Equal(t, "a-b", Slugify("--A__b--"))
	assert.Empty(t, Slugify("???"))
	assert.Equal(t, "introducao-a-programacao", Slugify("introdução-à-programação"))
	assert.Equal(t, "nao-e-so-isso", Slugify("Não é só isso"))
}
