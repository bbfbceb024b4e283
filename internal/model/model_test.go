package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestPostID_JSON(t *testing.T) {
	var posts []Post
	err := json.Unmarshal([]byte(`[{"id":7,"title":"a"},{"id":"abc","title":"b"}]`), &posts)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	n, ok := posts[0].ID.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)
	assert.False(t, posts[1].ID.IsNumeric())
	assert.Equal(t, "abc", posts[1].ID.String())

	out, err := json.Marshal(posts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "7", string(out))
}

func TestPostID_YAML(t *testing.T) {
	var posts []Post
	err := yaml.Unmarshal([]byte("- id: 3\n  title: x\n- id: intro\n  title: y\n"), &posts)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, IntID(3), posts[0].ID)
	assert.Equal(t, StringID("intro"), posts[1].ID)
}

func TestPostID_KeyDistinguishesKinds(t *testing.T) {
	assert.NotEqual(t, IntID(1).Key(), StringID("1").Key())
	assert.True(t, PostID{}.IsZero())
	assert.False(t, IntID(0).IsZero())
}

func TestPost_Permalink(t *testing.T) {
	assert.Equal(t, "/post/primeiro-post", Post{Slug: "primeiro-post"}.Permalink())
	assert.Empty(t, Post{}.Permalink())
}
