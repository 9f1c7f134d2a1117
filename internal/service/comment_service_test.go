package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/linkboard/internal/apperror"
	"github.com/d60-Lab/linkboard/internal/model"
)

func bodies(cs []*model.Comment) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Body
	}
	return out
}

func TestNormalizeBody(t *testing.T) {
	assert.Equal(t, "hello", normalizeBody("<p>hello</p>"))
	assert.Equal(t, "hello", normalizeBody("  hello \n"))
	assert.Equal(t, "<p>a</p><p>b</p>", normalizeBody("<p>a</p><p>b</p>"))
	assert.Equal(t, "", normalizeBody("<p> </p>"))
}

func TestAddComment_Validation(t *testing.T) {
	e := setupEnv(t, nil)
	ctx := context.Background()
	u := e.register(t, "alice")
	p, err := e.posts.CreatePost(ctx, u.ID, "t", "https://example.com")
	require.NoError(t, err)

	_, err = e.comments.AddComment(ctx, u.ID, p.ID, "<p></p>")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = e.comments.AddComment(ctx, u.ID, p.ID+42, "hi")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestVisibleComments_BlockHidesBothDirections(t *testing.T) {
	e := setupEnv(t, nil)
	ctx := context.Background()
	a := e.register(t, "a")
	b := e.register(t, "b")
	c := e.register(t, "c")
	p, err := e.posts.CreatePost(ctx, c.ID, "thread", "https://example.com")
	require.NoError(t, err)

	for _, u := range []*model.User{a, b, c, a, b} {
		_, err := e.comments.AddComment(ctx, u.ID, p.ID, "from "+u.Username)
		require.NoError(t, err)
	}

	changed, err := e.relations.Block(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.True(t, changed)

	got, err := e.comments.VisibleComments(ctx, p.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"from a", "from c", "from a"}, bodies(got))

	got, err = e.comments.VisibleComments(ctx, p.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"from b", "from c", "from b"}, bodies(got))

	got, err = e.comments.VisibleComments(ctx, p.ID, c.ID)
	require.NoError(t, err)
	assert.Len(t, got, 5)

	changed, err = e.relations.Unblock(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.True(t, changed)

	got, err = e.comments.VisibleComments(ctx, p.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"from a", "from b", "from c", "from a", "from b"}, bodies(got))
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Timestamp.Before(got[i].Timestamp), "strictly ascending")
	}
}
