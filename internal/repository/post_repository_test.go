package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/linkboard/internal/apperror"
)

func TestPostRepository_ListRecentNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")

	oldest := seedPost(t, db, alice, "oldest", base)
	newest := seedPost(t, db, alice, "newest", base.Add(2*time.Hour))
	middle := seedPost(t, db, alice, "middle", base.Add(time.Hour))
	seedComment(t, db, alice, middle, base.Add(3*time.Hour))
	seedComment(t, db, alice, middle, base.Add(4*time.Hour))

	posts, err := repo.ListRecent(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []uint{newest.ID, middle.ID, oldest.ID}, []uint{posts[0].ID, posts[1].ID, posts[2].ID})
	for i := 1; i < len(posts); i++ {
		assert.True(t, posts[i-1].Timestamp.After(posts[i].Timestamp))
	}

	assert.Equal(t, "alice", posts[0].Author.Username)
	assert.Equal(t, int64(2), posts[1].CommentCount)
	assert.Equal(t, int64(0), posts[0].CommentCount)
}

func TestPostRepository_GetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	bob := seedUser(t, db, "bob")
	p := seedPost(t, db, bob, "hello", base)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Title)
	assert.Equal(t, "example.com", got.Source)
	assert.Equal(t, "bob", got.Author.Username)

	_, err = repo.GetByID(ctx, p.ID+100)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPostRepository_ListByAuthor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	seedPost(t, db, alice, "a1", base)
	seedPost(t, db, bob, "b1", base)
	seedPost(t, db, alice, "a2", base.Add(time.Minute))

	posts, err := repo.ListByAuthor(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "a2", posts[0].Title)
}
