package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/linkboard/internal/apperror"
)

func TestBlock_RejectsSelf(t *testing.T) {
	e := setupEnv(t, nil)
	a := e.register(t, "a")

	_, err := e.relations.Block(context.Background(), a.ID, a.ID)
	assert.ErrorIs(t, err, ErrBlockSelf)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestBlockUnblock_Idempotent(t *testing.T) {
	e := setupEnv(t, nil)
	ctx := context.Background()
	a := e.register(t, "a")
	b := e.register(t, "b")

	changed, err := e.relations.Block(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = e.relations.Block(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, changed, "second block is a no-op")

	blocking, err := e.relations.IsBlocking(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, blocking)
	blocking, err = e.relations.IsBlocking(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, blocking)

	list, err := e.relations.ListBlocked(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Username)

	changed, err = e.relations.Unblock(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = e.relations.Unblock(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, changed, "second unblock is a no-op")
}
