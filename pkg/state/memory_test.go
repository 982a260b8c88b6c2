package state

import (
	"context"
	"testing"

	gametypes "github.com/hallorn/broadside/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStateManager(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryStateManager()

	_, err := m.GetMatch(ctx, "missing")
	assert.Error(t, err)

	match := gametypes.NewMatchState("match-1")
	match.Turn = 1
	require.NoError(t, m.SetMatch(ctx, match))

	got, err := m.GetMatch(ctx, "match-1")
	require.NoError(t, err)
	assert.Equal(t, match.ID, got.ID)
	assert.Equal(t, match.Turn, got.Turn)

	// Get returns a copy, mutating it must not affect the stored state
	got.Turn = 2
	again, err := m.GetMatch(ctx, "match-1")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), again.Turn)

	matches, err := m.ListMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	require.NoError(t, m.RemoveMatch(ctx, "match-1"))
	_, err = m.GetMatch(ctx, "match-1")
	assert.Error(t, err)
}

func TestInMemoryStateManager_SetNil(t *testing.T) {
	m := NewInMemoryStateManager()
	assert.Error(t, m.SetMatch(context.Background(), nil))
}
