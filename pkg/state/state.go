package state

import (
	"context"

	gametypes "github.com/hallorn/broadside/pkg/game/types"
)

// StateManager provides shared access to match state.
// Implementations must be thread-safe.
type StateManager interface {
	// GetMatch returns a copy of the match state.
	GetMatch(ctx context.Context, matchID string) (*gametypes.MatchState, error)
	// SetMatch sets the match state.
	SetMatch(ctx context.Context, match *gametypes.MatchState) error
	// RemoveMatch removes the match state.
	RemoveMatch(ctx context.Context, matchID string) error
	// ListMatches returns copies of all match states.
	ListMatches(ctx context.Context) ([]*gametypes.MatchState, error)
}
