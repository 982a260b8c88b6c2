package repositories

import (
	"context"

	gametypes "github.com/hallorn/broadside/pkg/game/types"
	"github.com/hallorn/broadside/pkg/repositories/models"
)

type Repository interface {
	Close(ctx context.Context) error
	// SavePlayerSnapshot upserts a player's full snapshot, keyed by player uuid.
	SavePlayerSnapshot(ctx context.Context, timestamp int64, snapshot *gametypes.PlayerSnapshot) error
	// LoadPlayerSnapshot loads one player's snapshot. Returns ErrNotFound
	// if the player has never been saved.
	LoadPlayerSnapshot(ctx context.Context, matchID string, playerUUID string) (*gametypes.PlayerSnapshot, error)
	// LoadMatchSnapshots loads the snapshots of every player in a match.
	LoadMatchSnapshots(ctx context.Context, matchID string) ([]*gametypes.PlayerSnapshot, error)
	// ListMatchPlayers lists summary rows for every player in a match.
	ListMatchPlayers(ctx context.Context, matchID string) ([]models.Player, error)
	// DeleteMatch evicts all of a match's players from storage.
	DeleteMatch(ctx context.Context, matchID string) error
}
