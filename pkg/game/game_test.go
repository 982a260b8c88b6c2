package game

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hallorn/broadside/pkg/clients"
	"github.com/hallorn/broadside/pkg/game/constants"
	"github.com/hallorn/broadside/pkg/game/types"
	"github.com/hallorn/broadside/pkg/messages"
	"github.com/hallorn/broadside/pkg/queue"
	"github.com/hallorn/broadside/pkg/repositories"
	"github.com/hallorn/broadside/pkg/repositories/models"
	"github.com/hallorn/broadside/pkg/state"
	"github.com/hallorn/broadside/pkg/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository is an in-memory Repository for tests.
type fakeRepository struct {
	snapshots      map[string]*types.PlayerSnapshot
	deletedMatches []string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		snapshots: make(map[string]*types.PlayerSnapshot),
	}
}

func (r *fakeRepository) Close(ctx context.Context) error {
	return nil
}

func (r *fakeRepository) SavePlayerSnapshot(ctx context.Context, timestamp int64, snapshot *types.PlayerSnapshot) error {
	r.snapshots[snapshot.UUID] = snapshot
	return nil
}

func (r *fakeRepository) LoadPlayerSnapshot(ctx context.Context, matchID string, playerUUID string) (*types.PlayerSnapshot, error) {
	snapshot, ok := r.snapshots[playerUUID]
	if !ok || snapshot.MatchID != matchID {
		return nil, &repositories.ErrNotFound{}
	}
	return snapshot, nil
}

func (r *fakeRepository) LoadMatchSnapshots(ctx context.Context, matchID string) ([]*types.PlayerSnapshot, error) {
	var snapshots []*types.PlayerSnapshot
	for _, snapshot := range r.snapshots {
		if snapshot.MatchID == matchID {
			snapshots = append(snapshots, snapshot)
		}
	}
	return snapshots, nil
}

func (r *fakeRepository) ListMatchPlayers(ctx context.Context, matchID string) ([]models.Player, error) {
	return nil, nil
}

func (r *fakeRepository) DeleteMatch(ctx context.Context, matchID string) error {
	r.deletedMatches = append(r.deletedMatches, matchID)
	for uuid, snapshot := range r.snapshots {
		if snapshot.MatchID == matchID {
			delete(r.snapshots, uuid)
		}
	}
	return nil
}

type testHarness struct {
	manager            *MatchManager
	repository         *fakeRepository
	clientMessageQueue queue.Queue
	saveSnapshotChan   chan workers.SaveSnapshotRequest
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	repository := newFakeRepository()
	clientMessageQueue := queue.NewInMemoryQueue(100)
	connectionEventQueue := queue.NewInMemoryQueue(100)
	saveSnapshotChan := make(chan workers.SaveSnapshotRequest, 100)

	manager := NewMatchManager(NewMatchManagerOptions{
		ClientManager:        clients.NewClientManager(),
		ClientMessageQueue:   clientMessageQueue,
		ConnectionEventQueue: connectionEventQueue,
		Repository:           repository,
		StateManager:         state.NewInMemoryStateManager(),
		SaveSnapshotChan:     saveSnapshotChan,
		MatchLoopInterval:    50 * time.Millisecond,
	})
	return &testHarness{
		manager:            manager,
		repository:         repository,
		clientMessageQueue: clientMessageQueue,
		saveSnapshotChan:   saveSnapshotChan,
	}
}

func (h *testHarness) enqueue(t *testing.T, clientID uint32, messageType string, payload interface{}) {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, h.clientMessageQueue.Enqueue(&messages.Message{
		ClientID: clientID,
		Type:     messageType,
		Payload:  b,
	}))
}

func (h *testHarness) process(ctx context.Context) {
	h.manager.processClientMessages(ctx)
}

// joinTwoPlayers joins clients 1 and 2 to the same match.
func (h *testHarness) joinTwoPlayers(t *testing.T, ctx context.Context, matchID string) *types.MatchState {
	t.Helper()
	h.enqueue(t, 1, messages.MessageTypeClientJoinMatch, &messages.ClientJoinMatch{Username: "alice", MatchID: matchID})
	h.enqueue(t, 2, messages.MessageTypeClientJoinMatch, &messages.ClientJoinMatch{Username: "bob", MatchID: matchID})
	h.process(ctx)

	match, ok := h.manager.matches[matchID]
	require.True(t, ok)
	require.Len(t, match.Players, 2)
	return match
}

func TestMatchManager_JoinMatch(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	match := h.joinTwoPlayers(t, ctx, "match-1")

	assert.Equal(t, types.MatchStatusLobby, match.Status)
	assert.Equal(t, uint32(1), match.Turn, "first player to join opens the match")
	for _, player := range match.Players {
		assert.False(t, player.Board.Valid, "random default boards await confirmation")
		assert.NotEmpty(t, player.UUID)
		assert.NoError(t, player.Board.Validate())
	}

	// a third player is turned away
	h.enqueue(t, 3, messages.MessageTypeClientJoinMatch, &messages.ClientJoinMatch{Username: "carol", MatchID: "match-1"})
	h.process(ctx)
	assert.Len(t, match.Players, 2)
}

func TestMatchManager_JoinMatch_Rehydrates(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	saved, err := types.NewPlayerState(types.NewPlayerStateOptions{
		UUID:      "returning-uuid",
		Username:  "alice",
		MatchID:   "match-1",
		Placement: validTestPlacement(),
	})
	require.NoError(t, err)
	saved.AddScore(77)
	h.repository.snapshots["returning-uuid"] = saved.ToSnapshot()

	h.enqueue(t, 1, messages.MessageTypeClientJoinMatch, &messages.ClientJoinMatch{
		UUID:     "returning-uuid",
		Username: "alice",
		MatchID:  "match-1",
	})
	h.process(ctx)

	match := h.manager.matches["match-1"]
	require.NotNil(t, match)
	player := match.Players[1]
	require.NotNil(t, player)
	assert.Equal(t, "returning-uuid", player.UUID)
	assert.Equal(t, 77, player.Score)
}

func TestMatchManager_PlaceShips(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	match := h.joinTwoPlayers(t, ctx, "match-1")

	// an invalid placement is applied but leaves the board unconfirmed
	badPlacement := validTestPlacement()
	badPlacement[types.ShipTypeSubmarine] = badPlacement[types.ShipTypeCruiser]
	h.enqueue(t, 1, messages.MessageTypeClientPlaceShips, &messages.ClientPlaceShips{Placement: badPlacement})
	h.process(ctx)
	assert.False(t, match.Players[1].Board.Valid)
	assert.Equal(t, types.MatchStatusLobby, match.Status)

	h.enqueue(t, 1, messages.MessageTypeClientPlaceShips, &messages.ClientPlaceShips{Placement: validTestPlacement()})
	h.enqueue(t, 2, messages.MessageTypeClientPlaceShips, &messages.ClientPlaceShips{Placement: validTestPlacement()})
	h.process(ctx)

	assert.True(t, match.Players[1].Board.Valid)
	assert.True(t, match.Players[2].Board.Valid)
	assert.Equal(t, types.MatchStatusActive, match.Status)

	// boards are locked once the match is active
	h.enqueue(t, 1, messages.MessageTypeClientPlaceShips, &messages.ClientPlaceShips{Placement: validTestPlacement()})
	h.process(ctx)
	assert.Equal(t, types.MatchStatusActive, match.Status)
}

// activeMatch wires a running two-player match directly into the manager.
func activeMatch(t *testing.T, h *testHarness, matchID string) *types.MatchState {
	t.Helper()
	match := types.NewMatchState(matchID)
	for clientID, name := range map[uint32]string{1: "alice", 2: "bob"} {
		player, err := types.NewPlayerState(types.NewPlayerStateOptions{
			UUID:      name + "-uuid",
			Username:  name,
			MatchID:   matchID,
			Placement: validTestPlacement(),
		})
		require.NoError(t, err)
		require.NoError(t, player.SetBoard(validTestPlacement(), true))
		match.Players[clientID] = player
		h.manager.clientMatches[clientID] = matchID
	}
	match.Status = types.MatchStatusActive
	match.Turn = 1
	h.manager.matches[matchID] = match
	return match
}

func TestMatchManager_AttackFlow(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	match := activeMatch(t, h, "match-1")
	attacker := match.Players[1]
	defender := match.Players[2]

	// destroyer cell at (0,4): a hit keeps the turn
	h.enqueue(t, 1, messages.MessageTypeClientAttack, &messages.ClientAttack{
		Attack: types.AttackInput{Origin: types.CellPosition{X: 0, Y: 4}},
	})
	h.process(ctx)

	require.Len(t, attacker.Attacks, 1)
	assert.IsType(t, types.Hit{}, attacker.Attacks[0].Result)
	assert.True(t, defender.Board.Positions[types.ShipTypeDestroyer].Cells[0].Hit)
	assert.Equal(t, constants.ScoreHit, attacker.Score)
	assert.Equal(t, uint32(1), match.Turn)

	// open water: a miss hands the turn over
	h.enqueue(t, 1, messages.MessageTypeClientAttack, &messages.ClientAttack{
		Attack: types.AttackInput{Origin: types.CellPosition{X: 9, Y: 9}},
	})
	h.process(ctx)

	require.Len(t, attacker.Attacks, 2)
	assert.Equal(t, uint32(2), match.Turn)

	// attacking out of turn is rejected
	h.enqueue(t, 1, messages.MessageTypeClientAttack, &messages.ClientAttack{
		Attack: types.AttackInput{Origin: types.CellPosition{X: 1, Y: 4}},
	})
	h.process(ctx)
	assert.Len(t, attacker.Attacks, 2)

	// duplicate attacks are rejected
	h.enqueue(t, 2, messages.MessageTypeClientAttack, &messages.ClientAttack{
		Attack: types.AttackInput{Origin: types.CellPosition{X: 0, Y: 0}},
	})
	h.process(ctx)
	h.enqueue(t, 2, messages.MessageTypeClientAttack, &messages.ClientAttack{
		Attack: types.AttackInput{Origin: types.CellPosition{X: 0, Y: 0}},
	})
	h.process(ctx)
	assert.Len(t, defender.Attacks, 1)
}

func TestMatchManager_StreakBonus(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	match := activeMatch(t, h, "match-1")
	attacker := match.Players[1]

	// three consecutive hits on the carrier row
	for x := 0; x < 3; x++ {
		h.enqueue(t, 1, messages.MessageTypeClientAttack, &messages.ClientAttack{
			Attack: types.AttackInput{Origin: types.CellPosition{X: x, Y: 0}},
		})
	}
	h.process(ctx)

	want := 3*constants.ScoreHit + (1+2)*constants.ScoreStreakBonus
	assert.Equal(t, want, attacker.Score)
}

func TestMatchManager_WinDetection(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	match := activeMatch(t, h, "match-1")
	defender := match.Players[2]

	// sink everything except the destroyer's last cell
	for i, shipType := range types.ShipTypes {
		for x := 0; x < types.ShipSizes[shipType]; x++ {
			if shipType == types.ShipTypeDestroyer && x == types.ShipSizes[shipType]-1 {
				continue
			}
			defender.ResolveIncomingAttack(types.CellPosition{X: x, Y: i})
		}
	}

	h.enqueue(t, 1, messages.MessageTypeClientAttack, &messages.ClientAttack{
		Attack: types.AttackInput{Origin: types.CellPosition{X: 1, Y: 4}},
	})
	h.process(ctx)

	assert.Equal(t, []string{"match-1"}, h.repository.deletedMatches)
	assert.Empty(t, h.manager.matches, "finished match is evicted")
	assert.Empty(t, h.manager.clientMatches)
}

func TestMatchManager_Disconnect(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	match := activeMatch(t, h, "match-1")
	leaving := match.Players[1]

	require.NoError(t, h.manager.connectionEventQueue.Enqueue(&types.DisconnectClientEvent{ClientID: 1}))
	h.manager.processConnectionEvents(ctx)

	assert.NotContains(t, match.Players, uint32(1))
	assert.Contains(t, match.Players, uint32(2))

	// the final snapshot was queued for persistence
	select {
	case saveRequest := <-h.saveSnapshotChan:
		assert.Equal(t, leaving.UUID, saveRequest.Snapshot.UUID)
	default:
		t.Fatal("expected a save request for the leaving player")
	}
}
