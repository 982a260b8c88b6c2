package game

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/hallorn/broadside/pkg/clients"
	"github.com/hallorn/broadside/pkg/game/constants"
	"github.com/hallorn/broadside/pkg/game/types"
	"github.com/hallorn/broadside/pkg/log"
	"github.com/hallorn/broadside/pkg/messages"
	"github.com/hallorn/broadside/pkg/network"
	"github.com/hallorn/broadside/pkg/queue"
	"github.com/hallorn/broadside/pkg/repositories"
	"github.com/hallorn/broadside/pkg/state"
	"github.com/hallorn/broadside/pkg/workers"
)

// MatchManager owns every live match and is the single writer of their
// player states. Attacks, placements and joins are all applied on the
// match loop goroutine, which is what lets the player state types stay
// lock-free.
type MatchManager struct {
	clientManager        *clients.ClientManager
	clientMessageQueue   queue.Queue
	connectionEventQueue queue.Queue
	repository           repositories.Repository
	stateManager         state.StateManager
	saveSnapshotChan     chan<- workers.SaveSnapshotRequest
	matchLoopInterval    time.Duration
	rng                  *rand.Rand

	// matches maps match IDs to match states
	matches map[string]*types.MatchState
	// clientMatches maps client IDs to the match they joined
	clientMatches map[uint32]string
}

// NewMatchManagerOptions contains options for creating a new MatchManager.
type NewMatchManagerOptions struct {
	ClientManager        *clients.ClientManager
	ClientMessageQueue   queue.Queue
	ConnectionEventQueue queue.Queue
	Repository           repositories.Repository
	StateManager         state.StateManager
	SaveSnapshotChan     chan<- workers.SaveSnapshotRequest
	MatchLoopInterval    time.Duration
}

func NewMatchManager(opts NewMatchManagerOptions) *MatchManager {
	return &MatchManager{
		clientManager:        opts.ClientManager,
		clientMessageQueue:   opts.ClientMessageQueue,
		connectionEventQueue: opts.ConnectionEventQueue,
		repository:           opts.Repository,
		stateManager:         opts.StateManager,
		saveSnapshotChan:     opts.SaveSnapshotChan,
		matchLoopInterval:    opts.MatchLoopInterval,
		rng:                  rand.New(rand.NewSource(time.Now().UnixNano())),
		matches:              make(map[string]*types.MatchState),
		clientMatches:        make(map[uint32]string),
	}
}

// Start starts the match loop.
func (mm *MatchManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(mm.matchLoopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			if err := mm.matchTick(ctx, t); err != nil {
				log.Error("Failed to run match tick: %v", err)
			}
		}
	}
}

// matchTick runs one iteration of the match loop.
func (mm *MatchManager) matchTick(ctx context.Context, t time.Time) error {
	timestamp := t.UnixMilli()
	for _, match := range mm.matches {
		match.Timestamp = timestamp
	}
	mm.processConnectionEvents(ctx)
	mm.processClientMessages(ctx)
	mm.syncState(ctx)

	return nil
}

// processConnectionEvents processes all pending connection events in the
// queue and updates the affected matches.
func (mm *MatchManager) processConnectionEvents(ctx context.Context) {
	pendingEvents, err := mm.connectionEventQueue.ReadAllMessages()
	if err != nil {
		log.Error("Failed to read connection events: %v", err)
		return
	}
	for _, item := range pendingEvents {
		switch event := item.(type) {
		case *types.ConnectClientEvent:
			// nothing to do until the client sends a join message
			log.Debug("Client %d connected", event.ClientID)
		case *types.DisconnectClientEvent:
			mm.handleClientDisconnect(ctx, event.ClientID)
		default:
			log.Error("unhandled connection event type: %T", event)
		}
	}
}

func (mm *MatchManager) handleClientDisconnect(ctx context.Context, clientID uint32) {
	matchID, ok := mm.clientMatches[clientID]
	if !ok {
		return
	}
	delete(mm.clientMatches, clientID)

	match, ok := mm.matches[matchID]
	if !ok {
		return
	}
	player, ok := match.Players[clientID]
	if !ok {
		return
	}

	// save before dropping so the player can rejoin where they left off
	mm.saveSnapshotChan <- workers.SaveSnapshotRequest{
		Timestamp: match.Timestamp,
		Snapshot:  player.ToSnapshot(),
	}
	delete(match.Players, clientID)
	log.Debug("Player %s left match %s", player.UUID, matchID)

	if len(match.Players) == 0 {
		delete(mm.matches, matchID)
		if err := mm.stateManager.RemoveMatch(ctx, matchID); err != nil {
			log.Error("Failed to remove match state: %v", err)
		}
	}
}

// processClientMessages processes all pending client messages in the queue
// and updates the match states accordingly.
func (mm *MatchManager) processClientMessages(ctx context.Context) {
	pendingMessages, err := mm.clientMessageQueue.ReadAllMessages()
	if err != nil {
		log.Error("Failed to read client messages: %v", err)
		return
	}
	for _, item := range pendingMessages {
		message, ok := item.(*messages.Message)
		if !ok {
			log.Error("Failed to cast message to messages.Message")
			continue
		}

		switch message.Type {
		case messages.MessageTypeClientPing:
			mm.sendMessage(message.ClientID, messages.MessageTypeServerPong, nil)
		case messages.MessageTypeClientJoinMatch:
			mm.handleJoinMatch(ctx, message)
		case messages.MessageTypeClientPlaceShips:
			mm.handlePlaceShips(ctx, message)
		case messages.MessageTypeClientAttack:
			mm.handleAttack(ctx, message)
		default:
			log.Error("Unhandled message type: %s", message.Type)
		}
	}
}

func (mm *MatchManager) handleJoinMatch(ctx context.Context, message *messages.Message) {
	joinMatch := &messages.ClientJoinMatch{}
	if err := json.Unmarshal(message.Payload, joinMatch); err != nil {
		log.Error("Failed to unmarshal join match message: %v", err)
		return
	}

	if _, ok := mm.clientMatches[message.ClientID]; ok {
		mm.sendError(message.ClientID, "already in a match")
		return
	}

	match, ok := mm.matches[joinMatch.MatchID]
	if !ok {
		match = types.NewMatchState(joinMatch.MatchID)
		mm.matches[joinMatch.MatchID] = match
	}

	if len(match.Players) >= constants.MatchPlayerCount {
		mm.sendError(message.ClientID, "match is full")
		return
	}

	player, err := mm.loadOrCreatePlayer(ctx, joinMatch)
	if err != nil {
		log.Error("Failed to create player for client %d: %v", message.ClientID, err)
		mm.sendError(message.ClientID, "failed to join match")
		return
	}

	match.Players[message.ClientID] = player
	mm.clientMatches[message.ClientID] = joinMatch.MatchID
	if match.Turn == 0 {
		// first player to join opens the match
		match.Turn = message.ClientID
	}
	log.Debug("Player %s joined match %s as client %d", player.UUID, match.ID, message.ClientID)

	mm.refreshMatchStatus(match)

	mm.sendMessage(message.ClientID, messages.MessageTypeServerJoinedMatch, &messages.ServerJoinedMatch{
		ClientID: message.ClientID,
		Status:   match.Status,
		Snapshot: player.ToSnapshot(),
	})
	mm.broadcastOpponentViews(match)
}

// loadOrCreatePlayer rehydrates a returning player from the repository or
// creates a fresh one with a random unconfirmed board.
func (mm *MatchManager) loadOrCreatePlayer(ctx context.Context, joinMatch *messages.ClientJoinMatch) (*types.PlayerState, error) {
	if joinMatch.UUID != "" {
		snapshot, err := mm.repository.LoadPlayerSnapshot(ctx, joinMatch.MatchID, joinMatch.UUID)
		if err == nil {
			return types.NewPlayerStateFromSnapshot(snapshot)
		}
		if !repositories.IsNotFound(err) {
			log.Error("Failed to load player snapshot: %v", err)
		}
	}

	placement, err := GenerateRandomPlacement(mm.rng)
	if err != nil {
		return nil, err
	}

	playerUUID := joinMatch.UUID
	if playerUUID == "" {
		playerUUID = uuid.NewString()
	}

	return types.NewPlayerState(types.NewPlayerStateOptions{
		UUID:      playerUUID,
		Username:  joinMatch.Username,
		IsAI:      joinMatch.IsAI,
		MatchID:   joinMatch.MatchID,
		Placement: placement,
	})
}

func (mm *MatchManager) handlePlaceShips(ctx context.Context, message *messages.Message) {
	placeShips := &messages.ClientPlaceShips{}
	if err := json.Unmarshal(message.Payload, placeShips); err != nil {
		log.Error("Failed to unmarshal place ships message: %v", err)
		return
	}

	match, player, ok := mm.lookupPlayer(message.ClientID)
	if !ok {
		mm.sendError(message.ClientID, "not in a match")
		return
	}

	// a confirmed board is locked in once attacks can be exchanged
	if match.Status == types.MatchStatusActive && player.Board.Valid {
		mm.sendError(message.ClientID, "board is locked, match has started")
		return
	}

	var reason string
	valid := true
	if err := ValidatePlacement(placeShips.Placement); err != nil {
		valid = false
		reason = err.Error()
	}

	if err := player.SetBoard(placeShips.Placement, valid); err != nil {
		log.Error("Failed to set board for client %d: %v", message.ClientID, err)
		mm.sendError(message.ClientID, "invalid placement")
		return
	}

	mm.refreshMatchStatus(match)

	mm.sendMessage(message.ClientID, messages.MessageTypeServerBoardResult, &messages.ServerBoardResult{
		Valid:  valid,
		Reason: reason,
	})
	if match.Status == types.MatchStatusActive {
		mm.broadcastOpponentViews(match)
	}
}

func (mm *MatchManager) handleAttack(ctx context.Context, message *messages.Message) {
	attack := &messages.ClientAttack{}
	if err := json.Unmarshal(message.Payload, attack); err != nil {
		log.Error("Failed to unmarshal attack message: %v", err)
		return
	}

	match, player, ok := mm.lookupPlayer(message.ClientID)
	if !ok {
		mm.sendError(message.ClientID, "not in a match")
		return
	}

	if match.Status != types.MatchStatusActive {
		mm.sendError(message.ClientID, "match is not active")
		return
	}
	if match.Turn != message.ClientID {
		mm.sendError(message.ClientID, "not your turn")
		return
	}

	opponentID, opponent, ok := match.Opponent(message.ClientID)
	if !ok {
		mm.sendError(message.ClientID, "no opponent")
		return
	}

	origin := attack.Attack.Origin
	if player.HasAttackedLocation(origin) {
		mm.sendError(message.ClientID, "cell already attacked")
		return
	}

	result := opponent.ResolveIncomingAttack(origin)
	player.RecordOutgoingAttack(attack.Attack, result)
	mm.awardScore(player, result)

	// a hit keeps the turn, a miss hands it to the opponent
	if _, isHit := result.(types.Hit); !isHit {
		match.Turn = opponentID
	}

	resultWire, err := types.MarshalAttackResult(result)
	if err != nil {
		log.Error("Failed to marshal attack result: %v", err)
		return
	}
	attackResult := &messages.ServerAttackResult{
		AttackerUUID:  player.UUID,
		AttackerScore: player.Score,
		Result:        resultWire,
	}
	mm.sendMessage(message.ClientID, messages.MessageTypeServerAttackResult, attackResult)
	mm.sendMessage(opponentID, messages.MessageTypeServerAttackResult, attackResult)
	mm.broadcastOpponentViews(match)

	mm.saveSnapshotChan <- workers.SaveSnapshotRequest{Timestamp: match.Timestamp, Snapshot: player.ToSnapshot()}
	mm.saveSnapshotChan <- workers.SaveSnapshotRequest{Timestamp: match.Timestamp, Snapshot: opponent.ToSnapshot()}

	if fleetSunk(opponent) {
		mm.endMatch(ctx, match, player)
	}
}

// awardScore applies the hit, sink and streak bonuses for a resolved attack.
func (mm *MatchManager) awardScore(player *types.PlayerState, result types.AttackResult) {
	hit, ok := result.(types.Hit)
	if !ok {
		return
	}
	points := constants.ScoreHit
	if hit.Destroyed {
		points += constants.ScoreDestroyed
	}
	if streak := player.ContinuousHitsCount(); streak > 1 {
		points += (streak - 1) * constants.ScoreStreakBonus
	}
	player.AddScore(points)
}

// fleetSunk reports whether every ship on a player's board is sunk.
func fleetSunk(player *types.PlayerState) bool {
	for _, shipType := range types.ShipTypes {
		ship, ok := player.Board.Positions[shipType]
		if !ok || !ship.Sunk {
			return false
		}
	}
	return true
}

// endMatch announces the winner, persists final snapshots and evicts the
// match from storage.
func (mm *MatchManager) endMatch(ctx context.Context, match *types.MatchState, winner *types.PlayerState) {
	match.Status = types.MatchStatusOver
	log.Info("Match %s is over, winner is %s", match.ID, winner.UUID)

	matchOver := &messages.ServerMatchOver{WinnerUUID: winner.UUID}
	for clientID := range match.Players {
		mm.sendMessage(clientID, messages.MessageTypeServerMatchOver, matchOver)
		delete(mm.clientMatches, clientID)
	}

	if err := mm.repository.DeleteMatch(ctx, match.ID); err != nil {
		log.Error("Failed to evict match %s from storage: %v", match.ID, err)
	}
	if err := mm.stateManager.RemoveMatch(ctx, match.ID); err != nil {
		log.Error("Failed to remove match state: %v", err)
	}
	delete(mm.matches, match.ID)
}

// refreshMatchStatus promotes a lobby match to active once both players
// are present with validated boards.
func (mm *MatchManager) refreshMatchStatus(match *types.MatchState) {
	if match.Status != types.MatchStatusLobby {
		return
	}
	if len(match.Players) < constants.MatchPlayerCount {
		return
	}
	for _, player := range match.Players {
		if !player.Board.Valid {
			return
		}
	}
	match.Status = types.MatchStatusActive
	log.Info("Match %s is active", match.ID)
}

// broadcastOpponentViews sends each player the redacted view of their
// opponent's state.
func (mm *MatchManager) broadcastOpponentViews(match *types.MatchState) {
	for clientID := range match.Players {
		_, opponent, ok := match.Opponent(clientID)
		if !ok {
			continue
		}
		mm.sendMessage(clientID, messages.MessageTypeServerOpponentView, &messages.ServerOpponentView{
			View: opponent.ToOpponentView(),
		})
	}
}

// lookupPlayer resolves a client ID to its match and player state.
func (mm *MatchManager) lookupPlayer(clientID uint32) (*types.MatchState, *types.PlayerState, bool) {
	matchID, ok := mm.clientMatches[clientID]
	if !ok {
		return nil, nil, false
	}
	match, ok := mm.matches[matchID]
	if !ok {
		return nil, nil, false
	}
	player, ok := match.Players[clientID]
	if !ok {
		return nil, nil, false
	}
	return match, player, true
}

// syncState publishes the current match states to the state manager.
func (mm *MatchManager) syncState(ctx context.Context) {
	for _, match := range mm.matches {
		if err := mm.stateManager.SetMatch(ctx, match); err != nil {
			log.Error("Failed to sync match %s: %v", match.ID, err)
		}
	}
}

func (mm *MatchManager) sendError(clientID uint32, message string) {
	mm.sendMessage(clientID, messages.MessageTypeServerError, &messages.ServerError{Message: message})
}

// sendMessage marshals a payload and writes it to a connected client.
// A nil payload sends an empty message of the given type.
func (mm *MatchManager) sendMessage(clientID uint32, messageType string, payload interface{}) {
	client := mm.clientManager.GetClientByID(clientID)
	if client == nil {
		log.Trace("Client %d is not connected", clientID)
		return
	}

	var rawPayload json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			log.Error("Failed to marshal %s payload: %v", messageType, err)
			return
		}
		rawPayload = b
	}

	msg := &messages.Message{
		ClientID: 0, // ClientID 0 means the message is from the server
		Type:     messageType,
		Payload:  rawPayload,
	}

	if err := network.WriteMessageToClient(client, msg); err != nil {
		log.Error("Failed to write message to client %d: %v", clientID, err)
	}
}
