package types

type MatchStatus string

const (
	// MatchStatusLobby means the match is waiting for players or for
	// confirmed board placements.
	MatchStatusLobby MatchStatus = "lobby"
	// MatchStatusActive means both boards are confirmed and attacks are
	// being exchanged.
	MatchStatusActive MatchStatus = "active"
	// MatchStatusOver means one player's fleet is fully sunk.
	MatchStatusOver MatchStatus = "over"
)

// MatchState is the authoritative state of one match.
type MatchState struct {
	// ID is the match identifier
	ID string
	// Timestamp is the time at which the match state was generated
	Timestamp int64
	// Status is the match lifecycle phase
	Status MatchStatus
	// Turn is the client ID of the player whose turn it is to attack
	Turn uint32
	// Players maps client IDs to player states
	Players map[uint32]*PlayerState
}

func NewMatchState(id string) *MatchState {
	return &MatchState{
		ID:      id,
		Status:  MatchStatusLobby,
		Players: make(map[uint32]*PlayerState),
	}
}

// Copy returns a deep copy of the match state.
func (m *MatchState) Copy() *MatchState {
	players := make(map[uint32]*PlayerState, len(m.Players))
	for clientID, player := range m.Players {
		players[clientID] = player.Copy()
	}
	return &MatchState{
		ID:        m.ID,
		Timestamp: m.Timestamp,
		Status:    m.Status,
		Turn:      m.Turn,
		Players:   players,
	}
}

// Opponent returns the client ID and state of the other player in a
// two-player match. ok is false if the opponent has not joined yet.
func (m *MatchState) Opponent(clientID uint32) (uint32, *PlayerState, bool) {
	for id, player := range m.Players {
		if id != clientID {
			return id, player, true
		}
	}
	return 0, nil, false
}
