package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// PlayerState is the authoritative state for one player in a match: board,
// outgoing attack history, identity and score. The match loop is the single
// writer; PlayerState itself does no locking.
type PlayerState struct {
	UUID     string
	Username string
	IsAI     bool
	MatchID  string
	Score    int
	Board    *BoardState
	// Attacks are the attacks this player has made, append-only.
	Attacks []AttackRecord
}

// NewPlayerStateOptions contains options for creating a new PlayerState.
type NewPlayerStateOptions struct {
	UUID     string
	Username string
	IsAI     bool
	MatchID  string
	// Placement seeds the initial board. The board starts with Valid false
	// and stays that way until the player confirms a validated placement.
	Placement map[ShipType]ShipPlacement
}

// NewPlayerState creates a player with a fresh board expanded from the
// supplied placement. All cells start unhit and all ships afloat.
func NewPlayerState(opts NewPlayerStateOptions) (*PlayerState, error) {
	board, err := NewBoardFromPlacement(opts.Placement, false)
	if err != nil {
		return nil, fmt.Errorf("failed to build board: %v", err)
	}
	return &PlayerState{
		UUID:     opts.UUID,
		Username: opts.Username,
		IsAI:     opts.IsAI,
		MatchID:  opts.MatchID,
		Score:    0,
		Board:    board,
		Attacks:  []AttackRecord{},
	}, nil
}

// NewPlayerStateFromSnapshot rehydrates a player from a persisted snapshot.
// The board is adopted verbatim, but a board whose cell counts disagree
// with the size table is rejected.
func NewPlayerStateFromSnapshot(snapshot *PlayerSnapshot) (*PlayerState, error) {
	board := snapshot.Board.Copy()
	if err := board.Validate(); err != nil {
		return nil, fmt.Errorf("invalid board in snapshot: %v", err)
	}
	attacks := make([]AttackRecord, 0, len(snapshot.Attacks))
	for _, record := range snapshot.Attacks {
		attacks = append(attacks, record.Copy())
	}
	return &PlayerState{
		UUID:     snapshot.UUID,
		Username: snapshot.Username,
		IsAI:     snapshot.IsAI,
		MatchID:  snapshot.MatchID,
		Score:    snapshot.Score,
		Board:    board,
		Attacks:  attacks,
	}, nil
}

// SetBoard fully replaces the board, re-expanding every ship from scratch
// and resetting all hit and sunk state. Callers must not allow this once
// the board is confirmed and the match has started.
func (p *PlayerState) SetBoard(placement map[ShipType]ShipPlacement, valid bool) error {
	board, err := NewBoardFromPlacement(placement, valid)
	if err != nil {
		return fmt.Errorf("failed to build board: %v", err)
	}
	p.Board = board
	return nil
}

// ResolveIncomingAttack resolves an attack against this player's board.
// Ships are checked in ShipTypes order; already-sunk ships are skipped
// entirely, so a shot landing on a sunk ship's cell reports a miss. The
// first live ship with a matching cell takes the hit, its sunk flag is
// recomputed from its cells, and Destroyed reports whether this shot
// sank it.
func (p *PlayerState) ResolveIncomingAttack(origin CellPosition) AttackResult {
	for _, shipType := range ShipTypes {
		ship, ok := p.Board.Positions[shipType]
		if !ok || ship.Sunk {
			continue
		}
		for i := range ship.Cells {
			if ship.Cells[i].Origin != origin {
				continue
			}
			ship.Cells[i].Hit = true
			ship.recomputeSunk()
			return Hit{
				Origin:    origin,
				ShipType:  ship.Type,
				Destroyed: ship.Sunk,
			}
		}
	}
	return Miss{Origin: origin}
}

// RecordOutgoingAttack appends an attack this player made, stamped with
// the current time. Duplicate origins are not rejected here; callers
// prevent re-attacks with HasAttackedLocation.
func (p *PlayerState) RecordOutgoingAttack(input AttackInput, result AttackResult) {
	p.Attacks = append(p.Attacks, AttackRecord{
		Timestamp: time.Now().UnixMilli(),
		Input:     input.Copy(),
		Result:    result,
	})
}

// HasAttackedLocation reports whether this player has already attacked
// the given cell.
func (p *PlayerState) HasAttackedLocation(origin CellPosition) bool {
	for i := range p.Attacks {
		if p.Attacks[i].Input.Origin == origin {
			return true
		}
	}
	return false
}

// ContinuousHitsCount counts consecutive hits ending at the most recent
// attack, stopping at the first miss. Attacks are ordered by timestamp
// descending; a stable sort keeps equal timestamps in append order.
func (p *PlayerState) ContinuousHitsCount() int {
	records := make([]AttackRecord, len(p.Attacks))
	copy(records, p.Attacks)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})

	count := 0
	for _, record := range records {
		if _, ok := record.Result.(Hit); !ok {
			break
		}
		count++
	}
	return count
}

// AddScore adds amount (which may be negative) to the score and returns
// the new score. No floor is enforced here.
func (p *PlayerState) AddScore(amount int) int {
	p.Score += amount
	return p.Score
}

// OpponentView is the redacted projection sent to the opposing player.
// Only sunk ships appear in the board positions; unsunk ships are absent
// entirely, and prediction metadata is stripped from the attack inputs.
type OpponentView struct {
	Username string         `json:"username"`
	Board    *BoardState    `json:"board"`
	Attacks  []AttackRecord `json:"attacks"`
}

// ToOpponentView builds the redacted projection. Everything it returns is
// a copy: stripping prediction data must never touch the authoritative
// attack history.
func (p *PlayerState) ToOpponentView() *OpponentView {
	positions := make(map[ShipType]*StoredShip)
	for _, shipType := range ShipTypes {
		ship, ok := p.Board.Positions[shipType]
		if !ok || !ship.Sunk {
			continue
		}
		positions[shipType] = ship.Copy()
	}

	attacks := make([]AttackRecord, 0, len(p.Attacks))
	for _, record := range p.Attacks {
		stripped := record.Copy()
		stripped.Input.Prediction = nil
		attacks = append(attacks, stripped)
	}

	return &OpponentView{
		Username: p.Username,
		Board: &BoardState{
			Valid:     p.Board.Valid,
			Positions: positions,
		},
		Attacks: attacks,
	}
}

// PlayerSnapshot is the full, unredacted serializable form of a player.
// It is what crosses the storage boundary and what the player's own
// client receives.
type PlayerSnapshot struct {
	UUID     string         `json:"uuid"`
	Username string         `json:"username"`
	IsAI     bool           `json:"isAi"`
	MatchID  string         `json:"match"`
	Score    int            `json:"score"`
	Board    *BoardState    `json:"board"`
	Attacks  []AttackRecord `json:"attacks"`
}

// UnmarshalJSON tolerates a malformed or missing score by coercing it to
// zero rather than failing. This is deliberate: old snapshots stored the
// score loosely and a bad value must not strand the player.
func (s *PlayerSnapshot) UnmarshalJSON(b []byte) error {
	type alias PlayerSnapshot
	wire := struct {
		*alias
		Score json.RawMessage `json:"score"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	s.Score = 0
	if len(wire.Score) > 0 {
		var score int
		if err := json.Unmarshal(wire.Score, &score); err == nil {
			s.Score = score
		}
	}
	return nil
}

// ToSnapshot returns a deep copy of the full player state. Rehydrating a
// player from a snapshot and snapshotting again yields an equal value.
func (p *PlayerState) ToSnapshot() *PlayerSnapshot {
	attacks := make([]AttackRecord, 0, len(p.Attacks))
	for _, record := range p.Attacks {
		attacks = append(attacks, record.Copy())
	}
	return &PlayerSnapshot{
		UUID:     p.UUID,
		Username: p.Username,
		IsAI:     p.IsAI,
		MatchID:  p.MatchID,
		Score:    p.Score,
		Board:    p.Board.Copy(),
		Attacks:  attacks,
	}
}

// Copy returns a deep copy of the player state.
func (p *PlayerState) Copy() *PlayerState {
	attacks := make([]AttackRecord, 0, len(p.Attacks))
	for _, record := range p.Attacks {
		attacks = append(attacks, record.Copy())
	}
	return &PlayerState{
		UUID:     p.UUID,
		Username: p.Username,
		IsAI:     p.IsAI,
		MatchID:  p.MatchID,
		Score:    p.Score,
		Board:    p.Board.Copy(),
		Attacks:  attacks,
	}
}
