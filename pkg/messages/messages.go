package messages

import (
	"encoding/json"

	gametypes "github.com/hallorn/broadside/pkg/game/types"
)

const (
	// MessageBufferSize represents the maximum size of a message
	MessageBufferSize = 4096
)

// Message types
const (
	MessageTypeClientPing         = "ping"
	MessageTypeServerPong         = "pong"
	MessageTypeClientJoinMatch    = "cjm"
	MessageTypeClientPlaceShips   = "cps"
	MessageTypeClientAttack       = "cat"
	MessageTypeServerJoinedMatch  = "sjm"
	MessageTypeServerBoardResult  = "sbr"
	MessageTypeServerAttackResult = "sar"
	MessageTypeServerOpponentView = "sov"
	MessageTypeServerMatchOver    = "smo"
	MessageTypeServerError        = "ser"
)

// Message represents a generic message for serialization/deserialization
type Message struct {
	ClientID uint32          `json:"clientID"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
}

// ClientJoinMatch is sent by a client to join (or rejoin) a match.
// UUID is empty on a first join and set when reconnecting.
type ClientJoinMatch struct {
	UUID     string `json:"uuid,omitempty"`
	Username string `json:"username"`
	MatchID  string `json:"match"`
	IsAI     bool   `json:"isAi"`
}

// ClientPlaceShips is sent by a client to replace its board placement.
type ClientPlaceShips struct {
	Placement map[gametypes.ShipType]gametypes.ShipPlacement `json:"placement"`
}

// ClientAttack is sent by a client to attack a cell on the opponent's board.
type ClientAttack struct {
	Attack gametypes.AttackInput `json:"attack"`
}

// ServerJoinedMatch confirms a join and carries the player's own full
// snapshot along with the current match status.
type ServerJoinedMatch struct {
	ClientID uint32                    `json:"clientID"`
	Status   gametypes.MatchStatus     `json:"status"`
	Snapshot *gametypes.PlayerSnapshot `json:"snapshot"`
}

// ServerBoardResult reports whether a submitted placement passed validation.
type ServerBoardResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// ServerAttackResult reports the outcome of an attack to both players.
// Result is the wire form of a gametypes.AttackResult.
type ServerAttackResult struct {
	AttackerUUID  string          `json:"attackerUuid"`
	AttackerScore int             `json:"attackerScore"`
	Result        json.RawMessage `json:"result"`
}

// ServerOpponentView carries the redacted view of the opponent's state.
type ServerOpponentView struct {
	View *gametypes.OpponentView `json:"view"`
}

// ServerMatchOver announces the winner of a finished match.
type ServerMatchOver struct {
	WinnerUUID string `json:"winnerUuid"`
}

// ServerError reports a request the server rejected.
type ServerError struct {
	Message string `json:"message"`
}
