package types

import (
	"encoding/json"
	"fmt"
)

// AttackPrediction is heuristic metadata an AI attacker attaches to its
// shots. It is transmission-side metadata, not game-logic input, and is
// stripped before anything is sent to the opponent.
type AttackPrediction struct {
	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`
}

// AttackInput is the payload of a single attack.
type AttackInput struct {
	Origin     CellPosition      `json:"origin"`
	Prediction *AttackPrediction `json:"prediction,omitempty"`
}

// Copy returns a deep copy of the input.
func (a AttackInput) Copy() AttackInput {
	out := AttackInput{Origin: a.Origin}
	if a.Prediction != nil {
		prediction := *a.Prediction
		out.Prediction = &prediction
	}
	return out
}

// AttackResult is the outcome of resolving an attack against a board.
// It is a closed union: Miss or Hit. Callers branch on the concrete type.
type AttackResult interface {
	// ResultOrigin returns the cell the attack landed on.
	ResultOrigin() CellPosition
	isAttackResult()
}

// Miss indicates the attack landed on open water (or on a ship that was
// already sunk, which resolves as a miss).
type Miss struct {
	Origin CellPosition `json:"origin"`
}

func (m Miss) ResultOrigin() CellPosition { return m.Origin }
func (m Miss) isAttackResult()            {}

// Hit indicates the attack struck a live ship. Destroyed is true when this
// attack sank it.
type Hit struct {
	Origin    CellPosition `json:"origin"`
	ShipType  ShipType     `json:"shipType"`
	Destroyed bool         `json:"destroyed"`
}

func (h Hit) ResultOrigin() CellPosition { return h.Origin }
func (h Hit) isAttackResult()            {}

// attackResultWire is the discriminated JSON form of an AttackResult.
type attackResultWire struct {
	Hit       bool         `json:"hit"`
	Origin    CellPosition `json:"origin"`
	ShipType  ShipType     `json:"shipType,omitempty"`
	Destroyed bool         `json:"destroyed,omitempty"`
}

// MarshalAttackResult encodes an AttackResult into its wire form.
func MarshalAttackResult(result AttackResult) ([]byte, error) {
	switch r := result.(type) {
	case Miss:
		return json.Marshal(attackResultWire{Hit: false, Origin: r.Origin})
	case Hit:
		return json.Marshal(attackResultWire{Hit: true, Origin: r.Origin, ShipType: r.ShipType, Destroyed: r.Destroyed})
	default:
		return nil, fmt.Errorf("unknown attack result type: %T", result)
	}
}

// UnmarshalAttackResult decodes an AttackResult from its wire form.
func UnmarshalAttackResult(b []byte) (AttackResult, error) {
	wire := attackResultWire{}
	if err := json.Unmarshal(b, &wire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attack result: %v", err)
	}
	if !wire.Hit {
		return Miss{Origin: wire.Origin}, nil
	}
	return Hit{Origin: wire.Origin, ShipType: wire.ShipType, Destroyed: wire.Destroyed}, nil
}

// AttackRecord is one entry in a player's outgoing attack history.
// The history is append-only and ordered by capture timestamp.
type AttackRecord struct {
	Timestamp int64
	Input     AttackInput
	Result    AttackResult
}

// Copy returns a deep copy of the record.
func (r AttackRecord) Copy() AttackRecord {
	return AttackRecord{
		Timestamp: r.Timestamp,
		Input:     r.Input.Copy(),
		Result:    r.Result,
	}
}

type attackRecordWire struct {
	Timestamp int64           `json:"timestamp"`
	Input     AttackInput     `json:"attackInput"`
	Result    json.RawMessage `json:"result"`
}

func (r AttackRecord) MarshalJSON() ([]byte, error) {
	result, err := MarshalAttackResult(r.Result)
	if err != nil {
		return nil, err
	}
	return json.Marshal(attackRecordWire{
		Timestamp: r.Timestamp,
		Input:     r.Input,
		Result:    result,
	})
}

func (r *AttackRecord) UnmarshalJSON(b []byte) error {
	wire := attackRecordWire{}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	result, err := UnmarshalAttackResult(wire.Result)
	if err != nil {
		return err
	}
	r.Timestamp = wire.Timestamp
	r.Input = wire.Input
	r.Result = result
	return nil
}
