package types

import "fmt"

type ShipType string

const (
	ShipTypeCarrier    ShipType = "carrier"
	ShipTypeBattleship ShipType = "battleship"
	ShipTypeCruiser    ShipType = "cruiser"
	ShipTypeSubmarine  ShipType = "submarine"
	ShipTypeDestroyer  ShipType = "destroyer"
)

// ShipTypes pins the iteration order for everything that walks the fleet.
// Attack resolution order is reproducible because of this.
var ShipTypes = []ShipType{
	ShipTypeCarrier,
	ShipTypeBattleship,
	ShipTypeCruiser,
	ShipTypeSubmarine,
	ShipTypeDestroyer,
}

// ShipSizes maps each ship type to the number of cells it occupies.
// Treat as immutable.
var ShipSizes = map[ShipType]int{
	ShipTypeCarrier:    5,
	ShipTypeBattleship: 4,
	ShipTypeCruiser:    3,
	ShipTypeSubmarine:  3,
	ShipTypeDestroyer:  2,
}

// ShipPlacement is the validated placement input for a single ship.
type ShipPlacement struct {
	Origin      CellPosition `json:"origin"`
	Orientation Orientation  `json:"orientation"`
}

// ShipCell is one cell belonging to a ship, with its own hit flag.
// Cells are exclusively owned by their StoredShip and never shared.
type ShipCell struct {
	Origin CellPosition `json:"origin"`
	Hit    bool         `json:"hit"`
	Type   ShipType     `json:"type"`
}

type StoredShip struct {
	Type        ShipType     `json:"type"`
	Origin      CellPosition `json:"origin"`
	Orientation Orientation  `json:"orientation"`
	Sunk        bool         `json:"sunk"`
	Cells       []ShipCell   `json:"cells"`
}

// recomputeSunk derives the sunk flag from the cell hit flags. It is the
// only way Sunk changes once a ship is stored.
func (s *StoredShip) recomputeSunk() {
	for i := range s.Cells {
		if !s.Cells[i].Hit {
			s.Sunk = false
			return
		}
	}
	s.Sunk = true
}

// Copy returns a deep copy of the ship.
func (s *StoredShip) Copy() *StoredShip {
	cells := make([]ShipCell, len(s.Cells))
	copy(cells, s.Cells)
	return &StoredShip{
		Type:        s.Type,
		Origin:      s.Origin,
		Orientation: s.Orientation,
		Sunk:        s.Sunk,
		Cells:       cells,
	}
}

// BoardState holds one player's fleet. Valid is supplied by the external
// placement validator and only changes when the whole board is replaced.
type BoardState struct {
	Valid     bool                     `json:"valid"`
	Positions map[ShipType]*StoredShip `json:"positions"`
}

// NewBoardFromPlacement expands a full placement into a fresh board with
// all cells unhit and all ships afloat.
func NewBoardFromPlacement(placement map[ShipType]ShipPlacement, valid bool) (*BoardState, error) {
	positions := make(map[ShipType]*StoredShip, len(ShipTypes))
	for _, shipType := range ShipTypes {
		p, ok := placement[shipType]
		if !ok {
			return nil, fmt.Errorf("placement is missing ship type %s", shipType)
		}
		size := ShipSizes[shipType]
		cells := make([]ShipCell, 0, size)
		for _, origin := range ExpandCells(p.Origin, p.Orientation, size) {
			cells = append(cells, ShipCell{
				Origin: origin,
				Hit:    false,
				Type:   shipType,
			})
		}
		positions[shipType] = &StoredShip{
			Type:        shipType,
			Origin:      p.Origin,
			Orientation: p.Orientation,
			Sunk:        false,
			Cells:       cells,
		}
	}
	return &BoardState{
		Valid:     valid,
		Positions: positions,
	}, nil
}

// Validate checks the board against the fixed size table. Downstream sunk
// detection depends on exact cell-count correspondence, so a rehydrated
// board with a short or long cell list is rejected outright.
func (b *BoardState) Validate() error {
	for _, shipType := range ShipTypes {
		ship, ok := b.Positions[shipType]
		if !ok {
			return fmt.Errorf("board is missing ship type %s", shipType)
		}
		if len(ship.Cells) != ShipSizes[shipType] {
			return fmt.Errorf("ship %s has %d cells, expected %d", shipType, len(ship.Cells), ShipSizes[shipType])
		}
	}
	return nil
}

// Copy returns a deep copy of the board.
func (b *BoardState) Copy() *BoardState {
	positions := make(map[ShipType]*StoredShip, len(b.Positions))
	for shipType, ship := range b.Positions {
		positions[shipType] = ship.Copy()
	}
	return &BoardState{
		Valid:     b.Valid,
		Positions: positions,
	}
}
