package game

import (
	"fmt"
	"math/rand"

	"github.com/hallorn/broadside/pkg/game/constants"
	"github.com/hallorn/broadside/pkg/game/types"
)

// ValidatePlacement checks a full placement for board bounds and overlaps.
// The core board types do no bounds checking themselves; this is the
// validator that gates the valid flag.
func ValidatePlacement(placement map[types.ShipType]types.ShipPlacement) error {
	occupied := make(map[types.CellPosition]types.ShipType)
	for _, shipType := range types.ShipTypes {
		p, ok := placement[shipType]
		if !ok {
			return fmt.Errorf("placement is missing ship type %s", shipType)
		}
		for _, cell := range types.ExpandCells(p.Origin, p.Orientation, types.ShipSizes[shipType]) {
			if cell.X < 0 || cell.X >= constants.BoardWidth || cell.Y < 0 || cell.Y >= constants.BoardHeight {
				return fmt.Errorf("ship %s is out of bounds at (%d, %d)", shipType, cell.X, cell.Y)
			}
			if other, taken := occupied[cell]; taken {
				return fmt.Errorf("ship %s overlaps %s at (%d, %d)", shipType, other, cell.X, cell.Y)
			}
			occupied[cell] = shipType
		}
	}
	return nil
}

// GenerateRandomPlacement produces a random non-overlapping in-bounds
// placement for the full fleet. Used to seed a default board when a
// player first joins.
func GenerateRandomPlacement(r *rand.Rand) (map[types.ShipType]types.ShipPlacement, error) {
	placement := make(map[types.ShipType]types.ShipPlacement, len(types.ShipTypes))
	occupied := make(map[types.CellPosition]bool)

	for _, shipType := range types.ShipTypes {
		size := types.ShipSizes[shipType]
		placed := false
		for attempt := 0; attempt < constants.PlacementMaxAttempts; attempt++ {
			orientation := types.OrientationHorizontal
			maxX := constants.BoardWidth - size + 1
			maxY := constants.BoardHeight
			if r.Intn(2) == 1 {
				orientation = types.OrientationVertical
				maxX = constants.BoardWidth
				maxY = constants.BoardHeight - size + 1
			}
			origin := types.CellPosition{X: r.Intn(maxX), Y: r.Intn(maxY)}

			cells := types.ExpandCells(origin, orientation, size)
			overlaps := false
			for _, cell := range cells {
				if occupied[cell] {
					overlaps = true
					break
				}
			}
			if overlaps {
				continue
			}

			for _, cell := range cells {
				occupied[cell] = true
			}
			placement[shipType] = types.ShipPlacement{Origin: origin, Orientation: orientation}
			placed = true
			break
		}
		if !placed {
			return nil, fmt.Errorf("failed to place ship %s after %d attempts", shipType, constants.PlacementMaxAttempts)
		}
	}

	return placement, nil
}
