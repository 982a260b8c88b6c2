package types

// CellPosition identifies a single cell on a player's board.
// Equality is value-based.
type CellPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Orientation string

const (
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
)

// ExpandCells returns the cells a ship occupies, starting at origin and
// extending along the x-axis when horizontal or the y-axis when vertical,
// in increasing-coordinate order. It is pure geometry: bounds checking
// against the board is the placement validator's job.
func ExpandCells(origin CellPosition, orientation Orientation, size int) []CellPosition {
	cells := make([]CellPosition, 0, size)
	for i := 0; i < size; i++ {
		cell := origin
		if orientation == OrientationVertical {
			cell.Y += i
		} else {
			cell.X += i
		}
		cells = append(cells, cell)
	}
	return cells
}
