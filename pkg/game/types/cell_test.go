package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandCells(t *testing.T) {
	type args struct {
		origin      CellPosition
		orientation Orientation
		size        int
	}
	tests := []struct {
		name string
		args args
		want []CellPosition
	}{
		{
			name: "horizontal extends along the x-axis",
			args: args{
				origin:      CellPosition{X: 2, Y: 3},
				orientation: OrientationHorizontal,
				size:        5,
			},
			want: []CellPosition{
				{X: 2, Y: 3},
				{X: 3, Y: 3},
				{X: 4, Y: 3},
				{X: 5, Y: 3},
				{X: 6, Y: 3},
			},
		},
		{
			name: "vertical extends along the y-axis",
			args: args{
				origin:      CellPosition{X: 7, Y: 1},
				orientation: OrientationVertical,
				size:        3,
			},
			want: []CellPosition{
				{X: 7, Y: 1},
				{X: 7, Y: 2},
				{X: 7, Y: 3},
			},
		},
		{
			name: "single cell ship is just the origin",
			args: args{
				origin:      CellPosition{X: 0, Y: 0},
				orientation: OrientationHorizontal,
				size:        1,
			},
			want: []CellPosition{
				{X: 0, Y: 0},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandCells(tt.args.origin, tt.args.orientation, tt.args.size)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, tt.args.size)
		})
	}
}
