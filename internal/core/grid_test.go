package core

import (
	"reflect"
	"testing"
)

// tee is a 3x3 grid with the bottom corners blocked:
//
//	...
//	...
//	@.@
func tee() *Grid {
	return NewGrid(3, 3, []Cell{{X: 0, Y: 2}, {X: 2, Y: 2}, {X: 7, Y: 7}})
}

func TestGridIndexing(t *testing.T) {
	g := tee()
	if g.Size() != 9 || g.FreeCells() != 7 {
		t.Fatalf("size %d free %d, want 9 and 7", g.Size(), g.FreeCells())
	}
	for loc := 0; loc < g.Size(); loc++ {
		if got := g.Loc(g.Cell(loc)); got != loc {
			t.Errorf("Loc(Cell(%d)) = %d", loc, got)
		}
	}
	if g.Loc(Cell{X: 2, Y: 1}) != 5 {
		t.Errorf("Loc((2,1)) = %d, want 5", g.Loc(Cell{X: 2, Y: 1}))
	}
	if !g.Blocked(6) || g.Blocked(7) {
		t.Errorf("blocked cells are wrong")
	}
	for _, c := range []Cell{{X: -1, Y: 0}, {X: 3, Y: 0}, {X: 0, Y: 3}} {
		if g.InBounds(c) {
			t.Errorf("%v reported in bounds", c)
		}
	}
}

func TestGridNeighbors(t *testing.T) {
	g := tee()
	tests := []struct {
		loc  int
		want []int
	}{
		{0, []int{1, 3}},
		{4, []int{1, 5, 7, 3}},
		{7, []int{4}},
		{3, []int{0, 4}},
		{6, nil},
	}
	for _, tt := range tests {
		if got := g.Neighbors(tt.loc); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Neighbors(%d) = %v, want %v", tt.loc, got, tt.want)
		}
		if g.Degree(tt.loc) != len(tt.want) {
			t.Errorf("Degree(%d) = %d, want %d", tt.loc, g.Degree(tt.loc), len(tt.want))
		}
	}

	if !g.Adjacent(4, 4) || !g.Adjacent(4, 7) || g.Adjacent(3, 6) || g.Adjacent(0, 4) {
		t.Errorf("Adjacent disagrees with the neighbour lists")
	}
}

func TestGridDistances(t *testing.T) {
	g := tee()
	if d := g.Manhattan(0, 8); d != 4 {
		t.Errorf("Manhattan(0, 8) = %d, want 4", d)
	}

	want := []int{0, 1, 2, 1, 2, 3, -1, 3, -1}
	if got := g.BFS(0, nil); !reflect.DeepEqual(got, want) {
		t.Errorf("BFS(0) = %v, want %v", got, want)
	}

	// without the centre the bottom cell is cut off
	skip := func(loc int) bool { return loc == 4 }
	want = []int{0, 1, 2, 1, -1, 3, -1, -1, -1}
	if got := g.BFS(0, skip); !reflect.DeepEqual(got, want) {
		t.Errorf("BFS(0, skip centre) = %v, want %v", got, want)
	}

	for _, d := range g.BFS(6, nil) {
		if d != -1 {
			t.Fatalf("BFS from an obstacle reached %d", d)
		}
	}
}
