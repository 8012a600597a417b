package algo

import (
	"testing"

	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"github.com/stretchr/testify/require"
)

// rootConflict plans the root of inst and returns its first conflict of
// the given type.
func rootConflict(t *testing.T, s *search, typ ConflictType) (*Conflict, []core.Path) {
	t.Helper()
	root, err := s.root()
	require.NoError(t, err)
	for _, c := range root.conflicts {
		if c.Type == typ {
			return c, s.paths(root)
		}
	}
	require.FailNow(t, "no conflict of type "+typ.String())
	return nil, nil
}

func TestRectangleBarriers(t *testing.T) {
	inst := rectangleCrossing()
	s := newSearch(NewCBSH(DefaultOptions()).Options(), inst)
	defer s.shutdown()
	c, paths := rootConflict(t, s, VertexConflict)

	r, ok := rectangle(inst, c, paths)
	require.True(t, ok)
	require.Equal(t, RectangleConflict, r.Type)
	require.Equal(t, Cardinal, r.Cardinality)
	require.Equal(t, VertexConflict, c.Type, "the original conflict is left untouched")

	g := inst.Grid
	loc := func(x, y int) int { return g.Loc(core.Cell{X: x, Y: y}) }
	// agent 0 enters from the left and may not cross column 3 on time,
	// agent 1 enters from the top and may not cross row 3 on time
	require.Equal(t, []Constraint{Vertex(0, loc(3, 1), 3), Vertex(0, loc(3, 2), 4), Vertex(0, loc(3, 3), 5)}, r.Constraints1)
	require.Equal(t, []Constraint{Vertex(1, loc(1, 3), 3), Vertex(1, loc(2, 3), 4), Vertex(1, loc(3, 3), 5)}, r.Constraints2)
}

func TestRectangleRejects(t *testing.T) {
	inst := rectangleCrossing()
	s := newSearch(NewCBSH(DefaultOptions()).Options(), inst)
	defer s.shutdown()
	c, paths := rootConflict(t, s, VertexConflict)

	late := *c
	late.T++
	_, ok := rectangle(inst, &late, paths)
	require.False(t, ok, "not reached on a shortest route")

	edge := *c
	edge.Type = EdgeConflict
	_, ok = rectangle(inst, &edge, paths)
	require.False(t, ok)

	// head-on agents share no quadrant
	headOn := instanceOf(openGrid(5, 1), [4]int{0, 0, 4, 0}, [4]int{4, 0, 0, 0})
	v := &Conflict{A1: 0, A2: 1, Type: VertexConflict, Loc1: 2, T: 2}
	_, ok = rectangle(headOn, v, []core.Path{{0, 1, 2, 3, 4}, {4, 3, 2, 1, 0}})
	require.False(t, ok)
}

func TestOrientation(t *testing.T) {
	require.Equal(t, 1, orientation(0, 1, 2, 3, 4))
	require.Equal(t, -1, orientation(4, 3, 2, 1, 0))
	require.Equal(t, 0, orientation(0, 4, 2, 3, 1))
}
