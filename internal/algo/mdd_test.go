package algo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func levelLocs(m *MDD, level int) []int {
	var out []int
	for _, n := range m.Levels[level] {
		out = append(out, n.Loc)
	}
	return out
}

func TestBuildMDDOpenGrid(t *testing.T) {
	inst := instanceOf(openGrid(3, 3), [4]int{0, 0, 2, 2})
	s := NewSingleAgentSolver(inst, 0, nil)
	m := s.BuildMDD(NewConstraintTable(9, nil), 4)

	require.False(t, m.Empty())
	widths := make([]int, 5)
	for l := range widths {
		widths[l] = m.Width(l)
	}
	require.Equal(t, []int{1, 2, 3, 2, 1}, widths)
	require.Equal(t, 9, m.NumNodes())

	loc, ok := m.Singleton(0)
	require.True(t, ok)
	require.Equal(t, s.Start, loc)
	loc, ok = m.Singleton(4)
	require.True(t, ok)
	require.Equal(t, s.Goal, loc)
	_, ok = m.Singleton(2)
	require.False(t, ok)

	// past the end the goal is held
	loc, ok = m.Singleton(9)
	require.True(t, ok)
	require.Equal(t, s.Goal, loc)
	require.True(t, m.Contains(9, s.Goal))
}

func TestBuildMDDTooShort(t *testing.T) {
	inst := instanceOf(openGrid(3, 3), [4]int{0, 0, 2, 2})
	s := NewSingleAgentSolver(inst, 0, nil)
	require.True(t, s.BuildMDD(NewConstraintTable(9, nil), 3).Empty())
}

func TestBuildMDDWithVertexConstraint(t *testing.T) {
	inst := instanceOf(openGrid(3, 3), [4]int{0, 0, 2, 2})
	s := NewSingleAgentSolver(inst, 0, nil)
	centre := inst.Grid.Loc(inst.Agents[0].Start) + 4
	m := s.BuildMDD(NewConstraintTable(9, []Constraint{Vertex(0, centre, 2)}), 4)
	require.False(t, m.Contains(2, centre))
	require.Equal(t, 2, m.Width(2))
}

func TestBuildMDDLengthConstraint(t *testing.T) {
	inst := instanceOf(openGrid(3, 1), [4]int{0, 0, 2, 0})
	s := NewSingleAgentSolver(inst, 0, nil)
	m := s.BuildMDD(NewConstraintTable(3, []Constraint{Length(0, 2)}), 3)

	require.Len(t, m.Levels, 4)
	require.Equal(t, []int{0}, levelLocs(m, 0))
	require.ElementsMatch(t, []int{0, 1}, levelLocs(m, 1))
	require.Equal(t, []int{1}, levelLocs(m, 2))
	require.Equal(t, []int{2}, levelLocs(m, 3))

	// arriving at t=2 breaks the constraint, so cost 2 has no diagram
	require.True(t, s.BuildMDD(NewConstraintTable(3, []Constraint{Length(0, 2)}), 2).Empty())
}

func TestBuildMDDLinksLevels(t *testing.T) {
	inst := instanceOf(openGrid(4, 4), [4]int{0, 0, 3, 2})
	s := NewSingleAgentSolver(inst, 0, nil)
	m := s.BuildMDD(NewConstraintTable(16, nil), 6)
	for l := 0; l < m.Cost; l++ {
		for _, n := range m.Levels[l] {
			require.NotEmpty(t, n.Children, "dead node at level %d", l)
			for _, c := range n.Children {
				require.Equal(t, l+1, c.Level)
				linked := false
				for _, parent := range c.Parents {
					linked = linked || parent == n
				}
				require.True(t, linked)
			}
		}
	}
}

func TestDependent(t *testing.T) {
	t.Run("crossing", func(t *testing.T) {
		inst := plusCrossing()
		a := NewSingleAgentSolver(inst, 0, nil).BuildMDD(NewConstraintTable(9, nil), 2)
		b := NewSingleAgentSolver(inst, 1, nil).BuildMDD(NewConstraintTable(9, nil), 2)
		require.True(t, Dependent(a, b))
	})
	t.Run("parallel", func(t *testing.T) {
		inst := instanceOf(openGrid(3, 3), [4]int{0, 0, 2, 0}, [4]int{0, 2, 2, 2})
		a := NewSingleAgentSolver(inst, 0, nil).BuildMDD(NewConstraintTable(9, nil), 2)
		b := NewSingleAgentSolver(inst, 1, nil).BuildMDD(NewConstraintTable(9, nil), 2)
		require.False(t, Dependent(a, b))
	})
	t.Run("crossing with slack", func(t *testing.T) {
		inst := plusCrossing()
		a := NewSingleAgentSolver(inst, 0, nil).BuildMDD(NewConstraintTable(9, nil), 2)
		b := NewSingleAgentSolver(inst, 1, nil).BuildMDD(NewConstraintTable(9, nil), 3)
		require.False(t, Dependent(a, b))
	})
	t.Run("parked goal", func(t *testing.T) {
		// agent 0 parks on the middle cell that agent 1 must pass later
		inst := instanceOf(openGrid(3, 1), [4]int{1, 0, 1, 0}, [4]int{0, 0, 2, 0})
		a := NewSingleAgentSolver(inst, 0, nil).BuildMDD(NewConstraintTable(3, nil), 0)
		b := NewSingleAgentSolver(inst, 1, nil).BuildMDD(NewConstraintTable(3, nil), 2)
		require.True(t, Dependent(a, b))
	})
}
