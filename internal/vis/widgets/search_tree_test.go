package widgets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/cbsh-mapf/internal/algo"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/state"
)

func TestTreeLayout(t *testing.T) {
	nodes := []algo.NodeInfo{
		{ID: 0, ParentID: -1, Depth: 0},
		{ID: 2, ParentID: 0, Depth: 1},
		{ID: 1, ParentID: 0, Depth: 1},
	}
	pos := treeLayout(nodes, 220)
	require.Len(t, pos, 3)

	require.Equal(t, nodePos{X: 110, Y: 0}, pos[0])
	// siblings are ordered by ID
	require.Equal(t, nodePos{X: 65, Y: treeLevelGap}, pos[1])
	require.Equal(t, nodePos{X: 155, Y: treeLevelGap}, pos[2])
}

func TestNodeColor(t *testing.T) {
	snap := stateSnapshot(3, 5)
	require.Equal(t, ColorNodeCurrent, nodeColor(3, snap))
	require.Equal(t, ColorNodeSolution, nodeColor(5, snap))
	require.Equal(t, ColorNodeExpanded, nodeColor(4, snap))
}

func stateSnapshot(current, solution int) state.SearchSnapshot {
	return state.SearchSnapshot{CurrentNode: current, SolutionNode: solution}
}
