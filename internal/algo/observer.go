package algo

import "github.com/elektrokombinacija/cbsh-mapf/internal/core"

// NodeInfo describes an expanded search tree node.
type NodeInfo struct {
	ID           int
	ParentID     int
	Depth        int
	Agent        int // replanned agent, -1 at the root
	G, H         int
	NumConflicts int
	Constraints  []Constraint // constraints added by this node
}

// Observer receives search events. Calls happen on the search goroutine;
// an observer that blocks pauses the search.
type Observer interface {
	// OnNodeExpanded is called when a node is popped for expansion.
	OnNodeExpanded(node NodeInfo)

	// OnConflictSelected is called with the conflict a node branches on.
	OnConflictSelected(conflict *Conflict)

	// OnSolutionFound is called once with the final plan.
	OnSolutionFound(solution *core.Solution)
}
