package state

import (
	"context"
	"sync"

	"github.com/elektrokombinacija/cbsh-mapf/internal/algo"
	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
)

// MaxTreeNodes bounds the constraint tree nodes kept for drawing.
const MaxTreeNodes = 4096

// SearchState tracks a search run by the viewer. All methods are safe for
// concurrent use: the search calls the recorders while the UI reads
// snapshots.
type SearchState struct {
	mu sync.Mutex

	active bool
	paused bool

	nodes        []algo.NodeInfo
	currentNode  int
	solutionNode int
	expanded     int
	conflicts    int
	lowerBound   int
	lastConflict *algo.Conflict
	byType       map[algo.ConflictType]int
	err          error

	stepChan chan struct{}
}

// SearchSnapshot is a consistent copy of the search progress.
type SearchSnapshot struct {
	Active       bool
	Paused       bool
	Nodes        []algo.NodeInfo
	CurrentNode  int
	SolutionNode int
	Expanded     int
	Conflicts    int
	LowerBound   int
	LastConflict *algo.Conflict
	ByType       map[algo.ConflictType]int
	Err          error
}

// NewSearchState creates an idle search state.
func NewSearchState() *SearchState {
	return &SearchState{
		currentNode:  -1,
		solutionNode: -1,
		byType:       make(map[algo.ConflictType]int),
		stepChan:     make(chan struct{}, 1),
	}
}

// Start clears the progress of any earlier search. A pause requested
// beforehand holds the search at its first expansion.
func (s *SearchState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	s.nodes = s.nodes[:0]
	s.currentNode = -1
	s.solutionNode = -1
	s.expanded = 0
	s.conflicts = 0
	s.lowerBound = 0
	s.lastConflict = nil
	s.byType = make(map[algo.ConflictType]int)
	s.err = nil
}

// Finish ends the search with its result.
func (s *SearchState) Finish(sol *core.Solution, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.paused = false
	s.err = err
	if err == nil && sol != nil {
		s.solutionNode = s.currentNode
		s.lowerBound = sol.Cost
	}
}

// RecordNode records an expanded node.
func (s *SearchState) RecordNode(n algo.NodeInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expanded++
	s.currentNode = n.ID
	s.lowerBound = max(s.lowerBound, n.G+n.H)
	if len(s.nodes) < MaxTreeNodes {
		s.nodes = append(s.nodes, n)
	}
}

// RecordConflict records the conflict chosen for branching.
func (s *SearchState) RecordConflict(c *algo.Conflict) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts++
	s.lastConflict = c
	s.byType[c.Type]++
}

// Pause makes the search block before its next expansion.
func (s *SearchState) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume lets a paused search run on.
func (s *SearchState) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
	s.signal()
}

// Step lets a paused search expand one node.
func (s *SearchState) Step() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
	s.signal()
}

func (s *SearchState) signal() {
	select {
	case s.stepChan <- struct{}{}:
	default:
	}
}

// WaitForStep blocks while the search is paused until Step, Resume or
// the end of ctx.
func (s *SearchState) WaitForStep(ctx context.Context) {
	s.mu.Lock()
	paused := s.paused
	s.mu.Unlock()
	if !paused {
		return
	}
	select {
	case <-s.stepChan:
	case <-ctx.Done():
	}
}

// Snapshot copies the progress.
func (s *SearchState) Snapshot() SearchSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	byType := make(map[algo.ConflictType]int, len(s.byType))
	for k, v := range s.byType {
		byType[k] = v
	}
	return SearchSnapshot{
		Active:       s.active,
		Paused:       s.paused,
		Nodes:        append([]algo.NodeInfo(nil), s.nodes...),
		CurrentNode:  s.currentNode,
		SolutionNode: s.solutionNode,
		Expanded:     s.expanded,
		Conflicts:    s.conflicts,
		LowerBound:   s.lowerBound,
		LastConflict: s.lastConflict,
		ByType:       byType,
		Err:          s.err,
	}
}
