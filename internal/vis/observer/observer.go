// Package observer connects a running search to the viewer state.
package observer

import (
	"context"

	"github.com/elektrokombinacija/cbsh-mapf/internal/algo"
	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/state"
)

// SearchObserver records search events into a SearchState and blocks the
// search while the viewer has it paused.
type SearchObserver struct {
	ctx      context.Context
	state    *state.SearchState
	onChange func()
}

var _ algo.Observer = (*SearchObserver)(nil)

// NewSearchObserver creates an observer. onChange, when set, is called
// after every event, typically to invalidate the window.
func NewSearchObserver(ctx context.Context, st *state.SearchState, onChange func()) *SearchObserver {
	return &SearchObserver{ctx: ctx, state: st, onChange: onChange}
}

// OnNodeExpanded waits while paused, then records the node.
func (o *SearchObserver) OnNodeExpanded(n algo.NodeInfo) {
	o.state.WaitForStep(o.ctx)
	o.state.RecordNode(n)
	o.changed()
}

// OnConflictSelected records the branching conflict.
func (o *SearchObserver) OnConflictSelected(c *algo.Conflict) {
	o.state.RecordConflict(c)
	o.changed()
}

// OnSolutionFound is a no-op; Run finishes the state with the result.
func (o *SearchObserver) OnSolutionFound(*core.Solution) {}

func (o *SearchObserver) changed() {
	if o.onChange != nil {
		o.onChange()
	}
}

// Run solves inst with opts while recording into st. On success the plan
// is loaded for playback.
func Run(ctx context.Context, st *state.State, opts algo.Options, onChange func()) (*core.Solution, error) {
	st.Search.Start()
	opts.Observer = NewSearchObserver(ctx, st.Search, onChange)
	sol, err := algo.NewCBSH(opts).Solve(ctx, st.Instance)
	st.Search.Finish(sol, err)
	if err == nil {
		st.SetPlan(sol.Paths)
	}
	if onChange != nil {
		onChange()
	}
	return sol, err
}
