// Package algo implements the CBSH solver for grid multi-agent path
// finding: conflict-based search with conflict prioritization, admissible
// heuristics over the agent dependency graph and symmetry reasoning.
package algo

import (
	"context"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	cerrors "github.com/elektrokombinacija/cbsh-mapf/internal/errors"
	"go.uber.org/zap"
)

// Solver is the interface for MAPF algorithms.
type Solver interface {
	// Solve searches for a minimum sum-of-costs plan. A failed search
	// returns a partial solution carrying its statistics together with
	// ErrInfeasible or ErrTimeout.
	Solve(ctx context.Context, inst *core.Instance) (*core.Solution, error)

	// Name returns the algorithm name.
	Name() string
}

// HeuristicKind selects the high-level heuristic.
type HeuristicKind uint8

const (
	// HeuristicNone is plain CBS with h = 0.
	HeuristicNone HeuristicKind = iota
	// HeuristicCG covers the cardinal conflict graph.
	HeuristicCG
	// HeuristicDG covers the pairwise dependency graph.
	HeuristicDG
	// HeuristicWDG covers the weighted dependency graph.
	HeuristicWDG
)

var heuristicNames = [...]string{"NONE", "CG", "DG", "WDG"}

func (h HeuristicKind) String() string {
	if int(h) < len(heuristicNames) {
		return heuristicNames[h]
	}
	return "UNKNOWN"
}

// ParseHeuristic maps NONE, CG, DG or WDG to a HeuristicKind.
func ParseHeuristic(name string) (HeuristicKind, error) {
	for i, n := range heuristicNames {
		if strings.EqualFold(name, n) {
			return HeuristicKind(i), nil
		}
	}
	return HeuristicNone, cerrors.ErrUnknownHeuristic.GenWithStackByArgs(name)
}

// Options configures a CBSH search.
type Options struct {
	Heuristic           HeuristicKind
	PrioritizeConflicts bool
	RectangleReasoning  bool
	CorridorReasoning   bool
	TargetReasoning     bool

	// Cutoff bounds the search time, 0 means no bound.
	Cutoff time.Duration
	// MaxMDDs is the number of unreferenced diagrams kept per agent, and
	// the size of the per-pair cache of sub-search results.
	MaxMDDs int
	// PairNodeLimit bounds the expansions of one two-agent sub-search.
	PairNodeLimit int
	// Seed fixes the per-agent move order. 0 keeps the natural order.
	Seed int64

	Logger   *zap.Logger
	Clock    clock.Clock
	Metrics  *Metrics
	Observer Observer
}

// DefaultOptions returns the options of the reference driver.
func DefaultOptions() Options {
	return Options{
		Heuristic:           HeuristicNone,
		PrioritizeConflicts: true,
		Cutoff:              7200 * time.Second,
		PairNodeLimit:       64,
	}
}

// CBSH is the conflict-based search solver with heuristics.
type CBSH struct {
	opts Options
}

// NewCBSH creates a solver. Missing logger and clock default to a no-op
// logger and the wall clock.
func NewCBSH(opts Options) *CBSH {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.PairNodeLimit <= 0 {
		opts.PairNodeLimit = DefaultOptions().PairNodeLimit
	}
	if opts.MaxMDDs < 0 {
		opts.MaxMDDs = 0
	}
	return &CBSH{opts: opts}
}

// Name returns the algorithm name with its enabled reasoning.
func (c *CBSH) Name() string {
	var b strings.Builder
	b.WriteString("CBSH-")
	b.WriteString(c.opts.Heuristic.String())
	if c.opts.PrioritizeConflicts {
		b.WriteString("+PC")
	}
	if c.opts.RectangleReasoning {
		b.WriteString("+R")
	}
	if c.opts.CorridorReasoning {
		b.WriteString("+C")
	}
	if c.opts.TargetReasoning {
		b.WriteString("+T")
	}
	return b.String()
}

// Options returns the effective options.
func (c *CBSH) Options() Options { return c.opts }
