// Command cbshvis shows a grid instance and plays back a plan for it. Without
// a schedule it runs the search and shows its progress.
package main

import (
	"fmt"
	"os"

	"gioui.org/app"
	"gioui.org/unit"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/elektrokombinacija/cbsh-mapf/internal/config"
	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"github.com/elektrokombinacija/cbsh-mapf/internal/errors"
	"github.com/elektrokombinacija/cbsh-mapf/internal/logutil"
	"github.com/elektrokombinacija/cbsh-mapf/internal/scenario"
	"github.com/elektrokombinacija/cbsh-mapf/internal/sim"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis"
)

func main() {
	cfg := config.GetDefaultConfig()
	var schedule string
	flag.StringVarP(&cfg.Input, "input", "i", "", "input file for the map and agents")
	flag.StringVarP(&schedule, "schedule", "y", "", "schedule to play back; the search runs when empty")
	flag.StringVar(&cfg.Heuristics, "heuristics", cfg.Heuristics, "heuristics for the high-level search (NONE, CG, DG, WDG)")
	flag.BoolVarP(&cfg.PrioritizeConflicts, "PC", "p", cfg.PrioritizeConflicts, "conflict prioritization")
	flag.BoolVarP(&cfg.RectangleReasoning, "rectangleReasoning", "r", cfg.RectangleReasoning, "rectangle reasoning")
	flag.BoolVar(&cfg.CorridorReasoning, "corridorReasoning", cfg.CorridorReasoning, "corridor reasoning")
	flag.BoolVar(&cfg.TargetReasoning, "targetReasoning", cfg.TargetReasoning, "target reasoning")
	flag.Float64VarP(&cfg.CutoffTime, "cutoffTime", "t", cfg.CutoffTime, "cutoff time in seconds")
	flag.IntVarP(&cfg.Screen, "screen", "s", 1, "screen option (0: warnings only, 1: info, 2: debug)")
	flag.Parse()

	logger, err := setup(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(255)
	}
	defer logger.Sync() //nolint:errcheck

	inst, paths, err := load(cfg.Input, schedule, logger)
	if err != nil {
		logger.Error("cannot load input", zap.Error(err))
		os.Exit(255)
	}

	opts := cfg.SolverOptions()
	opts.Logger = logger
	viewer := vis.NewApp(inst, paths, opts, logger)

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("CBSH viewer :: "+cfg.Input),
			app.Size(unit.Dp(1400), unit.Dp(900)),
		)
		if err := viewer.Run(window); err != nil {
			logger.Error("viewer stopped", zap.Error(err))
			os.Exit(255)
		}
		os.Exit(0)
	}()
	app.Main()
}

func setup(cfg *config.Config) (*zap.Logger, error) {
	if err := cfg.Adjust(); err != nil {
		return nil, err
	}
	if cfg.Input == "" {
		return nil, errors.ErrMissingInput.GenWithStackByArgs()
	}
	return logutil.NewLogger(cfg.Screen, os.Stderr)
}

// load reads the instance and, when given, the schedule. A schedule that
// does not fit the instance is rejected; one that collides is shown anyway.
func load(input, schedule string, logger *zap.Logger) (*core.Instance, []core.Path, error) {
	inst, err := scenario.Load(input)
	if err != nil {
		return nil, nil, err
	}
	if schedule == "" {
		return inst, nil, nil
	}
	doc, err := scenario.LoadSchedule(schedule, inst.Grid)
	if err != nil {
		return nil, nil, err
	}
	report, err := sim.Validate(inst, doc.Paths)
	if len(report.Problems) > 0 {
		return nil, nil, err
	}
	for _, c := range report.Collisions {
		logger.Warn("schedule collision", zap.Stringer("collision", c))
	}
	return inst, doc.Paths, nil
}
