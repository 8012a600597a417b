// Package cli implements the cbsh command tree: the root command solves an
// instance, validate checks a schedule, generate writes instances and bench
// compares heuristics over many instances.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/elektrokombinacija/cbsh-mapf/internal/algo"
	"github.com/elektrokombinacija/cbsh-mapf/internal/config"
	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"github.com/elektrokombinacija/cbsh-mapf/internal/errors"
	"github.com/elektrokombinacija/cbsh-mapf/internal/logutil"
	"github.com/elektrokombinacija/cbsh-mapf/internal/scenario"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitHelp  = 1
	ExitError = 255
)

var (
	success = color.New(color.FgGreen, color.Bold)
	failure = color.New(color.FgRed, color.Bold)
)

type options struct {
	cfg            *config.Config
	configFilePath string
}

func newOptions() *options {
	return &options{cfg: config.GetDefaultConfig()}
}

func (o *options) addFlags(cmd *cobra.Command) {
	c := o.cfg
	cmd.Flags().StringVarP(&c.Input, "input", "i", c.Input, "input file for the instance")
	cmd.Flags().StringVarP(&c.Output, "output", "o", c.Output, "output file for the schedule")
	cmd.Flags().BoolVarP(&c.PrioritizeConflicts, "PC", "p", c.PrioritizeConflicts, "conflict prioritization")
	cmd.Flags().StringVar(&c.Heuristics, "heuristics", c.Heuristics, "heuristics for the high-level search (NONE, CG, DG, WDG)")
	cmd.Flags().Float64VarP(&c.CutoffTime, "cutoffTime", "t", c.CutoffTime, "cutoff time in seconds, 0 for none")
	cmd.Flags().IntVar(&c.MaxMDDs, "MaxMDDs", c.MaxMDDs, "maximum number of idle MDDs kept per agent")
	cmd.Flags().Int64VarP(&c.Seed, "seed", "d", c.Seed, "random seed for tie-breaking")
	cmd.Flags().BoolVarP(&c.RectangleReasoning, "rectangleReasoning", "r", c.RectangleReasoning, "rectangle reasoning")
	cmd.Flags().BoolVar(&c.CorridorReasoning, "corridorReasoning", c.CorridorReasoning, "corridor reasoning")
	cmd.Flags().BoolVar(&c.TargetReasoning, "targetReasoning", c.TargetReasoning, "target reasoning")
	cmd.Flags().IntVar(&c.PairNodeLimit, "pairNodeLimit", c.PairNodeLimit, "node limit of one two-agent sub-search")
	cmd.Flags().IntVarP(&c.Screen, "screen", "s", c.Screen, "screen option (0: none, 1: results, 2: all)")
	cmd.Flags().IntVarP(&c.WarehouseWidth, "warehouseWidth", "b", c.WarehouseWidth, "width of the warehouse bands for generated instances")
	cmd.Flags().StringVar(&c.MetricsFile, "metrics-file", c.MetricsFile, "write search metrics in Prometheus text format")
	cmd.Flags().StringVar(&o.configFilePath, "config", "", "path of a TOML configuration file")
}

// complete merges the configuration file with the explicitly set flags.
func (o *options) complete(cmd *cobra.Command) error {
	cfg := config.GetDefaultConfig()
	if o.configFilePath != "" {
		if err := cfg.DecodeFile(o.configFilePath); err != nil {
			return err
		}
	}

	cmd.Flags().Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "input":
			cfg.Input = o.cfg.Input
		case "output":
			cfg.Output = o.cfg.Output
		case "PC":
			cfg.PrioritizeConflicts = o.cfg.PrioritizeConflicts
		case "heuristics":
			cfg.Heuristics = o.cfg.Heuristics
		case "cutoffTime":
			cfg.CutoffTime = o.cfg.CutoffTime
		case "MaxMDDs":
			cfg.MaxMDDs = o.cfg.MaxMDDs
		case "seed":
			cfg.Seed = o.cfg.Seed
		case "rectangleReasoning":
			cfg.RectangleReasoning = o.cfg.RectangleReasoning
		case "corridorReasoning":
			cfg.CorridorReasoning = o.cfg.CorridorReasoning
		case "targetReasoning":
			cfg.TargetReasoning = o.cfg.TargetReasoning
		case "pairNodeLimit":
			cfg.PairNodeLimit = o.cfg.PairNodeLimit
		case "screen":
			cfg.Screen = o.cfg.Screen
		case "warehouseWidth":
			cfg.WarehouseWidth = o.cfg.WarehouseWidth
		case "metrics-file":
			cfg.MetricsFile = o.cfg.MetricsFile
		case "config", "help":
			// do nothing
		default:
			panic(fmt.Sprintf("unknown flag %q", flag.Name))
		}
	})

	if err := cfg.Adjust(); err != nil {
		return errors.Trace(err)
	}
	if cfg.Input == "" {
		return errors.ErrMissingInput.GenWithStackByArgs()
	}
	o.cfg = cfg
	return nil
}

func (o *options) run(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	logger, err := logutil.NewLogger(o.cfg.Screen, cmd.ErrOrStderr())
	if err != nil {
		return errors.ErrConfigInvalid.GenWithStackByArgs(err.Error())
	}
	defer func() { _ = logger.Sync() }()

	inst, err := scenario.Load(o.cfg.Input)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	metrics := algo.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		return errors.Trace(err)
	}
	opts := o.cfg.SolverOptions()
	opts.Logger = logger
	opts.Metrics = metrics
	solver := algo.NewCBSH(opts)

	logger.Info("solving",
		zap.String("input", o.cfg.Input),
		zap.String("solver", solver.Name()),
		zap.Int("agents", len(inst.Agents)),
		zap.Int("width", inst.Grid.Width),
		zap.Int("height", inst.Grid.Height))

	sol, err := solver.Solve(cmd.Context(), inst)
	if o.cfg.MetricsFile != "" {
		if werr := prometheus.WriteToTextfile(o.cfg.MetricsFile, registry); werr != nil {
			logger.Warn("write metrics file", zap.String("path", o.cfg.MetricsFile), logutil.ShortError(werr))
		}
	}
	if err != nil {
		if sol == nil {
			return err
		}
		failure.Fprintln(out, "Planning NOT successful!")
		fmt.Fprintln(out, errors.Cause(err))
		return nil
	}

	if err := scenario.SaveSchedule(o.cfg.Output, inst.Grid, sol, sol.Stats.Runtime); err != nil {
		return err
	}
	success.Fprintln(out, "Planning successful!")
	fmt.Fprintf(out, "Optimal Cost :: %d\n", sol.Cost)
	if o.cfg.Screen >= 1 {
		printStats(out, sol.Stats)
	}
	return nil
}

func printStats(w io.Writer, st core.Stats) {
	fmt.Fprintf(w, "Expanded :: %d, Generated :: %d, LowLevel :: %d, RootLB :: %d, Runtime :: %.3fs\n",
		st.NodesExpanded, st.NodesGenerated, st.LowLevelCalls, st.RootLowerBound, st.Runtime.Seconds())
}

// NewCmdRoot creates the cbsh command tree.
func NewCmdRoot() *cobra.Command {
	o := newOptions()
	cmd := &cobra.Command{
		Use:           "cbsh",
		Short:         "Solve multi-agent path finding instances with CBSH",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.complete(cmd); err != nil {
				return err
			}
			return o.run(cmd)
		},
	}
	o.addFlags(cmd)
	cmd.AddCommand(newCmdValidate(), newCmdGenerate(), newCmdBench())
	return cmd
}

// Execute runs the command tree on args and returns the process exit
// code: 1 when help was requested, 255 on any error, 0 otherwise,
// whether or not a plan was found.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	root := NewCmdRoot()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err != nil {
		failure.Fprintln(stderr, "Error:", err)
		return ExitError
	}
	if f := cmd.Flags().Lookup("help"); f != nil && f.Changed {
		return ExitHelp
	}
	return ExitOK
}
