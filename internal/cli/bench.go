package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/elektrokombinacija/cbsh-mapf/internal/algo"
	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"github.com/elektrokombinacija/cbsh-mapf/internal/errors"
	"github.com/elektrokombinacija/cbsh-mapf/internal/logutil"
	"github.com/elektrokombinacija/cbsh-mapf/internal/scenario"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// benchResult is one solver run.
type benchResult struct {
	Instance   string
	Agents     int
	Solver     string
	Heuristic  string
	Outcome    string
	Cost       int
	LowerBound int
	Expanded   int
	Generated  int
	RuntimeMs  float64
}

type benchOptions struct {
	heuristics  string
	output      string
	metricsFile string
	jobs        int
	cutoff      float64
	maxMDDs     int
	pc          bool
	rectangle   bool
	corridor    bool
	target      bool
	screen      int
}

func (o *benchOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.heuristics, "heuristics", "NONE,CG,DG,WDG", "comma-separated heuristics to compare")
	cmd.Flags().StringVarP(&o.output, "output", "o", "bench_results.csv", "CSV file for the results")
	cmd.Flags().StringVar(&o.metricsFile, "metrics-file", "", "write search metrics in Prometheus text format")
	cmd.Flags().IntVarP(&o.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of searches run at once")
	cmd.Flags().Float64VarP(&o.cutoff, "cutoffTime", "t", 60, "cutoff time in seconds per run")
	cmd.Flags().IntVar(&o.maxMDDs, "MaxMDDs", 0, "maximum number of idle MDDs kept per agent")
	cmd.Flags().BoolVarP(&o.pc, "PC", "p", true, "conflict prioritization")
	cmd.Flags().BoolVarP(&o.rectangle, "rectangleReasoning", "r", false, "rectangle reasoning")
	cmd.Flags().BoolVar(&o.corridor, "corridorReasoning", false, "corridor reasoning")
	cmd.Flags().BoolVar(&o.target, "targetReasoning", false, "target reasoning")
	cmd.Flags().IntVarP(&o.screen, "screen", "s", 0, "screen option (0: none, 1: results, 2: all)")
}

func (o *benchOptions) run(cmd *cobra.Command, files []string) error {
	if o.jobs <= 0 {
		return errors.ErrConfigInvalid.GenWithStackByArgs(fmt.Sprintf("jobs %d must be positive", o.jobs))
	}
	if o.cutoff < 0 {
		return errors.ErrConfigInvalid.GenWithStackByArgs(fmt.Sprintf("cutoff-time %v must not be negative", o.cutoff))
	}
	var heuristics []algo.HeuristicKind
	for _, name := range strings.Split(o.heuristics, ",") {
		h, err := algo.ParseHeuristic(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		heuristics = append(heuristics, h)
	}
	logger, err := logutil.NewLogger(o.screen, cmd.ErrOrStderr())
	if err != nil {
		return errors.ErrConfigInvalid.GenWithStackByArgs(err.Error())
	}
	defer func() { _ = logger.Sync() }()

	instances := make([]*core.Instance, len(files))
	for i, f := range files {
		if instances[i], err = scenario.Load(f); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	metrics := algo.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		return errors.Trace(err)
	}

	results := make([]*benchResult, len(files)*len(heuristics))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(o.jobs)
	for i := range files {
		for j, h := range heuristics {
			i, j, h := i, j, h
			g.Go(func() error {
				r, err := o.solve(ctx, logger, metrics, filepath.Base(files[i]), instances[i], h)
				if err != nil {
					return err
				}
				results[i*len(heuristics)+j] = r
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if o.metricsFile != "" {
		if err := prometheus.WriteToTextfile(o.metricsFile, registry); err != nil {
			return errors.ErrWriteOutput.GenWithStackByArgs(err.Error())
		}
	}
	if err := writeCSV(results, o.output); err != nil {
		return errors.ErrWriteOutput.GenWithStackByArgs(fmt.Sprintf("%s: %v", o.output, err))
	}
	printSummary(cmd.OutOrStdout(), results)
	fmt.Fprintf(cmd.OutOrStdout(), "Results written to: %s\n", o.output)
	return nil
}

func (o *benchOptions) solve(ctx context.Context, logger *zap.Logger, metrics *algo.Metrics, name string, inst *core.Instance, h algo.HeuristicKind) (*benchResult, error) {
	opts := algo.DefaultOptions()
	opts.Heuristic = h
	opts.PrioritizeConflicts = o.pc
	opts.RectangleReasoning = o.rectangle
	opts.CorridorReasoning = o.corridor
	opts.TargetReasoning = o.target
	opts.Cutoff = time.Duration(o.cutoff * float64(time.Second))
	opts.MaxMDDs = o.maxMDDs
	opts.Logger = logger.With(zap.String("instance", name))
	opts.Metrics = metrics
	solver := algo.NewCBSH(opts)

	sol, err := solver.Solve(ctx, inst)
	r := &benchResult{
		Instance:  name,
		Agents:    len(inst.Agents),
		Solver:    solver.Name(),
		Heuristic: h.String(),
		Outcome:   "solved",
	}
	switch {
	case err == nil:
	case errors.ErrTimeout.Equal(err):
		r.Outcome = "timeout"
	case errors.ErrInfeasible.Equal(err):
		r.Outcome = "infeasible"
	default:
		return nil, err
	}
	r.Cost = sol.Cost
	r.LowerBound = sol.Stats.LowerBound
	r.Expanded = sol.Stats.NodesExpanded
	r.Generated = sol.Stats.NodesGenerated
	r.RuntimeMs = float64(sol.Stats.Runtime.Microseconds()) / 1000
	return r, nil
}

func writeCSV(results []*benchResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{
		"instance", "agents", "solver", "heuristic", "outcome",
		"cost", "lower_bound", "nodes_expanded", "nodes_generated", "runtime_ms",
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Instance, strconv.Itoa(r.Agents), r.Solver, r.Heuristic, r.Outcome,
			strconv.Itoa(r.Cost), strconv.Itoa(r.LowerBound),
			strconv.Itoa(r.Expanded), strconv.Itoa(r.Generated),
			fmt.Sprintf("%.3f", r.RuntimeMs),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

type heuristicSummary struct {
	runs, solved int
	runtimeMs    float64
	expanded     int
}

func printSummary(w io.Writer, results []*benchResult) {
	summary := make(map[string]*heuristicSummary)
	for _, r := range results {
		s, ok := summary[r.Heuristic]
		if !ok {
			s = &heuristicSummary{}
			summary[r.Heuristic] = s
		}
		s.runs++
		if r.Outcome == "solved" {
			s.solved++
			s.runtimeMs += r.RuntimeMs
			s.expanded += r.Expanded
		}
	}

	names := make([]string, 0, len(summary))
	for name := range summary {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "=== BENCHMARK SUMMARY ===")
	fmt.Fprintf(w, "%-10s %6s %8s %14s %14s\n", "Heuristic", "Runs", "Solved", "Avg Time(ms)", "Avg Expanded")
	fmt.Fprintln(w, strings.Repeat("-", 56))
	for _, name := range names {
		s := summary[name]
		var avgTime, avgExpanded float64
		if s.solved > 0 {
			avgTime = s.runtimeMs / float64(s.solved)
			avgExpanded = float64(s.expanded) / float64(s.solved)
		}
		fmt.Fprintf(w, "%-10s %6d %8d %14.3f %14.1f\n", name, s.runs, s.solved, avgTime, avgExpanded)
	}
}

func newCmdBench() *cobra.Command {
	o := &benchOptions{}
	cmd := &cobra.Command{
		Use:   "bench [instance.yaml ...]",
		Short: "Solve instances with several heuristics and compare them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args)
		},
	}
	o.addFlags(cmd)
	return cmd
}
