package cli

import (
	"fmt"

	"github.com/elektrokombinacija/cbsh-mapf/internal/errors"
	"github.com/elektrokombinacija/cbsh-mapf/internal/logutil"
	"github.com/elektrokombinacija/cbsh-mapf/internal/scenario"
	"github.com/elektrokombinacija/cbsh-mapf/internal/sim"
	"github.com/spf13/cobra"
)

type validateOptions struct {
	input       string
	schedule    string
	metricsJSON string
	screen      int
}

func (o *validateOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.input, "input", "i", "", "input file for the instance")
	cmd.Flags().StringVarP(&o.schedule, "schedule", "y", "output_cbs-h.yaml", "schedule file to check")
	cmd.Flags().StringVar(&o.metricsJSON, "metrics-json", "", "write plan metrics as JSON")
	cmd.Flags().IntVarP(&o.screen, "screen", "s", 0, "screen option (0: none, 1: results, 2: all)")
}

func (o *validateOptions) run(cmd *cobra.Command) error {
	if o.input == "" {
		return errors.ErrMissingInput.GenWithStackByArgs()
	}
	logger, err := logutil.NewLogger(o.screen, cmd.ErrOrStderr())
	if err != nil {
		return errors.ErrConfigInvalid.GenWithStackByArgs(err.Error())
	}
	defer func() { _ = logger.Sync() }()

	inst, err := scenario.Load(o.input)
	if err != nil {
		return err
	}
	doc, err := scenario.LoadSchedule(o.schedule, inst.Grid)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report, err := sim.Validate(inst, doc.Paths)
	if err != nil {
		failure.Fprintln(out, "Schedule NOT valid!")
		for _, p := range report.Problems {
			fmt.Fprintln(out, "  "+p)
		}
		for _, c := range report.Collisions {
			fmt.Fprintln(out, "  "+c.String())
		}
		return err
	}

	s := sim.NewSimulator(inst, doc.Paths, logger)
	m, err := s.Run(cmd.Context())
	if err != nil {
		return errors.Trace(err)
	}
	success.Fprintln(out, "Schedule valid!")
	fmt.Fprintf(out, "Cost :: %d, Makespan :: %d, Moves :: %d, Waits :: %d\n", m.Cost, m.Makespan, m.Moves, m.Waits)
	if doc.Statistics.Cost != m.Cost {
		fmt.Fprintf(out, "reported cost %d differs from the schedule cost %d\n", doc.Statistics.Cost, m.Cost)
	}
	if o.metricsJSON != "" {
		if err := s.ExportMetrics(o.metricsJSON); err != nil {
			return errors.ErrWriteOutput.GenWithStackByArgs(err.Error())
		}
	}
	return nil
}

func newCmdValidate() *cobra.Command {
	o := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a schedule against its instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd)
		},
	}
	o.addFlags(cmd)
	return cmd
}
