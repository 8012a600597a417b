package cli

import (
	"fmt"

	"github.com/elektrokombinacija/cbsh-mapf/internal/errors"
	"github.com/elektrokombinacija/cbsh-mapf/internal/scenario"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	params     scenario.Params
	output     string
	agentsFile string
}

func (o *generateOptions) addFlags(cmd *cobra.Command) {
	p := &o.params
	cmd.Flags().IntVar(&p.Width, "width", 8, "map width")
	cmd.Flags().IntVar(&p.Height, "height", 8, "map height")
	cmd.Flags().IntVarP(&p.Agents, "agents", "k", 4, "number of agents")
	cmd.Flags().Float64Var(&p.ObstacleRatio, "obstacles", 0.1, "fraction of blocked cells in random maps")
	cmd.Flags().Int64VarP(&p.Seed, "seed", "d", 0, "random seed")
	cmd.Flags().IntVarP(&p.WarehouseWidth, "warehouseWidth", "b", 0, "width of the start and goal bands, 0 for a random map")
	cmd.Flags().IntVar(&p.WalkSteps, "walkSteps", scenario.RandomWalkSteps, "random walk length used to place goals")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "instance file to write")
	cmd.Flags().StringVar(&o.agentsFile, "agents-file", "", "also write the agents in the legacy text format")
}

func (o *generateOptions) run(cmd *cobra.Command) error {
	if o.output == "" {
		return errors.ErrConfigInvalid.GenWithStackByArgs("--output is required")
	}
	inst, err := scenario.Generate(o.params)
	if err != nil {
		return err
	}
	if err := scenario.SaveInstance(o.output, inst); err != nil {
		return err
	}
	if o.agentsFile != "" {
		if err := scenario.SaveAgents(o.agentsFile, inst); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d agents on a %dx%d map :: %s\n",
		len(inst.Agents), inst.Grid.Width, inst.Grid.Height, o.output)
	return nil
}

func newCmdGenerate() *cobra.Command {
	o := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random or warehouse instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd)
		},
	}
	o.addFlags(cmd)
	return cmd
}
