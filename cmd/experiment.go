package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"tichu/experiments"
)

func newExperimentCmd() *cobra.Command {
	var seed uint64
	cmd := &cobra.Command{
		Use:   "experiment",
		Short: "Run the parallelization experiment and store CSV records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return experiments.RunParallelization(seed)
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", uint64(time.Now().UnixNano()), "master random seed")
	return cmd
}
