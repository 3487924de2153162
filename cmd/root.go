package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var level string
	root := &cobra.Command{
		Use:          "tichu",
		Short:        "Tichu engine and search agents",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := zerolog.ParseLevel(level)
			if err != nil {
				return err
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(lvl).
				With().Timestamp().Logger()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&level, "log-level", "info", "log level (trace|debug|info|warn|error)")
	root.AddCommand(newSelfplayCmd())
	root.AddCommand(newExperimentCmd())
	return root
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
