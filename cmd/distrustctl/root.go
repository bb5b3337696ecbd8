package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "distrustctl",
		Short:         "Local tools for the DISTRUST game engine",
		Long:          "distrustctl plays a hot-seat DISTRUST match in the terminal and issues bearer tokens for chat adapters.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			_ = godotenv.Load()
		},
	}

	rootCmd.AddCommand(
		newPlayCmd(),
		newTokenCmd(),
	)

	return rootCmd
}
