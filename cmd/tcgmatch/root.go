package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tcgmatch",
		Short:         "Convert card collection exports into marketplace import files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is fine; flags and the environment still apply.
			_ = godotenv.Load()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newNormalizeCommand())

	return rootCmd
}
