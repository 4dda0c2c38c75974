package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vsariola/modsynth/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, args []string) {
		fmt.Fprintln(c.OutOrStdout(), version.Describe())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
