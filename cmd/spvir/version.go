package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spvir/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		setupColor(cmd)
		fmt.Printf("spvir %s\n", version.Version)
		if version.GitCommit != "" {
			fmt.Printf("commit: %s\n", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Printf("built:  %s\n", version.BuildDate)
		}
	},
}
