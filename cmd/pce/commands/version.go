package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("pce version", Version)
	},
}

//nolint:gochecknoinits // cobra commands are wired at package load
func init() {
	rootCmd.AddCommand(versionCmd)
}
