package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check connectivity and credentials against the PCE",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		err = client.CheckConnection(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("PCE connection OK")

		return nil
	},
}

//nolint:gochecknoinits // cobra commands are wired at package load
func init() {
	rootCmd.AddCommand(healthCmd)
}
