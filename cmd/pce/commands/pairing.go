package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illumio-labs/pce-go/pkg/pce"
)

var pairingCmd = &cobra.Command{
	Use:   "pairing-key PROFILE_HREF",
	Short: "Generate a pairing key from a pairing profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		key, err := client.GeneratePairingKey(cmd.Context(), &pce.Reference{Href: args[0]})
		if err != nil {
			return err
		}

		fmt.Println(key)

		return nil
	},
}

//nolint:gochecknoinits // cobra commands are wired at package load
func init() {
	rootCmd.AddCommand(pairingCmd)
}
