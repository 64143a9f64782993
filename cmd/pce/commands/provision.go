package commands

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var provisionCmd = &cobra.Command{
	Use:   "provision HREF [HREF...]",
	Short: "Provision draft policy objects to active",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		message, _ := cmd.Flags().GetString("message")

		policy, err := client.ProvisionPolicyChanges(cmd.Context(), message, args)
		if err != nil {
			return err
		}

		return printOutput(policy, func(table *tablewriter.Table) {
			table.Header("Version", "Commit Message", "Href")
			table.Append(strconv.Itoa(policy.Version), policy.CommitMessage, policy.Href)
		})
	},
}

//nolint:gochecknoinits // cobra commands are wired at package load
func init() {
	provisionCmd.Flags().StringP("message", "m", "", "commit message for the policy version")

	rootCmd.AddCommand(provisionCmd)
}
