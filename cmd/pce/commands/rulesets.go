package commands

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/illumio-labs/pce-go/pkg/pce"
)

var rulesetsCmd = &cobra.Command{
	Use:   "rulesets",
	Short: "Manage rule sets",
}

var rulesetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rule sets",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		version := pce.PolicyDraft
		if active, _ := cmd.Flags().GetBool("active"); active {
			version = pce.PolicyActive
		}

		rulesets, err := client.Rulesets().ListAll(cmd.Context(), pce.ListOptions{Version: version})
		if err != nil {
			return err
		}

		return printOutput(rulesets, func(table *tablewriter.Table) {
			table.Header("Name", "Enabled", "Rules", "Href")
			for _, ruleset := range rulesets {
				enabled := ""
				if ruleset.Enabled != nil {
					enabled = strconv.FormatBool(*ruleset.Enabled)
				}

				table.Append(ruleset.Name, enabled, strconv.Itoa(len(ruleset.Rules)), ruleset.Href)
			}
		})
	},
}

//nolint:gochecknoinits // cobra commands are wired at package load
func init() {
	rulesetsListCmd.Flags().Bool("active", false, "list the active version instead of draft")

	rulesetsCmd.AddCommand(rulesetsListCmd)
	rootCmd.AddCommand(rulesetsCmd)
}
