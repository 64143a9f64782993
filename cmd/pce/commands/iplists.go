package commands

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/illumio-labs/pce-go/pkg/pce"
)

var ipListsCmd = &cobra.Command{
	Use:   "iplists",
	Short: "Manage IP lists",
}

var ipListsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List IP lists",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		version := pce.PolicyDraft
		if active, _ := cmd.Flags().GetBool("active"); active {
			version = pce.PolicyActive
		}

		lists, err := client.IPLists().ListAll(cmd.Context(), pce.ListOptions{Version: version})
		if err != nil {
			return err
		}

		return printOutput(lists, func(table *tablewriter.Table) {
			table.Header("Name", "Ranges", "FQDNs", "Href")
			for _, list := range lists {
				table.Append(list.Name, strconv.Itoa(len(list.IPRanges)), strconv.Itoa(len(list.FQDNs)), list.Href)
			}
		})
	},
}

//nolint:gochecknoinits // cobra commands are wired at package load
func init() {
	ipListsListCmd.Flags().Bool("active", false, "list the active version instead of draft")

	ipListsCmd.AddCommand(ipListsListCmd)
	rootCmd.AddCommand(ipListsCmd)
}
