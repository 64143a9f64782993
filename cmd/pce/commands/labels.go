package commands

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/illumio-labs/pce-go/pkg/pce"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Manage labels",
}

var labelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List labels",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		params := pce.Params{}
		if key, _ := cmd.Flags().GetString("key"); key != "" {
			params["key"] = key
		}

		if value, _ := cmd.Flags().GetString("value"); value != "" {
			params["value"] = value
		}

		labels, err := client.Labels().ListAll(cmd.Context(), pce.ListOptions{Params: params})
		if err != nil {
			return err
		}

		return printOutput(labels, func(table *tablewriter.Table) {
			table.Header("Key", "Value", "Href")
			for _, label := range labels {
				table.Append(label.Key, label.Value, label.Href)
			}
		})
	},
}

var labelsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a label",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		key, _ := cmd.Flags().GetString("key")
		value, _ := cmd.Flags().GetString("value")

		created, err := client.Labels().Create(cmd.Context(), &pce.Label{Key: key, Value: value})
		if err != nil {
			return err
		}

		label := created.First()

		return printOutput(label, func(table *tablewriter.Table) {
			table.Header("Key", "Value", "Href")
			table.Append(label.Key, label.Value, label.Href)
		})
	},
}

//nolint:gochecknoinits // cobra commands are wired at package load
func init() {
	labelsListCmd.Flags().String("key", "", "filter by label key")
	labelsListCmd.Flags().String("value", "", "filter by label value")

	labelsCreateCmd.Flags().String("key", "", "label key (role, app, env, loc)")
	labelsCreateCmd.Flags().String("value", "", "label value")
	_ = labelsCreateCmd.MarkFlagRequired("key")
	_ = labelsCreateCmd.MarkFlagRequired("value")

	labelsCmd.AddCommand(labelsListCmd, labelsCreateCmd)
	rootCmd.AddCommand(labelsCmd)
}
