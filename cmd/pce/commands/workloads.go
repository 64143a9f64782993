package commands

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/illumio-labs/pce-go/pkg/pce"
)

var workloadsCmd = &cobra.Command{
	Use:   "workloads",
	Short: "Manage workloads",
}

var workloadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workloads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		params := pce.Params{}
		if hostname, _ := cmd.Flags().GetString("hostname"); hostname != "" {
			params["hostname"] = hostname
		}

		if mode, _ := cmd.Flags().GetString("enforcement"); mode != "" {
			params["enforcement_mode"] = mode
		}

		workloads, err := client.Workloads().ListAll(cmd.Context(), pce.ListOptions{Params: params})
		if err != nil {
			return err
		}

		return printOutput(workloads, func(table *tablewriter.Table) {
			table.Header("Hostname", "Enforcement", "Online", "Href")
			for _, workload := range workloads {
				online := ""
				if workload.Online != nil {
					online = strconv.FormatBool(*workload.Online)
				}

				table.Append(workload.Hostname, string(workload.EnforcementMode), online, workload.Href)
			}
		})
	},
}

var workloadsGetCmd = &cobra.Command{
	Use:   "get HREF",
	Short: "Get a workload by HREF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		workload, err := client.Workloads().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return printOutput(workload, func(table *tablewriter.Table) {
			table.Header("Hostname", "Enforcement", "OS", "Href")
			table.Append(workload.Hostname, string(workload.EnforcementMode), workload.OSID, workload.Href)
		})
	},
}

var workloadsEnforceCmd = &cobra.Command{
	Use:   "set-enforcement MODE HREF [HREF...]",
	Short: "Move workloads to an enforcement mode",
	Long: `Move one or more workloads to an enforcement mode (idle,
visibility_only, selective, or full). Results are reported per
workload; a failing workload does not abort the rest.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		refs := make([]pce.Referable, 0, len(args)-1)
		for _, href := range args[1:] {
			refs = append(refs, &pce.Reference{Href: href})
		}

		results, err := client.UpdateWorkloadEnforcement(cmd.Context(), pce.EnforcementMode(args[0]), refs...)
		if err != nil {
			return err
		}

		return printOutput(results, func(table *tablewriter.Table) {
			table.Header("Href", "Status", "Errors")
			for _, result := range results {
				errText := ""
				if !result.OK() {
					errText = fmt.Sprint(result.Errors)
				}

				table.Append(result.Href, result.Status, errText)
			}
		})
	},
}

//nolint:gochecknoinits // cobra commands are wired at package load
func init() {
	workloadsListCmd.Flags().String("hostname", "", "filter by hostname")
	workloadsListCmd.Flags().String("enforcement", "", "filter by enforcement mode")

	workloadsCmd.AddCommand(workloadsListCmd, workloadsGetCmd, workloadsEnforceCmd)
	rootCmd.AddCommand(workloadsCmd)
}
