package commands

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/illumio-labs/pce-go/pkg/pce"
)

var trafficCmd = &cobra.Command{
	Use:   "traffic",
	Short: "Query traffic flows",
	Long: `Query observed traffic flows in a date window. Large result sets
should use --async, which runs the query as a PCE job.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		maxResults, _ := cmd.Flags().GetInt("max-results")

		decisionFlags, _ := cmd.Flags().GetStringSlice("decisions")
		decisions := make([]pce.PolicyDecision, 0, len(decisionFlags))

		for _, decision := range decisionFlags {
			decisions = append(decisions, pce.PolicyDecision(decision))
		}

		query := pce.NewTrafficQuery(start, end, decisions...)
		query.MaxResults = maxResults

		var flows []*pce.TrafficFlow
		if async, _ := cmd.Flags().GetBool("async"); async {
			flows, err = client.GetTrafficFlowsAsync(cmd.Context(), query)
		} else {
			flows, err = client.GetTrafficFlows(cmd.Context(), query)
		}

		if err != nil {
			return err
		}

		return printOutput(flows, func(table *tablewriter.Table) {
			table.Header("Source", "Destination", "Port", "Proto", "Decision", "Connections")
			for _, flow := range flows {
				src, dst := "", ""
				if flow.Src != nil {
					src = flow.Src.IP
				}

				if flow.Dst != nil {
					dst = flow.Dst.IP
				}

				port, proto := "", ""
				if flow.Service != nil {
					port = strconv.Itoa(flow.Service.Port)
					proto = strconv.Itoa(flow.Service.Proto)
				}

				table.Append(src, dst, port, proto, string(flow.PolicyDecision),
					strconv.FormatInt(flow.NumConnections, 10))
			}
		})
	},
}

//nolint:gochecknoinits // cobra commands are wired at package load
func init() {
	trafficCmd.Flags().String("start", "", "window start (RFC 3339 or YYYY-MM-DD)")
	trafficCmd.Flags().String("end", "", "window end (RFC 3339 or YYYY-MM-DD)")
	trafficCmd.Flags().StringSlice("decisions", nil, "policy decisions to include (allowed, blocked, potentially_blocked, unknown)")
	trafficCmd.Flags().Int("max-results", 0, "cap the number of returned flows")
	trafficCmd.Flags().Bool("async", false, "run the query as an async PCE job")
	_ = trafficCmd.MarkFlagRequired("start")
	_ = trafficCmd.MarkFlagRequired("end")

	rootCmd.AddCommand(trafficCmd)
}
