package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// printOutput renders v in the selected output format. renderTable is
// called for the default table format with a ready writer.
func printOutput(v any, renderTable func(table *tablewriter.Table)) error {
	switch viper.GetString("output") {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(v)
	case "table":
		table := tablewriter.NewWriter(os.Stdout)
		renderTable(table)

		return table.Render()
	default:
		return fmt.Errorf("unknown output format %q", viper.GetString("output")) //nolint:err113
	}
}
