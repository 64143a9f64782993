// Command pce is a CLI for the Illumio Policy Compute Engine API.
package main

import (
	"fmt"
	"os"

	"github.com/illumio-labs/pce-go/cmd/pce/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
