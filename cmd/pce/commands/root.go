// Package commands implements the pce CLI.
package commands

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/illumio-labs/pce-go/pkg/pce"
	"github.com/illumio-labs/pce-go/pkg/pceclient"
)

var rootCmd = &cobra.Command{
	Use:   "pce",
	Short: "Interact with an Illumio Policy Compute Engine",
	Long: `pce is a command-line client for the Illumio Policy Compute Engine
REST API. Connection settings come from flags, PCE_* environment
variables, or a config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

//nolint:gochecknoinits // cobra commands are wired at package load
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("host", "", "PCE hostname or URL")
	rootCmd.PersistentFlags().Int("port", 0, "PCE port (default 443)")
	rootCmd.PersistentFlags().Int("org", 0, "PCE organization ID (default 1)")
	rootCmd.PersistentFlags().String("api-key", "", "API key username")
	rootCmd.PersistentFlags().String("api-secret", "", "API key secret")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "log requests and responses")

	for _, flag := range []string{"host", "port", "org", "api-key", "api-secret", "output", "debug"} {
		_ = viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag))
	}
}

func initConfig() {
	viper.SetConfigName("pce")
	viper.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home + "/.config/pce")
	}

	viper.SetEnvPrefix("PCE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// newClient builds a client from the resolved configuration, prompting
// for the API secret when it is missing and stdin is a terminal.
func newClient() (pce.Client, error) {
	secret := viper.GetString("api-secret")
	if secret == "" && term.IsTerminal(int(syscall.Stdin)) {
		fmt.Fprint(os.Stderr, "API secret: ")

		entered, err := term.ReadPassword(int(syscall.Stdin))

		fmt.Fprintln(os.Stderr)

		if err != nil {
			return nil, fmt.Errorf("reading API secret: %w", err)
		}

		secret = string(entered)
	}

	return pceclient.New(&pce.Config{
		Host:      viper.GetString("host"),
		Port:      viper.GetInt("port"),
		OrgID:     viper.GetInt("org"),
		APIKey:    viper.GetString("api-key"),
		APISecret: secret,
		Debug:     viper.GetBool("debug"),
	})
}
