package main

import (
	"fmt"

	"miyabi-hq/statusproxy/pkg/cli"

	"github.com/spf13/cobra"
)

var configFlags struct {
	output string
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the proxy configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and print the effective values",
	Long: `Load the configuration exactly as "run" does (defaults, config file, dotenv
file, environment) and validate it. On success the effective configuration is
printed with the gateway token masked. Every invalid field is reported and
the command exits with status 2.

Examples:
  statusproxy config validate
  statusproxy config validate --config config.yaml --output json`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)

	configValidateCmd.Flags().StringVarP(&configFlags.output, "output", "o", "yaml", "output format (yaml, json)")
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(configFlags.output)
	if err != nil {
		return err
	}
	if format == cli.FormatText {
		format = cli.FormatYAML
	}

	cfg, err := loadConfig()
	if err != nil {
		errOut := cmd.ErrOrStderr()
		for _, cerr := range cli.ConfigErrors(err) {
			if cerr.Field != "" {
				fmt.Fprintf(errOut, "✗ %s: %s\n", cerr.Field, cerr.Message)
			} else {
				fmt.Fprintf(errOut, "✗ %s\n", cerr.Message)
			}
		}
		return err
	}

	effective := *cfg
	if effective.Gateway.Token != "" {
		effective.Gateway.Token = "***"
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "✓ Configuration valid")
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), &effective)
}
