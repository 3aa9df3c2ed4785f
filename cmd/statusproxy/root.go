package main

import (
	"fmt"
	"os"

	"miyabi-hq/statusproxy/pkg/cli"
	"miyabi-hq/statusproxy/pkg/config"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "statusproxy",
	Short: "Status proxy - serves a cached gateway status document",
	Long: `Statusproxy sits between status dashboards and a local gateway.

It probes the gateway on a list of candidate paths, caches the first usable
answer and serves it on /status and /. JSON answers are relayed unchanged; an
HTML dashboard page is turned into a minimal status document. When the
gateway goes down, clients keep receiving the last good document.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (optional; defaults and environment otherwise)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func loadDotEnv() error {
	if envFile == "" {
		return nil
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		return cli.NewConfigError("env-file", err.Error())
	}
	return nil
}

// loadConfig reads the dotenv file, the optional config file and the
// environment.
func loadConfig() (*config.Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}
