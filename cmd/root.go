package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"vaultsearch/internal/config"
)

var (
	flagInput  string
	flagConfig string
)

var rootCmd = &cobra.Command{
	Use:   "vaultsearch",
	Short: "Search and recover content from a ChatGPT data export",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Exit codes: 0 on success, 130 on interrupt, 1 on
// any other error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nInterrupted.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the config file: --config wins, otherwise the
// default location is tried and built-in defaults apply when absent.
func loadConfig() (config.Config, error) {
	if flagConfig != "" {
		return config.LoadFrom(flagConfig)
	}
	return config.Load()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagInput, "input", "", "path to export ZIP, folder, or conversations.json")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.vaultsearch/config.toml)")
}
